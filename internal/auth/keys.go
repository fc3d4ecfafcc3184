package auth

// Centralized Redis key naming so the schema lives in one place.
//
//	rt:<userID>:<jti>  refresh session, one per refresh-token jti
//	at:block:<jti>     denylisted access token
const (
	refreshKeyPrefix  = "rt:"
	denylistKeyPrefix = "at:block:"
)

func refreshSessionKey(userID, jti string) string {
	return refreshKeyPrefix + userID + ":" + jti
}

func refreshSessionPattern(userID string) string {
	return refreshKeyPrefix + userID + ":*"
}

func denylistKey(jti string) string {
	return denylistKeyPrefix + jti
}
