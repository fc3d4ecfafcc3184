package domain

// Identity is the authenticated principal attached to a request or
// socket connection after access-token verification. It is never
// persisted; the token is its only source.
type Identity struct {
	ID    string
	Email string
	Name  string
}
