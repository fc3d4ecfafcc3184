package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/teamchat-service/internal/domain"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// TokenManager issues and verifies the two credential kinds. Access and
// refresh tokens are signed with independent secrets so compromising one
// kind cannot forge the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessClaims is the access-token payload. ID (jti) enables targeted
// denylisting before natural expiry.
type AccessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into the request principal.
func (c *AccessClaims) Identity() domain.Identity {
	return domain.Identity{ID: c.Subject, Email: c.Email, Name: c.Name}
}

// RefreshClaims is the refresh-token payload. Its jti names the Redis
// session entry that proves the credential is still valid.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// IssueAccess signs an access token for the identity and returns the
// token plus the jti embedded in it. Stateless; denylist bookkeeping is
// the caller's concern.
func (tm *TokenManager) IssueAccess(identity domain.Identity) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := &AccessClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.accessSecret)
	if err != nil {
		return "", "", err
	}
	return token, jti, nil
}

// IssueRefresh signs a refresh token bound to a caller-generated jti, so
// the caller can persist the matching session in the same logical step.
func (tm *TokenManager) IssueRefresh(userID, jti string) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.refreshSecret)
}

// VerifyAccess checks signature and expiry against the access secret.
func (tm *TokenManager) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tm.verify(tokenStr, claims, tm.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry against the refresh secret.
func (tm *TokenManager) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := tm.verify(tokenStr, claims, tm.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (tm *TokenManager) verify(tokenStr string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, apperrors.NewInvalidCredential("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return apperrors.NewInvalidCredential("invalid or expired token")
	}
	return nil
}

// AccessTTL exposes the configured access lifetime.
func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

// RefreshTTL exposes the configured refresh lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }
