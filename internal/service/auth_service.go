package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/repository"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// TokenPair carries the two credentials issued together at login and
// on every refresh rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService coordinates registration, login, and the refresh
// rotation protocol.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	sessions   *auth.SessionStore
	denylist   *auth.DenylistGuard
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for AuthService.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Sessions   *auth.SessionStore
	Denylist   *auth.DenylistGuard
	BcryptCost int
	Logger     *zap.Logger
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput describes a login payload.
type LoginInput struct {
	Email    string
	Password string
	Meta     auth.SessionMetadata
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		sessions:   deps.Sessions,
		denylist:   deps.Denylist,
		bcryptCost: deps.BcryptCost,
		logger:     deps.Logger,
	}
}

// Register creates the account and signs the user in immediately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, meta auth.SessionMetadata) (*domain.User, TokenPair, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || len(input.Password) < 8 {
		return nil, TokenPair{}, apperrors.NewValidationError("name, email and a password of at least 8 characters are required", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, identityOf(user), meta)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, pair, nil
}

// Login verifies credentials and issues a fresh credential pair. The
// response is identical for unknown email and wrong password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if user == nil {
		return nil, TokenPair{}, apperrors.NewInvalidCredential("invalid email or password")
	}
	if err := auth.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, TokenPair{}, apperrors.NewInvalidCredential("invalid email or password")
	}

	pair, err := s.issuePair(ctx, identityOf(user), input.Meta)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, pair, nil
}

// Refresh rotates the refresh credential: the presented token's session
// is consumed before the replacement pair exists, so each refresh token
// works exactly once. A replay of the consumed token lands in the
// session check and fails with SESSION_NOT_FOUND.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta auth.SessionMetadata) (*domain.User, TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, TokenPair{}, err
	}

	ok, err := s.sessions.Has(ctx, claims.Subject, claims.ID)
	if err != nil {
		return nil, TokenPair{}, apperrors.NewDependencyUnavailable("session store", err)
	}
	if !ok {
		return nil, TokenPair{}, apperrors.NewSessionNotFound()
	}

	if err := s.sessions.Delete(ctx, claims.Subject, claims.ID); err != nil {
		return nil, TokenPair{}, apperrors.NewDependencyUnavailable("session store", err)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, identityOf(user), meta)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Logout deletes the presented token's session. Best effort: the
// client ends up signed out whatever we find, so an unverifiable token
// or a store hiccup is logged and swallowed rather than surfaced.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.logger.Debug("logout with unverifiable refresh token", zap.Error(err))
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.Subject, claims.ID); err != nil {
		s.logger.Warn("session delete failed on logout", zap.Error(err))
	}
	return nil
}

// LogoutAllFromToken verifies the refresh credential and ends every
// session its subject holds. Unlike single logout this is not best
// effort: wiping all devices takes a provable identity.
func (s *AuthService) LogoutAllFromToken(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.LogoutAll(ctx, claims.Subject)
}

// LogoutAll removes every session the user holds, signing out all
// devices at once. Outstanding access tokens ride out their short TTL.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteAll(ctx, userID); err != nil {
		return apperrors.NewDependencyUnavailable("session store", err)
	}
	s.logger.Info("all sessions revoked", zap.String("user_id", userID))
	return nil
}

// RevokeAccess denylists a still-valid access token so it dies before
// its natural expiry.
func (s *AuthService) RevokeAccess(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return err
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.NewDependencyUnavailable("denylist store", err)
	}
	return nil
}

// Me loads the profile behind the identity.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// issuePair mints both credentials and writes the refresh session in
// the same step, so a signed refresh token always has a live session.
func (s *AuthService) issuePair(ctx context.Context, identity domain.Identity, meta auth.SessionMetadata) (TokenPair, error) {
	access, _, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return TokenPair{}, err
	}

	refreshJTI := uuid.NewString()
	refresh, err := s.tokens.IssueRefresh(identity.ID, refreshJTI)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.sessions.Store(ctx, identity.ID, refreshJTI, meta); err != nil {
		return TokenPair{}, apperrors.NewDependencyUnavailable("session store", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func identityOf(user *domain.User) domain.Identity {
	return domain.Identity{ID: user.ID, Email: user.Email, Name: user.Name}
}
