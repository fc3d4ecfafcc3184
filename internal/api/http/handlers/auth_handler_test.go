package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/service"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

type stubUserRepo struct{}

func (stubUserRepo) Create(context.Context, *domain.User) error { return nil }

func (stubUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, apperrors.NewNotFound("user", nil)
}

func (stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, nil
}

type authHandlerFixture struct {
	app      *fiber.App
	tokens   *auth.TokenManager
	sessions *auth.SessionStore
}

func newAuthHandlerFixture(t *testing.T) *authHandlerFixture {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	tokens := auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)
	sessions := auth.NewSessionStore(client, 30*24*time.Hour)

	svc := service.NewAuthService(service.AuthDependencies{
		UserRepo:   stubUserRepo{},
		Tokens:     tokens,
		Sessions:   sessions,
		Denylist:   auth.NewDenylistGuard(client),
		BcryptCost: 4,
		Logger:     zap.NewNop(),
	})
	handler := NewAuthHandler(svc, "rt", 15*time.Minute, 30*24*time.Hour, false)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	app.Post("/auth/logout", handler.Logout)
	app.Post("/auth/logout-all", handler.LogoutAll)

	return &authHandlerFixture{app: app, tokens: tokens, sessions: sessions}
}

func logoutRequest(path, cookie string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "rt", Value: cookie})
	}
	return req
}

func clearedCookie(t *testing.T, resp *http.Response) {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "rt" {
			require.Empty(t, c.Value)
			require.True(t, c.Expires.Before(time.Now()), "cookie must be expired")
			return
		}
	}
	t.Fatal("refresh cookie not cleared")
}

func TestLogoutWithGarbageCookieReturns204(t *testing.T) {
	fix := newAuthHandlerFixture(t)

	resp, err := fix.app.Test(logoutRequest("/auth/logout", "not-a-jwt"))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	clearedCookie(t, resp)
}

func TestLogoutWithoutCookieReturns204(t *testing.T) {
	fix := newAuthHandlerFixture(t)

	resp, err := fix.app.Test(logoutRequest("/auth/logout", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	clearedCookie(t, resp)
}

func TestLogoutDeletesPresentedSession(t *testing.T) {
	fix := newAuthHandlerFixture(t)
	ctx := context.Background()

	token, err := fix.tokens.IssueRefresh("user-1", "jti-1")
	require.NoError(t, err)
	require.NoError(t, fix.sessions.Store(ctx, "user-1", "jti-1", auth.SessionMetadata{}))

	resp, err := fix.app.Test(logoutRequest("/auth/logout", token))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	ok, err := fix.sessions.Has(ctx, "user-1", "jti-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLogoutAllUsesRefreshCredential(t *testing.T) {
	fix := newAuthHandlerFixture(t)
	ctx := context.Background()

	// No access token anywhere on the request; the refresh cookie alone
	// must be enough.
	token, err := fix.tokens.IssueRefresh("user-1", "jti-1")
	require.NoError(t, err)
	require.NoError(t, fix.sessions.Store(ctx, "user-1", "jti-1", auth.SessionMetadata{}))
	require.NoError(t, fix.sessions.Store(ctx, "user-1", "jti-2", auth.SessionMetadata{}))

	resp, err := fix.app.Test(logoutRequest("/auth/logout-all", token))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	clearedCookie(t, resp)

	for _, jti := range []string{"jti-1", "jti-2"} {
		ok, err := fix.sessions.Has(ctx, "user-1", jti)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestLogoutAllRejectsGarbageCookie(t *testing.T) {
	fix := newAuthHandlerFixture(t)

	resp, err := fix.app.Test(logoutRequest("/auth/logout-all", "not-a-jwt"))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = fix.app.Test(logoutRequest("/auth/logout-all", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
