package auth

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

	"github.com/spec-kit/teamchat-service/internal/domain"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

type middlewareFixture struct {
	app    *fiber.App
	tokens *TokenManager
	guard  *DenylistGuard
	redis  *miniredis.Miniredis
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)
	guard := NewDenylistGuard(client)
	mw := NewMiddleware(tokens, guard, nil, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		return c.JSON(fiber.Map{"user_id": identity.ID})
	})

	return &middlewareFixture{app: app, tokens: tokens, guard: guard, redis: m}
}

func protectedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	fix := newMiddlewareFixture(t)

	resp, err := fix.app.Test(protectedRequest(""))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareAdmitsValidToken(t *testing.T) {
	fix := newMiddlewareFixture(t)

	token, _, err := fix.tokens.IssueAccess(domain.Identity{ID: "user-1", Email: "ada@example.com"})
	require.NoError(t, err)

	resp, err := fix.app.Test(protectedRequest(token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMiddlewareRejectsRevokedToken(t *testing.T) {
	fix := newMiddlewareFixture(t)

	token, jti, err := fix.tokens.IssueAccess(domain.Identity{ID: "user-1"})
	require.NoError(t, err)
	require.NoError(t, fix.guard.Revoke(context.Background(), jti, time.Now().Add(15*time.Minute)))

	resp, err := fix.app.Test(protectedRequest(token))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareFailsClosedWhenStoreDown(t *testing.T) {
	fix := newMiddlewareFixture(t)

	token, _, err := fix.tokens.IssueAccess(domain.Identity{ID: "user-1"})
	require.NoError(t, err)

	fix.redis.Close()

	resp, err := fix.app.Test(protectedRequest(token))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", BearerToken("Bearer abc"))
	require.Equal(t, "abc", BearerToken("bearer abc"))
	require.Equal(t, "", BearerToken("Basic abc"))
	require.Equal(t, "", BearerToken("Bearer"))
	require.Equal(t, "", BearerToken(""))
}
