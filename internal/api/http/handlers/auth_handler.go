package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/api/dto"
	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/service"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// AuthHandler exposes the authentication surface. The refresh token is
// delivered both as an HttpOnly cookie and in the response body; the
// refresh endpoint accepts either.
type AuthHandler struct {
	auth       *service.AuthService
	cookieName string
	refreshTTL time.Duration
	accessTTL  time.Duration
	secure     bool
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, cookieName string, accessTTL, refreshTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		auth:       authService,
		cookieName: cookieName,
		refreshTTL: refreshTTL,
		accessTTL:  accessTTL,
		secure:     secure,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, pair, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, sessionMeta(c))
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.authBody(user, pair)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, pair, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Meta:     sessionMeta(c),
	})
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(fiber.Map{"data": h.authBody(user, pair)})
}

// Refresh handles POST /auth/refresh. Each presented refresh token
// works exactly once; the response carries its replacement.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := h.refreshToken(c)
	if token == "" {
		return apperrors.NewInvalidCredential("refresh token required")
	}

	user, pair, err := h.auth.Refresh(c.UserContext(), token, sessionMeta(c))
	if err != nil {
		h.clearRefreshCookie(c)
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(fiber.Map{"data": h.authBody(user, pair)})
}

// Logout handles POST /auth/logout: ends the presented session only.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := h.refreshToken(c)
	h.clearRefreshCookie(c)
	if token == "" {
		return c.SendStatus(http.StatusNoContent)
	}
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// LogoutAll handles POST /auth/logout-all: ends every session for the
// refresh credential's subject. Identity comes from the refresh token,
// so it works even when the access token has already expired.
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	token := h.refreshToken(c)
	if token == "" {
		return apperrors.NewInvalidCredential("refresh token required")
	}
	if err := h.auth.LogoutAllFromToken(c.UserContext(), token); err != nil {
		return err
	}
	h.clearRefreshCookie(c)
	return c.SendStatus(http.StatusNoContent)
}

// RevokeAccess handles POST /auth/revoke: denylists the presented
// access token so it stops working before its natural expiry.
func (h *AuthHandler) RevokeAccess(c *fiber.Ctx) error {
	token := auth.BearerToken(c.Get("Authorization"))
	if token == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.RevokeAccess(c.UserContext(), token); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.auth.Me(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

func (h *AuthHandler) authBody(user *domain.User, pair service.TokenPair) fiber.Map {
	return fiber.Map{
		"user": userResponse(user),
		"auth": dto.AuthResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			ExpiresIn:    int(h.accessTTL.Seconds()),
		},
	}
}

func (h *AuthHandler) refreshToken(c *fiber.Ctx) string {
	if token := c.Cookies(h.cookieName); token != "" {
		return token
	}
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/auth",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func sessionMeta(c *fiber.Ctx) auth.SessionMetadata {
	return auth.SessionMetadata{
		UserAgent: c.Get("User-Agent"),
		IP:        c.IP(),
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}
