package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/api/dto"
	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/service"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// ChannelsHandler exposes channel endpoints under a workspace.
type ChannelsHandler struct {
	channels *service.ChannelService
}

// NewChannelsHandler constructs the handler.
func NewChannelsHandler(channels *service.ChannelService) *ChannelsHandler {
	return &ChannelsHandler{channels: channels}
}

// Create handles POST /workspaces/:workspaceId/channels.
func (h *ChannelsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChannelCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	channel, err := h.channels.Create(c.UserContext(), c.Params("workspaceId"), identity.ID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewChannelResponse(*channel)})
}

// List handles GET /workspaces/:workspaceId/channels.
func (h *ChannelsHandler) List(c *fiber.Ctx) error {
	channels, err := h.channels.List(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return err
	}

	out := make([]dto.ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		out = append(out, dto.NewChannelResponse(ch))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Rename handles PATCH /workspaces/:workspaceId/channels/:channelId.
func (h *ChannelsHandler) Rename(c *fiber.Ctx) error {
	var req dto.ChannelRenameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	channel, err := h.channels.Rename(c.UserContext(), c.Params("workspaceId"), c.Params("channelId"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewChannelResponse(*channel)})
}

// Delete handles DELETE /workspaces/:workspaceId/channels/:channelId.
func (h *ChannelsHandler) Delete(c *fiber.Ctx) error {
	if err := h.channels.Delete(c.UserContext(), c.Params("workspaceId"), c.Params("channelId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
