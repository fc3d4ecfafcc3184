package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/api/dto"
	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/service"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// MessagesHandler exposes message endpoints under a channel. The route
// middleware resolves the channel and the caller's workspace membership
// before any handler runs.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs the handler.
func NewMessagesHandler(messages *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

// Create handles POST /channels/:channelId/messages.
func (h *MessagesHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	channel, ok := auth.ChannelFromContext(c)
	if !ok {
		return apperrors.NewNotFound("channel", nil)
	}

	var req dto.MessageCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	message, err := h.messages.Create(c.UserContext(), service.MessageCreateInput{
		WorkspaceID:     channel.WorkspaceID,
		ChannelID:       channel.ID,
		UserID:          identity.ID,
		ParentMessageID: req.ParentMessageID,
		Body:            req.Body,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": message})
}

// List handles GET /channels/:channelId/messages. Pagination walks
// backwards through history with the before query parameter.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	filter := service.MessageListFilter{Limit: c.QueryInt("limit")}
	if raw := c.Query("before"); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewValidationError("before must be RFC 3339", nil)
		}
		filter.Before = &before
	}

	messages, err := h.messages.List(c.UserContext(), c.Params("channelId"), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": messages})
}

// Edit handles PATCH /channels/:channelId/messages/:messageId.
func (h *MessagesHandler) Edit(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.MessageEditRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	message, err := h.messages.Edit(c.UserContext(), identity.ID, c.Params("messageId"), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": message})
}

// Delete handles DELETE /channels/:channelId/messages/:messageId.
func (h *MessagesHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	membership, ok := auth.MembershipFromContext(c)
	if !ok {
		return apperrors.NewForbidden("workspace membership required")
	}

	if err := h.messages.Delete(c.UserContext(), identity.ID, membership.Role, c.Params("messageId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
