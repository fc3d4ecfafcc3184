package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/api/dto"
	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/service"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// MembersHandler exposes workspace membership endpoints.
type MembersHandler struct {
	members *service.MemberService
}

// NewMembersHandler constructs the handler.
func NewMembersHandler(members *service.MemberService) *MembersHandler {
	return &MembersHandler{members: members}
}

// List handles GET /workspaces/:workspaceId/members.
func (h *MembersHandler) List(c *fiber.Ctx) error {
	views, total, err := h.members.List(c.UserContext(), c.Params("workspaceId"), c.QueryInt("page", 1), c.QueryInt("limit", 50))
	if err != nil {
		return err
	}

	out := make([]dto.MemberResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewMemberResponse(v))
	}
	return c.JSON(fiber.Map{"data": out, "meta": fiber.Map{"total": total}})
}

// UpdateRole handles PATCH /workspaces/:workspaceId/members/:userId.
func (h *MembersHandler) UpdateRole(c *fiber.Ctx) error {
	membership, ok := auth.MembershipFromContext(c)
	if !ok {
		return apperrors.NewForbidden("workspace membership required")
	}

	var req dto.MemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.members.UpdateRole(c.UserContext(), *membership, c.Params("userId"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user_id": updated.UserID,
		"role":    updated.Role,
	}})
}

// Remove handles DELETE /workspaces/:workspaceId/members/:userId.
func (h *MembersHandler) Remove(c *fiber.Ctx) error {
	membership, ok := auth.MembershipFromContext(c)
	if !ok {
		return apperrors.NewForbidden("workspace membership required")
	}

	if err := h.members.Remove(c.UserContext(), *membership, c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
