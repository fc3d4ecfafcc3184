package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/api/dto"
	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/service"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// WorkspacesHandler exposes workspace endpoints.
type WorkspacesHandler struct {
	workspaces *service.WorkspaceService
}

// NewWorkspacesHandler constructs the handler.
func NewWorkspacesHandler(workspaces *service.WorkspaceService) *WorkspacesHandler {
	return &WorkspacesHandler{workspaces: workspaces}
}

// Create handles POST /workspaces.
func (h *WorkspacesHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.WorkspaceCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	workspace, err := h.workspaces.Create(c.UserContext(), identity.ID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewWorkspaceResponse(*workspace)})
}

// List handles GET /workspaces.
func (h *WorkspacesHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	workspaces, err := h.workspaces.ListForUser(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}

	out := make([]dto.WorkspaceResponse, 0, len(workspaces))
	for _, w := range workspaces {
		out = append(out, dto.NewWorkspaceResponse(w))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /workspaces/:workspaceId. Membership is checked by
// the route middleware.
func (h *WorkspacesHandler) Get(c *fiber.Ctx) error {
	workspace, err := h.workspaces.Get(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWorkspaceResponse(*workspace)})
}
