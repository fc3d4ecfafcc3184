package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/api/http/handlers"
	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Workspaces     *handlers.WorkspacesHandler
	Channels       *handlers.ChannelsHandler
	Messages       *handlers.MessagesHandler
	Members        *handlers.MembersHandler
	Invites        *handlers.InvitesHandler
	AuthMiddleware *auth.Middleware
	Gate           *realtime.Gate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/logout-all", cfg.Auth.LogoutAll)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Post("/revoke-access", cfg.Auth.RevokeAccess)
	authProtected.Get("/me", cfg.Auth.Me)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	api.Post("/workspaces", cfg.Workspaces.Create)
	api.Get("/workspaces", cfg.Workspaces.List)

	workspace := api.Group("/workspaces/:workspaceId", cfg.AuthMiddleware.LoadWorkspaceMembership)
	workspace.Get("", cfg.Workspaces.Get)

	workspace.Get("/channels", cfg.Channels.List)
	workspace.Post("/channels", auth.RequireRole(domain.RoleAdmin), cfg.Channels.Create)
	workspace.Patch("/channels/:channelId", auth.RequireRole(domain.RoleAdmin), cfg.Channels.Rename)
	workspace.Delete("/channels/:channelId", auth.RequireRole(domain.RoleAdmin), cfg.Channels.Delete)

	workspace.Get("/members", auth.RequireRole(domain.RoleAdmin), cfg.Members.List)
	workspace.Patch("/members/:userId", auth.RequireRole(domain.RoleAdmin), cfg.Members.UpdateRole)
	workspace.Delete("/members/:userId", cfg.Members.Remove)

	workspace.Post("/invites", auth.RequireRole(domain.RoleAdmin), cfg.Invites.Create)
	workspace.Delete("/invites", auth.RequireRole(domain.RoleAdmin), cfg.Invites.Revoke)

	api.Post("/invites/:token/accept", cfg.Invites.Accept)

	channel := api.Group("/channels/:channelId", cfg.AuthMiddleware.LoadChannelMembership)
	channel.Get("/messages", cfg.Messages.List)
	channel.Post("/messages", cfg.Messages.Create)
	channel.Patch("/messages/:messageId", cfg.Messages.Edit)
	channel.Delete("/messages/:messageId", cfg.Messages.Delete)

	if cfg.Gate != nil {
		app.Use("/ws", cfg.Gate.Upgrade)
		app.Get("/ws", cfg.Gate.Handler())
	}
}
