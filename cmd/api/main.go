package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/teamchat-service/internal/api/http"
	"github.com/spec-kit/teamchat-service/internal/api/http/handlers"
	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/config"
	"github.com/spec-kit/teamchat-service/internal/events"
	"github.com/spec-kit/teamchat-service/internal/observability"
	"github.com/spec-kit/teamchat-service/internal/persistence"
	"github.com/spec-kit/teamchat-service/internal/ratelimit"
	"github.com/spec-kit/teamchat-service/internal/realtime"
	"github.com/spec-kit/teamchat-service/internal/repository"
	"github.com/spec-kit/teamchat-service/internal/service"
	"github.com/spec-kit/teamchat-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)

	userRepo := repository.NewUserRepository(mongo.Collection("users"))
	workspaceRepo := repository.NewWorkspaceRepository(mongo.Collection("workspaces"))
	channelRepo := repository.NewChannelRepository(mongo.Collection("channels"))
	messageRepo := repository.NewMessageRepository(mongo.Collection("messages"))
	membershipRepo := repository.NewMembershipRepository(mongo.Collection("memberships"))
	inviteRepo := repository.NewInviteRepository(mongo.Collection("invites"))

	tokens := auth.NewTokenManager(
		cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	sessions := auth.NewSessionStore(redis.Client, cfg.Auth.RefreshTTL())
	denylist := auth.NewDenylistGuard(redis.Client)
	limiter := ratelimit.NewLimiter(redis.Client, cfg.RateLimit.Window(), cfg.RateLimit.MaxRequests)

	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Sessions:   sessions,
		Denylist:   denylist,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	workspaceService := service.NewWorkspaceService(service.WorkspaceDependencies{
		WorkspaceRepo:  workspaceRepo,
		MembershipRepo: membershipRepo,
		ChannelRepo:    channelRepo,
		Logger:         logger,
	})
	channelService := service.NewChannelService(service.ChannelDependencies{
		ChannelRepo: channelRepo,
		MessageRepo: messageRepo,
		Logger:      logger,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: messageRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	memberService := service.NewMemberService(service.MemberDependencies{
		MembershipRepo: membershipRepo,
		UserRepo:       userRepo,
		Logger:         logger,
	})
	inviteService := service.NewInviteService(service.InviteDependencies{
		InviteRepo:     inviteRepo,
		MembershipRepo: membershipRepo,
		WorkspaceRepo:  workspaceRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	mailer := service.NewMailer(cfg.Mail.ResendAPIKey, cfg.Mail.From, cfg.App.URL, logger)

	hub := realtime.NewHub(logger)
	bus := realtime.NewBus(redis.Client, hub, logger)
	bus.Start(ctx)
	gate := realtime.NewGate(tokens, hub, bus, channelRepo, membershipRepo, cfg.Realtime.AllowOrigins, logger)

	worker.NewNotificationWorker(mailer, gate, inviteRepo, logger).Start(dispatcher)

	authMiddleware := auth.NewMiddleware(tokens, denylist, membershipRepo, channelRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, limiter, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(mongo, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.RefreshCookieName, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL(), cfg.App.Production()),
		Workspaces:     handlers.NewWorkspacesHandler(workspaceService),
		Channels:       handlers.NewChannelsHandler(channelService),
		Messages:       handlers.NewMessagesHandler(messageService),
		Members:        handlers.NewMembersHandler(memberService),
		Invites:        handlers.NewInvitesHandler(inviteService),
		AuthMiddleware: authMiddleware,
		Gate:           gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	// Stop taking traffic first, then the fan-out, then the stores.
	_ = app.Shutdown()
	bus.Close()
	redis.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	mongo.Close(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
