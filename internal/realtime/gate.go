package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/repository"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// Wire event names pushed to subscribed sockets.
const (
	MessageCreated = "message:created"
	MessageEdited  = "message:edited"
	MessageDeleted = "message:deleted"
)

const (
	wsIdentityKey = "ws_identity"

	// Client-to-server events.
	eventSubscribeChannel   = "subscribe:channel"
	eventUnsubscribeChannel = "unsubscribe:channel"

	// Server-to-client events.
	eventSubscribedChannel   = "subscribed:channel"
	eventUnsubscribedChannel = "unsubscribed:channel"
	eventError               = "error"

	lookupTimeout = 5 * time.Second
	writeWait     = 10 * time.Second
)

// Gate owns the realtime surface: it authenticates connections at
// handshake time with the same token manager as the REST paths, and
// authorizes each channel subscription against workspace membership.
type Gate struct {
	tokens       *auth.TokenManager
	hub          *Hub
	bus          *Bus
	channels     repository.ChannelRepository
	memberships  repository.MembershipRepository
	allowOrigins map[string]struct{}
	logger       *zap.Logger
}

// NewGate constructs the gate.
func NewGate(tokens *auth.TokenManager, hub *Hub, bus *Bus, channels repository.ChannelRepository, memberships repository.MembershipRepository, allowOrigins []string, logger *zap.Logger) *Gate {
	origins := make(map[string]struct{}, len(allowOrigins))
	for _, origin := range allowOrigins {
		origins[origin] = struct{}{}
	}
	return &Gate{
		tokens:       tokens,
		hub:          hub,
		bus:          bus,
		channels:     channels,
		memberships:  memberships,
		allowOrigins: origins,
		logger:       logger,
	}
}

// Upgrade verifies the handshake before any room join happens. The
// access token comes from the auth query parameter or a bearer header.
func (g *Gate) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return apperrors.NewDomainError("UPGRADE_REQUIRED", "websocket upgrade required", http.StatusUpgradeRequired, nil)
	}
	if len(g.allowOrigins) > 0 {
		if _, ok := g.allowOrigins[c.Get("Origin")]; !ok {
			return apperrors.NewForbidden("origin not allowed")
		}
	}

	token := c.Query("token")
	if token == "" {
		token = auth.BearerToken(c.Get("Authorization"))
	}
	if token == "" {
		return apperrors.NewUnauthorized("access token required")
	}

	claims, err := g.tokens.VerifyAccess(token)
	if err != nil {
		return err
	}

	c.Locals(wsIdentityKey, claims.Identity())
	return c.Next()
}

// Handler returns the websocket handler for an upgraded connection.
func (g *Gate) Handler() fiber.Handler {
	return websocket.New(g.serve)
}

type subscribePayload struct {
	ChannelID string `json:"channelId"`
}

func (g *Gate) serve(conn *websocket.Conn) {
	identity, ok := conn.Locals(wsIdentityKey).(domain.Identity)
	if !ok {
		_ = conn.Close()
		return
	}

	client := g.hub.Register(identity)

	// Write pump: the outbox serializes all writes to the connection.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for env := range client.Outbox() {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		}
	}()

	for {
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}

		switch frame.Event {
		case eventSubscribeChannel:
			g.handleSubscribe(client, frame.Data)
		case eventUnsubscribeChannel:
			g.handleUnsubscribe(client, frame.Data)
		default:
			client.Send(Envelope{Event: eventError, Data: fiber.Map{"message": "unknown event"}})
		}
	}

	g.hub.Unregister(client)
	<-writeDone
	_ = conn.Close()
}

// handleSubscribe admits the connection to a channel room only when a
// membership record exists for the channel's workspace.
func (g *Gate) handleSubscribe(client *Client, raw json.RawMessage) {
	var payload subscribePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ChannelID == "" {
		client.Send(Envelope{Event: eventError, Data: fiber.Map{"message": "channelId required"}})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	channel, err := g.channels.GetByID(ctx, payload.ChannelID)
	if err != nil {
		client.Send(Envelope{Event: eventError, Data: fiber.Map{"message": "channel not found"}})
		return
	}

	membership, err := g.memberships.Get(ctx, channel.WorkspaceID, client.Identity.ID)
	if err != nil {
		client.Send(Envelope{Event: eventError, Data: fiber.Map{"message": "membership lookup failed"}})
		return
	}
	if membership == nil {
		client.Send(Envelope{Event: eventError, Data: fiber.Map{"message": "not a member of this workspace"}})
		return
	}

	g.hub.Join(client, RoomChannel(payload.ChannelID))
	client.Send(Envelope{Event: eventSubscribedChannel, Data: fiber.Map{"channelId": payload.ChannelID}})
}

// handleUnsubscribe leaves the room unconditionally.
func (g *Gate) handleUnsubscribe(client *Client, raw json.RawMessage) {
	var payload subscribePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ChannelID == "" {
		return
	}
	g.hub.Leave(client, RoomChannel(payload.ChannelID))
	client.Send(Envelope{Event: eventUnsubscribedChannel, Data: fiber.Map{"channelId": payload.ChannelID}})
}

// PublishMessage fans a message lifecycle event out to the channel
// room across all processes. Fire-and-forget by contract.
func (g *Gate) PublishMessage(ctx context.Context, event string, message domain.Message) {
	payload := fiber.Map{"message": message}
	if err := g.bus.Publish(ctx, RoomChannel(message.ChannelID), event, payload); err != nil {
		g.logger.Warn("realtime publish failed",
			zap.String("event", event),
			zap.String("channel_id", message.ChannelID),
			zap.Error(err))
	}
}
