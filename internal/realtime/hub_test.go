package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
)

func testClient(hub *Hub, id string) *Client {
	return hub.Register(domain.Identity{ID: id, Email: id + "@example.com"})
}

func drain(c *Client) []Envelope {
	var out []Envelope
	for {
		select {
		case env := <-c.Outbox():
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestRegisterJoinsPersonalRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := testClient(hub, "user-1")

	require.True(t, hub.InRoom(client, RoomUser("user-1")))

	hub.Broadcast(RoomUser("user-1"), Envelope{Event: "ping"})
	got := drain(client)
	require.Len(t, got, 1)
	require.Equal(t, "ping", got[0].Event)
}

func TestBroadcastReachesRoomMembersOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := testClient(hub, "user-a")
	b := testClient(hub, "user-b")
	c := testClient(hub, "user-c")

	hub.Join(a, RoomChannel("ch-1"))
	hub.Join(b, RoomChannel("ch-1"))

	hub.Broadcast(RoomChannel("ch-1"), Envelope{Event: "message:created"})

	require.Len(t, drain(a), 1)
	require.Len(t, drain(b), 1)
	require.Empty(t, drain(c))
}

func TestLeaveStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := testClient(hub, "user-1")

	hub.Join(client, RoomChannel("ch-1"))
	hub.Leave(client, RoomChannel("ch-1"))
	require.False(t, hub.InRoom(client, RoomChannel("ch-1")))

	hub.Broadcast(RoomChannel("ch-1"), Envelope{Event: "message:created"})
	require.Empty(t, drain(client))
}

func TestUnregisterClosesOutbox(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := testClient(hub, "user-1")
	hub.Join(client, RoomChannel("ch-1"))

	hub.Unregister(client)

	_, open := <-client.Outbox()
	require.False(t, open)
	require.False(t, hub.InRoom(client, RoomChannel("ch-1")))

	// Idempotent.
	hub.Unregister(client)

	// Broadcasting after unregister must not panic or deliver.
	hub.Broadcast(RoomChannel("ch-1"), Envelope{Event: "message:created"})
	hub.Broadcast(RoomUser("user-1"), Envelope{Event: "ping"})
}

func TestSendAfterUnregisterIsDropped(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := testClient(hub, "user-1")

	hub.Unregister(client)

	// A delivery racing past Unregister must drop, not panic on the
	// closed outbox.
	require.False(t, client.Send(Envelope{Event: "ping"}))
}

func TestBroadcastUnregisterRace(t *testing.T) {
	hub := NewHub(zap.NewNop())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					hub.Broadcast(RoomChannel("ch-1"), Envelope{Event: "ping"})
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		client := testClient(hub, "user-1")
		hub.Join(client, RoomChannel("ch-1"))
		hub.Unregister(client)
	}

	close(stop)
	wg.Wait()
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := testClient(hub, "user-1")

	// Fill the outbox past capacity; Broadcast must never block.
	for i := 0; i < sendBuffer+10; i++ {
		hub.Broadcast(RoomUser("user-1"), Envelope{Event: "ping"})
	}

	require.Len(t, drain(client), sendBuffer)
}
