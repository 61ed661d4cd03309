// File: internal/ws/hub_test.go
package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/domain"
	"github.com/appleaww/messenger/internal/services"
)

func testClient(sessionID string, userID uint) *Client {
	return newClient(sessionID, nil, &auth.Principal{UserID: userID, Username: "u", Role: domain.RoleUser}, nil, &services.NoOpLogger{})
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case data := <-c.egress:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	default:
		t.Fatal("expected a delivery on the egress buffer")
		return Envelope{}
	}
}

func TestHub_SendToUser_FansOutToAllSessions(t *testing.T) {
	h := NewHub(&services.NoOpLogger{})
	first := testClient("s1", 1)
	second := testClient("s2", 1)
	other := testClient("s3", 2)
	h.Register(first)
	h.Register(second)
	h.Register(other)

	h.SendToUser(1, "/queue/chat-messages", map[string]string{"content": "hi"})

	for _, c := range []*Client{first, second} {
		env := receive(t, c)
		assert.Equal(t, "/queue/chat-messages", env.Destination)
	}
	assert.Empty(t, other.egress, "other users receive nothing")
}

func TestHub_SendToUser_NoSessionsIsNoOp(t *testing.T) {
	h := NewHub(&services.NoOpLogger{})
	assert.NotPanics(t, func() {
		h.SendToUser(42, "/queue/chat-messages", "hello")
	})
}

func TestHub_Publish_ReachesEveryone(t *testing.T) {
	h := NewHub(&services.NoOpLogger{})
	first := testClient("s1", 1)
	second := testClient("s2", 2)
	h.Register(first)
	h.Register(second)

	h.Publish("/topic/online-status", map[string]bool{"isOnline": true})

	for _, c := range []*Client{first, second} {
		env := receive(t, c)
		assert.Equal(t, "/topic/online-status", env.Destination)
	}
}

func TestHub_SessionCount(t *testing.T) {
	h := NewHub(&services.NoOpLogger{})
	first := testClient("s1", 1)
	second := testClient("s2", 1)

	h.Register(first)
	h.Register(second)
	assert.Equal(t, 2, h.SessionCount(1))

	h.Unregister(first)
	assert.Equal(t, 1, h.SessionCount(1))

	h.Unregister(second)
	assert.Equal(t, 0, h.SessionCount(1))
}

func TestHub_Unregister_Idempotent(t *testing.T) {
	h := NewHub(&services.NoOpLogger{})
	c := testClient("s1", 1)
	h.Register(c)

	h.Unregister(c)
	assert.NotPanics(t, func() { h.Unregister(c) })
	assert.Equal(t, 0, h.SessionCount(1))
}

func TestHub_UnregisteredClientReceivesNothing(t *testing.T) {
	h := NewHub(&services.NoOpLogger{})
	c := testClient("s1", 1)
	h.Register(c)
	h.Unregister(c)

	h.SendToUser(1, "/queue/chat-messages", "hello")
	assert.Empty(t, c.egress)
}
