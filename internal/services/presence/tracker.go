// File: internal/services/presence/tracker.go
package presence

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/appleaww/messenger/internal/dtos"
	"github.com/appleaww/messenger/internal/events"
	"github.com/appleaww/messenger/internal/repository/user"
	"github.com/appleaww/messenger/internal/services"
)

// TopicOnlineStatus is the broadcast destination for presence transitions.
const TopicOnlineStatus = "/topic/online-status"

// Broadcaster publishes a payload to every connected client.
type Broadcaster interface {
	Publish(topic string, payload interface{})
}

// Tracker is the single source of truth for "is user X online". Online state
// is derived from a per-user live-session counter, never from a boolean: a
// user with several devices stays online until the last session closes, so
// multi-device usage cannot flap the broadcast state.
//
// The counter map is rebuilt from zero on restart; session durations are
// volatile by the same token.
type Tracker struct {
	mu           sync.Mutex
	sessions     map[uint]int
	sessionStart map[uint]time.Time

	users       user.UserRepository
	broadcaster Broadcaster
	bus         events.Publisher
	logger      services.Logger
	now         func() time.Time
}

func NewTracker(users user.UserRepository, broadcaster Broadcaster, bus events.Publisher, logger services.Logger) *Tracker {
	return &Tracker{
		sessions:     make(map[uint]int),
		sessionStart: make(map[uint]time.Time),
		users:        users,
		broadcaster:  broadcaster,
		bus:          bus,
		logger:       logger,
		now:          time.Now,
	}
}

// Connected registers one live session for the user. On the offline-to-online
// transition it persists the stored presence flags, broadcasts the change and
// emits a business event. A repository failure is surfaced to the caller; the
// session count itself always advances.
func (t *Tracker) Connected(ctx context.Context, userID uint) error {
	now := t.now()

	t.mu.Lock()
	prev := t.sessions[userID]
	t.sessions[userID] = prev + 1
	if prev == 0 {
		t.sessionStart[userID] = now
	}
	t.mu.Unlock()

	if prev > 0 {
		t.logger.Debug("additional session opened", "user_id", userID, "sessions", prev+1)
		return nil
	}

	// The counter mutation above is the core state change; a failed
	// persistence write is surfaced but does not undo it or suppress the
	// broadcast.
	var persistErr error
	if err := t.users.UpdatePresence(ctx, userID, true, now); err != nil {
		persistErr = fmt.Errorf("persisting online transition for user %d: %w", userID, err)
		t.logger.Error("failed to persist online transition", "user_id", userID, "error", err)
	}

	t.broadcaster.Publish(TopicOnlineStatus, dtos.OnlineStatus{UserID: userID, IsOnline: true, LastSeen: &now})
	t.bus.Publish(events.TopicBusinessMetrics, strconv.FormatUint(uint64(userID), 10), events.BusinessEvent{
		Type:      events.EventUserActive,
		UserID:    strconv.FormatUint(uint64(userID), 10),
		Timestamp: now,
	})
	t.logger.Info("user became online", "user_id", userID)
	return persistErr
}

// Disconnected releases one live session for the user. Decrements floor at
// zero, so duplicate disconnect notifications are harmless no-ops. The
// online-to-offline decision is taken under the lock: two racing "last
// session closing" calls can never both observe the transition, so the
// offline broadcast fires exactly once.
func (t *Tracker) Disconnected(ctx context.Context, userID uint) error {
	now := t.now()

	t.mu.Lock()
	prev := t.sessions[userID]
	if prev == 0 {
		t.mu.Unlock()
		t.logger.Warn("disconnect for user with no live sessions", "user_id", userID)
		return nil
	}
	t.sessions[userID] = prev - 1
	var sessionStart time.Time
	var started bool
	if prev == 1 {
		delete(t.sessions, userID)
		sessionStart, started = t.sessionStart[userID]
		delete(t.sessionStart, userID)
	}
	t.mu.Unlock()

	if prev > 1 {
		t.logger.Debug("session closed, user still online", "user_id", userID, "sessions", prev-1)
		return nil
	}

	var persistErr error
	if err := t.users.UpdatePresence(ctx, userID, false, now); err != nil {
		persistErr = fmt.Errorf("persisting offline transition for user %d: %w", userID, err)
		t.logger.Error("failed to persist offline transition", "user_id", userID, "error", err)
	}

	t.broadcaster.Publish(TopicOnlineStatus, dtos.OnlineStatus{UserID: userID, IsOnline: false, LastSeen: &now})
	if started {
		durationMS := now.Sub(sessionStart).Milliseconds()
		t.bus.Publish(events.TopicBusinessMetrics, strconv.FormatUint(uint64(userID), 10), events.BusinessEvent{
			Type:              events.EventSessionEnd,
			UserID:            strconv.FormatUint(uint64(userID), 10),
			SessionDurationMS: &durationMS,
			Timestamp:         now,
		})
	}
	t.logger.Info("user became offline", "user_id", userID)
	return persistErr
}

// IsOnline reports whether the user has at least one live session.
func (t *Tracker) IsOnline(userID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions[userID] > 0
}

// Snapshot returns a copy of the current online set. Callers may iterate it
// freely; later connects and disconnects do not affect the copy.
func (t *Tracker) Snapshot() []uint {
	t.mu.Lock()
	defer t.mu.Unlock()
	online := make([]uint, 0, len(t.sessions))
	for userID, count := range t.sessions {
		if count > 0 {
			online = append(online, userID)
		}
	}
	return online
}

// Status resolves the presence view for one user. For offline users the
// last-seen timestamp comes from the stored user record.
func (t *Tracker) Status(ctx context.Context, userID uint) (dtos.OnlineStatus, error) {
	if t.IsOnline(userID) {
		now := t.now()
		return dtos.OnlineStatus{UserID: userID, IsOnline: true, LastSeen: &now}, nil
	}

	u, err := t.users.FindByID(ctx, userID)
	if err != nil {
		return dtos.OnlineStatus{}, err
	}
	return dtos.OnlineStatus{UserID: userID, IsOnline: false, LastSeen: u.LastSeen}, nil
}
