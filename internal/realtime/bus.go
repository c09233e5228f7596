// Package realtime implements the live half of the sync engine: the room
// registry tracking connected sessions per board, and the broadcast bus
// that fans mutation events out to room members. A Redis pub/sub bridge
// relays events between process instances so rooms span replicas.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisstore "github.com/inkboard/inkboard/internal/store/redis"
)

// envelope wraps an event on the Redis wire. Instance lets a bus drop its
// own relayed messages (local members were already served directly);
// Origin carries the acting session ID so echo suppression holds across
// instances.
type envelope struct {
	Instance string          `json:"instance"`
	Origin   string          `json:"origin,omitempty"`
	Event    json.RawMessage `json:"event"`
}

// relay is the pub/sub surface the bus needs for its cross-instance
// bridge. *redisstore.PubSub satisfies it.
type relay interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Bus fans mutation events out to a board's room. Delivery is best-effort
// and fire-and-forget per session: a failed or slow session never blocks
// the others and never affects the committed mutation.
type Bus struct {
	registry   *Registry
	pubsub     relay // nil disables the cross-instance bridge
	instanceID string

	mu      sync.Mutex
	bridges map[uuid.UUID]context.CancelFunc
}

func NewBus(registry *Registry, pubsub *redisstore.PubSub) *Bus {
	b := &Bus{
		registry:   registry,
		instanceID: uuid.NewString(),
		bridges:    make(map[uuid.UUID]context.CancelFunc),
	}
	if pubsub != nil {
		b.pubsub = pubsub
	}
	return b
}

// Join registers the session in the board's room. The first member of a
// room starts the Redis bridge for that board.
func (b *Bus) Join(boardID uuid.UUID, s *Session) {
	count := b.registry.Join(boardID, s)
	if b.pubsub == nil || count != 1 {
		return
	}
	b.ensureBridge(boardID)
}

// ensureBridge starts the board's bridge unless one is already running.
// The room is re-checked under the lock: a Leave racing the caller may
// have emptied it after Join counted, and a bridge for an empty room
// would never be stopped.
func (b *Bus) ensureBridge(boardID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bridges[boardID]; ok {
		return
	}
	if len(b.registry.Members(boardID)) == 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.bridges[boardID] = cancel
	go b.bridge(ctx, boardID)
}

// Leave removes the session from the room; idempotent. The last member
// leaving stops the board's Redis bridge.
func (b *Bus) Leave(boardID uuid.UUID, s *Session) {
	count := b.registry.Leave(boardID, s)
	if b.pubsub == nil || count != 0 {
		return
	}
	b.retireBridge(boardID)
}

// retireBridge stops the board's bridge once its room is empty. The room
// is re-checked under the lock so a Join racing the caller keeps its
// bridge.
func (b *Bus) retireBridge(boardID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.registry.Members(boardID)) > 0 {
		return
	}
	if cancel, ok := b.bridges[boardID]; ok {
		cancel()
		delete(b.bridges, boardID)
	}
}

// bridgeRunning reports whether the board has an active bridge.
func (b *Bus) bridgeRunning(boardID uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.bridges[boardID]
	return ok
}

// Members exposes the room snapshot, mainly for tests and diagnostics.
func (b *Bus) Members(boardID uuid.UUID) []*Session {
	return b.registry.Members(boardID)
}

// Publish sends the event to every session in the board's room except the
// origin session (echo suppression), then relays it to other instances.
// The mutation has already been committed by the time Publish runs, so
// every failure here is logged and swallowed.
func (b *Bus) Publish(ctx context.Context, boardID uuid.UUID, ev Event, excludeSession string) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("board_id", boardID.String()).Msg("bus: marshal event")
		return
	}

	b.deliverLocal(boardID, payload, excludeSession)

	if b.pubsub == nil {
		return
	}

	env, err := json.Marshal(envelope{
		Instance: b.instanceID,
		Origin:   excludeSession,
		Event:    payload,
	})
	if err != nil {
		log.Error().Err(err).Str("board_id", boardID.String()).Msg("bus: marshal envelope")
		return
	}

	if err := b.pubsub.Publish(ctx, redisstore.BoardChannel(boardID), env); err != nil {
		log.Warn().Err(err).Str("board_id", boardID.String()).Msg("bus: relay publish")
	}
}

func (b *Bus) deliverLocal(boardID uuid.UUID, payload []byte, excludeSession string) {
	for _, member := range b.registry.Members(boardID) {
		if member.ID == excludeSession {
			continue
		}
		if !member.Send(payload) {
			log.Debug().
				Str("board_id", boardID.String()).
				Str("session_id", member.ID).
				Msg("bus: dropped event for slow or closed session")
		}
	}
}

// bridge forwards events published by other instances into the local room.
func (b *Bus) bridge(ctx context.Context, boardID uuid.UUID) {
	messages, cleanup, err := b.pubsub.Subscribe(ctx, redisstore.BoardChannel(boardID))
	if err != nil {
		log.Error().Err(err).Str("board_id", boardID.String()).Msg("bus: bridge subscribe")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				log.Warn().Err(err).Str("board_id", boardID.String()).Msg("bus: bridge decode")
				continue
			}
			if env.Instance == b.instanceID {
				continue
			}
			b.deliverLocal(boardID, env.Event, env.Origin)
		}
	}
}
