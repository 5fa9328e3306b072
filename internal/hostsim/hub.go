package hostsim

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	ws "github.com/gokatarajesh/venice-quiz-frame/pkg/http/ws"
)

// Hub tracks the frames connected to the simulator.
type Hub struct {
	mu     sync.RWMutex
	frames map[uuid.UUID]*frameConn
	logger zerolog.Logger
}

type frameConn struct {
	conn  *ws.Connection
	ready bool
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		frames: make(map[uuid.UUID]*frameConn),
		logger: logger,
	}
}

// Register adds a frame connection.
func (h *Hub) Register(id uuid.UUID, conn *ws.Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.frames[id] = &frameConn{conn: conn}
	h.logger.Info().Str("frame_id", id.String()).Msg("frame connected")
}

// Unregister closes and forgets a frame connection.
func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if f, exists := h.frames[id]; exists {
		f.conn.Close()
		delete(h.frames, id)
		h.logger.Info().Str("frame_id", id.String()).Msg("frame disconnected")
	}
}

// MarkReady records that a frame signaled readiness. It reports false when the
// frame had already done so.
func (h *Hub) MarkReady(id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, exists := h.frames[id]
	if !exists || f.ready {
		return false
	}
	f.ready = true
	return true
}

// ReadyCount returns how many connected frames signaled readiness.
func (h *Hub) ReadyCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, f := range h.frames {
		if f.ready {
			n++
		}
	}
	return n
}

// Len returns the number of connected frames.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.frames)
}

// Send delivers a message to one frame.
func (h *Hub) Send(id uuid.UUID, msg ws.Message) error {
	h.mu.RLock()
	f, exists := h.frames[id]
	h.mu.RUnlock()

	if !exists {
		return ErrFrameNotFound
	}
	return f.conn.Send(msg)
}

// BroadcastAll sends a message to every connected frame.
func (h *Hub) BroadcastAll(msg ws.Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var firstErr error
	for id, f := range h.frames {
		if err := f.conn.Send(msg); err != nil && firstErr == nil {
			firstErr = err
			h.logger.Warn().Err(err).Str("frame_id", id.String()).Msg("broadcast send failed")
		}
	}
	return firstErr
}

var ErrFrameNotFound = &ws.Error{Code: "frame_not_found", Message: "Frame connection not found"}
