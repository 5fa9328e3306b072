package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/venice-quiz-frame/internal/frame"
	ws "github.com/gokatarajesh/venice-quiz-frame/pkg/http/ws"
)

// Host talks to a frame host runtime over the WebSocket bridge protocol.
type Host struct {
	conn   *ws.Connection
	logger zerolog.Logger

	mu        sync.Mutex
	pending   map[string]chan ws.Message
	nextID    uint64
	listeners map[frame.EventType]map[uint64]func(frame.Event)
	watchers  map[uint64]func(frame.ProviderDetail)
	providers []frame.ProviderDetail
}

var _ frame.Host = (*Host)(nil)

// Dial connects to the host bridge at url.
func Dial(ctx context.Context, url string, logger zerolog.Logger) (*Host, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial host bridge: %w", err)
	}
	return New(conn, logger), nil
}

// New starts the read and write pumps on an established connection.
func New(conn *websocket.Conn, logger zerolog.Logger) *Host {
	logger = logger.With().Str("component", "host_bridge").Logger()
	h := &Host{
		conn:      ws.NewConnection(conn, logger),
		logger:    logger,
		pending:   make(map[string]chan ws.Message),
		listeners: make(map[frame.EventType]map[uint64]func(frame.Event)),
		watchers:  make(map[uint64]func(frame.ProviderDetail)),
	}
	go h.conn.WritePump()
	go h.conn.ReadPump(h.handle)
	return h
}

// Close drops the bridge connection. Pending calls fail with frame.ErrHostUnavailable.
func (h *Host) Close() {
	h.conn.Close()
}

// Context fetches the host context.
func (h *Host) Context(ctx context.Context) (*frame.Context, error) {
	resp, err := h.call(ctx, ws.TypeGetContext, nil)
	if err != nil {
		return nil, err
	}
	if resp.Type == ws.TypeError {
		return nil, fmt.Errorf("get context: %w", decodeError(resp.Payload))
	}
	if len(resp.Payload) == 0 || string(resp.Payload) == "null" {
		return nil, nil
	}

	var payload ws.ContextPayload
	if err := json.Unmarshal(resp.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return toContext(payload), nil
}

// AddFrame asks the host to add the frame. Host refusals come back as
// *frame.AddFrameError.
func (h *Host) AddFrame(ctx context.Context) error {
	resp, err := h.call(ctx, ws.TypeAddFrame, nil)
	if err != nil {
		return err
	}
	if resp.Type != ws.TypeError {
		return nil
	}

	var payload ws.ErrorPayload
	if err := json.Unmarshal(resp.Payload, &payload); err != nil {
		return fmt.Errorf("decode add_frame error: %w", err)
	}
	switch payload.Code {
	case ws.CodeRejectedByUser:
		return &frame.AddFrameError{Kind: frame.ErrRejectedByUser, Message: payload.Message}
	case ws.CodeInvalidDomainManifest:
		return &frame.AddFrameError{Kind: frame.ErrInvalidDomainManifest, Message: payload.Message}
	default:
		return &frame.AddFrameError{Message: fmt.Sprintf("%s: %s", payload.Code, payload.Message)}
	}
}

// Ready signals readiness without waiting for an answer.
func (h *Host) Ready(_ context.Context, opts frame.ReadyOptions) error {
	msg, err := ws.NewMessage(ws.TypeReady, "", ws.ReadyPayload{DisableNativeGestures: opts.DisableNativeGestures})
	if err != nil {
		return err
	}
	if err := h.conn.Send(msg); err != nil {
		return fmt.Errorf("send ready: %w", err)
	}
	return nil
}

// Subscribe registers fn for one event type. The returned function removes it.
func (h *Host) Subscribe(event frame.EventType, fn func(frame.Event)) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	if h.listeners[event] == nil {
		h.listeners[event] = make(map[uint64]func(frame.Event))
	}
	h.listeners[event][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners[event], id)
	}, nil
}

// WatchProviders registers fn for provider announcements. Providers announced
// before the call are replayed to fn first.
func (h *Host) WatchProviders(fn func(frame.ProviderDetail)) (func(), error) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.watchers[id] = fn
	known := append([]frame.ProviderDetail(nil), h.providers...)
	h.mu.Unlock()

	for _, detail := range known {
		fn(detail)
	}

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.watchers, id)
	}, nil
}

func (h *Host) call(ctx context.Context, msgType string, payload any) (ws.Message, error) {
	requestID := uuid.NewString()
	msg, err := ws.NewMessage(msgType, requestID, payload)
	if err != nil {
		return ws.Message{}, err
	}

	ch := make(chan ws.Message, 1)
	h.mu.Lock()
	h.pending[requestID] = ch
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.pending, requestID)
		h.mu.Unlock()
	}()

	if err := h.conn.Send(msg); err != nil {
		return ws.Message{}, fmt.Errorf("send %s: %w", msgType, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return ws.Message{}, ctx.Err()
	case <-h.conn.Done():
		return ws.Message{}, frame.ErrHostUnavailable
	}
}

// handle runs on the read pump, so events reach listeners one at a time and
// in arrival order. Listeners are called without holding h.mu.
func (h *Host) handle(msg ws.Message) error {
	switch msg.Type {
	case ws.TypeResponse, ws.TypeError:
		h.mu.Lock()
		ch, ok := h.pending[msg.RequestID]
		h.mu.Unlock()
		if !ok {
			if msg.Type == ws.TypeError {
				h.logger.Warn().Err(decodeError(msg.Payload)).Msg("host error")
			}
			return nil
		}
		select {
		case ch <- msg:
		default:
		}
		return nil

	case ws.TypeEvent:
		var payload ws.EventPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		event := frame.Event{
			Type:                frame.EventType(payload.Event),
			NotificationDetails: toNotificationDetails(payload.NotificationDetails),
			Reason:              payload.Reason,
		}
		h.mu.Lock()
		fns := make([]func(frame.Event), 0, len(h.listeners[event.Type]))
		for _, fn := range h.listeners[event.Type] {
			fns = append(fns, fn)
		}
		h.mu.Unlock()
		for _, fn := range fns {
			fn(event)
		}
		return nil

	case ws.TypeProviderAnnounced:
		var payload ws.ProviderAnnouncedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode provider: %w", err)
		}
		detail := frame.ProviderDetail{
			UUID: payload.Info.UUID,
			Name: payload.Info.Name,
			Icon: payload.Info.Icon,
			RDNS: payload.Info.RDNS,
		}
		h.mu.Lock()
		for _, known := range h.providers {
			if known.UUID == detail.UUID {
				h.mu.Unlock()
				return nil
			}
		}
		h.providers = append(h.providers, detail)
		fns := make([]func(frame.ProviderDetail), 0, len(h.watchers))
		for _, fn := range h.watchers {
			fns = append(fns, fn)
		}
		h.mu.Unlock()
		for _, fn := range fns {
			fn(detail)
		}
		return nil

	case ws.TypePong:
		return nil

	default:
		h.logger.Debug().Str("type", msg.Type).Msg("ignoring unknown bridge message")
		return nil
	}
}

func decodeError(raw json.RawMessage) error {
	var payload ws.ErrorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("undecodable host error: %w", err)
	}
	return fmt.Errorf("%s: %s", payload.Code, payload.Message)
}

func toContext(p ws.ContextPayload) *frame.Context {
	ctx := &frame.Context{
		User: frame.User{
			FID:         p.User.FID,
			Username:    p.User.Username,
			DisplayName: p.User.DisplayName,
		},
		Client: frame.ClientContext{
			ClientFID:           p.Client.ClientFID,
			Added:               p.Client.Added,
			Capabilities:        p.Client.Capabilities,
			NotificationDetails: toNotificationDetails(p.Client.NotificationDetails),
		},
	}
	if in := p.Client.SafeAreaInsets; in != nil {
		ctx.Client.SafeAreaInsets = &frame.SafeAreaInsets{
			Top:    in.Top,
			Bottom: in.Bottom,
			Left:   in.Left,
			Right:  in.Right,
		}
	}
	return ctx
}

func toNotificationDetails(p *ws.NotificationDetailsPayload) *frame.NotificationDetails {
	if p == nil {
		return nil
	}
	return &frame.NotificationDetails{URL: p.URL, Token: p.Token}
}
