package hostsim

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/venice-quiz-frame/pkg/http/errors"
	ws "github.com/gokatarajesh/venice-quiz-frame/pkg/http/ws"
)

// Add outcomes the simulator can be configured with.
const (
	OutcomeAccept  = "accept"
	OutcomeReject  = "reject"
	OutcomeInvalid = "invalid"
	OutcomeFail    = "fail"
)

// Options shape the simulated host.
type Options struct {
	// Context is answered to get_context; nil answers a null context.
	Context         *ws.ContextPayload
	AddOutcome      string
	Providers       []ws.ProviderInfo
	NotificationURL string
}

// Simulator is a minimal frame host that speaks the bridge protocol. It is
// meant for local development and tests.
type Simulator struct {
	opts     Options
	hub      *Hub
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	added bool
}

// New creates a simulator.
func New(opts Options, logger zerolog.Logger) *Simulator {
	if opts.AddOutcome == "" {
		opts.AddOutcome = OutcomeAccept
	}
	logger = logger.With().Str("component", "host_simulator").Logger()
	s := &Simulator{
		opts:   opts,
		hub:    NewHub(logger),
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if opts.Context != nil {
		s.added = opts.Context.Client.Added
	}
	return s
}

// Hub exposes the connected frames.
func (s *Simulator) Hub() *Hub {
	return s.hub
}

// Added reports whether the simulated user has the frame added.
func (s *Simulator) Added() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.added
}

// Handler routes the bridge endpoint and the event trigger endpoint.
func (s *Simulator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/frame", s.HandleWebSocket)
	mux.HandleFunc("/v1/events", s.HandleEmit)
	return mux
}

// HandleWebSocket upgrades a frame connection and serves it until it closes.
func (s *Simulator) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	id := uuid.New()
	wsConn := ws.NewConnection(conn, s.logger)
	s.hub.Register(id, wsConn)

	go wsConn.WritePump()
	wsConn.ReadPump(func(msg ws.Message) error {
		return s.handleMessage(id, msg)
	})

	s.hub.Unregister(id)
}

type emitRequest struct {
	Event  string `json:"event"`
	Reason string `json:"reason,omitempty"`
}

// HandleEmit handles POST /v1/events and pushes a lifecycle event to every frame.
func (s *Simulator) HandleEmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	var req emitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Event == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	if err := s.Emit(ws.EventPayload{Event: req.Event, Reason: req.Reason}); err != nil {
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Emit broadcasts a lifecycle event, updating the simulated added state the way
// a real host would.
func (s *Simulator) Emit(event ws.EventPayload) error {
	s.mu.Lock()
	switch event.Event {
	case ws.EventFrameAdded:
		s.added = true
		if event.NotificationDetails == nil {
			event.NotificationDetails = s.notificationDetails()
		}
	case ws.EventFrameRemoved:
		s.added = false
	case ws.EventNotificationsEnabled:
		if event.NotificationDetails == nil {
			event.NotificationDetails = s.notificationDetails()
		}
	}
	s.mu.Unlock()

	msg, err := ws.NewMessage(ws.TypeEvent, "", event)
	if err != nil {
		return err
	}
	return s.hub.BroadcastAll(msg)
}

func (s *Simulator) notificationDetails() *ws.NotificationDetailsPayload {
	if s.opts.NotificationURL == "" {
		return nil
	}
	return &ws.NotificationDetailsPayload{URL: s.opts.NotificationURL, Token: uuid.NewString()}
}

func (s *Simulator) handleMessage(id uuid.UUID, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeGetContext:
		return s.handleGetContext(id, msg)
	case ws.TypeAddFrame:
		return s.handleAddFrame(id, msg)
	case ws.TypeReady:
		return s.handleReady(id)
	case ws.TypePing:
		return s.reply(id, ws.TypePong, msg.RequestID, nil)
	default:
		return s.reply(id, ws.TypeError, msg.RequestID, ws.ErrorPayload{
			Code:    ws.CodeUnknownMessageType,
			Message: fmt.Sprintf("Unknown message type: %s", msg.Type),
		})
	}
}

func (s *Simulator) handleGetContext(id uuid.UUID, msg ws.Message) error {
	if s.opts.Context == nil {
		return s.reply(id, ws.TypeResponse, msg.RequestID, nil)
	}
	payload := *s.opts.Context
	payload.Client.Added = s.Added()
	return s.reply(id, ws.TypeResponse, msg.RequestID, payload)
}

func (s *Simulator) handleAddFrame(id uuid.UUID, msg ws.Message) error {
	switch s.opts.AddOutcome {
	case OutcomeAccept:
		if err := s.reply(id, ws.TypeResponse, msg.RequestID, nil); err != nil {
			return err
		}
		return s.Emit(ws.EventPayload{Event: ws.EventFrameAdded})
	case OutcomeReject:
		if err := s.reply(id, ws.TypeError, msg.RequestID, ws.ErrorPayload{
			Code:    ws.CodeRejectedByUser,
			Message: "user dismissed the add prompt",
		}); err != nil {
			return err
		}
		return s.Emit(ws.EventPayload{Event: ws.EventFrameAddRejected, Reason: ws.CodeRejectedByUser})
	case OutcomeInvalid:
		return s.reply(id, ws.TypeError, msg.RequestID, ws.ErrorPayload{
			Code:    ws.CodeInvalidDomainManifest,
			Message: "manifest domain does not match frame origin",
		})
	default:
		return s.reply(id, ws.TypeError, msg.RequestID, ws.ErrorPayload{
			Code:    ws.CodeInternal,
			Message: "host failed to add frame",
		})
	}
}

func (s *Simulator) handleReady(id uuid.UUID) error {
	if !s.hub.MarkReady(id) {
		s.logger.Warn().Str("frame_id", id.String()).Msg("duplicate ready signal")
		return nil
	}
	s.logger.Info().Str("frame_id", id.String()).Msg("frame ready")

	for _, info := range s.opts.Providers {
		msg, err := ws.NewMessage(ws.TypeProviderAnnounced, "", ws.ProviderAnnouncedPayload{Info: info})
		if err != nil {
			return err
		}
		if err := s.hub.Send(id, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) reply(id uuid.UUID, msgType, requestID string, payload any) error {
	msg, err := ws.NewMessage(msgType, requestID, payload)
	if err != nil {
		return err
	}
	return s.hub.Send(id, msg)
}
