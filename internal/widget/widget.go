package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/venice-quiz-frame/internal/frame"
	"github.com/gokatarajesh/venice-quiz-frame/internal/metrics"
	"github.com/gokatarajesh/venice-quiz-frame/internal/quiz"
)

// ErrLoading is returned for quiz actions before the host handshake completes.
var ErrLoading = errors.New("frame is still loading")

// Widget is one mounted instance of the quiz frame. It owns its own host
// session and quiz session; nothing is shared between instances.
type Widget struct {
	ID         uuid.UUID
	controller *frame.Controller
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	mu      sync.Mutex
	session *quiz.Session
}

// New builds a widget for catalog on top of host.
func New(host frame.Host, catalog quiz.Catalog, opts frame.Options, logger zerolog.Logger) (*Widget, error) {
	session, err := quiz.NewSession(catalog)
	if err != nil {
		return nil, fmt.Errorf("new quiz session: %w", err)
	}
	id := uuid.New()
	logger = logger.With().Str("widget_id", id.String()).Logger()
	return &Widget{
		ID:         id,
		controller: frame.NewController(host, opts, logger),
		metrics:    opts.Metrics,
		logger:     logger.With().Str("component", "widget").Logger(),
		session:    session,
	}, nil
}

// Controller exposes the host session controller.
func (w *Widget) Controller() *frame.Controller {
	return w.controller
}

// Mount starts the host handshake. It returns without waiting for the host.
func (w *Widget) Mount(ctx context.Context) {
	w.controller.Initialize(ctx)
}

// Unmount tears down every host observer.
func (w *Widget) Unmount() {
	w.controller.Teardown()
	w.logger.Info().Msg("widget unmounted")
}

// Loading reports whether the frame is still waiting on the host handshake.
func (w *Widget) Loading() bool {
	return !w.controller.Ready()
}

// View renders the current state.
func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Widget) viewLocked() View {
	snap := w.session.Snapshot()
	v := View{
		ID:             w.ID.String(),
		Loading:        w.Loading(),
		Title:          w.session.Catalog().Title,
		QuestionIndex:  snap.CurrentIndex,
		QuestionCount:  snap.QuestionCount,
		CanGoBack:      snap.CurrentIndex > 0 && !snap.Complete,
		Complete:       snap.Complete,
		Score:          snap.Score,
		SafeAreaInsets: w.controller.SafeAreaInsets(),
		Added:          w.controller.Added(),
		AddStatus:      w.controller.AddStatus(),
	}
	if q, ok := w.session.Current(); ok {
		v.QuestionNumber = snap.CurrentIndex + 1
		v.Prompt = q.Prompt
		v.Options = append([]string(nil), q.Options...)
		if choice, answered := w.session.AnswerFor(snap.CurrentIndex); answered {
			v.SelectedOption = &choice
		}
	}
	return v
}

// Answer records choice for the question at index. applied is false when the
// session rejected the transition.
func (w *Widget) Answer(index, choice int) (View, bool, error) {
	return w.apply(func(s *quiz.Session) bool { return s.Answer(index, choice) })
}

// Previous moves back one question.
func (w *Widget) Previous() (View, bool, error) {
	return w.apply((*quiz.Session).Previous)
}

// Next moves forward one question, finishing the quiz after the last one.
func (w *Widget) Next() (View, bool, error) {
	return w.apply((*quiz.Session).Next)
}

// Reset starts over after completion.
func (w *Widget) Reset() (View, bool, error) {
	return w.apply((*quiz.Session).Reset)
}

func (w *Widget) apply(transition func(*quiz.Session) bool) (View, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.Loading() {
		return w.viewLocked(), false, ErrLoading
	}

	wasComplete := w.session.Complete()
	applied := transition(w.session)
	if applied && !wasComplete && w.session.Complete() {
		score := w.session.Score()
		w.metrics.QuizCompleted(score)
		w.logger.Info().
			Int("score", score).
			Int("questions", w.session.Catalog().Len()).
			Msg("quiz complete")
	}
	return w.viewLocked(), applied, nil
}

// RequestAdd asks the host to add the frame and returns the status shown to the user.
func (w *Widget) RequestAdd(ctx context.Context) (View, string, error) {
	if w.Loading() {
		return w.View(), "", ErrLoading
	}
	status := w.controller.RequestAdd(ctx)
	return w.View(), status, nil
}
