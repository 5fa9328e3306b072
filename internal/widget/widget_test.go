package widget

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/venice-quiz-frame/internal/frame"
	"github.com/gokatarajesh/venice-quiz-frame/internal/metrics"
	"github.com/gokatarajesh/venice-quiz-frame/internal/quiz"
)

type fakeHost struct {
	mu        sync.Mutex
	ctx       *frame.Context
	addErr    error
	listeners map[frame.EventType][]func(frame.Event)
}

func (h *fakeHost) Context(context.Context) (*frame.Context, error) { return h.ctx, nil }

func (h *fakeHost) AddFrame(context.Context) error { return h.addErr }

func (h *fakeHost) Ready(context.Context, frame.ReadyOptions) error { return nil }

func (h *fakeHost) Subscribe(e frame.EventType, fn func(frame.Event)) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = map[frame.EventType][]func(frame.Event){}
	}
	h.listeners[e] = append(h.listeners[e], fn)
	return func() {}, nil
}

func (h *fakeHost) WatchProviders(func(frame.ProviderDetail)) (func(), error) {
	return func() {}, nil
}

func (h *fakeHost) emit(e frame.Event) {
	h.mu.Lock()
	fns := append(([]func(frame.Event))(nil), h.listeners[e.Type]...)
	h.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}

func hosted(added bool) *fakeHost {
	return &fakeHost{ctx: &frame.Context{
		User: frame.User{FID: 3},
		Client: frame.ClientContext{
			Added:          added,
			SafeAreaInsets: &frame.SafeAreaInsets{Top: 44, Bottom: 20},
		},
	}}
}

func mountedWidget(t *testing.T, host frame.Host) *Widget {
	t.Helper()
	w, err := New(host, quiz.VeniceCatalog(), frame.Options{Metrics: metrics.New(prometheus.NewRegistry())}, zerolog.New(io.Discard))
	require.NoError(t, err)
	w.Mount(context.Background())
	select {
	case <-w.Controller().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("handshake did not finish")
	}
	t.Cleanup(w.Unmount)
	return w
}

func TestNewRejectsInvalidCatalog(t *testing.T) {
	_, err := New(hosted(true), quiz.Catalog{}, frame.Options{}, zerolog.New(io.Discard))
	assert.ErrorIs(t, err, quiz.ErrEmptyCatalog)
}

func TestViewAfterHandshake(t *testing.T) {
	w := mountedWidget(t, hosted(true))

	v := w.View()
	assert.False(t, v.Loading)
	assert.Equal(t, quiz.DefaultTitle, v.Title)
	assert.Equal(t, 0, v.QuestionIndex)
	assert.Equal(t, 1, v.QuestionNumber)
	assert.Equal(t, 2, v.QuestionCount)
	assert.Equal(t, "What year was Venice founded?", v.Prompt)
	assert.Len(t, v.Options, 4)
	assert.Nil(t, v.SelectedOption)
	assert.False(t, v.CanGoBack)
	assert.Equal(t, frame.SafeAreaInsets{Top: 44, Bottom: 20}, v.SafeAreaInsets)
	assert.True(t, v.Added)
}

func TestActionsGatedWhileLoading(t *testing.T) {
	w := mountedWidget(t, frame.Detached{})

	v, applied, err := w.Answer(0, 0)
	assert.ErrorIs(t, err, ErrLoading)
	assert.False(t, applied)
	assert.True(t, v.Loading)
	assert.Equal(t, 0, v.QuestionIndex)

	_, _, err = w.RequestAdd(context.Background())
	assert.ErrorIs(t, err, ErrLoading)
}

func TestQuizFlowThroughWidget(t *testing.T) {
	w := mountedWidget(t, hosted(true))

	v, applied, err := w.Answer(0, 0)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, v.QuestionIndex)
	assert.True(t, v.CanGoBack)

	v, applied, _ = w.Previous()
	assert.True(t, applied)
	require.NotNil(t, v.SelectedOption)
	assert.Equal(t, 0, *v.SelectedOption)

	_, applied, _ = w.Previous()
	assert.False(t, applied)

	w.Next()
	v, _, _ = w.Answer(1, 2)
	assert.Equal(t, 1, v.QuestionIndex)
	assert.False(t, v.Complete)

	v, applied, _ = w.Next()
	assert.True(t, applied)
	assert.True(t, v.Complete)
	assert.Equal(t, 2, v.Score)
	assert.Empty(t, v.Prompt)
	assert.False(t, v.CanGoBack)

	v, applied, _ = w.Reset()
	assert.True(t, applied)
	assert.Equal(t, 0, v.QuestionIndex)
	assert.Equal(t, 0, v.Score)
	assert.Nil(t, v.SelectedOption)
}

func TestRequestAddAndConfirmation(t *testing.T) {
	host := hosted(false)
	w := mountedWidget(t, host)

	v, status, err := w.RequestAdd(context.Background())
	require.NoError(t, err)
	assert.Equal(t, frame.StatusAdded, status)
	assert.False(t, v.Added)

	host.emit(frame.Event{Type: frame.EventFrameAdded})
	assert.True(t, w.View().Added)
}

func TestWidgetsAreIndependent(t *testing.T) {
	a := mountedWidget(t, hosted(true))
	b := mountedWidget(t, hosted(true))

	a.Answer(0, 1)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 1, a.View().QuestionIndex)
	assert.Equal(t, 0, b.View().QuestionIndex)
}
