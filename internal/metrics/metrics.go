package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "frame"

// Handshake outcomes.
const (
	HandshakeReady          = "ready"
	HandshakeNoContext      = "no_context"
	HandshakeContextError   = "context_error"
	HandshakeSubscribeError = "subscribe_error"
	HandshakeReadyError     = "ready_error"
	HandshakeTornDown       = "torn_down"
)

// Add request outcomes.
const (
	AddAccepted        = "accepted"
	AddRejectedByUser  = "rejected_by_user"
	AddInvalidManifest = "invalid_manifest"
	AddFailed          = "failed"
)

// Metrics groups the frame collectors. A nil *Metrics records nothing.
type Metrics struct {
	handshakes      *prometheus.CounterVec
	addRequests     *prometheus.CounterVec
	hostEvents      *prometheus.CounterVec
	providers       prometheus.Counter
	quizCompletions prometheus.Counter
	quizScore       prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Host handshakes by outcome.",
		}, []string{"outcome"}),
		addRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "add_requests_total",
			Help:      "Add-frame requests by outcome.",
		}, []string{"outcome"}),
		hostEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_events_total",
			Help:      "Host lifecycle events dispatched to observers.",
		}, []string{"event"}),
		providers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "providers_announced_total",
			Help:      "Provider announcements forwarded from the host.",
		}),
		quizCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_completions_total",
			Help:      "Quiz sessions that reached the result screen.",
		}),
		quizScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quiz_score",
			Help:      "Score at quiz completion.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.handshakes, m.addRequests, m.hostEvents, m.providers, m.quizCompletions, m.quizScore)
	}
	return m
}

// Handshake counts a finished handshake by outcome.
func (m *Metrics) Handshake(outcome string) {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues(outcome).Inc()
}

// AddRequest counts an add-frame request by outcome.
func (m *Metrics) AddRequest(outcome string) {
	if m == nil {
		return
	}
	m.addRequests.WithLabelValues(outcome).Inc()
}

// HostEvent counts a lifecycle event delivered to the controller.
func (m *Metrics) HostEvent(event string) {
	if m == nil {
		return
	}
	m.hostEvents.WithLabelValues(event).Inc()
}

// ProviderAnnounced counts a provider announcement forwarded to the sink.
func (m *Metrics) ProviderAnnounced() {
	if m == nil {
		return
	}
	m.providers.Inc()
}

// QuizCompleted records a finished session and its score.
func (m *Metrics) QuizCompleted(score int) {
	if m == nil {
		return
	}
	m.quizCompletions.Inc()
	m.quizScore.Observe(float64(score))
}
