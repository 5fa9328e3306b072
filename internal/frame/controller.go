package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/venice-quiz-frame/internal/metrics"
)

// Status strings surfaced after an add request.
const (
	StatusAdded          = "Added"
	statusNotAddedPrefix = "Not added: "
	statusErrorPrefix    = "Error: "
)

var errTornDown = errors.New("controller torn down")

// Options tune the handshake.
type Options struct {
	// PromptAdd asks the host to add the frame when the context says it is not added yet.
	PromptAdd bool
	Ready     ReadyOptions
	Providers ProviderSink
	Metrics   *metrics.Metrics
}

// Controller owns the handshake with the frame host for one widget instance.
type Controller struct {
	host   Host
	opts   Options
	logger zerolog.Logger

	mu            sync.Mutex
	loaded        bool
	tornDown      bool
	ready         bool
	hostCtx       *Context
	added         bool
	addStatus     string
	notifications *NotificationDetails
	unsubscribers []func()
	cancel        context.CancelFunc

	done     chan struct{}
	doneOnce sync.Once
}

// NewController creates a controller bound to host.
func NewController(host Host, opts Options, logger zerolog.Logger) *Controller {
	return &Controller{
		host:   host,
		opts:   opts,
		logger: logger.With().Str("component", "frame_controller").Logger(),
		done:   make(chan struct{}),
	}
}

// Initialize starts the handshake in the background. Only the first call does
// any work; later calls, including ones racing the first, return immediately.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return
	}
	c.loaded = true
	if c.tornDown {
		c.mu.Unlock()
		c.finish()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Debug().Msg("starting host handshake")
	go c.handshake(runCtx)
}

// Done is closed once the handshake body returns, whatever its outcome.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) finish() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Controller) handshake(ctx context.Context) {
	defer c.finish()

	hostCtx, err := c.host.Context(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("host context unavailable")
		c.opts.Metrics.Handshake(metrics.HandshakeContextError)
		return
	}
	if hostCtx == nil {
		c.logger.Debug().Msg("no host context; frame is not hosted")
		c.opts.Metrics.Handshake(metrics.HandshakeNoContext)
		return
	}

	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		c.opts.Metrics.Handshake(metrics.HandshakeTornDown)
		return
	}
	c.hostCtx = hostCtx
	c.added = hostCtx.Client.Added
	c.notifications = hostCtx.Client.NotificationDetails
	c.mu.Unlock()

	c.logger.Info().
		Int("fid", hostCtx.User.FID).
		Bool("added", hostCtx.Client.Added).
		Msg("host context received")

	for _, evt := range LifecycleEvents {
		if err := c.observe(evt); err != nil {
			c.abort(err)
			return
		}
	}

	c.mu.Lock()
	tornDown := c.tornDown
	c.mu.Unlock()
	if tornDown {
		c.abort(errTornDown)
		return
	}

	// The add prompt starts once the observers are in place so the host's
	// frame_added confirmation is seen. It waits on the user, so it is not
	// ordered against the ready signal below.
	if !hostCtx.Client.Added && c.opts.PromptAdd {
		go c.RequestAdd(ctx)
	}

	if err := c.host.Ready(ctx, c.opts.Ready); err != nil {
		c.logger.Warn().Err(err).Msg("ready signal failed")
		c.opts.Metrics.Handshake(metrics.HandshakeReadyError)
		return
	}

	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	c.logger.Info().Msg("frame ready")
	c.opts.Metrics.Handshake(metrics.HandshakeReady)

	if c.opts.Providers != nil {
		if err := c.watchProviders(ctx); err != nil && !errors.Is(err, errTornDown) {
			c.logger.Warn().Err(err).Msg("provider discovery unavailable")
		}
	}
}

func (c *Controller) abort(err error) {
	if errors.Is(err, errTornDown) {
		c.opts.Metrics.Handshake(metrics.HandshakeTornDown)
		return
	}
	c.logger.Warn().Err(err).Msg("observer registration failed")
	c.opts.Metrics.Handshake(metrics.HandshakeSubscribeError)
}

// observe registers one lifecycle observer, dropping it at once if teardown
// won the race.
func (c *Controller) observe(evt EventType) error {
	unsubscribe, err := c.host.Subscribe(evt, c.dispatch)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", evt, err)
	}
	return c.track(unsubscribe)
}

func (c *Controller) track(unsubscribe func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		unsubscribe()
		return errTornDown
	}
	c.unsubscribers = append(c.unsubscribers, unsubscribe)
	return nil
}

func (c *Controller) watchProviders(ctx context.Context) error {
	unsubscribe, err := c.host.WatchProviders(func(detail ProviderDetail) {
		c.mu.Lock()
		tornDown := c.tornDown
		c.mu.Unlock()
		if tornDown {
			return
		}
		c.logger.Debug().Str("provider", detail.RDNS).Msg("provider announced")
		c.opts.Metrics.ProviderAnnounced()
		c.opts.Providers.Announce(ctx, detail)
	})
	if err != nil {
		return fmt.Errorf("watch providers: %w", err)
	}
	return c.track(unsubscribe)
}

// dispatch runs under the controller lock so observers never overlap and
// never run after Teardown returns.
func (c *Controller) dispatch(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return
	}
	c.opts.Metrics.HostEvent(string(e.Type))

	switch e.Type {
	case EventFrameAdded:
		c.added = true
		if e.NotificationDetails != nil {
			c.notifications = e.NotificationDetails
		}
		c.logger.Info().Msg("frame added")
	case EventFrameAddRejected:
		c.addStatus = statusNotAddedPrefix + e.Reason
		c.logger.Info().Str("reason", e.Reason).Msg("frame add rejected")
	case EventFrameRemoved:
		c.added = false
		c.notifications = nil
		c.logger.Info().Msg("frame removed")
	case EventNotificationsEnabled:
		c.notifications = e.NotificationDetails
		c.logger.Info().Msg("notifications enabled")
	case EventNotificationsDisabled:
		c.notifications = nil
		c.logger.Info().Msg("notifications disabled")
	case EventPrimaryButtonClicked:
		c.logger.Info().Msg("primary button clicked")
	default:
		c.logger.Debug().Str("event", string(e.Type)).Msg("ignoring unknown host event")
	}
}

// RequestAdd asks the host to add the frame for the user and returns the
// resulting status. Failures never escape as errors. The added flag itself
// only flips on the host's frame_added event.
func (c *Controller) RequestAdd(ctx context.Context) string {
	c.mu.Lock()
	if c.tornDown {
		status := c.addStatus
		c.mu.Unlock()
		return status
	}
	c.mu.Unlock()

	err := c.host.AddFrame(ctx)
	status, outcome := addOutcome(err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		// Teardown cancels in-flight requests; their outcome is dropped.
		return c.addStatus
	}
	c.addStatus = status
	c.opts.Metrics.AddRequest(outcome)
	if err != nil {
		c.logger.Info().Err(err).Str("outcome", outcome).Msg("add frame not completed")
	}
	return status
}

func addOutcome(err error) (string, string) {
	switch {
	case err == nil:
		return StatusAdded, metrics.AddAccepted
	case errors.Is(err, ErrRejectedByUser):
		return statusNotAddedPrefix + err.Error(), metrics.AddRejectedByUser
	case errors.Is(err, ErrInvalidDomainManifest):
		return statusNotAddedPrefix + err.Error(), metrics.AddInvalidManifest
	default:
		return statusErrorPrefix + err.Error(), metrics.AddFailed
	}
}

// Teardown removes every observer and stops the handshake. It is safe to call
// at any point and more than once.
func (c *Controller) Teardown() {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return
	}
	c.tornDown = true
	unsubscribers := c.unsubscribers
	c.unsubscribers = nil
	cancel := c.cancel
	loaded := c.loaded
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, unsubscribe := range unsubscribers {
		unsubscribe()
	}
	if !loaded {
		c.finish()
	}
	c.logger.Debug().Int("observers", len(unsubscribers)).Msg("frame controller torn down")
}

// Loaded reports whether Initialize has been called.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Ready reports whether readiness has been signaled to the host.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Context returns the host context, or nil before it arrives.
func (c *Controller) Context() *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hostCtx
}

// Added reports whether the host has the frame added for the user.
func (c *Controller) Added() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.added
}

// AddStatus returns the latest add outcome message, empty if none.
func (c *Controller) AddStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addStatus
}

// NotificationDetails returns the latest notification target, nil when disabled.
func (c *Controller) NotificationDetails() *NotificationDetails {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notifications
}

// SafeAreaInsets returns the host insets, zero when unknown.
func (c *Controller) SafeAreaInsets() SafeAreaInsets {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hostCtx == nil || c.hostCtx.Client.SafeAreaInsets == nil {
		return SafeAreaInsets{}
	}
	return *c.hostCtx.Client.SafeAreaInsets
}
