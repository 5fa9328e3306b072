package frame

import (
	"context"
	"errors"
)

// EventType names a host lifecycle event.
type EventType string

const (
	EventFrameAdded            EventType = "frame_added"
	EventFrameAddRejected      EventType = "frame_add_rejected"
	EventFrameRemoved          EventType = "frame_removed"
	EventNotificationsEnabled  EventType = "notifications_enabled"
	EventNotificationsDisabled EventType = "notifications_disabled"
	EventPrimaryButtonClicked  EventType = "primary_button_clicked"
)

// LifecycleEvents lists every event the controller observes, in registration order.
var LifecycleEvents = []EventType{
	EventFrameAdded,
	EventFrameAddRejected,
	EventFrameRemoved,
	EventNotificationsEnabled,
	EventNotificationsDisabled,
	EventPrimaryButtonClicked,
}

// Event is a single host push.
type Event struct {
	Type                EventType
	NotificationDetails *NotificationDetails
	Reason              string
}

// NotificationDetails lets a backend send notifications to the user through the host.
type NotificationDetails struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// SafeAreaInsets are host-reserved screen margins, in pixels.
type SafeAreaInsets struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// User identifies who opened the frame.
type User struct {
	FID         int    `json:"fid"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// ClientContext describes the host client.
type ClientContext struct {
	ClientFID           int                  `json:"client_fid"`
	Added               bool                 `json:"added"`
	SafeAreaInsets      *SafeAreaInsets      `json:"safe_area_insets,omitempty"`
	Capabilities        []string             `json:"capabilities,omitempty"`
	NotificationDetails *NotificationDetails `json:"notification_details,omitempty"`
}

// Context is the host environment snapshot handed out once per session.
type Context struct {
	User   User          `json:"user"`
	Client ClientContext `json:"client"`
}

// ReadyOptions accompany the readiness signal.
type ReadyOptions struct {
	DisableNativeGestures bool
}

// ProviderDetail is an opaque provider announcement from the host environment.
type ProviderDetail struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	RDNS string `json:"rdns"`
}

// ProviderSink receives discovered providers.
type ProviderSink interface {
	Announce(ctx context.Context, detail ProviderDetail)
}

// Host is the contract the frame host runtime exposes to a widget.
type Host interface {
	// Context returns nil with no error when the widget is not hosted.
	Context(ctx context.Context) (*Context, error)
	AddFrame(ctx context.Context) error
	Ready(ctx context.Context, opts ReadyOptions) error
	Subscribe(event EventType, fn func(Event)) (unsubscribe func(), err error)
	WatchProviders(fn func(ProviderDetail)) (unsubscribe func(), err error)
}

var (
	ErrRejectedByUser        = errors.New("rejected by user")
	ErrInvalidDomainManifest = errors.New("invalid domain manifest")
	ErrHostUnavailable       = errors.New("host unavailable")
)

// AddFrameError carries the host's message for a failed add request.
// Kind is ErrRejectedByUser, ErrInvalidDomainManifest or nil.
type AddFrameError struct {
	Kind    error
	Message string
}

func (e *AddFrameError) Error() string {
	if e.Kind == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *AddFrameError) Unwrap() error {
	return e.Kind
}

// Detached is a Host for a widget that is not running inside a frame host.
type Detached struct{}

var _ Host = Detached{}

func (Detached) Context(context.Context) (*Context, error) { return nil, nil }

func (Detached) AddFrame(context.Context) error { return ErrHostUnavailable }

func (Detached) Ready(context.Context, ReadyOptions) error { return ErrHostUnavailable }

func (Detached) Subscribe(EventType, func(Event)) (func(), error) {
	return nil, ErrHostUnavailable
}

func (Detached) WatchProviders(func(ProviderDetail)) (func(), error) {
	return nil, ErrHostUnavailable
}
