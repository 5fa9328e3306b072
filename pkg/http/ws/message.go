package ws

import "encoding/json"

// MessageType constants for the frame host bridge protocol.
const (
	// Frame -> Host
	TypeGetContext = "get_context"
	TypeAddFrame   = "add_frame"
	TypeReady      = "ready"
	TypePing       = "ping"

	// Host -> Frame
	TypeResponse          = "response"
	TypeError             = "error"
	TypeEvent             = "event"
	TypeProviderAnnounced = "provider_announced"
	TypePong              = "pong"
)

// Error codes a host may answer an add_frame request with.
const (
	CodeRejectedByUser        = "rejected_by_user"
	CodeInvalidDomainManifest = "invalid_domain_manifest"
	CodeUnknownMessageType    = "unknown_message_type"
	CodeInternal              = "internal_error"
)

// Event names carried by TypeEvent messages.
const (
	EventFrameAdded            = "frame_added"
	EventFrameAddRejected      = "frame_add_rejected"
	EventFrameRemoved          = "frame_removed"
	EventNotificationsEnabled  = "notifications_enabled"
	EventNotificationsDisabled = "notifications_disabled"
	EventPrimaryButtonClicked  = "primary_button_clicked"
)

// Message wraps all bridge payloads with type and optional request ID.
// Responses and errors echo the request ID of the call they answer.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(msgType, requestID string, payload any) (Message, error) {
	msg := Message{Type: msgType, RequestID: requestID}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// Frame Messages (outgoing to host)

type ReadyPayload struct {
	DisableNativeGestures bool `json:"disable_native_gestures,omitempty"`
}

// Host Messages (incoming to frame)

// ContextPayload is the body of a get_context response. A null payload means
// the frame is not hosted.
type ContextPayload struct {
	User   UserPayload   `json:"user"`
	Client ClientPayload `json:"client"`
}

type UserPayload struct {
	FID         int    `json:"fid"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

type ClientPayload struct {
	ClientFID           int                         `json:"client_fid"`
	Added               bool                        `json:"added"`
	SafeAreaInsets      *SafeAreaInsetsPayload      `json:"safe_area_insets,omitempty"`
	Capabilities        []string                    `json:"capabilities,omitempty"`
	NotificationDetails *NotificationDetailsPayload `json:"notification_details,omitempty"`
}

type SafeAreaInsetsPayload struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

type NotificationDetailsPayload struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type EventPayload struct {
	Event               string                      `json:"event"`
	NotificationDetails *NotificationDetailsPayload `json:"notification_details,omitempty"`
	Reason              string                      `json:"reason,omitempty"`
}

type ProviderAnnouncedPayload struct {
	Info ProviderInfo `json:"info"`
}

type ProviderInfo struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	RDNS string `json:"rdns"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
