package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/internal/playback"
	"github.com/satriahrh/isyarat/usecase"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Client to server message types
const (
	MessageTypeConvert  MessageType = "convert"
	MessageTypeStart    MessageType = "start"
	MessageTypeStop     MessageType = "stop"
	MessageTypeInterval MessageType = "interval"
	MessageTypeGesture  MessageType = "gesture"
	MessageTypePing     MessageType = "ping"
)

// Server to client message types
const (
	MessageTypeConverted    MessageType = "converted"
	MessageTypeFrame        MessageType = "frame"
	MessageTypePlayback     MessageType = "playback"
	MessageTypeGestureStart MessageType = "gesture_start"
	MessageTypeGestureEnd   MessageType = "gesture_end"
	MessageTypePong         MessageType = "pong"
	MessageTypeError        MessageType = "error"
)

// Error codes carried by ErrorMessage
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeEmptyText      = "empty_text"
	ErrorCodeBusy           = "busy"
	ErrorCodeSessionExpired = "session_expired"
	ErrorCodeSessionClosed  = "session_closed"
	ErrorCodeSessionMissing = "session_not_found"
	ErrorCodeNothingToPlay  = "nothing_to_play"
	ErrorCodeInternal       = "internal_error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
}

// ConvertMessage asks for text to be converted into the session's frames
type ConvertMessage struct {
	BaseMessage
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// ControlMessage carries start and stop, which have no payload
type ControlMessage struct {
	BaseMessage
}

// IntervalMessage changes the playback interval. The server answers with
// the same message type holding the interval actually applied.
type IntervalMessage struct {
	BaseMessage
	IntervalMs int `json:"interval_ms"`
}

// GestureMessage asks for the gesture matching Text to be played
type GestureMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ConvertedMessage announces a new frame sequence
type ConvertedMessage struct {
	BaseMessage
	SessionID string `json:"session_id"`
	usecase.Conversion
}

// FrameMessage is sent on every playback tick
type FrameMessage struct {
	BaseMessage
	SessionID string         `json:"session_id"`
	Index     int            `json:"index"`
	Frame     entities.Frame `json:"frame"`
}

// PlaybackMessage reports whether cyclic playback is running
type PlaybackMessage struct {
	BaseMessage
	SessionID string `json:"session_id"`
	Running   bool   `json:"running"`
}

// GestureEventMessage is sent when a gesture starts or ends
type GestureEventMessage struct {
	BaseMessage
	SessionID string                     `json:"session_id"`
	Gesture   entities.GestureDescriptor `json:"gesture"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses and validates an incoming client message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeConvert:
		var msg ConvertMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid convert message: %w", err)
		}
		if strings.TrimSpace(msg.Text) == "" {
			return nil, entities.ErrEmptyInput
		}
		return &msg, nil

	case MessageTypeStart, MessageTypeStop:
		return &ControlMessage{BaseMessage: base}, nil

	case MessageTypeInterval:
		var msg IntervalMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid interval message: %w", err)
		}
		if msg.IntervalMs <= 0 {
			return nil, fmt.Errorf("interval_ms must be positive")
		}
		return &msg, nil

	case MessageTypeGesture:
		var msg GestureMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid gesture message: %w", err)
		}
		if strings.TrimSpace(msg.Text) == "" {
			return nil, entities.ErrEmptyInput
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case "":
		return nil, fmt.Errorf("message missing type field")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func newBase(t MessageType) BaseMessage {
	return BaseMessage{Type: t, Timestamp: time.Now().Format(time.RFC3339)}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError),
		Code:        code,
		Message:     message,
		Details:     details,
	}
}

// CreateErrorMessageFor maps err onto an error code and a short message
func CreateErrorMessageFor(err error) *ErrorMessage {
	code := ErrorCodeInternal
	switch {
	case errors.Is(err, entities.ErrEmptyInput):
		code = ErrorCodeEmptyText
	case errors.Is(err, entities.ErrBusy):
		code = ErrorCodeBusy
	case errors.Is(err, entities.ErrSessionExpired):
		code = ErrorCodeSessionExpired
	case errors.Is(err, entities.ErrSessionNotFound):
		code = ErrorCodeSessionMissing
	}
	return CreateErrorMessage(code, entities.PublicMessage(err), "")
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong),
		Data:        data,
	}
}

// CreateConvertedMessage wraps a conversion for the session's clients
func CreateConvertedMessage(sessionID string, conversion usecase.Conversion) *ConvertedMessage {
	return &ConvertedMessage{
		BaseMessage: newBase(MessageTypeConverted),
		SessionID:   sessionID,
		Conversion:  conversion,
	}
}

// CreateFrameMessage wraps a playback tick
func CreateFrameMessage(sessionID string, tick playback.Tick) *FrameMessage {
	return &FrameMessage{
		BaseMessage: newBase(MessageTypeFrame),
		SessionID:   sessionID,
		Index:       tick.Index,
		Frame:       tick.Frame,
	}
}

// CreatePlaybackMessage reports the running state
func CreatePlaybackMessage(sessionID string, running bool) *PlaybackMessage {
	return &PlaybackMessage{
		BaseMessage: newBase(MessageTypePlayback),
		SessionID:   sessionID,
		Running:     running,
	}
}

// CreateGestureEventMessage reports a gesture starting or ending
func CreateGestureEventMessage(sessionID string, event playback.GestureEvent) *GestureEventMessage {
	t := MessageTypeGestureEnd
	if event.Playing {
		t = MessageTypeGestureStart
	}
	return &GestureEventMessage{
		BaseMessage: newBase(t),
		SessionID:   sessionID,
		Gesture:     event.Gesture,
	}
}

// CreateIntervalMessage echoes the interval that was applied
func CreateIntervalMessage(intervalMs int) *IntervalMessage {
	return &IntervalMessage{
		BaseMessage: newBase(MessageTypeInterval),
		IntervalMs:  intervalMs,
	}
}
