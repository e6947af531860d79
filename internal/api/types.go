package api

import (
	"time"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/internal/sign"
)

// TranslateRequest is the body of POST /translate
type TranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// TranslateResponse is the success body of POST /translate
type TranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// TranslateErrorResponse is the failure body of POST /translate
type TranslateErrorResponse struct {
	Error string `json:"error"`
}

// ConvertRequest is the body of the convert endpoints
type ConvertRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// GestureMatchRequest is the body of the gesture endpoints
type GestureMatchRequest struct {
	Text string `json:"text"`
}

// GestureListResponse lists the catalog in enumeration order
type GestureListResponse struct {
	Gestures []sign.Entry               `json:"gestures"`
	Unknown  entities.GestureDescriptor `json:"unknown"`
}

// CreateSessionRequest is the body of POST /api/v1/sessions
type CreateSessionRequest struct {
	Source     string `json:"source"`
	IntervalMs int    `json:"interval_ms"`
}

// CreateSessionResponse returns the session ID and its bearer token
type CreateSessionResponse struct {
	SessionID  string    `json:"session_id"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	IntervalMs int       `json:"interval_ms"`
}

// IntervalRequest is the body of PUT /api/v1/sessions/:id/interval
type IntervalRequest struct {
	IntervalMs int `json:"interval_ms"`
}

// IntervalResponse reports the interval actually applied
type IntervalResponse struct {
	IntervalMs int `json:"interval_ms"`
}

// PlaybackResponse reports whether cyclic playback is running
type PlaybackResponse struct {
	Running bool `json:"running"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
