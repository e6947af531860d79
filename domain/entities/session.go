package entities

import (
	"errors"
	"time"
)

// SessionStatus represents the status of a session
type SessionStatus string

const (
	SessionStatusActive     SessionStatus = "active"
	SessionStatusExpired    SessionStatus = "expired"
	SessionStatusTerminated SessionStatus = "terminated"
)

// DefaultIntervalMs is the cyclic playback interval used when none is given
const DefaultIntervalMs = 700

// Session is the per-user conversion state: the last submitted text, its
// English rendering and the playback interval chosen for it
type Session struct {
	ID                string        `json:"id"`
	SourceLang        string        `json:"source_lang"`
	Text              string        `json:"text"`
	EnglishText       string        `json:"english_text"`
	TranslationFailed bool          `json:"translation_failed"`
	IntervalMs        int           `json:"interval_ms"`
	CreatedAt         time.Time     `json:"created_at"`
	LastActiveAt      time.Time     `json:"last_active_at"`
	ExpiresAt         time.Time     `json:"expires_at"`
	Status            SessionStatus `json:"status"`
}

// NewSession creates an active session that expires ttl after now
func NewSession(sourceLang string, intervalMs int, now time.Time, ttl time.Duration) *Session {
	if sourceLang == "" {
		sourceLang = AutoLanguage
	}
	if intervalMs <= 0 {
		intervalMs = DefaultIntervalMs
	}
	return &Session{
		SourceLang:   sourceLang,
		IntervalMs:   intervalMs,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(ttl),
		Status:       SessionStatusActive,
	}
}

// Touch updates the last active timestamp and extends expiration
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.LastActiveAt = now
	s.ExpiresAt = now.Add(ttl)
}

// RecordConversion stores the outcome of the latest conversion
func (s *Session) RecordConversion(text, englishText string, translationFailed bool) {
	s.Text = text
	s.EnglishText = englishText
	s.TranslationFailed = translationFailed
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt) || s.Status != SessionStatusActive
}

// Terminate marks the session as terminated
func (s *Session) Terminate() {
	s.Status = SessionStatusTerminated
}

// Expire marks the session as expired
func (s *Session) Expire() {
	s.Status = SessionStatusExpired
}

// Validate validates the session data
func (s *Session) Validate() error {
	if s.IntervalMs <= 0 {
		return errors.New("interval_ms must be positive")
	}

	if s.Status != SessionStatusActive && s.Status != SessionStatusExpired && s.Status != SessionStatusTerminated {
		return errors.New("invalid session status")
	}

	return nil
}
