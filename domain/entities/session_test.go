package entities

import (
	"testing"
	"time"
)

func TestSessionCreation(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	session := NewSession("hi", 500, now, 30*time.Minute)

	if session.SourceLang != "hi" {
		t.Errorf("Expected source language hi, got %s", session.SourceLang)
	}

	if session.Status != SessionStatusActive {
		t.Errorf("Expected status %s, got %s", SessionStatusActive, session.Status)
	}

	if session.IntervalMs != 500 {
		t.Errorf("Expected interval 500, got %d", session.IntervalMs)
	}

	if !session.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("Expected expiry %s, got %s", now.Add(30*time.Minute), session.ExpiresAt)
	}
}

func TestSessionDefaults(t *testing.T) {
	session := NewSession("", 0, time.Now(), time.Minute)

	if session.SourceLang != AutoLanguage {
		t.Errorf("Expected source language %s, got %s", AutoLanguage, session.SourceLang)
	}

	if session.IntervalMs != DefaultIntervalMs {
		t.Errorf("Expected interval %d, got %d", DefaultIntervalMs, session.IntervalMs)
	}
}

func TestSessionExpiration(t *testing.T) {
	now := time.Now()
	session := NewSession("en", 700, now, time.Hour)

	// Should not be expired initially
	if session.IsExpired(now) {
		t.Error("Session should not be expired initially")
	}

	if !session.IsExpired(now.Add(2 * time.Hour)) {
		t.Error("Session should be expired when ExpiresAt is in the past")
	}

	// Terminated sessions count as expired
	session.Terminate()
	if !session.IsExpired(now) {
		t.Error("Session should be expired when status is terminated")
	}
}

func TestSessionValidation(t *testing.T) {
	session := NewSession("en", 700, time.Now(), time.Hour)
	if err := session.Validate(); err != nil {
		t.Errorf("Valid session should not have validation errors, got: %v", err)
	}

	session.IntervalMs = 0
	if err := session.Validate(); err == nil {
		t.Error("Session with zero interval should have validation error")
	}

	session.IntervalMs = 700
	session.Status = SessionStatus("invalid")
	if err := session.Validate(); err == nil {
		t.Error("Session with invalid status should have validation error")
	}
}

func TestSessionTouch(t *testing.T) {
	start := time.Now()
	session := NewSession("en", 700, start, 10*time.Minute)

	later := start.Add(5 * time.Minute)
	session.Touch(later, 10*time.Minute)

	if !session.LastActiveAt.Equal(later) {
		t.Error("LastActiveAt should be updated")
	}

	if !session.ExpiresAt.Equal(later.Add(10 * time.Minute)) {
		t.Error("ExpiresAt should be extended from the last activity")
	}
}

func TestSessionRecordConversion(t *testing.T) {
	session := NewSession("ta", 700, time.Now(), time.Hour)
	session.RecordConversion("வணக்கம்", "hello", false)

	if session.Text != "வணக்கம்" || session.EnglishText != "hello" || session.TranslationFailed {
		t.Errorf("Unexpected conversion state: %+v", session)
	}
}
