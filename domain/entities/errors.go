package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned for blank text; no provider is called
	ErrEmptyInput = errors.New("empty text")
	// ErrTranslationUnavailable is returned when every provider failed
	ErrTranslationUnavailable = errors.New("translation unavailable")
	// ErrMalformedResponse marks a provider body that does not match its expected shape
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrUnsupportedLanguage is returned for language codes that do not parse
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrBusy is returned when a gesture is already animating
	ErrBusy = errors.New("gesture already playing")
	// ErrSessionNotFound is returned for unknown session IDs
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned for sessions past their expiry
	ErrSessionExpired = errors.New("session expired")
)

// ProviderError wraps the failure of a single translation provider
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// PublicMessage returns the short user-facing text for an error
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "Empty text"
	case errors.Is(err, ErrTranslationUnavailable):
		return "Translation failed. Please try again later."
	case errors.Is(err, ErrUnsupportedLanguage):
		return "Unsupported language code"
	case errors.Is(err, ErrBusy):
		return "A gesture is already playing"
	case errors.Is(err, ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, ErrSessionExpired):
		return "Session expired"
	default:
		return "Something went wrong"
	}
}
