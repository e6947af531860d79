package repositories

import (
	"context"

	"github.com/satriahrh/isyarat/domain/entities"
)

// TranslationProvider abstracts any external translation backend
type TranslationProvider interface {
	// Name identifies the provider in logs and metrics
	Name() string
	// Translate performs exactly one attempt against the backend. An empty
	// translation must be reported as an error, never as a success.
	Translate(ctx context.Context, req entities.TranslationRequest) (entities.TranslationResult, error)
}
