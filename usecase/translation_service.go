package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
	"github.com/satriahrh/isyarat/internal/metrics"
)

// TranslationService tries each provider once, in order, and returns the
// first non-empty translation
type TranslationService struct {
	providers []repositories.TranslationProvider
	logger    *zap.Logger
}

// NewTranslationService creates a translation service over an ordered
// provider list. The first provider is the primary.
func NewTranslationService(providers []repositories.TranslationProvider, logger *zap.Logger) *TranslationService {
	return &TranslationService{
		providers: providers,
		logger:    logger,
	}
}

// Providers returns the provider names in attempt order
func (s *TranslationService) Providers() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	return names
}

// Translate validates the request, then hands it to each provider until
// one succeeds. When every provider fails the returned error matches
// ErrTranslationUnavailable and wraps each provider's failure.
func (s *TranslationService) Translate(ctx context.Context, req entities.TranslationRequest) (entities.TranslationResult, error) {
	if err := req.Validate(); err != nil {
		return entities.TranslationResult{}, err
	}
	req = req.WithDefaults()

	var failures []error
	for i, provider := range s.providers {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		s.logger.Info("Translation attempt",
			zap.String("provider", provider.Name()),
			zap.Int("attempt", i+1),
			zap.String("source", req.SourceLang),
			zap.String("target", req.TargetLang))

		start := time.Now()
		result, err := provider.Translate(ctx, req)
		elapsed := time.Since(start)

		if err == nil && strings.TrimSpace(result.TranslatedText) == "" {
			err = fmt.Errorf("%w: empty translation", entities.ErrMalformedResponse)
		}

		if err != nil {
			outcome := metrics.OutcomeError
			if errors.Is(err, entities.ErrMalformedResponse) {
				outcome = metrics.OutcomeMalformed
			}
			metrics.ObserveTranslation(provider.Name(), outcome, elapsed)

			s.logger.Warn("Translation provider failed",
				zap.String("provider", provider.Name()),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
			failures = append(failures, &entities.ProviderError{Provider: provider.Name(), Err: err})
			continue
		}

		metrics.ObserveTranslation(provider.Name(), metrics.OutcomeSuccess, elapsed)
		s.logger.Info("Translation succeeded",
			zap.String("provider", provider.Name()),
			zap.Duration("elapsed", elapsed))

		if result.Provider == "" {
			result.Provider = provider.Name()
		}
		return result, nil
	}

	if len(failures) == 0 {
		failures = append(failures, errors.New("no translation providers configured"))
	}
	return entities.TranslationResult{}, fmt.Errorf("%w: %w", entities.ErrTranslationUnavailable, errors.Join(failures...))
}
