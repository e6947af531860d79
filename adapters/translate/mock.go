package translate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
)

// MockTranslator is an offline provider for development. It knows a few
// greetings and otherwise returns the text unchanged.
type MockTranslator struct {
	phrases map[string]string
	logger  *zap.Logger
}

var _ repositories.TranslationProvider = (*MockTranslator)(nil)

// NewMockTranslator creates the offline provider
func NewMockTranslator(logger *zap.Logger) *MockTranslator {
	return &MockTranslator{
		phrases: map[string]string{
			"வணக்கம்":      "hello",
			"நன்றி":        "thank you",
			"नमस्ते":       "hello",
			"धन्यवाद":      "thank you",
			"hola":         "hello",
			"gracias":      "thank you",
			"bonjour":      "good morning",
			"merci":        "thank you",
			"terima kasih": "thank you",
		},
		logger: logger,
	}
}

// Name implements TranslationProvider
func (m *MockTranslator) Name() string {
	return "mock"
}

// Translate implements TranslationProvider
func (m *MockTranslator) Translate(ctx context.Context, req entities.TranslationRequest) (entities.TranslationResult, error) {
	if err := ctx.Err(); err != nil {
		return entities.TranslationResult{}, err
	}

	m.logger.Info("Mock translation",
		zap.String("source", req.SourceLang),
		zap.String("target", req.TargetLang))

	key := strings.ToLower(strings.TrimSpace(req.Text))
	if translated, ok := m.phrases[key]; ok {
		return entities.TranslationResult{TranslatedText: translated, Provider: m.Name()}, nil
	}
	return entities.TranslationResult{TranslatedText: req.Text, Provider: m.Name()}, nil
}
