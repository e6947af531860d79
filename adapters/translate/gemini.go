package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

const geminiSystemPrompt = "You are a translation engine. Reply with the translated text only: " +
	"no quotes, no explanations, no transliteration."

// GeminiConfig holds configuration for the GeminiTranslate adapter
type GeminiConfig struct {
	APIKey  string        // Required
	Model   string        // Default: gemini-2.0-flash
	Timeout time.Duration // Default: DefaultTimeout
}

// contentGenerator is the part of *genai.Models this adapter uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiTranslate asks a Gemini model for a translation
type GeminiTranslate struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

var _ repositories.TranslationProvider = (*GeminiTranslate)(nil)

// NewGeminiTranslate creates a Gemini-backed provider
func NewGeminiTranslate(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiTranslate, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newGeminiTranslate(client.Models, config, logger), nil
}

func newGeminiTranslate(models contentGenerator, config GeminiConfig, logger *zap.Logger) *GeminiTranslate {
	model := config.Model
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default Gemini model", zap.String("model", model))
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &GeminiTranslate{
		models:  models,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Name implements TranslationProvider
func (g *GeminiTranslate) Name() string {
	return "gemini"
}

// Translate implements TranslationProvider
func (g *GeminiTranslate) Translate(ctx context.Context, req entities.TranslationRequest) (entities.TranslationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	source := req.SourceLang
	if source == "" || source == entities.AutoLanguage {
		source = "the detected source language"
	}
	prompt := fmt.Sprintf("Translate from %s to %s:\n\n%s", source, req.TargetLang, req.Text)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(geminiSystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
	}

	response, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return entities.TranslationResult{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return entities.TranslationResult{}, fmt.Errorf("%w: no candidates", entities.ErrMalformedResponse)
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	translated := strings.TrimSpace(sb.String())
	if translated == "" {
		return entities.TranslationResult{}, fmt.Errorf("%w: empty translation", entities.ErrMalformedResponse)
	}

	return entities.TranslationResult{TranslatedText: translated, Provider: g.Name()}, nil
}
