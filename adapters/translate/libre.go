package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
)

const defaultLibreBaseURL = "https://libretranslate.de"

// LibreConfig holds configuration for the LibreTranslate adapter.
// All fields are optional.
type LibreConfig struct {
	BaseURL string        // Default: https://libretranslate.de
	APIKey  string        // Sent as api_key when set
	Timeout time.Duration // Default: DefaultTimeout
}

// LibreTranslate posts JSON to a LibreTranslate instance
type LibreTranslate struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

var _ repositories.TranslationProvider = (*LibreTranslate)(nil)

// LibreRequest is the request payload for the /translate endpoint
type LibreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

// NewLibreTranslate creates the fallback provider
func NewLibreTranslate(config LibreConfig, logger *zap.Logger) *LibreTranslate {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultLibreBaseURL
	}

	return &LibreTranslate{
		baseURL: baseURL,
		apiKey:  config.APIKey,
		client:  newHTTPClient(config.Timeout),
		logger:  logger,
	}
}

// Name implements TranslationProvider
func (l *LibreTranslate) Name() string {
	return "libre"
}

// Translate implements TranslationProvider
func (l *LibreTranslate) Translate(ctx context.Context, req entities.TranslationRequest) (entities.TranslationResult, error) {
	requestBody, err := json.Marshal(LibreRequest{
		Q:      req.Text,
		Source: req.SourceLang,
		Target: req.TargetLang,
		Format: "text",
		APIKey: l.apiKey,
	})
	if err != nil {
		return entities.TranslationResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/translate", bytes.NewReader(requestBody))
	if err != nil {
		return entities.TranslationResult{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	body, resp, err := doAndRead(l.client, httpReq)
	if err != nil {
		return entities.TranslationResult{}, fmt.Errorf("failed to execute HTTP request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return entities.TranslationResult{}, fmt.Errorf("libretranslate returned status %d: %s", resp.StatusCode, preview(body))
	}

	l.logger.Debug("LibreTranslate response", zap.ByteString("body", body))

	translated, err := ParseLibreBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return entities.TranslationResult{}, err
	}

	return entities.TranslationResult{TranslatedText: translated, Provider: l.Name()}, nil
}

// ParseLibreBody accepts a JSON string, an object with translatedText, or
// a plain-text body. Anything else, or an empty result, is
// ErrMalformedResponse.
func ParseLibreBody(body []byte, contentType string) (string, error) {
	var translated string

	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '"':
		if err := json.Unmarshal(trimmed, &translated); err != nil {
			return "", fmt.Errorf("%w: invalid JSON string", entities.ErrMalformedResponse)
		}
	case len(trimmed) > 0 && trimmed[0] == '{':
		var payload struct {
			TranslatedText *string `json:"translatedText"`
		}
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return "", fmt.Errorf("%w: invalid JSON object", entities.ErrMalformedResponse)
		}
		if payload.TranslatedText == nil {
			return "", fmt.Errorf("%w: missing translatedText", entities.ErrMalformedResponse)
		}
		translated = *payload.TranslatedText
	case strings.HasPrefix(contentType, "text/plain"):
		translated = string(trimmed)
	default:
		return "", fmt.Errorf("%w: unexpected body", entities.ErrMalformedResponse)
	}

	if strings.TrimSpace(translated) == "" {
		return "", fmt.Errorf("%w: empty translation", entities.ErrMalformedResponse)
	}
	return translated, nil
}
