package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
)

const (
	defaultGoogleBaseURL = "https://translate.googleapis.com"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// GoogleConfig holds configuration for the GoogleTranslate adapter.
// All fields are optional.
type GoogleConfig struct {
	BaseURL   string        // Default: https://translate.googleapis.com
	UserAgent string        // Default: a desktop browser agent
	Timeout   time.Duration // Default: DefaultTimeout
}

// GoogleTranslate calls the public gtx endpoint, which answers with
// nested arrays of translated segments
type GoogleTranslate struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

var _ repositories.TranslationProvider = (*GoogleTranslate)(nil)

// NewGoogleTranslate creates the primary provider
func NewGoogleTranslate(config GoogleConfig, logger *zap.Logger) *GoogleTranslate {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &GoogleTranslate{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    newHTTPClient(config.Timeout),
		logger:    logger,
	}
}

// Name implements TranslationProvider
func (g *GoogleTranslate) Name() string {
	return "google"
}

// Translate implements TranslationProvider
func (g *GoogleTranslate) Translate(ctx context.Context, req entities.TranslationRequest) (entities.TranslationResult, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", req.SourceLang)
	query.Set("tl", req.TargetLang)
	query.Set("dt", "t")
	query.Set("q", req.Text)
	endpoint := g.baseURL + "/translate_a/single?" + query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entities.TranslationResult{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("User-Agent", g.userAgent)

	body, resp, err := doAndRead(g.client, httpReq)
	if err != nil {
		return entities.TranslationResult{}, fmt.Errorf("failed to execute HTTP request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return entities.TranslationResult{}, fmt.Errorf("google returned status %d: %s", resp.StatusCode, preview(body))
	}

	g.logger.Debug("Google Translate response", zap.ByteString("body", body))

	translated, err := ParseSegments(body)
	if err != nil {
		return entities.TranslationResult{}, err
	}

	return entities.TranslationResult{TranslatedText: translated, Provider: g.Name()}, nil
}

// ParseSegments extracts the translation from a gtx body shaped like
// [[["fragment", "source", ...], ...], ...]. Fragments are concatenated in
// order. Any other shape, or an empty result, is ErrMalformedResponse.
func ParseSegments(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil || len(outer) == 0 {
		return "", fmt.Errorf("%w: expected a top-level array", entities.ErrMalformedResponse)
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", fmt.Errorf("%w: expected an array of segments", entities.ErrMalformedResponse)
	}

	var sb strings.Builder
	for i, raw := range segments {
		var segment []json.RawMessage
		if err := json.Unmarshal(raw, &segment); err != nil || len(segment) == 0 {
			return "", fmt.Errorf("%w: segment %d is not an array", entities.ErrMalformedResponse, i)
		}

		// A null fragment carries no text
		var fragment *string
		if err := json.Unmarshal(segment[0], &fragment); err != nil {
			return "", fmt.Errorf("%w: segment %d has no text fragment", entities.ErrMalformedResponse, i)
		}
		if fragment != nil {
			sb.WriteString(*fragment)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: empty translation", entities.ErrMalformedResponse)
	}
	return sb.String(), nil
}
