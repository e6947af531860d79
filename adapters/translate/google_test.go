package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/domain/entities"
)

func TestParseSegments(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "single segment", body: `[[["Hello","வணக்கம்",null,null,1]],null,"ta"]`, want: "Hello"},
		{name: "multiple segments", body: `[[["Good ","Buenos ",null],["morning","días",null]],null,"es"]`, want: "Good morning"},
		{name: "null fragment skipped", body: `[[[null,"x"],["thanks","gracias"]]]`, want: "thanks"},
		{name: "not json", body: `<html>blocked</html>`, wantErr: true},
		{name: "object instead of array", body: `{"text":"hi"}`, wantErr: true},
		{name: "empty outer array", body: `[]`, wantErr: true},
		{name: "segments not array", body: `["hello"]`, wantErr: true},
		{name: "segment not array", body: `[["hello"]]`, wantErr: true},
		{name: "fragment not string", body: `[[[42,"x"]]]`, wantErr: true},
		{name: "empty translation", body: `[[["  ","x"]]]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSegments([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, entities.ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoogleTranslate_Translate(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/translate_a/single", r.URL.Path)
		assert.Equal(t, "gtx", r.URL.Query().Get("client"))
		assert.Equal(t, "ta", r.URL.Query().Get("sl"))
		assert.Equal(t, "en", r.URL.Query().Get("tl"))
		assert.Equal(t, "t", r.URL.Query().Get("dt"))
		assert.Equal(t, "நன்றி", r.URL.Query().Get("q"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[["Thank you","நன்றி",null,null,10]],null,"ta"]`))
	}))
	defer server.Close()

	provider := NewGoogleTranslate(GoogleConfig{BaseURL: server.URL + "/", UserAgent: "test-agent"}, zap.NewNop())
	assert.Equal(t, "google", provider.Name())

	result, err := provider.Translate(context.Background(), entities.TranslationRequest{
		Text:       "நன்றி",
		SourceLang: "ta",
		TargetLang: "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "Thank you", result.TranslatedText)
	assert.Equal(t, "google", result.Provider)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGoogleTranslate_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewGoogleTranslate(GoogleConfig{BaseURL: server.URL}, zap.NewNop())
	_, err := provider.Translate(context.Background(), entities.TranslationRequest{Text: "hola", SourceLang: "es", TargetLang: "en"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGoogleTranslate_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":true}`))
	}))
	defer server.Close()

	provider := NewGoogleTranslate(GoogleConfig{BaseURL: server.URL}, zap.NewNop())
	_, err := provider.Translate(context.Background(), entities.TranslationRequest{Text: "hola", SourceLang: "es", TargetLang: "en"})
	assert.ErrorIs(t, err, entities.ErrMalformedResponse)
}

func TestGoogleTranslate_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	provider := NewGoogleTranslate(GoogleConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, zap.NewNop())
	_, err := provider.Translate(context.Background(), entities.TranslationRequest{Text: "hola", SourceLang: "es", TargetLang: "en"})
	assert.Error(t, err)
}

func TestDoAndRead_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, maxResponseBytes+10))
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, _, err = doAndRead(newHTTPClient(0), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
