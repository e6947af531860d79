package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/adapters"
	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
	"github.com/satriahrh/isyarat/internal/auth"
	"github.com/satriahrh/isyarat/internal/sign"
	"github.com/satriahrh/isyarat/internal/websocket"
	"github.com/satriahrh/isyarat/usecase"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Translate(ctx context.Context, req entities.TranslationRequest) (entities.TranslationResult, error) {
	p.calls.Add(1)
	if p.err != nil {
		return entities.TranslationResult{}, p.err
	}
	return entities.TranslationResult{TranslatedText: p.text}, nil
}

type testServer struct {
	echo      *echo.Echo
	primary   *fakeProvider
	secondary *fakeProvider
	clock     *clock.Mock
	sessions  *usecase.SessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	mock := clock.NewMock()
	mock.Set(time.Now())

	primary := &fakeProvider{name: "primary", text: "Thank you"}
	secondary := &fakeProvider{name: "secondary", text: "thanks"}
	translation := usecase.NewTranslationService([]repositories.TranslationProvider{primary, secondary}, logger)
	conversion := usecase.NewConversionService(translation, sign.NewTokenizer(sign.DefaultVocabulary()), logger)
	sessions := usecase.NewSessionService(adapters.NewMemorySessionRepository(), conversion,
		sign.DefaultCatalog(), mock, 30*time.Minute, logger)

	tokens, err := auth.NewTokenIssuer([]byte("test-secret"))
	require.NoError(t, err)

	hub := websocket.NewHub(sessions, logger)
	sessions.SetPublisher(hub)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	e := echo.New()
	InitRoutes(e, Dependencies{
		Translation: translation,
		Conversion:  conversion,
		Sessions:    sessions,
		Catalog:     sign.DefaultCatalog(),
		Tokens:      tokens,
		Hub:         hub,
		Logger:      logger,
	})

	return &testServer{echo: e, primary: primary, secondary: secondary, clock: mock, sessions: sessions}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *testServer) openSession(t *testing.T) CreateSessionResponse {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/sessions", `{"source":"id","interval_ms":100}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp CreateSessionResponse
	decode(t, rec, &resp)
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/translate", `{"q":"terima kasih","source":"id","target":"en"}`, "")

	rec := s.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "isyarat_translation_attempts_total")
}

func TestTranslate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/translate", `{"q":"terima kasih","source":"id","target":"en"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"translatedText":"Thank you"}`, rec.Body.String())
	assert.Equal(t, int32(1), s.primary.calls.Load())
	assert.Equal(t, int32(0), s.secondary.calls.Load())
}

func TestTranslate_Defaults(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/translate", `{"q":"terima kasih"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTranslate_BlankText(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{`{"q":"   ","source":"auto","target":"en"}`, `{"source":"auto"}`} {
		rec := s.do(http.MethodPost, "/translate", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Empty text"}`, rec.Body.String())
	}
	assert.Equal(t, int32(0), s.primary.calls.Load())
}

func TestTranslate_BadLanguage(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/translate", `{"q":"hola","source":"not a code","target":"en"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Unsupported language code"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/translate", `{"q":"hola","source":"es","target":"auto"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(0), s.primary.calls.Load())
}

func TestTranslate_AllProvidersFail(t *testing.T) {
	s := newTestServer(t)
	s.primary.err = errors.New("connection reset")
	s.secondary.err = entities.ErrMalformedResponse

	rec := s.do(http.MethodPost, "/translate", `{"q":"hola","source":"es","target":"en"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Translation failed. Please try again later."}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Equal(t, int32(1), s.primary.calls.Load())
	assert.Equal(t, int32(1), s.secondary.calls.Load())
}

func TestConvert(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/convert", `{"text":"terima kasih","source":"id"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var conversion usecase.Conversion
	decode(t, rec, &conversion)
	assert.Equal(t, "Thank you", conversion.EnglishText)
	assert.False(t, conversion.TranslationFailed)
	assert.Equal(t, []entities.Frame{entities.WordFrame("THANK"), entities.WordFrame("YOU")}, conversion.Frames)
}

func TestConvert_Degraded(t *testing.T) {
	s := newTestServer(t)
	s.primary.err = errors.New("timeout")
	s.secondary.err = errors.New("timeout")

	rec := s.do(http.MethodPost, "/api/v1/convert", `{"text":"hello xyz"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var conversion usecase.Conversion
	decode(t, rec, &conversion)
	assert.True(t, conversion.TranslationFailed)
	assert.NotEmpty(t, conversion.Notice)
	assert.Len(t, conversion.Frames, 5)
}

func TestConvert_Blank(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/convert", `{"text":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "empty_text", resp.Error)
	assert.Equal(t, "Empty text", resp.Message)
	assert.Equal(t, int32(0), s.primary.calls.Load())
}

func TestGestures(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/gestures", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list GestureListResponse
	decode(t, rec, &list)
	require.Len(t, list.Gestures, len(sign.DefaultEntries()))
	assert.Equal(t, "hi", list.Gestures[0].Key)
	assert.Equal(t, "Unknown", list.Unknown.Name)

	rec = s.do(http.MethodPost, "/api/v1/gestures/match", `{"text":"I say thank you now"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var match sign.Match
	decode(t, rec, &match)
	assert.Equal(t, sign.MatchSubstring, match.Kind)
	assert.Equal(t, "thank you", match.Key)

	rec = s.do(http.MethodPost, "/api/v1/gestures/match", `{"text":"zzz"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &match)
	assert.Equal(t, sign.MatchUnknown, match.Kind)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	session := s.openSession(t)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, 100, session.IntervalMs)

	base := "/api/v1/sessions/" + session.SessionID

	rec := s.do(http.MethodPost, base+"/convert", `{"text":"terima kasih"}`, session.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, base+"/start", "", session.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"running":true}`, rec.Body.String())

	s.clock.Add(100 * time.Millisecond)

	rec = s.do(http.MethodGet, base, "", session.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var view usecase.SessionView
	decode(t, rec, &view)
	assert.True(t, view.Playback.Running)
	assert.Equal(t, 1, view.Playback.Index)
	assert.Equal(t, "Thank you", view.Session.EnglishText)

	rec = s.do(http.MethodPut, base+"/interval", `{"interval_ms":10}`, session.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"interval_ms":50}`, rec.Body.String())

	rec = s.do(http.MethodPut, base+"/interval", `{"interval_ms":0}`, session.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, base+"/stop", "", session.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"running":false}`, rec.Body.String())

	rec = s.do(http.MethodPost, base+"/gesture", `{"text":"hello"}`, session.Token)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = s.do(http.MethodPost, base+"/gesture", `{"text":"yes"}`, session.Token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var busy ErrorResponse
	decode(t, rec, &busy)
	assert.Equal(t, "busy", busy.Error)

	rec = s.do(http.MethodDelete, base, "", session.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, base, "", session.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionAuth(t *testing.T) {
	s := newTestServer(t)
	first := s.openSession(t)
	second := s.openSession(t)

	rec := s.do(http.MethodGet, "/api/v1/sessions/"+first.SessionID, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/sessions/"+first.SessionID, "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/sessions/"+first.SessionID, "", second.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionExpired(t *testing.T) {
	s := newTestServer(t)
	session := s.openSession(t)

	s.clock.Add(31 * time.Minute)

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+session.SessionID+"/start", "", session.Token)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestCreateSession_Invalid(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/sessions", `{"interval_ms":-1}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/sessions", `{"source":"???"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/sessions", `{"interval_ms":"fast"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebSocket(t *testing.T) {
	s := newTestServer(t)
	session := s.openSession(t)

	server := httptest.NewServer(s.echo)
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	_, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := gorillaws.DefaultDialer.Dial(url+"?token="+session.Token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(gorillaws.TextMessage, []byte(`{"type":"ping","data":"hi"}`)))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"pong"`)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+session.Token)
	second, _, err := gorillaws.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	second.Close()
}
