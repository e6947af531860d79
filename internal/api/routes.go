package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/internal/auth"
	"github.com/satriahrh/isyarat/internal/sign"
	"github.com/satriahrh/isyarat/internal/websocket"
	"github.com/satriahrh/isyarat/usecase"
)

const sessionIDKey = "session_id"

// Dependencies are the services the HTTP routes call into
type Dependencies struct {
	Translation *usecase.TranslationService
	Conversion  *usecase.ConversionService
	Sessions    *usecase.SessionService
	Catalog     *sign.Catalog
	Tokens      *auth.TokenIssuer
	Hub         *websocket.Hub
	Logger      *zap.Logger

	// DefaultIntervalMs applies to sessions created without interval_ms
	DefaultIntervalMs int
}

type handler struct {
	Dependencies
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies) {
	h := &handler{Dependencies: deps}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "isyarat",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Translation proxy
	e.POST("/translate", h.translate)

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.POST("/convert", h.convert)
	v1.GET("/gestures", h.listGestures)
	v1.POST("/gestures/match", h.matchGesture)
	v1.POST("/sessions", h.createSession)

	sessions := v1.Group("/sessions/:id", h.requireSession)
	sessions.GET("", h.getSession)
	sessions.DELETE("", h.deleteSession)
	sessions.POST("/convert", h.convertInSession)
	sessions.POST("/start", h.startPlayback)
	sessions.POST("/stop", h.stopPlayback)
	sessions.PUT("/interval", h.setInterval)
	sessions.POST("/gesture", h.playGesture)

	// WebSocket endpoint with JWT validation
	e.GET("/ws", h.websocketWithAuth)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrEmptyInput), errors.Is(err, entities.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, entities.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrSessionExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// errorCode returns the machine-readable code for an error
func errorCode(err error) string {
	switch {
	case errors.Is(err, entities.ErrEmptyInput):
		return "empty_text"
	case errors.Is(err, entities.ErrUnsupportedLanguage):
		return "unsupported_language"
	case errors.Is(err, entities.ErrBusy):
		return "busy"
	case errors.Is(err, entities.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, entities.ErrSessionExpired):
		return "session_expired"
	default:
		return "internal_error"
	}
}

func (h *handler) fail(c echo.Context, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(status, ErrorResponse{
		Error:   errorCode(err),
		Message: entities.PublicMessage(err),
	})
}

func invalidRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request format",
	})
}

// validateLanguage accepts "auto" and any well-formed BCP 47 tag
func validateLanguage(code string, allowAuto bool) error {
	if code == "" {
		return nil
	}
	if code == entities.AutoLanguage {
		if allowAuto {
			return nil
		}
		return entities.ErrUnsupportedLanguage
	}
	if _, err := language.Parse(code); err != nil {
		return entities.ErrUnsupportedLanguage
	}
	return nil
}

func (h *handler) translate(c echo.Context) error {
	var req TranslateRequest
	if err := c.Bind(&req); err != nil {
		h.Logger.Warn("Failed to bind translate request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, TranslateErrorResponse{Error: "Invalid request format"})
	}

	translation := entities.TranslationRequest{
		Text:       req.Q,
		SourceLang: req.Source,
		TargetLang: req.Target,
	}.WithDefaults()

	if err := translation.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, TranslateErrorResponse{Error: entities.PublicMessage(err)})
	}
	if err := validateLanguage(translation.SourceLang, true); err != nil {
		return c.JSON(http.StatusBadRequest, TranslateErrorResponse{Error: entities.PublicMessage(err)})
	}
	if err := validateLanguage(translation.TargetLang, false); err != nil {
		return c.JSON(http.StatusBadRequest, TranslateErrorResponse{Error: entities.PublicMessage(err)})
	}

	result, err := h.Translation.Translate(c.Request().Context(), translation)
	if err != nil {
		h.Logger.Warn("Translation request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, TranslateErrorResponse{
			Error: entities.PublicMessage(entities.ErrTranslationUnavailable),
		})
	}

	return c.JSON(http.StatusOK, TranslateResponse{TranslatedText: result.TranslatedText})
}

func (h *handler) convert(c echo.Context) error {
	var req ConvertRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validateLanguage(req.Source, true); err != nil {
		return h.fail(c, err)
	}

	conversion, err := h.Conversion.Convert(c.Request().Context(), req.Text, req.Source)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, conversion)
}

func (h *handler) listGestures(c echo.Context) error {
	return c.JSON(http.StatusOK, GestureListResponse{
		Gestures: h.Catalog.Entries(),
		Unknown:  sign.UnknownGesture(),
	})
}

func (h *handler) matchGesture(c echo.Context) error {
	var req GestureMatchRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if strings.TrimSpace(req.Text) == "" {
		return h.fail(c, entities.ErrEmptyInput)
	}
	return c.JSON(http.StatusOK, h.Catalog.Match(req.Text))
}

func (h *handler) createSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validateLanguage(req.Source, true); err != nil {
		return h.fail(c, err)
	}
	if req.IntervalMs < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_interval",
			Message: "interval_ms must be positive",
		})
	}

	intervalMs := req.IntervalMs
	if intervalMs == 0 {
		intervalMs = h.DefaultIntervalMs
	}

	session, err := h.Sessions.Open(c.Request().Context(), req.Source, intervalMs)
	if err != nil {
		return h.fail(c, err)
	}

	token, err := h.Tokens.GenerateSessionToken(session.ID, session.ExpiresAt)
	if err != nil {
		h.Logger.Error("Failed to generate session token",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	return c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID:  session.ID,
		Token:      token,
		ExpiresAt:  session.ExpiresAt,
		IntervalMs: session.IntervalMs,
	})
}

// requireSession checks that the bearer token grants access to :id
func (h *handler) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := auth.BearerToken(c.Request().Header.Get("Authorization"))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "JWT token is required in Authorization header",
			})
		}

		claims, err := h.Tokens.Authorize(token, c.Param("id"))
		if errors.Is(err, auth.ErrSessionMismatch) {
			return c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Token does not grant access to this session",
			})
		}
		if err != nil {
			h.Logger.Warn("Rejected session token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired JWT token",
			})
		}

		c.Set(sessionIDKey, claims.SessionID)
		return next(c)
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

func (h *handler) getSession(c echo.Context) error {
	view, err := h.Sessions.Get(c.Request().Context(), sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *handler) deleteSession(c echo.Context) error {
	if err := h.Sessions.Close(c.Request().Context(), sessionID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) convertInSession(c echo.Context) error {
	var req ConvertRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validateLanguage(req.Source, true); err != nil {
		return h.fail(c, err)
	}

	conversion, err := h.Sessions.Convert(c.Request().Context(), sessionID(c), req.Text, req.Source)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, conversion)
}

func (h *handler) startPlayback(c echo.Context) error {
	started, err := h.Sessions.Start(c.Request().Context(), sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, PlaybackResponse{Running: started})
}

func (h *handler) stopPlayback(c echo.Context) error {
	if err := h.Sessions.Stop(c.Request().Context(), sessionID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, PlaybackResponse{Running: false})
}

func (h *handler) setInterval(c echo.Context) error {
	var req IntervalRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if req.IntervalMs <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_interval",
			Message: "interval_ms must be positive",
		})
	}

	applied, err := h.Sessions.SetInterval(c.Request().Context(), sessionID(c), req.IntervalMs)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, IntervalResponse{IntervalMs: applied})
}

func (h *handler) playGesture(c echo.Context) error {
	var req GestureMatchRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if strings.TrimSpace(req.Text) == "" {
		return h.fail(c, entities.ErrEmptyInput)
	}

	match, err := h.Sessions.PlayGesture(c.Request().Context(), sessionID(c), req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusAccepted, match)
}

// websocketWithAuth handles WebSocket connections with JWT authentication.
// Browsers cannot set headers on a WebSocket handshake, so the token may
// also come from the token query parameter.
func (h *handler) websocketWithAuth(c echo.Context) error {
	token, err := auth.BearerToken(c.Request().Header.Get("Authorization"))
	if err != nil {
		token = c.QueryParam("token")
	}

	if token == "" {
		h.Logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required",
		})
	}

	claims, err := h.Tokens.ValidateToken(token)
	if err != nil {
		h.Logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	if _, err := h.Sessions.Get(c.Request().Context(), claims.SessionID); err != nil {
		return h.fail(c, err)
	}

	h.Logger.Info("WebSocket connection authenticated", zap.String("session_id", claims.SessionID))

	return websocket.HandleWebSocketWithAuth(h.Hub, c, claims.SessionID, h.Logger)
}
