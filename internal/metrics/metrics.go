package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Translation outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isyarat_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "isyarat_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	TranslationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isyarat_translation_attempts_total",
			Help: "Translation provider attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	TranslationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "isyarat_translation_latency_seconds",
			Help:    "Translation provider latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	Conversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isyarat_conversions_total",
			Help: "Text to sign conversions, labelled by whether translation fell back to the source text",
		},
		[]string{"degraded"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "isyarat_active_sessions",
			Help: "Number of live playback sessions",
		},
	)

	PlaybackTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "isyarat_playback_ticks_total",
			Help: "Total number of frames advanced by session players",
		},
	)

	GesturePlays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isyarat_gesture_plays_total",
			Help: "One-shot gesture playbacks by match kind",
		},
		[]string{"kind"},
	)
)

// ObserveTranslation records one provider attempt
func ObserveTranslation(provider, outcome string, elapsed time.Duration) {
	TranslationAttempts.WithLabelValues(provider, outcome).Inc()
	TranslationLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveConversion records one orchestrated conversion
func ObserveConversion(degraded bool) {
	Conversions.WithLabelValues(strconv.FormatBool(degraded)).Inc()
}

// Middleware records request count and duration per route
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			method := c.Request().Method
			RequestCount.WithLabelValues(method, endpoint, strconv.Itoa(c.Response().Status)).Inc()
			RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
