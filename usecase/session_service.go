package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
	"github.com/satriahrh/isyarat/internal/metrics"
	"github.com/satriahrh/isyarat/internal/playback"
	"github.com/satriahrh/isyarat/internal/sign"
)

// Publisher receives live events for a session. Methods are called from
// timer callbacks with playback locks held, so they must not block and
// must not call back into the SessionService.
type Publisher interface {
	PublishConversion(sessionID string, conversion Conversion)
	PublishFrame(sessionID string, tick playback.Tick)
	PublishPlayback(sessionID string, running bool)
	PublishGesture(sessionID string, event playback.GestureEvent)
	PublishClosed(sessionID string, reason error)
}

// SessionView is the externally visible state of a session
type SessionView struct {
	Session  entities.Session            `json:"session"`
	Playback playback.Snapshot           `json:"playback"`
	Gesture  *entities.GestureDescriptor `json:"gesture,omitempty"`
}

// liveSession holds the timers owned by one session
type liveSession struct {
	player   *playback.Player
	animator *playback.Animator
}

func (l *liveSession) release() {
	l.player.Stop()
	l.animator.Cancel()
}

// SessionService owns one frame player and one gesture animator per
// session and releases their timers when the session ends
type SessionService struct {
	sessionRepo repositories.SessionRepository
	conversion  *ConversionService
	catalog     *sign.Catalog
	clock       clock.Clock
	ttl         time.Duration
	logger      *zap.Logger

	mu        sync.Mutex
	live      map[string]*liveSession
	publisher Publisher
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repositories.SessionRepository,
	conversion *ConversionService,
	catalog *sign.Catalog,
	clk clock.Clock,
	ttl time.Duration,
	logger *zap.Logger,
) *SessionService {
	if clk == nil {
		clk = clock.New()
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		conversion:  conversion,
		catalog:     catalog,
		clock:       clk,
		ttl:         ttl,
		logger:      logger,
		live:        make(map[string]*liveSession),
	}
}

// SetPublisher installs the event sink. A nil publisher drops events.
func (s *SessionService) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

func (s *SessionService) pub() Publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publisher
}

// Open creates a session with its own idle player
func (s *SessionService) Open(ctx context.Context, sourceLang string, intervalMs int) (*entities.Session, error) {
	session := entities.NewSession(sourceLang, intervalMs, s.clock.Now(), s.ttl)
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.attach(session)

	s.logger.Info("Session opened",
		zap.String("sessionID", session.ID),
		zap.String("source", session.SourceLang),
		zap.Int("intervalMs", session.IntervalMs))

	return session, nil
}

// active loads a session and its timers, failing for unknown or expired
// sessions. Expired sessions are released on the way out.
func (s *SessionService) active(ctx context.Context, id string) (*entities.Session, *liveSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if session.IsExpired(s.clock.Now()) {
		s.release(ctx, session, entities.ErrSessionExpired)
		return nil, nil, entities.ErrSessionExpired
	}

	s.mu.Lock()
	live, ok := s.live[id]
	s.mu.Unlock()
	if !ok {
		// Stored by an earlier process; playback restarts idle on the
		// last converted text
		live = s.attach(session)
		s.logger.Info("Session restored", zap.String("sessionID", id))
	}

	return session, live, nil
}

// attach creates the timers for session, or returns the existing ones
func (s *SessionService) attach(session *entities.Session) *liveSession {
	id := session.ID

	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.live[id]; ok {
		return live
	}

	live := &liveSession{}
	live.player = playback.NewPlayer(s.clock, playback.DurationFromMs(session.IntervalMs), func(tick playback.Tick) {
		metrics.PlaybackTicks.Inc()
		if p := s.pub(); p != nil {
			p.PublishFrame(id, tick)
		}
	})
	live.animator = playback.NewAnimator(s.clock, func(event playback.GestureEvent) {
		if p := s.pub(); p != nil {
			p.PublishGesture(id, event)
		}
	})
	if session.EnglishText != "" {
		live.player.Load(s.conversion.Frames(session.EnglishText))
	}

	s.live[id] = live
	metrics.ActiveSessions.Inc()
	return live
}

// touch extends the session and persists it
func (s *SessionService) touch(ctx context.Context, session *entities.Session) error {
	session.Touch(s.clock.Now(), s.ttl)
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Get returns the session together with its playback state
func (s *SessionService) Get(ctx context.Context, id string) (*SessionView, error) {
	session, live, err := s.active(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &SessionView{
		Session:  *session,
		Playback: live.player.Snapshot(),
	}
	if g, ok := live.animator.Current(); ok {
		view.Gesture = &g
	}
	return view, nil
}

// Convert converts text for the session and replaces its frames. Playback
// is stopped and rewound; the caller starts it again.
func (s *SessionService) Convert(ctx context.Context, id, text, sourceLang string) (Conversion, error) {
	session, live, err := s.active(ctx, id)
	if err != nil {
		return Conversion{}, err
	}

	if sourceLang == "" {
		sourceLang = session.SourceLang
	}

	conversion, err := s.conversion.Apply(ctx, live.player, text, sourceLang)
	if err != nil {
		return Conversion{}, err
	}

	session.SourceLang = conversion.SourceLang
	session.RecordConversion(conversion.SourceText, conversion.EnglishText, conversion.TranslationFailed)
	if err := s.touch(ctx, session); err != nil {
		return Conversion{}, err
	}

	if p := s.pub(); p != nil {
		p.PublishConversion(id, conversion)
		p.PublishPlayback(id, false)
	}
	return conversion, nil
}

// Start begins cyclic playback. It reports false, without error, when the
// session has no frames yet.
func (s *SessionService) Start(ctx context.Context, id string) (bool, error) {
	session, live, err := s.active(ctx, id)
	if err != nil {
		return false, err
	}

	started := live.player.Start()
	if err := s.touch(ctx, session); err != nil {
		return started, err
	}

	if started {
		if p := s.pub(); p != nil {
			p.PublishPlayback(id, true)
		}
	}
	return started, nil
}

// Stop halts cyclic playback. Stopping a stopped session is not an error.
func (s *SessionService) Stop(ctx context.Context, id string) error {
	session, live, err := s.active(ctx, id)
	if err != nil {
		return err
	}

	live.player.Stop()
	if err := s.touch(ctx, session); err != nil {
		return err
	}

	if p := s.pub(); p != nil {
		p.PublishPlayback(id, false)
	}
	return nil
}

// SetInterval changes the playback interval and returns the interval
// actually applied, in milliseconds
func (s *SessionService) SetInterval(ctx context.Context, id string, intervalMs int) (int, error) {
	session, live, err := s.active(ctx, id)
	if err != nil {
		return 0, err
	}

	applied := live.player.SetInterval(playback.DurationFromMs(intervalMs))
	session.IntervalMs = int(applied / time.Millisecond)
	if err := s.touch(ctx, session); err != nil {
		return 0, err
	}
	return session.IntervalMs, nil
}

// PlayGesture matches text against the catalog and animates the result.
// It fails with ErrBusy while another gesture is playing.
func (s *SessionService) PlayGesture(ctx context.Context, id, text string) (sign.Match, error) {
	session, live, err := s.active(ctx, id)
	if err != nil {
		return sign.Match{}, err
	}

	match := s.catalog.Match(text)
	if _, err := live.animator.Play(match.Gesture); err != nil {
		return sign.Match{}, err
	}
	metrics.GesturePlays.WithLabelValues(string(match.Kind)).Inc()

	s.logger.Info("Gesture playing",
		zap.String("sessionID", id),
		zap.String("gesture", match.Gesture.Name),
		zap.String("match", string(match.Kind)))

	return match, s.touch(ctx, session)
}

// Close terminates the session and releases its timers
func (s *SessionService) Close(ctx context.Context, id string) error {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	session.Terminate()
	s.release(ctx, session, nil)
	return nil
}

// ExpireSessions releases every session whose expiry has passed and
// returns how many were released
func (s *SessionService) ExpireSessions(ctx context.Context) (int, error) {
	expired, err := s.sessionRepo.ListExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}

	for _, session := range expired {
		session.Expire()
		s.release(ctx, session, entities.ErrSessionExpired)
	}

	if len(expired) > 0 {
		s.logger.Info("Expired sessions released", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

// Shutdown stops the timers of every live session. Stored sessions are
// kept so that a later process can restore them.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	live := s.live
	s.live = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, l := range live {
		l.release()
		metrics.ActiveSessions.Dec()
	}
	s.logger.Info("Live sessions detached", zap.Int("count", len(live)))
}

// ActiveCount returns the number of live sessions
func (s *SessionService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (s *SessionService) release(ctx context.Context, session *entities.Session, reason error) {
	s.mu.Lock()
	live, ok := s.live[session.ID]
	delete(s.live, session.ID)
	publisher := s.publisher
	s.mu.Unlock()

	if ok {
		live.release()
		metrics.ActiveSessions.Dec()
	}

	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil && !errors.Is(err, entities.ErrSessionNotFound) {
		s.logger.Warn("Failed to delete session", zap.String("sessionID", session.ID), zap.Error(err))
	}

	if publisher != nil {
		publisher.PublishClosed(session.ID, reason)
	}

	s.logger.Info("Session closed",
		zap.String("sessionID", session.ID),
		zap.String("status", string(session.Status)))
}
