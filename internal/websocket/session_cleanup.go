package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// SessionExpirer releases sessions whose expiry has passed
type SessionExpirer interface {
	ExpireSessions(ctx context.Context) (int, error)
}

// SessionCleanupService handles background tasks for session management
type SessionCleanupService struct {
	expirer  SessionExpirer
	clock    clock.Clock
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewSessionCleanupService creates a new session cleanup service
func NewSessionCleanupService(expirer SessionExpirer, clk clock.Clock, interval time.Duration, logger *zap.Logger) *SessionCleanupService {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionCleanupService{
		expirer:  expirer,
		clock:    clk,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (s *SessionCleanupService) Start() {
	ticker := s.clock.Ticker(s.interval)
	s.wg.Add(1)
	go s.cleanupLoop(ticker)
	s.logger.Info("Session cleanup service started", zap.Duration("interval", s.interval))
}

// Stop gracefully stops the cleanup service and waits for the loop to exit
func (s *SessionCleanupService) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.logger.Info("Session cleanup service stopped")
}

// cleanupLoop runs the cleanup process periodically
func (s *SessionCleanupService) cleanupLoop(ticker *clock.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunCleanup()
		}
	}
}

// RunCleanup performs one expiry pass
func (s *SessionCleanupService) RunCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.expirer.ExpireSessions(ctx)
	if err != nil {
		s.logger.Error("Failed to expire sessions", zap.Error(err))
		return
	}

	s.logger.Debug("Session cleanup completed", zap.Int("expired", count))
}
