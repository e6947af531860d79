package repositories

import (
	"context"
	"time"

	"github.com/satriahrh/isyarat/domain/entities"
)

// SessionRepository defines data access methods for conversion sessions
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetByID(ctx context.Context, id string) (*entities.Session, error)
	Update(ctx context.Context, session *entities.Session) error
	Delete(ctx context.Context, id string) error
	// ListExpired returns active sessions whose expiry is before now
	ListExpired(ctx context.Context, now time.Time) ([]*entities.Session, error)
}
