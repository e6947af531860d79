package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
)

const sessionCollection = "sessions"

// sessionDocument is the stored shape of entities.Session
type sessionDocument struct {
	ID                string    `bson:"_id"`
	SourceLang        string    `bson:"source_lang"`
	Text              string    `bson:"text"`
	EnglishText       string    `bson:"english_text"`
	TranslationFailed bool      `bson:"translation_failed"`
	IntervalMs        int       `bson:"interval_ms"`
	CreatedAt         time.Time `bson:"created_at"`
	LastActiveAt      time.Time `bson:"last_active_at"`
	ExpiresAt         time.Time `bson:"expires_at"`
	Status            string    `bson:"status"`
}

func toDocument(s *entities.Session) sessionDocument {
	return sessionDocument{
		ID:                s.ID,
		SourceLang:        s.SourceLang,
		Text:              s.Text,
		EnglishText:       s.EnglishText,
		TranslationFailed: s.TranslationFailed,
		IntervalMs:        s.IntervalMs,
		CreatedAt:         s.CreatedAt.UTC(),
		LastActiveAt:      s.LastActiveAt.UTC(),
		ExpiresAt:         s.ExpiresAt.UTC(),
		Status:            string(s.Status),
	}
}

func (d sessionDocument) toEntity() *entities.Session {
	return &entities.Session{
		ID:                d.ID,
		SourceLang:        d.SourceLang,
		Text:              d.Text,
		EnglishText:       d.EnglishText,
		TranslationFailed: d.TranslationFailed,
		IntervalMs:        d.IntervalMs,
		CreatedAt:         d.CreatedAt,
		LastActiveAt:      d.LastActiveAt,
		ExpiresAt:         d.ExpiresAt,
		Status:            entities.SessionStatus(d.Status),
	}
}

// SessionRepository implements repositories.SessionRepository on MongoDB.
// Documents are keyed by the session UUID.
type SessionRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new MongoDB session repository
func NewSessionRepository(db *mongo.Database, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		collection: db.Collection(sessionCollection),
		logger:     logger,
	}
}

// EnsureIndexes creates the index used by expiry scans
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	// Index on status and expires_at for cleanup operations
	statusExpiresIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "expires_at", Value: 1},
		},
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, statusExpiresIndex); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	r.logger.Info("Session indexes created successfully")
	return nil
}

// Create implements repositories.SessionRepository
func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	if _, err := r.collection.InsertOne(ctx, toDocument(session)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New("session with this ID already exists")
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Debug("Session stored", zap.String("session_id", session.ID))
	return nil
}

// GetByID implements repositories.SessionRepository
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	if id == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	var doc sessionDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	return doc.toEntity(), nil
}

// Update implements repositories.SessionRepository. The creation time of
// the stored document is never overwritten.
func (r *SessionRepository) Update(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	doc := toDocument(session)
	update := bson.M{
		"$set": bson.M{
			"source_lang":        doc.SourceLang,
			"text":               doc.Text,
			"english_text":       doc.EnglishText,
			"translation_failed": doc.TranslationFailed,
			"interval_ms":        doc.IntervalMs,
			"last_active_at":     doc.LastActiveAt,
			"expires_at":         doc.ExpiresAt,
			"status":             doc.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": session.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.MatchedCount == 0 {
		return entities.ErrSessionNotFound
	}
	return nil
}

// Delete implements repositories.SessionRepository
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("session ID cannot be empty")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.DeletedCount == 0 {
		return entities.ErrSessionNotFound
	}
	return nil
}

// ListExpired implements repositories.SessionRepository
func (r *SessionRepository) ListExpired(ctx context.Context, now time.Time) ([]*entities.Session, error) {
	filter := bson.M{
		"status":     string(entities.SessionStatusActive),
		"expires_at": bson.M{"$lt": now.UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "expires_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := make([]*entities.Session, 0)
	for cursor.Next(ctx) {
		var doc sessionDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Error("Failed to decode session", zap.Error(err))
			continue
		}
		sessions = append(sessions, doc.toEntity())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return sessions, nil
}
