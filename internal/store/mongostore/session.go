package mongostore

import (
	"context"
	"time"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionRepository persists TTL-bounded Session scratch records with
// lazy expiry on read (spec.md §4.5, §9: replaces the source's in-memory
// OAUTH_CODES/MFA_SESSIONS maps with a store-backed variant).
type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection("sessions")}
}

var _ store.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Insert(ctx context.Context, s *model.Session) error {
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("Session")
	}
	if err != nil {
		return nil, store.Database(err)
	}

	if s.IsExpired(time.Now().UTC()) {
		_, _ = r.col.DeleteOne(ctx, bson.M{"_id": id})
		return nil, store.NotFound("Session")
	}

	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return store.Database(err)
	}
	return nil
}
