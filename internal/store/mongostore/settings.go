package mongostore

import (
	"context"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type SettingsRepository struct {
	col *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{col: db.Collection("settings")}
}

var _ store.SettingsRepository = (*SettingsRepository)(nil)

func (r *SettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	var s model.Settings
	err := r.col.FindOne(ctx, bson.M{"_id": model.SettingsIDStr}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("Settings")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &s, nil
}

func (r *SettingsRepository) Insert(ctx context.Context, s *model.Settings) error {
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *SettingsRepository) Replace(ctx context.Context, s *model.Settings) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return store.Database(err)
	}
	if res.MatchedCount == 0 {
		return store.NotFound("Settings")
	}
	return nil
}
