package mongostore

import (
	"context"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type OAuthTokenRepository struct {
	col *mongo.Collection
}

func NewOAuthTokenRepository(db *mongo.Database) *OAuthTokenRepository {
	return &OAuthTokenRepository{col: db.Collection("oauth_tokens")}
}

var _ store.OAuthTokenRepository = (*OAuthTokenRepository)(nil)

func (r *OAuthTokenRepository) Insert(ctx context.Context, t *model.OAuthToken) error {
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *OAuthTokenRepository) FindByToken(ctx context.Context, token string) (*model.OAuthToken, error) {
	var t model.OAuthToken
	err := r.col.FindOne(ctx, bson.M{"_id": token}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("OAuthToken")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &t, nil
}

func (r *OAuthTokenRepository) FindByUserAndApplication(ctx context.Context, userID kernel.UserID, appID string) (*model.OAuthToken, error) {
	var t model.OAuthToken
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "application_id": appID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("OAuthToken")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &t, nil
}

func (r *OAuthTokenRepository) Replace(ctx context.Context, t *model.OAuthToken) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return store.Database(err)
	}
	if res.MatchedCount == 0 {
		return store.NotFound("OAuthToken")
	}
	return nil
}

func (r *OAuthTokenRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Database(err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound("OAuthToken")
	}
	return nil
}

func (r *OAuthTokenRepository) DeleteAllByApplication(ctx context.Context, appID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"application_id": appID})
	if err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *OAuthTokenRepository) DeleteAllByUser(ctx context.Context, userID kernel.UserID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return store.Database(err)
	}
	return nil
}
