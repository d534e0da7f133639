package mongostore

import (
	"context"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type PasskeyRepository struct {
	col *mongo.Collection
}

func NewPasskeyRepository(db *mongo.Database) *PasskeyRepository {
	return &PasskeyRepository{col: db.Collection("passkeys")}
}

var _ store.PasskeyRepository = (*PasskeyRepository)(nil)

func (r *PasskeyRepository) Insert(ctx context.Context, p *model.Passkey) error {
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *PasskeyRepository) FindByID(ctx context.Context, id string) (*model.Passkey, error) {
	var p model.Passkey
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("Passkey")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &p, nil
}

func (r *PasskeyRepository) ListByOwner(ctx context.Context, owner kernel.UserID) ([]*model.Passkey, error) {
	cur, err := r.col.Find(ctx, bson.M{"owner_id": owner})
	if err != nil {
		return nil, store.Database(err)
	}
	defer cur.Close(ctx)

	var out []*model.Passkey
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.Database(err)
	}
	return out, nil
}

func (r *PasskeyRepository) Replace(ctx context.Context, p *model.Passkey) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return store.Database(err)
	}
	if res.MatchedCount == 0 {
		return store.NotFound("Passkey")
	}
	return nil
}

func (r *PasskeyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Database(err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound("Passkey")
	}
	return nil
}
