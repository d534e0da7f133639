package mongostore

import (
	"context"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RegistrationTokenRepository struct {
	col *mongo.Collection
}

func NewRegistrationTokenRepository(db *mongo.Database) *RegistrationTokenRepository {
	return &RegistrationTokenRepository{col: db.Collection("registration_tokens")}
}

var _ store.RegistrationTokenRepository = (*RegistrationTokenRepository)(nil)

func (r *RegistrationTokenRepository) Insert(ctx context.Context, t *model.RegistrationToken) error {
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *RegistrationTokenRepository) FindByID(ctx context.Context, id string) (*model.RegistrationToken, error) {
	var t model.RegistrationToken
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("RegistrationToken")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &t, nil
}

func (r *RegistrationTokenRepository) FindByCode(ctx context.Context, code string) (*model.RegistrationToken, error) {
	var t model.RegistrationToken
	err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("RegistrationToken")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &t, nil
}

func (r *RegistrationTokenRepository) Replace(ctx context.Context, t *model.RegistrationToken) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return store.Database(err)
	}
	if res.MatchedCount == 0 {
		return store.NotFound("RegistrationToken")
	}
	return nil
}

func (r *RegistrationTokenRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Database(err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound("RegistrationToken")
	}
	return nil
}

func (r *RegistrationTokenRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.RegistrationToken], error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return kernel.Paginated[*model.RegistrationToken]{}, store.Database(err)
	}

	skip := int64((opts.Page - 1) * opts.PageSize)
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(int64(opts.PageSize)))
	if err != nil {
		return kernel.Paginated[*model.RegistrationToken]{}, store.Database(err)
	}
	defer cur.Close(ctx)

	var out []*model.RegistrationToken
	if err := cur.All(ctx, &out); err != nil {
		return kernel.Paginated[*model.RegistrationToken]{}, store.Database(err)
	}

	return kernel.NewPaginated(out, opts.Page, opts.PageSize, int(total)), nil
}
