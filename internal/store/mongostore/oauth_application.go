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

type OAuthApplicationRepository struct {
	col *mongo.Collection
}

func NewOAuthApplicationRepository(db *mongo.Database) *OAuthApplicationRepository {
	return &OAuthApplicationRepository{col: db.Collection("oauth_applications")}
}

var _ store.OAuthApplicationRepository = (*OAuthApplicationRepository)(nil)

func (r *OAuthApplicationRepository) Insert(ctx context.Context, a *model.OAuthApplication) error {
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *OAuthApplicationRepository) FindByID(ctx context.Context, id string) (*model.OAuthApplication, error) {
	var a model.OAuthApplication
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("OAuthApplication")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &a, nil
}

func (r *OAuthApplicationRepository) Replace(ctx context.Context, a *model.OAuthApplication) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return store.Database(err)
	}
	if res.MatchedCount == 0 {
		return store.NotFound("OAuthApplication")
	}
	return nil
}

func (r *OAuthApplicationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Database(err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound("OAuthApplication")
	}
	return nil
}

func (r *OAuthApplicationRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.OAuthApplication], error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return kernel.Paginated[*model.OAuthApplication]{}, store.Database(err)
	}

	skip := int64((opts.Page - 1) * opts.PageSize)
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(int64(opts.PageSize)))
	if err != nil {
		return kernel.Paginated[*model.OAuthApplication]{}, store.Database(err)
	}
	defer cur.Close(ctx)

	var apps []*model.OAuthApplication
	if err := cur.All(ctx, &apps); err != nil {
		return kernel.Paginated[*model.OAuthApplication]{}, store.Database(err)
	}

	return kernel.NewPaginated(apps, opts.Page, opts.PageSize, int(total)), nil
}

func (r *OAuthApplicationRepository) ListByOwner(ctx context.Context, owner kernel.UserID) ([]*model.OAuthApplication, error) {
	cur, err := r.col.Find(ctx, bson.M{"owner_id": owner})
	if err != nil {
		return nil, store.Database(err)
	}
	defer cur.Close(ctx)

	var apps []*model.OAuthApplication
	if err := cur.All(ctx, &apps); err != nil {
		return nil, store.Database(err)
	}
	return apps, nil
}
