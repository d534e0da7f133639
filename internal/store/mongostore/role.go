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

type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection("roles")}
}

var _ store.RoleRepository = (*RoleRepository)(nil)

func (r *RoleRepository) Insert(ctx context.Context, role *model.Role) error {
	if _, err := r.col.InsertOne(ctx, role); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id kernel.RoleID) (*model.Role, error) {
	var role model.Role
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("Role")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &role, nil
}

func (r *RoleRepository) Replace(ctx context.Context, role *model.Role) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": role.ID}, role)
	if err != nil {
		return store.Database(err)
	}
	if res.MatchedCount == 0 {
		return store.NotFound("Role")
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id kernel.RoleID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Database(err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound("Role")
	}
	return nil
}

func (r *RoleRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.Role], error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return kernel.Paginated[*model.Role]{}, store.Database(err)
	}

	skip := int64((opts.Page - 1) * opts.PageSize)
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(int64(opts.PageSize)))
	if err != nil {
		return kernel.Paginated[*model.Role]{}, store.Database(err)
	}
	defer cur.Close(ctx)

	var roles []*model.Role
	if err := cur.All(ctx, &roles); err != nil {
		return kernel.Paginated[*model.Role]{}, store.Database(err)
	}

	return kernel.NewPaginated(roles, opts.Page, opts.PageSize, int(total)), nil
}
