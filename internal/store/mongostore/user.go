package mongostore

import (
	"context"
	"strings"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

var _ store.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Insert(ctx context.Context, u *model.User) error {
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id kernel.UserID) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("User")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("User")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByToken(ctx context.Context, token string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"token": token}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound("User")
	}
	if err != nil {
		return nil, store.Database(err)
	}
	return &u, nil
}

func (r *UserRepository) Replace(ctx context.Context, u *model.User) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return store.Database(err)
	}
	if res.MatchedCount == 0 {
		return store.NotFound("User")
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id kernel.UserID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Database(err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound("User")
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.User], error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return kernel.Paginated[*model.User]{}, store.Database(err)
	}

	skip := int64((opts.Page - 1) * opts.PageSize)
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(int64(opts.PageSize)).SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return kernel.Paginated[*model.User]{}, store.Database(err)
	}
	defer cur.Close(ctx)

	var users []*model.User
	if err := cur.All(ctx, &users); err != nil {
		return kernel.Paginated[*model.User]{}, store.Database(err)
	}

	return kernel.NewPaginated(users, opts.Page, opts.PageSize, int(total)), nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, store.Database(err)
	}
	return n, nil
}

func (r *UserRepository) RemoveRoleFromAll(ctx context.Context, role kernel.RoleID) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"roles": role}, bson.M{"$pull": bson.M{"roles": role}})
	if err != nil {
		return store.Database(err)
	}
	return nil
}
