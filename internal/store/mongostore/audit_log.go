package mongostore

import (
	"context"
	"sort"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLogRepository appends to one collection per entity type in the logs
// database (spec.md §6), grounded on original_source/models/audit_log.rs.
type AuditLogRepository struct {
	db *mongo.Database
}

func NewAuditLogRepository(logsDB *mongo.Database) *AuditLogRepository {
	return &AuditLogRepository{db: logsDB}
}

var _ store.AuditLogRepository = (*AuditLogRepository)(nil)

func (r *AuditLogRepository) collection(t model.EntityType) *mongo.Collection {
	return r.db.Collection(t.Collection())
}

func (r *AuditLogRepository) Append(ctx context.Context, entry *model.AuditLog) error {
	if _, err := r.collection(entry.EntityType).InsertOne(ctx, entry); err != nil {
		return store.Database(err)
	}
	return nil
}

func (r *AuditLogRepository) ListByEntityType(ctx context.Context, entityType model.EntityType, opts kernel.PaginationOptions) (kernel.Paginated[*model.AuditLog], error) {
	col := r.collection(entityType)

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return kernel.Paginated[*model.AuditLog]{}, store.Database(err)
	}

	skip := int64((opts.Page - 1) * opts.PageSize)
	cur, err := col.Find(ctx, bson.M{}, options.Find().
		SetSkip(skip).SetLimit(int64(opts.PageSize)).
		SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return kernel.Paginated[*model.AuditLog]{}, store.Database(err)
	}
	defer cur.Close(ctx)

	var out []*model.AuditLog
	if err := cur.All(ctx, &out); err != nil {
		return kernel.Paginated[*model.AuditLog]{}, store.Database(err)
	}

	return kernel.NewPaginated(out, opts.Page, opts.PageSize, int(total)), nil
}

// ListByAuthor aggregates across every entity-type collection filtered by
// author_id, sorted by created_at descending — carried forward from
// original_source/models/audit_log.rs::get_by_user_id (SPEC_FULL.md
// "Supplemented features").
func (r *AuditLogRepository) ListByAuthor(ctx context.Context, author kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[*model.AuditLog], error) {
	var all []*model.AuditLog

	for _, t := range model.AllEntityTypes {
		cur, err := r.collection(t).Find(ctx, bson.M{"author_id": author})
		if err != nil {
			return kernel.Paginated[*model.AuditLog]{}, store.Database(err)
		}

		var entries []*model.AuditLog
		err = cur.All(ctx, &entries)
		cur.Close(ctx)
		if err != nil {
			return kernel.Paginated[*model.AuditLog]{}, store.Database(err)
		}

		all = append(all, entries...)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (opts.Page - 1) * opts.PageSize
	if start > total {
		start = total
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}

	return kernel.NewPaginated(all[start:end], opts.Page, opts.PageSize, total), nil
}
