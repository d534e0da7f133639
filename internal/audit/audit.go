// Package audit implements the Audit log writer component (spec.md §2,
// §4.9): append-only, per-entity-type records with old/new value maps and
// redaction of sensitive fields.
package audit

import (
	"context"
	"time"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/asyncx"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/authcore/authcore/pkg/logx"
	"github.com/google/uuid"
)

// Writer appends audit entries. Writes are best-effort: a failure is
// logged and never propagated to the caller (spec.md §5, §7: "audit-log
// writes are best-effort and their failure is logged but does not fail
// the primary operation").
type Writer struct {
	repo store.AuditLogRepository
}

func NewWriter(repo store.AuditLogRepository) *Writer {
	return &Writer{repo: repo}
}

// Log appends a single entry asynchronously.
func (w *Writer) Log(ctx context.Context, entityType model.EntityType, entityID string, action model.Action, author kernel.UserID, reason string, oldValues, newValues map[string]any) {
	entry := &model.AuditLog{
		ID:         uuid.NewString(),
		EntityID:   entityID,
		EntityType: entityType,
		Action:     action,
		Reason:     reason,
		AuthorID:   author,
		OldValues:  oldValues,
		NewValues:  newValues,
		CreatedAt:  time.Now().UTC(),
	}

	asyncx.Do(func() {
		bg := context.Background()
		if err := w.repo.Append(bg, entry); err != nil {
			logx.WithError(err).
				WithFields(logx.Fields{"entity_type": entityType, "entity_id": entityID, "action": action}).
				Error("audit log write failed")
		}
	})
	_ = ctx
}

// LogCreate/LogUpdate/LogDelete/LogLogin are thin conveniences over Log.
func (w *Writer) LogCreate(ctx context.Context, entityType model.EntityType, entityID string, author kernel.UserID, newValues map[string]any) {
	w.Log(ctx, entityType, entityID, model.ActionCreateLog, author, "", nil, newValues)
}

func (w *Writer) LogUpdate(ctx context.Context, entityType model.EntityType, entityID string, author kernel.UserID, oldValues, newValues map[string]any) {
	w.Log(ctx, entityType, entityID, model.ActionUpdateLog, author, "", oldValues, newValues)
}

func (w *Writer) LogDelete(ctx context.Context, entityType model.EntityType, entityID string, author kernel.UserID) {
	w.Log(ctx, entityType, entityID, model.ActionDeleteLog, author, "", nil, nil)
}

func (w *Writer) LogLogin(ctx context.Context, entityID string, author kernel.UserID, reason string) {
	w.Log(ctx, model.EntityUser, entityID, model.ActionLoginLog, author, reason, nil, nil)
}
