// Package store defines the credential-store contracts the core depends on
// (spec.md §2 "Credential store"). Concrete implementations live in
// store/mongostore.
package store

import (
	"context"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/pkg/kernel"
)

// UserRepository persists User documents.
type UserRepository interface {
	Insert(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id kernel.UserID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByToken(ctx context.Context, token string) (*model.User, error)
	Replace(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id kernel.UserID) error
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.User], error)
	Count(ctx context.Context) (int64, error)
	RemoveRoleFromAll(ctx context.Context, role kernel.RoleID) error
}

// RoleRepository persists Role documents.
type RoleRepository interface {
	Insert(ctx context.Context, r *model.Role) error
	FindByID(ctx context.Context, id kernel.RoleID) (*model.Role, error)
	Replace(ctx context.Context, r *model.Role) error
	Delete(ctx context.Context, id kernel.RoleID) error
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.Role], error)
}

// OAuthApplicationRepository persists OAuthApplication documents.
type OAuthApplicationRepository interface {
	Insert(ctx context.Context, a *model.OAuthApplication) error
	FindByID(ctx context.Context, id string) (*model.OAuthApplication, error)
	Replace(ctx context.Context, a *model.OAuthApplication) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.OAuthApplication], error)
	ListByOwner(ctx context.Context, owner kernel.UserID) ([]*model.OAuthApplication, error)
}

// OAuthTokenRepository persists OAuthToken documents.
type OAuthTokenRepository interface {
	Insert(ctx context.Context, t *model.OAuthToken) error
	FindByToken(ctx context.Context, token string) (*model.OAuthToken, error)
	FindByUserAndApplication(ctx context.Context, userID kernel.UserID, appID string) (*model.OAuthToken, error)
	Replace(ctx context.Context, t *model.OAuthToken) error
	Delete(ctx context.Context, id string) error
	DeleteAllByApplication(ctx context.Context, appID string) error
	DeleteAllByUser(ctx context.Context, userID kernel.UserID) error
}

// PasskeyRepository persists Passkey documents.
type PasskeyRepository interface {
	Insert(ctx context.Context, p *model.Passkey) error
	FindByID(ctx context.Context, id string) (*model.Passkey, error)
	ListByOwner(ctx context.Context, owner kernel.UserID) ([]*model.Passkey, error)
	Replace(ctx context.Context, p *model.Passkey) error
	Delete(ctx context.Context, id string) error
}

// RegistrationTokenRepository persists RegistrationToken documents.
type RegistrationTokenRepository interface {
	Insert(ctx context.Context, t *model.RegistrationToken) error
	FindByID(ctx context.Context, id string) (*model.RegistrationToken, error)
	FindByCode(ctx context.Context, code string) (*model.RegistrationToken, error)
	Replace(ctx context.Context, t *model.RegistrationToken) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.RegistrationToken], error)
}

// SettingsRepository persists the Settings singleton.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	Insert(ctx context.Context, s *model.Settings) error
	Replace(ctx context.Context, s *model.Settings) error
}

// AuditLogRepository persists append-only AuditLog entries, one collection
// per entity type (spec.md §6).
type AuditLogRepository interface {
	Append(ctx context.Context, entry *model.AuditLog) error
	ListByEntityType(ctx context.Context, entityType model.EntityType, opts kernel.PaginationOptions) (kernel.Paginated[*model.AuditLog], error)
	ListByAuthor(ctx context.Context, author kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[*model.AuditLog], error)
}

// SessionRepository persists TTL-bounded Session scratch records (spec.md
// §4.5).
type SessionRepository interface {
	Insert(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}
