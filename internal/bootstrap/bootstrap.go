// Package bootstrap implements the Bootstrap and invariants component
// (spec.md §4.10): idempotent settings/role/system-user seeding on cold
// start, grounded on original_source/main.rs's startup sequence.
package bootstrap

import (
	"context"
	"time"

	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/config"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/authcore/authcore/pkg/logx"
)

var registry = errx.NewRegistry("BOOTSTRAP")

var ErrMissingSystemCredentials = registry.Register("MISSING_SYSTEM_CREDENTIALS", errx.TypeInternal, 500, "SYSTEM_EMAIL/SYSTEM_PASSWORD not set and no users exist")

// Run performs the three idempotent steps spec.md §4.10 names, in order,
// under the same database handle exposed to the rest of the core.
func Run(ctx context.Context, settings store.SettingsRepository, roles store.RoleRepository, users store.UserRepository, cfg *config.Config) error {
	if err := ensureSettings(ctx, settings); err != nil {
		return err
	}
	if err := ensureRoles(ctx, roles); err != nil {
		return err
	}
	if err := ensureSystemUser(ctx, users, cfg); err != nil {
		return err
	}
	return nil
}

func ensureSettings(ctx context.Context, repo store.SettingsRepository) error {
	_, err := repo.Get(ctx)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	logx.Info("bootstrap: inserting default settings singleton")
	return repo.Insert(ctx, model.DefaultSettings())
}

func ensureRoles(ctx context.Context, repo store.RoleRepository) error {
	if _, err := repo.FindByID(ctx, model.AdminRoleID); err != nil {
		if !isNotFound(err) {
			return err
		}
		logx.Info("bootstrap: creating Admin system role")
		if err := repo.Insert(ctx, model.NewSystemRole(model.AdminRoleID, "Admin")); err != nil {
			return err
		}
	}

	if _, err := repo.FindByID(ctx, model.DefaultRoleID); err != nil {
		if !isNotFound(err) {
			return err
		}
		logx.Info("bootstrap: creating Default system role")
		if err := repo.Insert(ctx, model.NewSystemRole(model.DefaultRoleID, "Default")); err != nil {
			return err
		}
	}

	return nil
}

func ensureSystemUser(ctx context.Context, repo store.UserRepository, cfg *config.Config) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if cfg.Auth.SystemEmail == "" || cfg.Auth.SystemPassword == "" {
		return registry.New(ErrMissingSystemCredentials)
	}

	hasher := authn.NewHasher()
	hash, salt, err := hasher.Hash(cfg.Auth.SystemPassword)
	if err != nil {
		return err
	}

	token, err := authn.NewUserBearerToken()
	if err != nil {
		return err
	}

	logx.WithField("email", cfg.Auth.SystemEmail).Info("bootstrap: creating system user")

	user := &model.User{
		ID:           model.SystemUserID,
		Email:        cfg.Auth.SystemEmail,
		FirstName:    "System",
		LastName:     "User",
		PasswordHash: hash,
		Salt:         salt,
		Token:        token,
		Roles:        []kernel.RoleID{model.AdminRoleID, model.DefaultRoleID},
		Disabled:     false,
		CreatedAt:    time.Now().UTC(),
	}
	return repo.Insert(ctx, user)
}

func isNotFound(err error) bool {
	var e *errx.Error
	if errx.As(err, &e) {
		return e.Type == errx.TypeNotFound
	}
	return false
}
