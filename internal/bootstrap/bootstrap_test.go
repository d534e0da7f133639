package bootstrap_test

import (
	"context"
	"testing"

	"github.com/authcore/authcore/internal/bootstrap"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store/storetest"
	"github.com/authcore/authcore/pkg/config"
	"github.com/stretchr/testify/require"
)

func newDeps() (*storetest.Settings, *storetest.Roles, *storetest.Users) {
	return storetest.NewSettings(), storetest.NewRoles(), storetest.NewUsers()
}

func TestRun_SeedsSettingsRolesAndSystemUser(t *testing.T) {
	settings, roles, users := newDeps()
	cfg := &config.Config{Auth: config.AuthConfig{SystemEmail: "root@authcore.test", SystemPassword: "correct-horse-battery-staple"}}

	err := bootstrap.Run(context.Background(), settings, roles, users, cfg)
	require.NoError(t, err)

	s, err := settings.Get(context.Background())
	require.NoError(t, err)
	require.True(t, s.OpenRegistration)
	require.True(t, s.AllowOAuthAppsForUsers)

	admin, err := roles.FindByID(context.Background(), model.AdminRoleID)
	require.NoError(t, err)
	require.True(t, admin.System)

	def, err := roles.FindByID(context.Background(), model.DefaultRoleID)
	require.NoError(t, err)
	require.True(t, def.System)

	sysUser, err := users.FindByID(context.Background(), model.SystemUserID)
	require.NoError(t, err)
	require.Equal(t, "root@authcore.test", sysUser.Email)
	require.Contains(t, sysUser.Roles, model.AdminRoleID)
	require.Contains(t, sysUser.Roles, model.DefaultRoleID)
	require.NotEmpty(t, sysUser.Token)
	require.NotEmpty(t, sysUser.PasswordHash)
}

func TestRun_IsIdempotent(t *testing.T) {
	settings, roles, users := newDeps()
	cfg := &config.Config{Auth: config.AuthConfig{SystemEmail: "root@authcore.test", SystemPassword: "correct-horse-battery-staple"}}

	require.NoError(t, bootstrap.Run(context.Background(), settings, roles, users, cfg))
	require.NoError(t, bootstrap.Run(context.Background(), settings, roles, users, cfg))

	count, err := users.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestRun_SkipsSystemUserWhenUsersExist(t *testing.T) {
	settings, roles, users := newDeps()
	cfg := &config.Config{}

	existing := &model.User{ID: model.SystemUserID, Email: "someone@example.com"}
	require.NoError(t, users.Insert(context.Background(), existing))

	err := bootstrap.Run(context.Background(), settings, roles, users, cfg)
	require.NoError(t, err)
}

func TestRun_FailsWithoutSystemCredentialsWhenNoUsers(t *testing.T) {
	settings, roles, users := newDeps()
	cfg := &config.Config{}

	err := bootstrap.Run(context.Background(), settings, roles, users, cfg)
	require.Error(t, err)
}
