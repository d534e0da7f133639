package authflow_test

import (
	"context"
	"testing"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authflow"
	"github.com/authcore/authcore/internal/mfa"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/session"
	"github.com/authcore/authcore/internal/store/storetest"
	"github.com/stretchr/testify/require"
)

func newFlow(t *testing.T, openRegistration bool) (*authflow.Flow, *storetest.Users) {
	t.Helper()
	users := storetest.NewUsers()
	regs := storetest.NewRegistrationTokens()
	settings := storetest.NewSettings()
	require.NoError(t, settings.Insert(context.Background(), &model.Settings{ID: model.SettingsIDStr, OpenRegistration: openRegistration, AllowOAuthAppsForUsers: true}))

	sessions := session.NewStore(storetest.NewSessions())
	auditWriter := audit.NewWriter(storetest.NewAuditLogs())
	mfaEngine := mfa.NewEngine(users, sessions, auditWriter, "authcore-test")

	return authflow.New(users, regs, settings, mfaEngine, auditWriter), users
}

func TestRegister_OpenRegistrationSucceeds(t *testing.T) {
	flow, users := newFlow(t, true)

	user, err := flow.Register(context.Background(), authflow.RegisterRequest{
		Email: "a@example.com", Password: "hunter2pass", FirstName: "A", LastName: "B",
	})
	require.NoError(t, err)
	require.Contains(t, user.Roles, model.DefaultRoleID)

	count, err := users.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestRegister_ClosedRegistrationRequiresCode(t *testing.T) {
	flow, _ := newFlow(t, false)

	_, err := flow.Register(context.Background(), authflow.RegisterRequest{
		Email: "a@example.com", Password: "hunter2pass", FirstName: "A", LastName: "B",
	})
	require.Error(t, err)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	flow, _ := newFlow(t, true)
	ctx := context.Background()

	_, err := flow.Register(ctx, authflow.RegisterRequest{Email: "dup@example.com", Password: "hunter2pass", FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	_, err = flow.Register(ctx, authflow.RegisterRequest{Email: "dup@example.com", Password: "another-pass", FirstName: "C", LastName: "D"})
	require.Error(t, err)
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	flow, _ := newFlow(t, true)
	ctx := context.Background()

	_, err := flow.Register(ctx, authflow.RegisterRequest{Email: "u@example.com", Password: "correct-password", FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	_, err = flow.Login(ctx, authflow.LoginRequest{Email: "u@example.com", Password: "wrong-password"})
	require.Error(t, err)
}

func TestLogin_SucceedsWithoutMFA(t *testing.T) {
	flow, _ := newFlow(t, true)
	ctx := context.Background()

	_, err := flow.Register(ctx, authflow.RegisterRequest{Email: "u@example.com", Password: "correct-password", FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	result, err := flow.Login(ctx, authflow.LoginRequest{Email: "u@example.com", Password: "correct-password"})
	require.NoError(t, err)
	require.False(t, result.MFARequired)
	require.NotEmpty(t, result.BearerToken)
}
