// cmd/container.go
//
// Composition root. Owns the database handles and wires every core
// component named in spec.md §2: repositories, the session store, the
// principal resolver, the audit writer, and the four flow engines
// (authflow, mfa, oauth, passkey), then runs bootstrap before the HTTP
// layer is attached.
package main

import (
	"context"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authflow"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/bootstrap"
	"github.com/authcore/authcore/internal/mfa"
	"github.com/authcore/authcore/internal/oauth"
	"github.com/authcore/authcore/internal/passkey"
	"github.com/authcore/authcore/internal/principal"
	"github.com/authcore/authcore/internal/session"
	"github.com/authcore/authcore/internal/settings"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/internal/store/mongostore"
	"github.com/authcore/authcore/pkg/config"
	"github.com/authcore/authcore/pkg/logx"
)

// Container holds shared infrastructure and every wired component.
type Container struct {
	Config *config.Config

	DB *mongostore.Databases

	Users             store.UserRepository
	Roles             store.RoleRepository
	OAuthApplications store.OAuthApplicationRepository
	OAuthTokens       store.OAuthTokenRepository
	Passkeys          store.PasskeyRepository
	Registrations     store.RegistrationTokenRepository
	Settings          store.SettingsRepository
	AuditLogs         store.AuditLogRepository
	Sessions          store.SessionRepository

	SessionStore *session.Store
	Resolver     *principal.Resolver
	Audit        *audit.Writer
	Hasher       *authn.Hasher

	AuthFlow *authflow.Flow
	MFA      *mfa.Engine
	OAuth    *oauth.Engine
	Passkey  *passkey.Engine
}

// NewContainer connects to the store, wires every component, and runs
// bootstrap (spec.md §4.10) before returning.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logx.Info("initializing application container")

	c := &Container{Config: cfg}

	db, err := mongostore.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	c.DB = db

	c.initRepositories()
	c.initComponents()

	if err := bootstrap.Run(ctx, c.Settings, c.Roles, c.Users, cfg); err != nil {
		return nil, err
	}

	logx.Info("application container initialized")
	return c, nil
}

func (c *Container) initRepositories() {
	c.Users = mongostore.NewUserRepository(c.DB.Main)
	c.Roles = mongostore.NewRoleRepository(c.DB.Main)
	c.OAuthApplications = mongostore.NewOAuthApplicationRepository(c.DB.Main)
	c.OAuthTokens = mongostore.NewOAuthTokenRepository(c.DB.Main)
	c.Passkeys = mongostore.NewPasskeyRepository(c.DB.Main)
	c.Registrations = mongostore.NewRegistrationTokenRepository(c.DB.Main)
	c.Settings = settings.NewCache(mongostore.NewSettingsRepository(c.DB.Main))
	c.Sessions = mongostore.NewSessionRepository(c.DB.Main)
	c.AuditLogs = mongostore.NewAuditLogRepository(c.DB.Logs)
}

func (c *Container) initComponents() {
	c.SessionStore = session.NewStore(c.Sessions)
	c.Resolver = principal.NewResolver(c.Users, c.OAuthTokens)
	c.Audit = audit.NewWriter(c.AuditLogs)
	c.Hasher = authn.NewHasher()

	c.MFA = mfa.NewEngine(c.Users, c.SessionStore, c.Audit, c.Config.TOTP.IssuerName)
	c.AuthFlow = authflow.New(c.Users, c.Registrations, c.Settings, c.MFA, c.Audit)
	c.OAuth = oauth.NewEngine(c.OAuthApplications, c.OAuthTokens, c.SessionStore, c.Audit)

	passkeyEngine, err := passkey.NewEngine(
		c.Config.WebAuthn.RPID,
		c.Config.WebAuthn.RPOrigin,
		c.Config.WebAuthn.RPName,
		c.Passkeys,
		c.Users,
		c.SessionStore,
		c.Audit,
	)
	if err != nil {
		logx.Fatalf("failed to configure webauthn relying party: %v", err)
	}
	c.Passkey = passkeyEngine
}

// Close releases the container's infrastructure handles.
func (c *Container) Close(ctx context.Context) {
	if c.DB != nil {
		if err := c.DB.Disconnect(ctx); err != nil {
			logx.WithError(err).Error("error disconnecting from mongodb")
		}
	}
}
