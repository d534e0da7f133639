package httpapi

import (
	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authflow"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/mfa"
	"github.com/authcore/authcore/internal/oauth"
	"github.com/authcore/authcore/internal/passkey"
	"github.com/authcore/authcore/internal/principal"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// Deps bundles every component router.go needs to register spec.md §6's
// endpoint table. Assembled by cmd/container.go.
type Deps struct {
	Resolver *principal.Resolver

	Users             store.UserRepository
	Roles             store.RoleRepository
	OAuthApplications store.OAuthApplicationRepository
	OAuthTokens       store.OAuthTokenRepository
	Passkeys          store.PasskeyRepository
	Registrations     store.RegistrationTokenRepository
	Settings          store.SettingsRepository
	AuditLogs         store.AuditLogRepository

	Audit  *audit.Writer
	Hasher *authn.Hasher

	AuthFlow *authflow.Flow
	MFA      *mfa.Engine
	OAuth    *oauth.Engine
	Passkey  *passkey.Engine
}

// Register attaches every spec.md §6 endpoint to app, resolving a
// Principal on every route up front (resolvePrincipal never aborts the
// chain; each handler decides for itself what principal, if any, it
// requires).
func Register(app *fiber.App, d Deps) {
	app.Use(resolvePrincipal(d.Resolver))

	auth := &authHandlers{flow: d.AuthFlow, mfa: d.MFA, hasher: d.Hasher}
	app.Post("/auth/register", auth.register)
	app.Post("/auth/login", auth.login)
	app.Post("/auth/mfa", auth.verifyMFA)

	users := &userHandlers{users: d.Users, oauth: d.OAuth, audit: d.Audit, hasher: d.Hasher}
	app.Get("/users/@me", users.me)
	app.Get("/users/:id", users.get)
	app.Patch("/users/:id", users.patch)
	app.Delete("/users/:id", users.delete)
	app.Get("/users", users.list)
	app.Post("/users", users.create)
	app.Post("/users/:id/mfa/totp/enable", auth.enableMFA)
	app.Post("/users/:id/mfa/totp/disable", auth.disableMFA)

	roles := &roleHandlers{roles: d.Roles, users: d.Users, audit: d.Audit}
	app.Get("/roles", roles.list)
	app.Post("/roles", roles.create)
	app.Get("/roles/:id", roles.get)
	app.Patch("/roles/:id", roles.patch)
	app.Delete("/roles/:id", roles.delete)

	apps := &oauthApplicationHandlers{apps: d.OAuthApplications, settings: d.Settings, oauth: d.OAuth, audit: d.Audit}
	app.Get("/oauth-applications", apps.list)
	app.Post("/oauth-applications", apps.create)
	app.Get("/oauth-applications/:id", apps.get)
	app.Patch("/oauth-applications/:id", apps.patch)
	app.Delete("/oauth-applications/:id", apps.delete)

	oauthH := &oauthHandlers{engine: d.OAuth}
	app.Post("/oauth/authorize", oauthH.authorize)
	app.Post("/oauth/token", oauthH.token)
	app.Post("/oauth/token/json", oauthH.token)
	app.Post("/oauth/token/revoke", oauthH.revoke)

	pk := &passkeyHandlers{engine: d.Passkey, passkeys: d.Passkeys, audit: d.Audit}
	app.Get("/auth/passkeys/authenticate/start", pk.beginLogin)
	app.Post("/auth/passkeys/authenticate/finish", pk.finishLogin)
	app.Get("/passkeys/register/start", pk.beginRegistration)
	app.Post("/passkeys/register/finish", pk.finishRegistration)
	app.Get("/passkeys", pk.list)
	app.Get("/passkeys/:id", pk.get)
	app.Patch("/passkeys/:id", pk.patch)
	app.Delete("/passkeys/:id", pk.delete)

	conns := &connectionHandlers{tokens: d.OAuthTokens}
	app.Get("/connections/:userId/:applicationId", conns.get)
	app.Delete("/connections/:userId/:applicationId", conns.delete)

	regTokens := &registrationTokenHandlers{tokens: d.Registrations, audit: d.Audit}
	app.Get("/registration-tokens", regTokens.list)
	app.Post("/registration-tokens", regTokens.create)
	app.Get("/registration-tokens/:id", regTokens.get)
	app.Delete("/registration-tokens/:id", regTokens.delete)

	auditLogs := &auditLogHandlers{logs: d.AuditLogs}
	app.Get("/audit-logs/:entityType", auditLogs.listByEntityType)
	app.Get("/users/:authorId/audit-logs", auditLogs.listByAuthor)

	settings := &settingsHandlers{settings: d.Settings, audit: d.Audit}
	app.Get("/settings", settings.get)
	app.Patch("/admin/settings", settings.patch)
}

// ErrorHandler is the Fiber app-level handler for errors a route handler
// returns instead of writing itself — principally the guard helpers in
// middleware.go and response.go (requirePrincipal, forbidden, badRequest),
// which build an *errx.Error and return it rather than writing to c
// directly. It reuses the single conversion writeEnvelopeError defines so
// every error, whether returned or passed to fail, maps to the envelope
// the same way (spec.md §7).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errx.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(envelope{Status: fiberErr.Code, Message: fiberErr.Message})
	}
	logx.WithFields(logx.Fields{"path": c.Path(), "method": c.Method()}).WithError(err).Error("request error")
	return writeEnvelopeError(c, err)
}
