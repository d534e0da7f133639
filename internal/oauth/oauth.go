// Package oauth implements the OAuth2 authorization engine component
// (spec.md §4.7), grounded on original_source/routes/oauth/{authorize,token}.rs.
package oauth

import (
	"context"
	"strings"
	"time"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/session"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/kernel"
)

var registry = errx.NewRegistry("OAUTH")

var (
	ErrEmptyScope       = registry.Register("EMPTY_SCOPE", errx.TypeValidation, 400, "scope must not be empty")
	ErrInvalidApp       = registry.Register("INVALID_APPLICATION", errx.TypeNotFound, 404, "application not found")
	ErrRedirectMismatch = registry.Register("REDIRECT_MISMATCH", errx.TypeAuthorization, 403, "redirect_uri does not match")
	ErrInvalidGrant     = registry.Register("INVALID_GRANT", errx.TypeAuthorization, 401, "invalid code, client, or grant")
	ErrDisabledOrSystem = registry.Register("FORBIDDEN_PRINCIPAL", errx.TypeAuthorization, 403, "disabled or system principal cannot authorize")
)

// Engine implements authorize, exchange, revoke, and the cascade deletes.
type Engine struct {
	apps     store.OAuthApplicationRepository
	tokens   store.OAuthTokenRepository
	sessions *session.Store
	audit    *audit.Writer
}

func NewEngine(apps store.OAuthApplicationRepository, tokens store.OAuthTokenRepository, sessions *session.Store, auditWriter *audit.Writer) *Engine {
	return &Engine{apps: apps, tokens: tokens, sessions: sessions, audit: auditWriter}
}

// AuthorizeRequest is the authorize-time input (spec.md §4.7 "Authorize").
type AuthorizeRequest struct {
	ClientID    string
	RedirectURI string
	Scope       []string
}

// AuthorizeResult is what the handler returns: {client_id, redirect_uri, code}.
type AuthorizeResult struct {
	ClientID    string
	RedirectURI string
	Code        string
}

// Authorize implements §4.7's authorize step. Preconditions: caller is a
// user principal, not disabled, not the system user (checked by the
// caller/policy layer before invoking this); the client exists; the
// redirect_uri matches a registered URI by exact equality.
func (e *Engine) Authorize(ctx context.Context, userID kernel.UserID, req AuthorizeRequest) (*AuthorizeResult, error) {
	if len(req.Scope) == 0 {
		return nil, registry.New(ErrEmptyScope)
	}

	app, err := e.apps.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, registry.New(ErrInvalidApp)
	}

	if !app.HasRedirectURI(req.RedirectURI) {
		return nil, registry.New(ErrRedirectMismatch)
	}

	code, err := session.GenerateOAuthCode()
	if err != nil {
		return nil, err
	}

	err = e.sessions.CreateOAuthCode(ctx, code, model.OAuthCodeData{
		ClientID:     app.ID,
		ClientSecret: app.ClientSecret,
		UserID:       userID,
		Code:         code,
		Scope:        req.Scope,
		GrantType:    "authorization_code",
		RedirectURI:  req.RedirectURI,
	})
	if err != nil {
		return nil, err
	}

	return &AuthorizeResult{ClientID: app.ID, RedirectURI: req.RedirectURI, Code: code}, nil
}

// ExchangeRequest is the token-endpoint input, accepted from either
// form-urlencoded or JSON bodies per §4.7.
type ExchangeRequest struct {
	ClientID     string
	ClientSecret string
	GrantType    string
	Code         string
	RedirectURI  string
}

// ExchangeResult matches RFC 6749's unwrapped token response shape.
type ExchangeResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	Scope       string
}

func trimEqual(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// Exchange implements §4.7's exchange step and its three-way token
// selection algorithm.
func (e *Engine) Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResult, error) {
	data, err := e.sessions.GetOAuthCode(ctx, req.Code)
	if err != nil {
		return nil, registry.New(ErrInvalidGrant)
	}
	// Single-use: delete immediately, regardless of what happens next.
	_ = e.sessions.DeleteOAuthCode(ctx, req.Code)

	if !trimEqual(req.ClientID, data.ClientID) ||
		!trimEqual(req.GrantType, data.GrantType) ||
		!trimEqual(req.ClientSecret, data.ClientSecret) ||
		!trimEqual(req.RedirectURI, data.RedirectURI) {
		return nil, registry.New(ErrInvalidGrant)
	}

	requestedScope, err := model.ParseScopeList(data.Scope)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	existing, err := e.tokens.FindByUserAndApplication(ctx, data.UserID, data.ClientID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if err != nil {
		// No existing token: mint a new one with the requested scope and
		// a 30-day TTL (§4.7 step 1).
		tokenValue, err := authn.NewOAuthTokenValue()
		if err != nil {
			return nil, err
		}
		tok := &model.OAuthToken{
			ID:            tokenValue,
			ApplicationID: data.ClientID,
			UserID:        data.UserID,
			ScopeRaw:      model.FormatScopeList(requestedScope),
			ExpiresIn:     int64(model.OAuthTokenTTL.Seconds()),
			CreatedAt:     now,
		}
		if err := e.tokens.Insert(ctx, tok); err != nil {
			return nil, err
		}
		return toExchangeResult(tok), nil
	}

	// §4.7 step 2: existing token's scope is a strict superset of the
	// requested scope *by length count* — reuse unchanged.
	if len(existing.ScopeRaw) > len(requestedScope) {
		return toExchangeResult(existing), nil
	}

	// §4.7 step 3: otherwise reauthenticate — replace scope, reset TTL.
	existing.Reauthenticate(requestedScope, now)
	if err := e.tokens.Replace(ctx, existing); err != nil {
		return nil, err
	}
	return toExchangeResult(existing), nil
}

func toExchangeResult(t *model.OAuthToken) *ExchangeResult {
	return &ExchangeResult{
		AccessToken: t.ID,
		TokenType:   "Bearer",
		ExpiresIn:   t.ExpiresIn,
		Scope:       strings.Join(t.ScopeRaw, ","),
	}
}

// Revoke implements §4.7's revoke step: deletes the token matching the
// inbound bearer.
func (e *Engine) Revoke(ctx context.Context, tokenValue string) error {
	return e.tokens.Delete(ctx, tokenValue)
}

// DeleteApplication implements the application-delete cascade (spec.md
// §4.7 "Cascade"): deletes every token whose application_id matches, then
// the application itself.
func (e *Engine) DeleteApplication(ctx context.Context, app *model.OAuthApplication) error {
	if err := e.tokens.DeleteAllByApplication(ctx, app.ID); err != nil {
		return err
	}
	return e.apps.Delete(ctx, app.ID)
}

// DeleteUserCascade implements the user-delete cascade's OAuth portion:
// every application the user owns (cascading further) and every token
// matching their user_id.
func (e *Engine) DeleteUserCascade(ctx context.Context, userID kernel.UserID) error {
	apps, err := e.apps.ListByOwner(ctx, userID)
	if err != nil {
		return err
	}
	for _, app := range apps {
		if err := e.DeleteApplication(ctx, app); err != nil {
			return err
		}
	}
	return e.tokens.DeleteAllByUser(ctx, userID)
}

func isNotFound(err error) bool {
	var e *errx.Error
	if errx.As(err, &e) {
		return e.Type == errx.TypeNotFound
	}
	return false
}
