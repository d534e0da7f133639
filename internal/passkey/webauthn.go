// Package passkey implements the WebAuthn passkey engine component
// (spec.md §4.4): discoverable authentication and registration ceremonies
// backed by go-webauthn (SPEC_FULL.md DOMAIN STACK), grounded on
// original_source/models/passkey.rs's use of webauthn_rs.
package passkey

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/session"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

var registry = errx.NewRegistry("PASSKEY")

var (
	ErrUnauthorized   = registry.Register("UNAUTHORIZED", errx.TypeAuthorization, 401, "passkey ceremony unauthorized")
	ErrSessionExpired = registry.Register("SESSION_EXPIRED", errx.TypeNotFound, 404, "passkey challenge not found or expired")
	ErrVerification   = registry.Register("VERIFICATION_FAILED", errx.TypeAuthorization, 401, "passkey verification failed")
)

// Engine wraps go-webauthn's ceremonies with the session-store-backed
// challenge persistence spec.md §4.4's Rationale requires ("Challenges
// live in the session store, not in process memory, so the service
// remains stateless across instances").
type Engine struct {
	wa       *webauthn.WebAuthn
	passkeys store.PasskeyRepository
	users    store.UserRepository
	sessions *session.Store
	audit    *audit.Writer
}

func NewEngine(rpID, rpOrigin, rpName string, passkeys store.PasskeyRepository, users store.UserRepository, sessions *session.Store, auditWriter *audit.Writer) (*Engine, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPID:          rpID,
		RPDisplayName: rpName,
		RPOrigins:     []string{rpOrigin},
	})
	if err != nil {
		return nil, registry.NewWithCause(ErrVerification, err)
	}
	return &Engine{wa: wa, passkeys: passkeys, users: users, sessions: sessions, audit: auditWriter}, nil
}

// webauthnUser adapts a model.User plus its loaded credentials to the
// webauthn.User interface.
type webauthnUser struct {
	user        *model.User
	credentials []webauthn.Credential
}

func (u *webauthnUser) WebAuthnID() []byte          { return []byte(u.user.ID.String()) }
func (u *webauthnUser) WebAuthnName() string        { return u.user.Email }
func (u *webauthnUser) WebAuthnDisplayName() string { return u.user.FirstName + " " + u.user.LastName }
func (u *webauthnUser) WebAuthnIcon() string        { return "" }
func (u *webauthnUser) WebAuthnCredentials() []webauthn.Credential { return u.credentials }

func encodeState(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func decodeState(s string, v any) error {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (e *Engine) loadCredentials(ctx context.Context, user *model.User) ([]webauthn.Credential, []*model.Passkey, error) {
	keys, err := e.passkeys.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	creds := make([]webauthn.Credential, 0, len(keys))
	for _, k := range keys {
		var c webauthn.Credential
		if err := json.Unmarshal(k.Credential, &c); err != nil {
			continue
		}
		creds = append(creds, c)
	}
	return creds, keys, nil
}

// RegistrationChallenge is handed to the client to drive the browser's
// navigator.credentials.create() call.
type RegistrationChallenge struct {
	RegistrationID string
	Options        *webauthn.SessionData
	CredentialCreation any
}

// BeginRegistration implements §4.4's authenticated registration start:
// excludes the caller's existing credential ids, persists a
// PasskeyRegistration session.
func (e *Engine) BeginRegistration(ctx context.Context, user *model.User) (any, string, error) {
	creds, _, err := e.loadCredentials(ctx, user)
	if err != nil {
		return nil, "", err
	}
	wu := &webauthnUser{user: user, credentials: creds}

	exclusions := make([]protocol.CredentialDescriptor, 0, len(creds))
	for _, c := range creds {
		exclusions = append(exclusions, c.Descriptor())
	}

	creation, sessionData, err := e.wa.BeginRegistration(wu, webauthn.WithExclusions(exclusions))
	if err != nil {
		return nil, "", registry.NewWithCause(ErrVerification, err)
	}

	encoded, err := encodeState(sessionData)
	if err != nil {
		return nil, "", err
	}

	regID, err := e.sessions.CreatePasskeyRegistration(ctx, user.ID, encoded)
	if err != nil {
		return nil, "", err
	}

	return creation, regID, nil
}

// FinishRegistration implements §4.4's registration finish: rejects if the
// caller's user-id does not match the session's, verifies with go-webauthn,
// persists a new Passkey, audits Create, deletes the session.
func (e *Engine) FinishRegistration(ctx context.Context, callerID string, regID string, response *webauthn.ParsedCredentialCreationData) (*model.Passkey, error) {
	data, err := e.sessions.GetPasskeyRegistration(ctx, regID)
	if err != nil {
		return nil, registry.New(ErrSessionExpired)
	}
	if data.UserID.String() != callerID {
		return nil, registry.New(ErrUnauthorized)
	}

	user, err := e.users.FindByID(ctx, data.UserID)
	if err != nil {
		return nil, err
	}

	var sessionData webauthn.SessionData
	if err := decodeState(data.StateBase64, &sessionData); err != nil {
		return nil, registry.NewWithCause(ErrVerification, err)
	}

	creds, _, err := e.loadCredentials(ctx, user)
	if err != nil {
		return nil, err
	}
	wu := &webauthnUser{user: user, credentials: creds}

	cred, err := e.wa.CreateCredential(wu, sessionData, response)
	if err != nil {
		return nil, registry.NewWithCause(ErrVerification, err)
	}

	credBytes, err := json.Marshal(cred)
	if err != nil {
		return nil, err
	}

	pk := &model.Passkey{
		ID:         base64.RawURLEncoding.EncodeToString(cred.ID),
		OwnerID:    user.ID,
		Name:       "passkey",
		Credential: credBytes,
	}
	if err := e.passkeys.Insert(ctx, pk); err != nil {
		return nil, err
	}

	if err := e.sessions.DeletePasskeyRegistration(ctx, regID); err != nil {
		return nil, err
	}

	e.audit.LogCreate(ctx, model.EntityPasskey, pk.ID, user.ID, map[string]any{"owner_id": user.ID.String()})

	return pk, nil
}

// BeginDiscoverableLogin implements §4.4's passwordless start: no username,
// persists a PasskeyAuthentication session.
func (e *Engine) BeginDiscoverableLogin(ctx context.Context) (any, string, error) {
	assertion, sessionData, err := e.wa.BeginDiscoverableLogin()
	if err != nil {
		return nil, "", registry.NewWithCause(ErrVerification, err)
	}

	encoded, err := encodeState(sessionData)
	if err != nil {
		return nil, "", err
	}

	authID, err := e.sessions.CreatePasskeyAuthentication(ctx, encoded)
	if err != nil {
		return nil, "", err
	}

	return assertion, authID, nil
}

// LoginResult is what a successful discoverable finish hands back.
type LoginResult struct {
	User        *model.User
	PasskeyID   string
	BearerToken string
}

// FinishDiscoverableLogin implements §4.4's finish step: locates the
// passkey by credential id, locates its owner, verifies against the
// owner's full credential set, consumes the session, writes a Login audit
// entry.
func (e *Engine) FinishDiscoverableLogin(ctx context.Context, authID string, response *webauthn.ParsedCredentialAssertionData) (*LoginResult, error) {
	data, err := e.sessions.GetPasskeyAuthentication(ctx, authID)
	if err != nil {
		return nil, registry.New(ErrSessionExpired)
	}

	var sessionData webauthn.SessionData
	if err := decodeState(data.StateBase64, &sessionData); err != nil {
		return nil, registry.NewWithCause(ErrVerification, err)
	}

	credIDB64 := base64.RawURLEncoding.EncodeToString(response.RawID)
	pk, err := e.passkeys.FindByID(ctx, credIDB64)
	if err != nil {
		return nil, registry.New(ErrVerification)
	}

	user, err := e.users.FindByID(ctx, pk.OwnerID)
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, registry.New(ErrUnauthorized)
	}

	creds, _, err := e.loadCredentials(ctx, user)
	if err != nil {
		return nil, err
	}
	wu := &webauthnUser{user: user, credentials: creds}

	userHandler := func(rawID, userHandle []byte) (webauthn.User, error) { return wu, nil }

	if _, err := e.wa.ValidateDiscoverableLogin(userHandler, sessionData, response); err != nil {
		return nil, registry.NewWithCause(ErrVerification, err)
	}

	if err := e.sessions.DeletePasskeyAuthentication(ctx, authID); err != nil {
		return nil, err
	}

	e.audit.LogLogin(ctx, user.ID.String(), user.ID, "passkey:"+pk.ID)

	return &LoginResult{User: user, PasskeyID: pk.ID, BearerToken: user.Token}, nil
}
