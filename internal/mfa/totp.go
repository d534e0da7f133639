// Package mfa implements the TOTP MFA engine component (spec.md §4.3):
// enable/login flows, QR provisioning, SHA-1/6-digit/30-second TOTP,
// grounded on original_source/auth/mfa.rs and the pquerna/otp library
// (SPEC_FULL.md DOMAIN STACK).
package mfa

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"time"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/session"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var registry = errx.NewRegistry("MFA")

var (
	ErrInvalidMfaCode = registry.Register("INVALID_CODE", errx.TypeAuthorization, 401, "invalid TOTP code")
	ErrMfaRequired    = registry.Register("REQUIRED", errx.TypeAuthorization, 401, "MFA verification required")
	ErrFlowNotFound   = registry.Register("FLOW_NOT_FOUND", errx.TypeNotFound, 404, "MFA flow not found or expired")
)

// Engine implements TOTP enrollment and verification flows.
type Engine struct {
	users      store.UserRepository
	sessions   *session.Store
	audit      *audit.Writer
	issuerName string
}

func NewEngine(users store.UserRepository, sessions *session.Store, auditWriter *audit.Writer, issuerName string) *Engine {
	return &Engine{users: users, sessions: sessions, audit: auditWriter, issuerName: issuerName}
}

// EnrollmentChallenge carries what the handler returns from the enable
// flow: a flow-id and a base64-encoded PNG QR code.
type EnrollmentChallenge struct {
	FlowID  string
	QRImage string // base64
}

// StartEnable begins first-time TOTP enrollment (spec.md §4.3 "Enable
// flow"): generates a fresh secret, persists a 300s MfaFlow session, never
// writes the secret onto the user until verify succeeds.
func (e *Engine) StartEnable(ctx context.Context, user *model.User) (*EnrollmentChallenge, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuerName,
		AccountName: user.Email,
		Algorithm:   otp.AlgorithmSHA1,
		Digits:      otp.DigitsSix,
		Period:      30,
	})
	if err != nil {
		return nil, registry.NewWithCause(ErrInvalidMfaCode, err)
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return nil, registry.NewWithCause(ErrInvalidMfaCode, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, registry.NewWithCause(ErrInvalidMfaCode, err)
	}

	flowID, err := e.sessions.CreateMFAFlow(ctx, model.MFAFlowEnableTOTP, user.ID, key.Secret())
	if err != nil {
		return nil, err
	}

	return &EnrollmentChallenge{
		FlowID:  flowID,
		QRImage: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// StartLogin begins the login-time MFA challenge for a user who already
// has a TOTP secret.
func (e *Engine) StartLogin(ctx context.Context, userID kernel.UserID) (flowID string, err error) {
	return e.sessions.CreateMFAFlow(ctx, model.MFAFlowLogin, userID, "")
}

// VerifyResult is what a successful MFA verify call hands back to the
// handler: the bearer token to return, and whether enrollment was
// completed as part of this call.
type VerifyResult struct {
	User        *model.User
	BearerToken string
	Enrolled    bool
}

// Verify implements §4.3's verify step for both flow kinds. A failed code
// neither consumes the flow nor mutates the user (spec.md §8 property 15).
func (e *Engine) Verify(ctx context.Context, flowID, code string) (*VerifyResult, error) {
	flow, err := e.sessions.GetMFAFlow(ctx, flowID)
	if err != nil {
		return nil, registry.New(ErrFlowNotFound)
	}

	user, err := e.users.FindByID(ctx, flow.UserID)
	if err != nil {
		return nil, err
	}

	var secret string
	switch flow.Kind {
	case model.MFAFlowEnableTOTP:
		secret = flow.Secret
	case model.MFAFlowLogin:
		if user.TOTPSecret == nil {
			return nil, registry.New(ErrFlowNotFound)
		}
		secret = *user.TOTPSecret
	}

	valid, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		return nil, registry.New(ErrInvalidMfaCode)
	}

	if err := e.sessions.DeleteMFAFlow(ctx, flowID); err != nil {
		return nil, err
	}

	if flow.Kind == model.MFAFlowEnableTOTP {
		return e.completeEnable(ctx, user, secret)
	}

	e.audit.LogLogin(ctx, user.ID.String(), user.ID, "totp")

	return &VerifyResult{User: user, BearerToken: user.Token}, nil
}

func (e *Engine) completeEnable(ctx context.Context, user *model.User, secret string) (*VerifyResult, error) {
	newToken, err := authn.NewUserBearerToken()
	if err != nil {
		return nil, err
	}

	user.TOTPSecret = &secret
	user.Token = newToken

	if err := e.users.Replace(ctx, user); err != nil {
		return nil, err
	}

	e.audit.LogUpdate(ctx, model.EntityUser, user.ID.String(), user.ID,
		map[string]any{"totp_secret": nil, "token": audit.RedactedFields["token"]},
		map[string]any{"totp_secret": audit.RedactedFields["totp_secret"], "token": audit.RedactedFields["token"]})

	return &VerifyResult{User: user, BearerToken: newToken, Enrolled: true}, nil
}

// Disable implements §4.3's "Disable TOTP": requires proof of either a
// valid current code or the account password (checked by the caller before
// invoking Disable with proofOK=true), clears the secret, rotates the
// bearer token, audits the change with redacted values.
func (e *Engine) Disable(ctx context.Context, user *model.User, proofOK bool) error {
	if !proofOK {
		return registry.New(ErrInvalidMfaCode)
	}

	newToken, err := authn.NewUserBearerToken()
	if err != nil {
		return err
	}

	user.TOTPSecret = nil
	user.Token = newToken

	if err := e.users.Replace(ctx, user); err != nil {
		return err
	}

	e.audit.LogUpdate(ctx, model.EntityUser, user.ID.String(), user.ID,
		map[string]any{"totp_secret": audit.RedactedFields["totp_secret"], "token": audit.RedactedFields["token"]},
		map[string]any{"totp_secret": nil, "token": audit.RedactedFields["token"]})

	return nil
}

// CurrentCode derives the TOTP code for a secret at the given time, using
// the same parameters Verify accepts.
func CurrentCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
