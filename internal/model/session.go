package model

import (
	"time"

	"github.com/authcore/authcore/pkg/kernel"
)

// SessionKind tags which of the four payload variants a Session record
// carries (spec.md §4.5, §9: "ambient in-process mutable maps for
// codes/MFA/challenges... replaced by the session store").
type SessionKind string

const (
	SessionOAuthCode            SessionKind = "oauth_code"
	SessionMFAFlow              SessionKind = "mfa_flow"
	SessionPasskeyRegistration  SessionKind = "passkey_registration"
	SessionPasskeyAuthentication SessionKind = "passkey_authentication"
)

// Session-id prefixes, per §4.5's payload table.
const (
	OAuthCodePrefix            = "oauth_"
	MFAFlowPrefix              = "mfa_"
	PasskeyRegistrationPrefix  = "passkey_reg_"
	PasskeyAuthenticationPrefix = "passkey_auth_"
)

const SessionDefaultTTL = 300 * time.Second

// OAuthCodeData is the payload stored under an OAuthCode session: a
// snapshot of the authorize-time request, keyed by the minted code.
type OAuthCodeData struct {
	ClientID     string   `bson:"client_id"`
	ClientSecret string   `bson:"client_secret"`
	UserID       kernel.UserID `bson:"user_id"`
	Code         string   `bson:"code"`
	Scope        []string `bson:"scope"`
	GrantType    string   `bson:"grant_type"`
	RedirectURI  string   `bson:"redirect_uri"`
}

// MFAFlowKind distinguishes a login-time TOTP check from first-time
// enrollment (spec.md §4.3).
type MFAFlowKind string

const (
	MFAFlowLogin       MFAFlowKind = "totp_login"
	MFAFlowEnableTOTP  MFAFlowKind = "enable_totp"
)

// MFAFlowData is the payload stored under an MfaFlow session.
type MFAFlowData struct {
	Kind   MFAFlowKind   `bson:"kind"`
	UserID kernel.UserID `bson:"user_id"`
	Secret string        `bson:"secret,omitempty"` // only set for EnableTOTP
}

// PasskeyRegistrationData is the payload stored under a
// PasskeyRegistration session.
type PasskeyRegistrationData struct {
	UserID      kernel.UserID `bson:"user_id"`
	StateBase64 string        `bson:"state_base64"`
}

// PasskeyAuthenticationData is the payload stored under a
// PasskeyAuthentication session.
type PasskeyAuthenticationData struct {
	StateBase64 string `bson:"state_base64"`
}

// Session is a TTL-bounded scratch record (spec.md §3 "Session record").
// Exactly one of the typed payload fields is populated, selected by Kind —
// the closed-sum-type idiom spec.md §9 asks for, expressed as a tagged
// struct since Go has no sum types.
type Session struct {
	ID        string    `bson:"_id" json:"id"`
	Kind      SessionKind `bson:"kind" json:"kind"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`

	OAuthCode            *OAuthCodeData            `bson:"oauth_code,omitempty" json:"-"`
	MFAFlow              *MFAFlowData              `bson:"mfa_flow,omitempty" json:"-"`
	PasskeyRegistration  *PasskeyRegistrationData  `bson:"passkey_registration,omitempty" json:"-"`
	PasskeyAuthentication *PasskeyAuthenticationData `bson:"passkey_authentication,omitempty" json:"-"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
