// Package authflow glues the password authenticator, TOTP MFA engine, and
// credential store into the two public-facing flows spec.md §6 names,
// `/auth/register` and `/auth/login`, grounded on
// original_source/routes/auth/{register,login}.rs and
// original_source/routes/users/create.rs.
package authflow

import (
	"context"
	"strings"
	"time"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/mfa"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/google/uuid"
)

var registry = errx.NewRegistry("AUTHFLOW")

var (
	ErrEmailTaken          = registry.Register("EMAIL_TAKEN", errx.TypeConflict, 409, "email already registered")
	ErrRegistrationClosed  = registry.Register("REGISTRATION_CLOSED", errx.TypeAuthorization, 403, "registration requires an invite code")
	ErrInvalidCode         = registry.Register("INVALID_CODE", errx.TypeValidation, 400, "registration code invalid, exhausted, or expired")
	ErrInvalidCredentials  = registry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, 401, "invalid email or password")
	ErrDisabled            = registry.Register("DISABLED", errx.TypeAuthorization, 403, "user is disabled")
)

// Flow wires the authenticator, MFA engine, and stores needed by register
// and login.
type Flow struct {
	users         store.UserRepository
	registrations store.RegistrationTokenRepository
	settings      store.SettingsRepository
	hasher        *authn.Hasher
	mfaEngine     *mfa.Engine
	audit         *audit.Writer
}

func New(users store.UserRepository, registrations store.RegistrationTokenRepository, settings store.SettingsRepository, mfaEngine *mfa.Engine, auditWriter *audit.Writer) *Flow {
	return &Flow{
		users:         users,
		registrations: registrations,
		settings:      settings,
		hasher:        authn.NewHasher(),
		mfaEngine:     mfaEngine,
		audit:         auditWriter,
	}
}

// RegisterRequest is `/auth/register`'s input.
type RegisterRequest struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	RegistrationCode string
}

// Register implements spec.md §3's "created by registration (public,
// token-gated, or admin)" lifecycle: public registration is allowed only
// when the settings singleton's open_registration flag is set; otherwise a
// valid, unexhausted, unexpired registration code is required, and its
// auto-roles are granted alongside Default.
func (f *Flow) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Email = strings.ToLower(req.Email)

	if _, err := f.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, registry.New(ErrEmailTaken)
	} else if !isNotFound(err) {
		return nil, err
	}

	roles := []kernel.RoleID{model.DefaultRoleID}
	var redeemedToken *model.RegistrationToken

	settings, err := f.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !settings.OpenRegistration {
		if req.RegistrationCode == "" {
			return nil, registry.New(ErrRegistrationClosed)
		}
		tok, err := f.registrations.FindByCode(ctx, req.RegistrationCode)
		if err != nil {
			return nil, registry.New(ErrInvalidCode)
		}
		if tok.IsExhausted() || tok.IsExpired(time.Now().UTC()) {
			return nil, registry.New(ErrInvalidCode)
		}
		roles = append(roles, tok.AutoRoles...)
		redeemedToken = tok
	}

	hash, salt, err := f.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	token, err := authn.NewUserBearerToken()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           kernel.NewUserID(uuid.NewString()),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Salt:         salt,
		Token:        token,
		Roles:        dedupeRoles(roles),
		CreatedAt:    time.Now().UTC(),
	}

	if err := f.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	if redeemedToken != nil {
		redeemedToken.Redeem(user.ID)
		if err := f.registrations.Replace(ctx, redeemedToken); err != nil {
			return nil, err
		}
	}

	f.audit.LogCreate(ctx, model.EntityUser, user.ID.String(), user.ID, map[string]any{"email": user.Email})

	return user, nil
}

// LoginRequest is `/auth/login`'s input.
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult mirrors original_source/routes/auth/login.rs's LoginResponse:
// either a completed login (User + BearerToken) or an MFA challenge
// (MFARequired + MFAFlowID).
type LoginResult struct {
	User        *model.User
	BearerToken string
	MFARequired bool
	MFAFlowID   string
}

// Login implements spec.md §4.2/§4.3's combined login path: verify
// credentials, then branch into the TOTP MFA flow if the user has a secret
// enrolled.
func (f *Flow) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := f.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, registry.New(ErrInvalidCredentials)
		}
		return nil, err
	}

	if user.Disabled {
		return nil, registry.New(ErrDisabled)
	}

	ok, err := f.hasher.Verify(req.Password, user.PasswordHash, user.Salt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, registry.New(ErrInvalidCredentials)
	}

	if user.MFAEnabled() {
		flowID, err := f.mfaEngine.StartLogin(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{MFARequired: true, MFAFlowID: flowID}, nil
	}

	f.audit.LogLogin(ctx, user.ID.String(), user.ID, "password")

	return &LoginResult{User: user, BearerToken: user.Token}, nil
}

func isNotFound(err error) bool {
	var e *errx.Error
	if errx.As(err, &e) {
		return e.Type == errx.TypeNotFound
	}
	return false
}

func dedupeRoles(roles []kernel.RoleID) []kernel.RoleID {
	seen := make(map[kernel.RoleID]bool, len(roles))
	out := make([]kernel.RoleID, 0, len(roles))
	for _, r := range roles {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
