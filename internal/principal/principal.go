// Package principal implements the Principal resolver component (spec.md
// §4.1): resolves an inbound Authorization header into a user principal or
// a token principal, grounded on original_source/auth/auth.go's AuthEntity
// FromRequest algorithm.
package principal

import (
	"context"
	"strings"
	"time"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/kernel"
)

var registry = errx.NewRegistry("PRINCIPAL")

var (
	ErrInvalidToken = registry.Register("INVALID_TOKEN", errx.TypeAuthorization, 401, "invalid or malformed bearer token")
	ErrForbidden    = registry.Register("FORBIDDEN", errx.TypeAuthorization, 403, "user is disabled")
	ErrUnauthorized = registry.Register("UNAUTHORIZED", errx.TypeAuthorization, 401, "no credential presented")
)

// Kind discriminates the two Principal variants (spec.md §9: "Modeled as a
// closed sum type Principal = User(U) | Token(T)").
type Kind int

const (
	KindUser Kind = iota
	KindToken
)

// Principal is the authenticated entity attached to an inbound request.
type Principal struct {
	Kind   Kind
	UserID kernel.UserID
	User   *model.User
	Token  *model.OAuthToken
}

func (p *Principal) IsUser() bool  { return p.Kind == KindUser }
func (p *Principal) IsToken() bool { return p.Kind == KindToken }

// Resolver resolves bearer credentials against the credential store.
type Resolver struct {
	users  store.UserRepository
	tokens store.OAuthTokenRepository
}

func NewResolver(users store.UserRepository, tokens store.OAuthTokenRepository) *Resolver {
	return &Resolver{users: users, tokens: tokens}
}

// Resolve implements §4.1's algorithm: split the header on whitespace into
// exactly ["Bearer", value]; try the user-token index first (reject
// disabled users), then the OAuth-token index (reject expired tokens).
func (r *Resolver) Resolve(ctx context.Context, authHeader string) (*Principal, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, registry.New(ErrInvalidToken)
	}
	value := parts[1]

	if user, err := r.users.FindByToken(ctx, value); err == nil {
		if user.Disabled {
			return nil, registry.New(ErrForbidden)
		}
		return &Principal{Kind: KindUser, UserID: user.ID, User: user}, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	if tok, err := r.tokens.FindByToken(ctx, value); err == nil {
		if tok.IsExpired(time.Now().UTC()) {
			return nil, registry.New(ErrInvalidToken)
		}
		return &Principal{Kind: KindToken, UserID: tok.UserID, Token: tok}, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	return nil, registry.New(ErrUnauthorized)
}

func isNotFound(err error) bool {
	var e *errx.Error
	if errx.As(err, &e) {
		return e.Type == errx.TypeNotFound
	}
	return false
}
