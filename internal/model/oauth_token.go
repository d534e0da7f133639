package model

import (
	"time"

	"github.com/authcore/authcore/pkg/kernel"
)

// OAuthTokenTTL is the fixed 30-day token lifetime (spec.md §4.7:
// "the 30-day fixed TTL is a design decision, not configurable").
const OAuthTokenTTL = 30 * 24 * time.Hour

// OAuthToken is a minted bearer credential for a (user, application) pair
// (spec.md §3 "OAuthToken").
type OAuthToken struct {
	ID            string        `bson:"_id" json:"id"`
	ApplicationID string        `bson:"application_id" json:"applicationId"`
	UserID        kernel.UserID `bson:"user_id" json:"userId"`
	ScopeRaw      []string      `bson:"scope" json:"-"`
	ExpiresIn     int64         `bson:"expires_in" json:"-"` // seconds
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
}

// IsExpired implements §3's invariant: "expiration is created_at +
// expires_in compared in milliseconds."
func (t *OAuthToken) IsExpired(now time.Time) bool {
	createdMs := t.CreatedAt.UnixMilli()
	nowMs := now.UnixMilli()
	return nowMs > createdMs+t.ExpiresIn*1000
}

// Reauthenticate implements the §4.7 reauthenticate step: replace the scope,
// reset the creation timestamp and TTL window, keep the same id.
func (t *OAuthToken) Reauthenticate(scope []Scope, now time.Time) {
	t.ScopeRaw = FormatScopeList(scope)
	t.CreatedAt = now
	t.ExpiresIn = int64(OAuthTokenTTL.Seconds())
}

// ParsedScope parses ScopeRaw back into typed scopes.
func (t *OAuthToken) ParsedScope() ([]Scope, error) {
	return ParseScopeList(t.ScopeRaw)
}
