package model

import (
	"time"

	"github.com/authcore/authcore/pkg/kernel"
)

// RegistrationToken gates invite-only registration (spec.md §3
// "RegistrationToken").
type RegistrationToken struct {
	ID          string          `bson:"_id" json:"id"`
	Code        string          `bson:"code" json:"code"`
	MaxUses     int             `bson:"max_uses" json:"maxUses"`
	Uses        []kernel.UserID `bson:"uses" json:"uses"`
	ExpiresIn   *int64          `bson:"expires_in,omitempty" json:"expiresIn,omitempty"` // seconds
	ExpiresFrom *time.Time      `bson:"expires_from,omitempty" json:"expiresFrom,omitempty"`
	AutoRoles   []kernel.RoleID `bson:"auto_roles" json:"autoRoles"`
	CreatedAt   time.Time       `bson:"created_at" json:"createdAt"`
}

// IsExhausted reports len(uses) >= max_uses.
func (r *RegistrationToken) IsExhausted() bool {
	return len(r.Uses) >= r.MaxUses
}

// IsExpired reports whether now is past expires_from + expires_in, when
// both are set.
func (r *RegistrationToken) IsExpired(now time.Time) bool {
	if r.ExpiresFrom == nil || r.ExpiresIn == nil {
		return false
	}
	return now.After(r.ExpiresFrom.Add(time.Duration(*r.ExpiresIn) * time.Second))
}

// Redeem appends userID idempotently (spec.md §3: "each redemption appends
// the redeeming user-id idempotently").
func (r *RegistrationToken) Redeem(userID kernel.UserID) {
	for _, u := range r.Uses {
		if u == userID {
			return
		}
	}
	r.Uses = append(r.Uses, userID)
}
