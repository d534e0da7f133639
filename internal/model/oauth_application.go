package model

import (
	"time"

	"github.com/authcore/authcore/pkg/kernel"
)

// OAuthApplication is a registered third-party client (spec.md §3
// "OAuthApplication").
type OAuthApplication struct {
	ID           string        `bson:"_id" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Description  *string       `bson:"description,omitempty" json:"description,omitempty"`
	RedirectURIs []string      `bson:"redirect_uris" json:"redirectUris"`
	ClientSecret string        `bson:"client_secret" json:"-"`
	OwnerID      kernel.UserID `bson:"owner_id" json:"ownerId"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
}

// HasRedirectURI reports exact-string membership, per spec.md §3: "redirect
// URIs are matched by exact string equality at code-issuance time".
func (a *OAuthApplication) HasRedirectURI(uri string) bool {
	for _, u := range a.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}
