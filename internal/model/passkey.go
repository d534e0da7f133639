package model

import (
	"time"

	"github.com/authcore/authcore/pkg/kernel"
)

// Passkey is a registered WebAuthn credential (spec.md §3 "Passkey"). Id is
// the URL-safe-no-pad base64 encoding of the credential id.
type Passkey struct {
	ID        string        `bson:"_id" json:"id"`
	OwnerID   kernel.UserID `bson:"owner_id" json:"ownerId"`
	Name      string        `bson:"name" json:"name"`
	Credential []byte       `bson:"credential" json:"-"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

// PasskeyDTO omits the raw credential blob.
type PasskeyDTO struct {
	ID        string        `json:"id"`
	OwnerID   kernel.UserID `json:"ownerId"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (p *Passkey) ToDTO() PasskeyDTO {
	return PasskeyDTO{ID: p.ID, OwnerID: p.OwnerID, Name: p.Name, CreatedAt: p.CreatedAt}
}
