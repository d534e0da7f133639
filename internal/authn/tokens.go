package authn

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomAlphanumeric generates a CSPRNG string constrained to the
// alphanumeric charset, grounded on original_source's generate_token()/
// generate_secret()/generate_code() helpers (models/user.rs,
// oauth_application.rs, oauth_token.rs, registration_token.rs).
func randomAlphanumeric(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[idx.Int64()]
	}
	return string(out), nil
}

// NewUserBearerToken generates the 512-bit (64 random bytes, base64
// standard) user bearer token (original_source/models/user.rs
// generate_token()).
func NewUserBearerToken() (string, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// NewClientSecret generates the 64-char alphanumeric OAuth client secret
// (original_source/models/oauth_application.rs generate_secret()).
func NewClientSecret() (string, error) {
	return randomAlphanumeric(64)
}

// NewOAuthTokenValue generates the 128-char alphanumeric OAuth bearer
// token (original_source/models/oauth_token.rs generate_token()).
func NewOAuthTokenValue() (string, error) {
	return randomAlphanumeric(128)
}

// NewRegistrationCode generates the 6-char alphanumeric registration code
// (original_source/models/registration_token.rs generate_code()).
func NewRegistrationCode() (string, error) {
	return randomAlphanumeric(6)
}
