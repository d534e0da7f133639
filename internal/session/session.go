// Package session implements the Session store component (spec.md §4.5):
// TTL-bounded scratch records for OAuth codes, MFA flows, and passkey
// challenges, with lazy expiry on read.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/kernel"
)

var registry = errx.NewRegistry("SESSION")

var ErrNotFound = registry.Register("NOT_FOUND", errx.TypeNotFound, 404, "session not found or expired")

// Store wraps a store.SessionRepository with the typed constructors and
// id-prefix conventions spec.md §4.5 names.
type Store struct {
	repo store.SessionRepository
}

func NewStore(repo store.SessionRepository) *Store {
	return &Store{repo: repo}
}

func randomID(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// CreateOAuthCode persists an OAuthCode session keyed by the already-minted
// 8-digit code.
func (s *Store) CreateOAuthCode(ctx context.Context, code string, data model.OAuthCodeData) error {
	sess := &model.Session{
		ID:         model.OAuthCodePrefix + code,
		Kind:       model.SessionOAuthCode,
		ExpiresAt:  time.Now().UTC().Add(model.SessionDefaultTTL),
		OAuthCode:  &data,
	}
	return s.repo.Insert(ctx, sess)
}

// GetOAuthCode fetches and type-asserts an OAuthCode session.
func (s *Store) GetOAuthCode(ctx context.Context, code string) (*model.OAuthCodeData, error) {
	sess, err := s.repo.Get(ctx, model.OAuthCodePrefix+code)
	if err != nil {
		return nil, err
	}
	if sess.OAuthCode == nil {
		return nil, registry.New(ErrNotFound)
	}
	return sess.OAuthCode, nil
}

// DeleteOAuthCode removes the session; called as part of single-use
// redemption (spec.md §4.7: "deletes it (single-use)").
func (s *Store) DeleteOAuthCode(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, model.OAuthCodePrefix+code)
}

// CreateMFAFlow persists a fresh MfaFlow session with a generated flow-id.
func (s *Store) CreateMFAFlow(ctx context.Context, kind model.MFAFlowKind, userID kernel.UserID, secret string) (string, error) {
	flowID := randomID(16)
	sess := &model.Session{
		ID:        model.MFAFlowPrefix + flowID,
		Kind:      model.SessionMFAFlow,
		ExpiresAt: time.Now().UTC().Add(model.SessionDefaultTTL),
		MFAFlow:   &model.MFAFlowData{Kind: kind, UserID: userID, Secret: secret},
	}
	if err := s.repo.Insert(ctx, sess); err != nil {
		return "", err
	}
	return flowID, nil
}

func (s *Store) GetMFAFlow(ctx context.Context, flowID string) (*model.MFAFlowData, error) {
	sess, err := s.repo.Get(ctx, model.MFAFlowPrefix+flowID)
	if err != nil {
		return nil, err
	}
	if sess.MFAFlow == nil {
		return nil, registry.New(ErrNotFound)
	}
	return sess.MFAFlow, nil
}

func (s *Store) DeleteMFAFlow(ctx context.Context, flowID string) error {
	return s.repo.Delete(ctx, model.MFAFlowPrefix+flowID)
}

// CreatePasskeyRegistration persists a challenge for an authenticated
// passkey registration ceremony.
func (s *Store) CreatePasskeyRegistration(ctx context.Context, userID kernel.UserID, stateBase64 string) (string, error) {
	regID := randomID(16)
	sess := &model.Session{
		ID:                  model.PasskeyRegistrationPrefix + regID,
		Kind:                model.SessionPasskeyRegistration,
		ExpiresAt:           time.Now().UTC().Add(model.SessionDefaultTTL),
		PasskeyRegistration: &model.PasskeyRegistrationData{UserID: userID, StateBase64: stateBase64},
	}
	if err := s.repo.Insert(ctx, sess); err != nil {
		return "", err
	}
	return regID, nil
}

func (s *Store) GetPasskeyRegistration(ctx context.Context, regID string) (*model.PasskeyRegistrationData, error) {
	sess, err := s.repo.Get(ctx, model.PasskeyRegistrationPrefix+regID)
	if err != nil {
		return nil, err
	}
	if sess.PasskeyRegistration == nil {
		return nil, registry.New(ErrNotFound)
	}
	return sess.PasskeyRegistration, nil
}

func (s *Store) DeletePasskeyRegistration(ctx context.Context, regID string) error {
	return s.repo.Delete(ctx, model.PasskeyRegistrationPrefix+regID)
}

// CreatePasskeyAuthentication persists a discoverable-login challenge.
func (s *Store) CreatePasskeyAuthentication(ctx context.Context, stateBase64 string) (string, error) {
	authID := randomID(16)
	sess := &model.Session{
		ID:                    model.PasskeyAuthenticationPrefix + authID,
		Kind:                  model.SessionPasskeyAuthentication,
		ExpiresAt:             time.Now().UTC().Add(model.SessionDefaultTTL),
		PasskeyAuthentication: &model.PasskeyAuthenticationData{StateBase64: stateBase64},
	}
	if err := s.repo.Insert(ctx, sess); err != nil {
		return "", err
	}
	return authID, nil
}

func (s *Store) GetPasskeyAuthentication(ctx context.Context, authID string) (*model.PasskeyAuthenticationData, error) {
	sess, err := s.repo.Get(ctx, model.PasskeyAuthenticationPrefix+authID)
	if err != nil {
		return nil, err
	}
	if sess.PasskeyAuthentication == nil {
		return nil, registry.New(ErrNotFound)
	}
	return sess.PasskeyAuthentication, nil
}

func (s *Store) DeletePasskeyAuthentication(ctx context.Context, authID string) error {
	return s.repo.Delete(ctx, model.PasskeyAuthenticationPrefix+authID)
}

// GenerateOAuthCode mints the 8-digit decimal code spec.md §4.7 names.
func GenerateOAuthCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := (uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])) % 90000000
	return fmt.Sprintf("%08d", 10000000+n), nil
}
