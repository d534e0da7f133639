// Package storetest provides in-memory fakes of the store interfaces for
// unit tests that don't need a live MongoDB, grounded on the teacher's
// mockLLM-style hand-rolled fakes (pkg/ai/llm/memoryx/memoryx_test.go).
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
)

func timeNow() time.Time { return time.Now().UTC() }

// Users is an in-memory UserRepository.
type Users struct {
	mu   sync.Mutex
	byID map[kernel.UserID]*model.User
}

func NewUsers() *Users { return &Users{byID: map[kernel.UserID]*model.User{}} }

var _ store.UserRepository = (*Users)(nil)

func (u *Users) Insert(_ context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byID[user.ID]; ok {
		return store.Database(errDuplicate)
	}
	cp := *user
	u.byID[user.ID] = &cp
	return nil
}

func (u *Users) FindByID(_ context.Context, id kernel.UserID) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.byID[id]
	if !ok {
		return nil, store.NotFound("User")
	}
	cp := *user
	return &cp, nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.byID {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, store.NotFound("User")
}

func (u *Users) FindByToken(_ context.Context, token string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.byID {
		if user.Token == token {
			cp := *user
			return &cp, nil
		}
	}
	return nil, store.NotFound("User")
}

func (u *Users) Replace(_ context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byID[user.ID]; !ok {
		return store.NotFound("User")
	}
	cp := *user
	u.byID[user.ID] = &cp
	return nil
}

func (u *Users) Delete(_ context.Context, id kernel.UserID) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byID[id]; !ok {
		return store.NotFound("User")
	}
	delete(u.byID, id)
	return nil
}

func (u *Users) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.User], error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	all := make([]*model.User, 0, len(u.byID))
	for _, user := range u.byID {
		cp := *user
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return paginate(all, opts), nil
}

func (u *Users) Count(_ context.Context) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return int64(len(u.byID)), nil
}

func (u *Users) RemoveRoleFromAll(_ context.Context, role kernel.RoleID) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.byID {
		kept := user.Roles[:0]
		for _, r := range user.Roles {
			if r != role {
				kept = append(kept, r)
			}
		}
		user.Roles = kept
	}
	return nil
}

// Roles is an in-memory RoleRepository.
type Roles struct {
	mu   sync.Mutex
	byID map[kernel.RoleID]*model.Role
}

func NewRoles() *Roles { return &Roles{byID: map[kernel.RoleID]*model.Role{}} }

var _ store.RoleRepository = (*Roles)(nil)

func (r *Roles) Insert(_ context.Context, role *model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[role.ID]; ok {
		return store.Database(errDuplicate)
	}
	cp := *role
	r.byID[role.ID] = &cp
	return nil
}

func (r *Roles) FindByID(_ context.Context, id kernel.RoleID) (*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.byID[id]
	if !ok {
		return nil, store.NotFound("Role")
	}
	cp := *role
	return &cp, nil
}

func (r *Roles) Replace(_ context.Context, role *model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[role.ID]; !ok {
		return store.NotFound("Role")
	}
	cp := *role
	r.byID[role.ID] = &cp
	return nil
}

func (r *Roles) Delete(_ context.Context, id kernel.RoleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return store.NotFound("Role")
	}
	delete(r.byID, id)
	return nil
}

func (r *Roles) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.Role], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*model.Role, 0, len(r.byID))
	for _, role := range r.byID {
		cp := *role
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return paginate(all, opts), nil
}

// Settings is an in-memory SettingsRepository.
type Settings struct {
	mu sync.Mutex
	s  *model.Settings
}

func NewSettings() *Settings { return &Settings{} }

var _ store.SettingsRepository = (*Settings)(nil)

func (s *Settings) Get(_ context.Context) (*model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.s == nil {
		return nil, store.NotFound("Settings")
	}
	cp := *s.s
	return &cp, nil
}

func (s *Settings) Insert(_ context.Context, settings *model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.s != nil {
		return store.Database(errDuplicate)
	}
	cp := *settings
	s.s = &cp
	return nil
}

func (s *Settings) Replace(_ context.Context, settings *model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.s == nil {
		return store.NotFound("Settings")
	}
	cp := *settings
	s.s = &cp
	return nil
}

// OAuthApplications is an in-memory OAuthApplicationRepository.
type OAuthApplications struct {
	mu   sync.Mutex
	byID map[string]*model.OAuthApplication
}

func NewOAuthApplications() *OAuthApplications {
	return &OAuthApplications{byID: map[string]*model.OAuthApplication{}}
}

var _ store.OAuthApplicationRepository = (*OAuthApplications)(nil)

func (a *OAuthApplications) Insert(_ context.Context, app *model.OAuthApplication) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byID[app.ID]; ok {
		return store.Database(errDuplicate)
	}
	cp := *app
	a.byID[app.ID] = &cp
	return nil
}

func (a *OAuthApplications) FindByID(_ context.Context, id string) (*model.OAuthApplication, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	app, ok := a.byID[id]
	if !ok {
		return nil, store.NotFound("OAuthApplication")
	}
	cp := *app
	return &cp, nil
}

func (a *OAuthApplications) Replace(_ context.Context, app *model.OAuthApplication) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byID[app.ID]; !ok {
		return store.NotFound("OAuthApplication")
	}
	cp := *app
	a.byID[app.ID] = &cp
	return nil
}

func (a *OAuthApplications) Delete(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byID[id]; !ok {
		return store.NotFound("OAuthApplication")
	}
	delete(a.byID, id)
	return nil
}

func (a *OAuthApplications) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.OAuthApplication], error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	all := make([]*model.OAuthApplication, 0, len(a.byID))
	for _, app := range a.byID {
		cp := *app
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, opts), nil
}

func (a *OAuthApplications) ListByOwner(_ context.Context, owner kernel.UserID) ([]*model.OAuthApplication, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*model.OAuthApplication
	for _, app := range a.byID {
		if app.OwnerID == owner {
			cp := *app
			out = append(out, &cp)
		}
	}
	return out, nil
}

// OAuthTokens is an in-memory OAuthTokenRepository.
type OAuthTokens struct {
	mu   sync.Mutex
	byID map[string]*model.OAuthToken
}

func NewOAuthTokens() *OAuthTokens { return &OAuthTokens{byID: map[string]*model.OAuthToken{}} }

var _ store.OAuthTokenRepository = (*OAuthTokens)(nil)

func (t *OAuthTokens) Insert(_ context.Context, tok *model.OAuthToken) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[tok.ID]; ok {
		return store.Database(errDuplicate)
	}
	cp := *tok
	t.byID[tok.ID] = &cp
	return nil
}

func (t *OAuthTokens) FindByToken(_ context.Context, token string) (*model.OAuthToken, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tok, ok := t.byID[token]
	if !ok {
		return nil, store.NotFound("OAuthToken")
	}
	cp := *tok
	return &cp, nil
}

func (t *OAuthTokens) FindByUserAndApplication(_ context.Context, userID kernel.UserID, appID string) (*model.OAuthToken, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tok := range t.byID {
		if tok.UserID == userID && tok.ApplicationID == appID {
			cp := *tok
			return &cp, nil
		}
	}
	return nil, store.NotFound("OAuthToken")
}

func (t *OAuthTokens) Replace(_ context.Context, tok *model.OAuthToken) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[tok.ID]; !ok {
		return store.NotFound("OAuthToken")
	}
	cp := *tok
	t.byID[tok.ID] = &cp
	return nil
}

func (t *OAuthTokens) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return store.NotFound("OAuthToken")
	}
	delete(t.byID, id)
	return nil
}

func (t *OAuthTokens) DeleteAllByApplication(_ context.Context, appID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, tok := range t.byID {
		if tok.ApplicationID == appID {
			delete(t.byID, id)
		}
	}
	return nil
}

func (t *OAuthTokens) DeleteAllByUser(_ context.Context, userID kernel.UserID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, tok := range t.byID {
		if tok.UserID == userID {
			delete(t.byID, id)
		}
	}
	return nil
}

// Passkeys is an in-memory PasskeyRepository.
type Passkeys struct {
	mu   sync.Mutex
	byID map[string]*model.Passkey
}

func NewPasskeys() *Passkeys { return &Passkeys{byID: map[string]*model.Passkey{}} }

var _ store.PasskeyRepository = (*Passkeys)(nil)

func (p *Passkeys) Insert(_ context.Context, pk *model.Passkey) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[pk.ID]; ok {
		return store.Database(errDuplicate)
	}
	cp := *pk
	p.byID[pk.ID] = &cp
	return nil
}

func (p *Passkeys) FindByID(_ context.Context, id string) (*model.Passkey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pk, ok := p.byID[id]
	if !ok {
		return nil, store.NotFound("Passkey")
	}
	cp := *pk
	return &cp, nil
}

func (p *Passkeys) ListByOwner(_ context.Context, owner kernel.UserID) ([]*model.Passkey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*model.Passkey
	for _, pk := range p.byID {
		if pk.OwnerID == owner {
			cp := *pk
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (p *Passkeys) Replace(_ context.Context, pk *model.Passkey) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[pk.ID]; !ok {
		return store.NotFound("Passkey")
	}
	cp := *pk
	p.byID[pk.ID] = &cp
	return nil
}

func (p *Passkeys) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[id]; !ok {
		return store.NotFound("Passkey")
	}
	delete(p.byID, id)
	return nil
}

// RegistrationTokens is an in-memory RegistrationTokenRepository.
type RegistrationTokens struct {
	mu   sync.Mutex
	byID map[string]*model.RegistrationToken
}

func NewRegistrationTokens() *RegistrationTokens {
	return &RegistrationTokens{byID: map[string]*model.RegistrationToken{}}
}

var _ store.RegistrationTokenRepository = (*RegistrationTokens)(nil)

func (r *RegistrationTokens) Insert(_ context.Context, t *model.RegistrationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; ok {
		return store.Database(errDuplicate)
	}
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func (r *RegistrationTokens) FindByID(_ context.Context, id string) (*model.RegistrationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, store.NotFound("RegistrationToken")
	}
	cp := *t
	return &cp, nil
}

func (r *RegistrationTokens) FindByCode(_ context.Context, code string) (*model.RegistrationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, store.NotFound("RegistrationToken")
}

func (r *RegistrationTokens) Replace(_ context.Context, t *model.RegistrationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return store.NotFound("RegistrationToken")
	}
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func (r *RegistrationTokens) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return store.NotFound("RegistrationToken")
	}
	delete(r.byID, id)
	return nil
}

func (r *RegistrationTokens) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[*model.RegistrationToken], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*model.RegistrationToken, 0, len(r.byID))
	for _, t := range r.byID {
		cp := *t
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, opts), nil
}

// AuditLogs is an in-memory AuditLogRepository, collapsing the real
// per-entity-type collections into one slice (append-only, as spec.md §3
// requires).
type AuditLogs struct {
	mu      sync.Mutex
	entries []*model.AuditLog
}

func NewAuditLogs() *AuditLogs { return &AuditLogs{} }

var _ store.AuditLogRepository = (*AuditLogs)(nil)

func (l *AuditLogs) Append(_ context.Context, entry *model.AuditLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *entry
	l.entries = append(l.entries, &cp)
	return nil
}

func (l *AuditLogs) ListByEntityType(_ context.Context, entityType model.EntityType, opts kernel.PaginationOptions) (kernel.Paginated[*model.AuditLog], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var matching []*model.AuditLog
	for _, e := range l.entries {
		if e.EntityType == entityType {
			matching = append(matching, e)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].CreatedAt.After(matching[j].CreatedAt) })
	return paginate(matching, opts), nil
}

func (l *AuditLogs) ListByAuthor(_ context.Context, author kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[*model.AuditLog], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var matching []*model.AuditLog
	for _, e := range l.entries {
		if e.AuthorID == author {
			matching = append(matching, e)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].CreatedAt.After(matching[j].CreatedAt) })
	return paginate(matching, opts), nil
}

// Sessions is an in-memory SessionRepository with lazy expiry on read,
// mirroring mongostore.SessionRepository.Get's semantics.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*model.Session
}

func NewSessions() *Sessions { return &Sessions{byID: map[string]*model.Session{}} }

var _ store.SessionRepository = (*Sessions)(nil)

func (s *Sessions) Insert(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.byID[sess.ID] = &cp
	return nil
}

func (s *Sessions) Get(_ context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, store.NotFound("Session")
	}
	if sess.IsExpired(timeNow()) {
		delete(s.byID, id)
		return nil, store.NotFound("Session")
	}
	cp := *sess
	return &cp, nil
}

func (s *Sessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func paginate[T any](all []T, opts kernel.PaginationOptions) kernel.Paginated[T] {
	total := len(all)
	start := (opts.Page - 1) * opts.PageSize
	if start > total {
		start = total
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}
	return kernel.NewPaginated(all[start:end], opts.Page, opts.PageSize, total)
}

type duplicateErr string

func (e duplicateErr) Error() string { return string(e) }

const errDuplicate = duplicateErr("duplicate key")
