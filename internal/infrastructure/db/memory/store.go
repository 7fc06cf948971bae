// Package memory implements ports.EntityStore as two linear in-memory
// collections guarded by a single lock.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/rolecall/mock-api/internal/core/domain"
	"github.com/rolecall/mock-api/internal/core/ports"
)

var _ ports.EntityStore = (*Store)(nil)

// Store holds users and roles in insertion order.
type Store struct {
	mu    sync.RWMutex
	users []domain.User
	roles []domain.Role
	seed  Seed
}

// Option configures a Store.
type Option func(*Store)

// WithSeed replaces the default dataset loaded on construction and Reset.
func WithSeed(s Seed) Option {
	return func(st *Store) { st.seed = s }
}

// NewStore returns a store loaded with the seed dataset.
func NewStore(opts ...Option) *Store {
	s := &Store{seed: DefaultSeed()}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

// View runs fn under the read lock.
func (s *Store) View(ctx context.Context, fn func(ports.EntityReader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{s: s})
}

// Update runs fn under the write lock. A non-nil error from fn rolls back
// every change fn made.
func (s *Store) Update(ctx context.Context, fn func(ports.EntityWriter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := slices.Clone(s.users)
	roles := slices.Clone(s.roles)
	if err := fn(&tx{s: s}); err != nil {
		s.users, s.roles = users, roles
		return err
	}
	return nil
}

// Reset discards every change and reloads the seed.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return nil
}

func (s *Store) load() {
	s.users = slices.Clone(s.seed.Users)
	s.roles = slices.Clone(s.seed.Roles)
}

// tx is the reader/writer handed to View and Update callbacks. It is only
// valid while the callback runs.
type tx struct {
	s *Store
}

func (t *tx) Users() []domain.User { return slices.Clone(t.s.users) }

func (t *tx) Roles() []domain.Role { return slices.Clone(t.s.roles) }

func (t *tx) FindUser(id string) (domain.User, bool) {
	i := slices.IndexFunc(t.s.users, func(u domain.User) bool { return u.ID == id })
	if i < 0 {
		return domain.User{}, false
	}
	return t.s.users[i], true
}

func (t *tx) FindRole(id string) (domain.Role, bool) {
	return t.findRole(func(r domain.Role) bool { return r.ID == id })
}

func (t *tx) FindRoleByName(name string) (domain.Role, bool) {
	return t.findRole(func(r domain.Role) bool { return r.Name == name })
}

func (t *tx) DefaultRole() (domain.Role, bool) {
	return t.findRole(func(r domain.Role) bool { return r.IsDefault })
}

func (t *tx) findRole(match func(domain.Role) bool) (domain.Role, bool) {
	i := slices.IndexFunc(t.s.roles, match)
	if i < 0 {
		return domain.Role{}, false
	}
	return t.s.roles[i], true
}

func (t *tx) PutUser(u domain.User) {
	i := slices.IndexFunc(t.s.users, func(x domain.User) bool { return x.ID == u.ID })
	if i < 0 {
		t.s.users = append(t.s.users, u)
		return
	}
	t.s.users[i] = u
}

func (t *tx) RemoveUser(id string) bool {
	n := len(t.s.users)
	t.s.users = slices.DeleteFunc(t.s.users, func(u domain.User) bool { return u.ID == id })
	return len(t.s.users) != n
}

func (t *tx) PutRole(r domain.Role) {
	i := slices.IndexFunc(t.s.roles, func(x domain.Role) bool { return x.ID == r.ID })
	if i < 0 {
		t.s.roles = append(t.s.roles, r)
		return
	}
	t.s.roles[i] = r
}

func (t *tx) RemoveRole(id string) bool {
	n := len(t.s.roles)
	t.s.roles = slices.DeleteFunc(t.s.roles, func(r domain.Role) bool { return r.ID == id })
	return len(t.s.roles) != n
}

func (t *tx) ReassignUsers(fromRoleID, toRoleID string) int {
	moved := 0
	for i := range t.s.users {
		if t.s.users[i].RoleID == fromRoleID {
			t.s.users[i].RoleID = toRoleID
			moved++
		}
	}
	return moved
}
