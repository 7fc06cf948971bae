package ports

import (
	"context"

	"github.com/rolecall/mock-api/internal/core/domain"
)

// EntityReader is a consistent view over both collections. Returned values
// are copies; changing them does not touch the store.
type EntityReader interface {
	// Users and Roles return the collections in insertion order.
	Users() []domain.User
	Roles() []domain.Role
	FindUser(id string) (domain.User, bool)
	FindRole(id string) (domain.Role, bool)
	FindRoleByName(name string) (domain.Role, bool)
	DefaultRole() (domain.Role, bool)
}

// EntityWriter mutates both collections inside a single write transaction.
type EntityWriter interface {
	EntityReader
	// PutUser replaces the user with the same id, or appends it.
	PutUser(u domain.User)
	RemoveUser(id string) bool
	// PutRole replaces the role with the same id, or appends it.
	PutRole(r domain.Role)
	RemoveRole(id string) bool
	// ReassignUsers points every user of fromRoleID at toRoleID and returns
	// how many users moved.
	ReassignUsers(fromRoleID, toRoleID string) int
}

// EntityStore owns the user and role collections. View runs fn against a
// snapshot; Update serialises fn against all other writers; Reset swaps both
// collections for fresh seed copies.
type EntityStore interface {
	View(ctx context.Context, fn func(EntityReader) error) error
	Update(ctx context.Context, fn func(EntityWriter) error) error
	Reset(ctx context.Context) error
}
