package ports

import (
	"context"

	"github.com/rolecall/mock-api/internal/core/domain"
)

// ListInput carries the client-controlled listing parameters.
type ListInput struct {
	Search string
	Page   int // 1-based
}

// CreateUserInput carries the fields of POST /users.
type CreateUserInput struct {
	First  string `json:"first"  validate:"required"`
	Last   string `json:"last"   validate:"required"`
	RoleID string `json:"roleId" validate:"required"`
}

// UpdateUserInput carries the fields of PATCH /users/:id. Empty values mean
// "leave unchanged".
type UpdateUserInput struct {
	First  string
	Last   string
	RoleID string
}

// UserService defines use-case operations for users.
type UserService interface {
	ListUsers(ctx context.Context, in ListInput) (domain.Page[domain.User], error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (domain.User, error)
	DeleteUser(ctx context.Context, id string) (domain.User, error)
}
