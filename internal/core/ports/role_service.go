package ports

import (
	"context"

	"github.com/rolecall/mock-api/internal/core/domain"
)

// CreateRoleInput carries the fields of POST /roles.
type CreateRoleInput struct {
	Name        string `json:"name" validate:"required"`
	Description string
	IsDefault   bool
}

// UpdateRoleInput carries the fields of PATCH /roles/:id. Empty strings mean
// "leave unchanged"; a nil IsDefault leaves the flag alone.
type UpdateRoleInput struct {
	Name        string
	Description string
	IsDefault   *bool
}

// RoleService defines use-case operations for roles.
type RoleService interface {
	ListRoles(ctx context.Context, in ListInput) (domain.Page[domain.Role], error)
	GetRole(ctx context.Context, id string) (domain.Role, error)
	CreateRole(ctx context.Context, in CreateRoleInput) (domain.Role, error)
	UpdateRole(ctx context.Context, id string, in UpdateRoleInput) (domain.Role, error)
	DeleteRole(ctx context.Context, id string) (domain.Role, error)
}
