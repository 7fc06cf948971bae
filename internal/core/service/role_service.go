package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rolecall/mock-api/internal/core/domain"
	"github.com/rolecall/mock-api/internal/core/ports"
	"github.com/rolecall/mock-api/internal/core/query"
)

// RoleService keeps role names unique and exactly one role marked default.
type RoleService struct {
	store ports.EntityStore
	log   zerolog.Logger
	opts  options
}

var _ ports.RoleService = (*RoleService)(nil)

func NewRoleService(store ports.EntityStore, log zerolog.Logger, opts ...Option) *RoleService {
	return &RoleService{store: store, log: log, opts: buildOptions(opts)}
}

func (s *RoleService) ListRoles(ctx context.Context, in ports.ListInput) (domain.Page[domain.Role], error) {
	var page domain.Page[domain.Role]
	err := s.store.View(ctx, func(r ports.EntityReader) error {
		page = query.Page(r.Roles(), roleCreatedAt, in.Search, in.Page, s.opts.pageSize)
		return nil
	})
	if err != nil {
		return domain.Page[domain.Role]{}, fmt.Errorf("list roles: %w", err)
	}
	return page, nil
}

func (s *RoleService) GetRole(ctx context.Context, id string) (domain.Role, error) {
	var role domain.Role
	err := s.store.View(ctx, func(r ports.EntityReader) error {
		found, ok := r.FindRole(id)
		if !ok {
			return domain.ErrRoleNotFound
		}
		role = found
		return nil
	})
	if err != nil {
		return domain.Role{}, fmt.Errorf("get role %s: %w", id, err)
	}
	return role, nil
}

// CreateRole stores a new role. A role created with IsDefault takes the
// default flag away from the current default.
func (s *RoleService) CreateRole(ctx context.Context, in ports.CreateRoleInput) (domain.Role, error) {
	if err := requireFields(in); err != nil {
		return domain.Role{}, fmt.Errorf("create role: %w", err)
	}

	var role domain.Role
	err := s.store.Update(ctx, func(w ports.EntityWriter) error {
		if _, taken := w.FindRoleByName(in.Name); taken {
			return domain.ErrRoleNameTaken
		}

		now := s.opts.now()
		if in.IsDefault {
			clearDefault(w, now)
		}
		role = domain.Role{
			ID:          uuid.NewString(),
			CreatedAt:   now,
			UpdatedAt:   now,
			Name:        in.Name,
			Description: in.Description,
			IsDefault:   in.IsDefault,
		}
		w.PutRole(role)
		return nil
	})
	if err != nil {
		return domain.Role{}, fmt.Errorf("create role: %w", err)
	}

	s.mutated("create", role.ID)
	return role, nil
}

// UpdateRole applies the non-empty fields of in. The default flag can only
// move to another role; it can never be cleared directly.
func (s *RoleService) UpdateRole(ctx context.Context, id string, in ports.UpdateRoleInput) (domain.Role, error) {
	var (
		role    domain.Role
		changed bool
	)
	err := s.store.Update(ctx, func(w ports.EntityWriter) error {
		r, ok := w.FindRole(id)
		if !ok {
			return domain.ErrRoleNotFound
		}

		if in.Name != "" && in.Name != r.Name {
			if _, taken := w.FindRoleByName(in.Name); taken {
				return domain.ErrRoleNameTaken
			}
		}
		flipDefault := in.IsDefault != nil && *in.IsDefault != r.IsDefault
		if flipDefault && r.IsDefault {
			return domain.ErrUnsetDefaultRole
		}

		now := s.opts.now()
		changed = setIfChanged(&r.Name, in.Name) || changed
		changed = setIfChanged(&r.Description, in.Description) || changed
		if flipDefault {
			clearDefault(w, now)
			r.IsDefault = true
			changed = true
		}

		if changed {
			r.UpdatedAt = now
			w.PutRole(r)
		}
		role = r
		return nil
	})
	if err != nil {
		return domain.Role{}, fmt.Errorf("update role %s: %w", id, err)
	}

	if changed {
		s.mutated("update", id)
	}
	return role, nil
}

// DeleteRole removes a non-default role after moving its users to the
// default role.
func (s *RoleService) DeleteRole(ctx context.Context, id string) (domain.Role, error) {
	var (
		role  domain.Role
		moved int
	)
	err := s.store.Update(ctx, func(w ports.EntityWriter) error {
		r, ok := w.FindRole(id)
		if !ok {
			return domain.ErrRoleNotFound
		}
		if r.IsDefault {
			return domain.ErrDeleteDefaultRole
		}

		def, ok := w.DefaultRole()
		if !ok {
			return fmt.Errorf("no default role to reassign users of %s", id)
		}
		moved = w.ReassignUsers(id, def.ID)
		w.RemoveRole(id)
		role = r
		return nil
	})
	if err != nil {
		return domain.Role{}, fmt.Errorf("delete role %s: %w", id, err)
	}

	s.mutated("delete", id)
	if moved > 0 {
		s.opts.recorder.RecordMutation("user", "reassign")
		s.log.Info().Str("role_id", id).Int("users", moved).Msg("users reassigned to default role")
	}
	return role, nil
}

// clearDefault drops the flag from the current default role, if any.
func clearDefault(w ports.EntityWriter, now time.Time) {
	prev, ok := w.DefaultRole()
	if !ok {
		return
	}
	prev.IsDefault = false
	prev.UpdatedAt = now
	w.PutRole(prev)
}

func (s *RoleService) mutated(op, id string) {
	s.opts.recorder.RecordMutation("role", op)
	s.log.Info().Str("entity", "role").Str("op", op).Str("id", id).Msg("role mutated")
}

func roleCreatedAt(r domain.Role) time.Time { return r.CreatedAt }
