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

const photoBaseURL = "https://randomuser.me/api/portraits/"

type UserService struct {
	store ports.EntityStore
	log   zerolog.Logger
	opts  options
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(store ports.EntityStore, log zerolog.Logger, opts ...Option) *UserService {
	return &UserService{store: store, log: log, opts: buildOptions(opts)}
}

// ListUsers returns one page of users matching in.Search on first or last
// name, newest first.
func (s *UserService) ListUsers(ctx context.Context, in ports.ListInput) (domain.Page[domain.User], error) {
	var page domain.Page[domain.User]
	err := s.store.View(ctx, func(r ports.EntityReader) error {
		page = query.Page(r.Users(), userCreatedAt, in.Search, in.Page, s.opts.pageSize)
		return nil
	})
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	err := s.store.View(ctx, func(r ports.EntityReader) error {
		u, ok := r.FindUser(id)
		if !ok {
			return domain.ErrUserNotFound
		}
		user = u
		return nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

// CreateUser validates the input, checks that the role exists and stores a
// new user with a fresh id and photo.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (domain.User, error) {
	if err := requireFields(in); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	var user domain.User
	err := s.store.Update(ctx, func(w ports.EntityWriter) error {
		if _, ok := w.FindRole(in.RoleID); !ok {
			return domain.ErrRoleReference
		}
		now := s.opts.now()
		user = domain.User{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
			First:     in.First,
			Last:      in.Last,
			RoleID:    in.RoleID,
			Photo:     s.randomPhoto(),
		}
		w.PutUser(user)
		return nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.mutated("create", user.ID)
	return user, nil
}

// UpdateUser applies the non-empty fields of in. updatedAt only moves when a
// field actually changed.
func (s *UserService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (domain.User, error) {
	var (
		user    domain.User
		changed bool
	)
	err := s.store.Update(ctx, func(w ports.EntityWriter) error {
		u, ok := w.FindUser(id)
		if !ok {
			return domain.ErrUserNotFound
		}

		if in.RoleID != "" {
			if _, ok := w.FindRole(in.RoleID); !ok {
				return domain.ErrRoleReference
			}
			changed = setIfChanged(&u.RoleID, in.RoleID) || changed
		}
		changed = setIfChanged(&u.First, in.First) || changed
		changed = setIfChanged(&u.Last, in.Last) || changed

		if changed {
			u.UpdatedAt = s.opts.now()
			w.PutUser(u)
		}
		user = u
		return nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("update user %s: %w", id, err)
	}

	if changed {
		s.mutated("update", id)
	}
	return user, nil
}

// DeleteUser removes the user and returns it as it was. Nothing else in the
// store references users.
func (s *UserService) DeleteUser(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	err := s.store.Update(ctx, func(w ports.EntityWriter) error {
		u, ok := w.FindUser(id)
		if !ok {
			return domain.ErrUserNotFound
		}
		w.RemoveUser(id)
		user = u
		return nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("delete user %s: %w", id, err)
	}

	s.mutated("delete", id)
	return user, nil
}

func (s *UserService) randomPhoto() string {
	gender := "men"
	if s.opts.rng.IntN(2) == 1 {
		gender = "women"
	}
	return fmt.Sprintf("%s%s/%d.jpg", photoBaseURL, gender, s.opts.rng.IntN(100))
}

func (s *UserService) mutated(op, id string) {
	s.opts.recorder.RecordMutation("user", op)
	s.log.Info().Str("entity", "user").Str("op", op).Str("id", id).Msg("user mutated")
}

func userCreatedAt(u domain.User) time.Time { return u.CreatedAt }

// setIfChanged overwrites *dst with v when v is non-empty and different.
func setIfChanged(dst *string, v string) bool {
	if v == "" || v == *dst {
		return false
	}
	*dst = v
	return true
}
