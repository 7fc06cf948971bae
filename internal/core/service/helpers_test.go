package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rolecall/mock-api/internal/core/domain"
	"github.com/rolecall/mock-api/internal/core/ports"
	"github.com/rolecall/mock-api/internal/infrastructure/db/memory"
	"github.com/rolecall/mock-api/internal/pkg/random"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordedMutation struct{ entity, op string }

type stubRecorder struct {
	mu  sync.Mutex
	got []recordedMutation
}

func (r *stubRecorder) RecordMutation(entity, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, recordedMutation{entity, op})
}

// failingStore rejects every transaction with err.
type failingStore struct{ err error }

func (s failingStore) View(context.Context, func(ports.EntityReader) error) error   { return s.err }
func (s failingStore) Update(context.Context, func(ports.EntityWriter) error) error { return s.err }
func (s failingStore) Reset(context.Context) error                                  { return s.err }

var errStoreDown = errors.New("store down")

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fixture struct {
	store    *memory.Store
	users    *UserService
	roles    *RoleService
	clock    *stepClock
	recorder *stubRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		clock:    newStepClock(),
		recorder: &stubRecorder{},
	}
	opts := []Option{
		WithClock(f.clock.Now),
		WithRandom(random.New(1)),
		WithRecorder(f.recorder),
	}
	f.users = NewUserService(f.store, discardLogger, opts...)
	f.roles = NewRoleService(f.store, discardLogger, opts...)
	return f
}

// assertInvariants checks that exactly one role is default and every user
// points at an existing role.
func assertInvariants(t *testing.T, store ports.EntityStore) {
	t.Helper()
	err := store.View(context.Background(), func(r ports.EntityReader) error {
		defaults := 0
		for _, role := range r.Roles() {
			if role.IsDefault {
				defaults++
			}
		}
		if defaults != 1 {
			t.Errorf("expected exactly one default role, got %d", defaults)
		}
		for _, u := range r.Users() {
			if _, ok := r.FindRole(u.RoleID); !ok {
				t.Errorf("user %s references missing role %s", u.ID, u.RoleID)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func assertKind(t *testing.T, err, kind error, msg string) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected error kind %v, got %v", kind, err)
	}
	if got := domain.Message(err, ""); got != msg {
		t.Errorf("expected message %q, got %q", msg, got)
	}
}

func boolPtr(b bool) *bool { return &b }
