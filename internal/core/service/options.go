package service

import (
	"time"

	"github.com/rolecall/mock-api/internal/pkg/random"
)

// MutationRecorder is notified after every successful create, update or
// delete. internal/api/metrics implements it.
type MutationRecorder interface {
	RecordMutation(entity, op string)
}

type noopRecorder struct{}

func (noopRecorder) RecordMutation(string, string) {}

// DefaultPageSize is used when no page size option is given.
const DefaultPageSize = 10

type options struct {
	pageSize int
	now      func() time.Time
	rng      random.Source
	recorder MutationRecorder
}

// Option customises a UserService or RoleService.
type Option func(*options)

// WithPageSize sets the number of items per list page.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithClock replaces time.Now for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRandom sets the source used to pick user photos.
func WithRandom(rng random.Source) Option {
	return func(o *options) { o.rng = rng }
}

// WithRecorder sets the mutation recorder.
func WithRecorder(r MutationRecorder) Option {
	return func(o *options) { o.recorder = r }
}

func buildOptions(opts []Option) options {
	o := options{
		pageSize: DefaultPageSize,
		now:      func() time.Time { return time.Now().UTC() },
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = random.NewFromTime()
	}
	return o
}
