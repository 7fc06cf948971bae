// Package app runs the mock API as an embeddable server: Start binds the
// listener and serves in the background, Stop shuts it down gracefully and
// Reset restores the seed data.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rolecall/mock-api/internal/api"
	"github.com/rolecall/mock-api/internal/api/metrics"
	"github.com/rolecall/mock-api/internal/api/middleware"
	"github.com/rolecall/mock-api/internal/infrastructure/db/memory"
	"github.com/rolecall/mock-api/internal/pkg/config"
	"github.com/rolecall/mock-api/internal/pkg/random"
)

type options struct {
	log     zerolog.Logger
	rng     random.Source
	sleep   func(time.Duration)
	now     func() time.Time
	latency *middleware.LatencyProfile
	seed    *memory.Seed
}

// Option customises Start.
type Option func(*options)

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRandom fixes the random source, e.g. random.New(seed) for
// reproducible fault sequences.
func WithRandom(rng random.Source) Option {
	return func(o *options) { o.rng = rng }
}

func WithSleep(sleep func(time.Duration)) Option {
	return func(o *options) { o.sleep = sleep }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLatency overrides the delay window of the configured speed.
func WithLatency(p middleware.LatencyProfile) Option {
	return func(o *options) { o.latency = &p }
}

func WithSeed(s memory.Seed) Option {
	return func(o *options) { o.seed = &s }
}

// Server is a running mock API.
type Server struct {
	cfg     config.Config
	log     zerolog.Logger
	store   *memory.Store
	metrics *metrics.Metrics
	http    *http.Server
	ln      net.Listener
	done    chan error
}

// Start validates cfg, binds cfg.Port (0 picks a free port) and serves in a
// background goroutine. It returns once the listener is bound.
func Start(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = random.NewFromTime()
	}

	var storeOpts []memory.Option
	if o.seed != nil {
		storeOpts = append(storeOpts, memory.WithSeed(*o.seed))
	}
	store := memory.NewStore(storeOpts...)
	m := metrics.New()

	e := api.NewRouter(api.Deps{
		Config:  cfg,
		Store:   store,
		Metrics: m,
		Rand:    o.rng,
		Log:     o.log,
		Latency: o.latency,
		Sleep:   o.sleep,
		Now:     o.now,
	})

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("app: listen on port %d: %w", cfg.Port, err)
	}

	s := &Server{
		cfg:     cfg,
		log:     o.log,
		store:   store,
		metrics: m,
		http: &http.Server{
			Handler:           e,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ln:   ln,
		done: make(chan error, 1),
	}

	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
		close(s.done)
	}()

	s.log.Info().
		Str("addr", s.Addr()).
		Str("speed", string(cfg.Speed)).
		Int("page_size", cfg.PageSize).
		Float64("chance_of_server_error", cfg.ChanceOfServerError).
		Msg("mock api listening")
	return s, nil
}

// Addr is the bound listener address, e.g. "[::]:3001".
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Port is the bound TCP port; useful after starting on port 0.
func (s *Server) Port() int {
	if a, ok := s.ln.Addr().(*net.TCPAddr); ok {
		return a.Port
	}
	return 0
}

// URL is the loopback base URL of the server.
func (s *Server) URL() string {
	return "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(s.Port()))
}

// Done yields the serve error (nil after a clean Stop) and is then closed.
func (s *Server) Done() <-chan error { return s.done }

// Stop stops accepting connections and waits for in-flight requests,
// injected delays included, until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	s.log.Info().Msg("mock api stopped")
	return nil
}

// Reset replaces every user and role with a fresh copy of the seed. It waits
// for any in-flight mutation to finish.
func (s *Server) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("app: reset: %w", err)
	}
	s.metrics.RecordReset()
	s.log.Info().Msg("store reset to seed data")
	return nil
}
