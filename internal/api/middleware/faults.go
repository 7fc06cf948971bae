package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rolecall/mock-api/internal/core/domain"
	"github.com/rolecall/mock-api/internal/pkg/config"
	"github.com/rolecall/mock-api/internal/pkg/random"
)

// LatencyProfile is a half-open window [Min, Max) a delay is drawn from.
type LatencyProfile struct {
	Min time.Duration
	Max time.Duration
}

// LatencyProfiles maps every speed to its delay window.
var LatencyProfiles = map[config.Speed]LatencyProfile{
	config.SpeedFast:   {},
	config.SpeedMedium: {Min: 250 * time.Millisecond, Max: 750 * time.Millisecond},
	config.SpeedSlow:   {Min: time.Second, Max: 3 * time.Second},
}

// ProfileFor returns the window for speed; unknown speeds add no delay.
func ProfileFor(speed config.Speed) LatencyProfile {
	return LatencyProfiles[speed]
}

// FaultConfig describes what Faults injects into every request.
type FaultConfig struct {
	Latency             LatencyProfile
	ChanceOfServerError float64
}

// FaultRecorder receives one event per delay and per injected error.
type FaultRecorder interface {
	RecordFault()
	ObserveLatency(d time.Duration)
}

type faultOptions struct {
	sleep    func(time.Duration)
	recorder FaultRecorder
	log      zerolog.Logger
}

type FaultOption func(*faultOptions)

// WithSleep replaces time.Sleep, mostly for tests.
func WithSleep(sleep func(time.Duration)) FaultOption {
	return func(o *faultOptions) { o.sleep = sleep }
}

func WithFaultRecorder(r FaultRecorder) FaultOption {
	return func(o *faultOptions) { o.recorder = r }
}

func WithFaultLogger(log zerolog.Logger) FaultOption {
	return func(o *faultOptions) { o.log = log }
}

// Faults delays every request by a random duration from cfg.Latency and
// then, with probability cfg.ChanceOfServerError, fails it with
// domain.ErrServerFault without calling the next handler. The delay is not
// cut short when the client goes away.
func Faults(cfg FaultConfig, rng random.Source, opts ...FaultOption) echo.MiddlewareFunc {
	o := faultOptions{sleep: time.Sleep, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			delay := random.Duration(rng, cfg.Latency.Min, cfg.Latency.Max)
			if delay > 0 {
				o.sleep(delay)
			}
			if o.recorder != nil {
				o.recorder.ObserveLatency(delay)
			}

			if shouldFail(rng, cfg.ChanceOfServerError) {
				if o.recorder != nil {
					o.recorder.RecordFault()
				}
				o.log.Debug().
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Dur("delay", delay).
					Msg("injected server error")
				return domain.ErrServerFault
			}
			return next(c)
		}
	}
}

// shouldFail decides one fault roll. The bounds 0 and 1 never consult rng.
func shouldFail(rng random.Source, chance float64) bool {
	switch {
	case chance <= 0:
		return false
	case chance >= 1:
		return true
	}
	return rng.Float64() < chance
}
