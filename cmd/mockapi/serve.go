package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/rolecall/mock-api/internal/app"
	"github.com/rolecall/mock-api/internal/pkg/config"
	"github.com/rolecall/mock-api/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

type serveFlags struct {
	port           int
	speed          string
	pageSize       int
	errorRate      float64
	requestLogging bool
	logLevel       string
	pretty         bool
}

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. Configuration comes from the environment
(PORT, SPEED, PAGE_SIZE, CHANCE_OF_SERVER_ERROR, REQUEST_LOGGING, LOG_LEVEL,
LOG_PRETTY) and flags override it. SIGHUP resets all data to the seed.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}
		applyFlags(&cfg, cmd.Flags(), f)
		return serve(cmd.Context(), cfg)
	}

	fs := cmd.Flags()
	fs.IntVarP(&f.port, "port", "p", 3001, "port to listen on (0 picks a free port)")
	fs.StringVar(&f.speed, "speed", string(config.SpeedMedium), "simulated latency: fast, medium or slow")
	fs.IntVar(&f.pageSize, "page-size", 10, "items per list page")
	fs.Float64Var(&f.errorRate, "error-rate", 0.05, "probability in [0, 1] that a request fails with 500")
	fs.BoolVar(&f.requestLogging, "request-logging", true, "log every request")
	fs.StringVar(&f.logLevel, "log-level", "info", "trace, debug, info, warn or error")
	fs.BoolVar(&f.pretty, "pretty", false, "human-friendly console logs")
	return cmd
}

// applyFlags copies explicitly set flags over the environment configuration.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet, f serveFlags) {
	if fs.Changed("port") {
		cfg.Port = f.port
	}
	if fs.Changed("speed") {
		cfg.Speed = config.Speed(f.speed)
	}
	if fs.Changed("page-size") {
		cfg.PageSize = f.pageSize
	}
	if fs.Changed("error-rate") {
		cfg.ChanceOfServerError = f.errorRate
	}
	if fs.Changed("request-logging") {
		cfg.RequestLogging = f.requestLogging
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("pretty") {
		cfg.LogPretty = f.pretty
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "mockapi",
	}).With().Str("env", cfg.Env).Logger()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := app.Start(ctx, cfg, app.WithLogger(log))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	// Serve errors end the process.
	g.Go(func() error {
		return <-srv.Done()
	})

	// Interrupt or serve failure: drain in-flight requests.
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Stop(sctx)
	})

	g.Go(func() error {
		return resetOnHangup(gctx, srv, log)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resetOnHangup reloads the seed data on every SIGHUP until ctx is done.
func resetOnHangup(ctx context.Context, srv *app.Server, log zerolog.Logger) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			if err := srv.Reset(ctx); err != nil {
				log.Error().Err(err).Msg("reset failed")
			}
		}
	}
}
