package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/rolecall/mock-api/docs"
	"github.com/rolecall/mock-api/internal/api/handler"
	"github.com/rolecall/mock-api/internal/api/metrics"
	"github.com/rolecall/mock-api/internal/api/middleware"
	"github.com/rolecall/mock-api/internal/core/ports"
	"github.com/rolecall/mock-api/internal/core/service"
	"github.com/rolecall/mock-api/internal/pkg/config"
	"github.com/rolecall/mock-api/internal/pkg/random"
)

// Deps is everything NewRouter wires together. Store, Metrics and Rand are
// required.
type Deps struct {
	Config  config.Config
	Store   ports.EntityStore
	Metrics *metrics.Metrics
	Rand    random.Source
	Log     zerolog.Logger

	// Latency overrides the profile derived from Config.Speed.
	Latency *middleware.LatencyProfile
	// Sleep replaces time.Sleep in fault injection.
	Sleep func(time.Duration)
	// Now replaces the service clock.
	Now func() time.Time
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(d.Metrics.Middleware())
	if d.Config.RequestLogging {
		e.Use(middleware.RequestLogger(d.Log))
	}
	// Innermost, so a recovered panic is still counted and logged as a 500.
	e.Use(middleware.Recover(d.Log))

	// --- Dependencies ---
	svcOpts := []service.Option{
		service.WithPageSize(d.Config.PageSize),
		service.WithRandom(d.Rand),
		service.WithRecorder(d.Metrics),
	}
	if d.Now != nil {
		svcOpts = append(svcOpts, service.WithClock(d.Now))
	}
	userHandler := handler.NewUserHandler(service.NewUserService(d.Store, d.Log, svcOpts...))
	roleHandler := handler.NewRoleHandler(service.NewRoleService(d.Store, d.Log, svcOpts...))

	latency := middleware.ProfileFor(d.Config.Speed)
	if d.Latency != nil {
		latency = *d.Latency
	}
	faultOpts := []middleware.FaultOption{
		middleware.WithFaultRecorder(d.Metrics),
		middleware.WithFaultLogger(d.Log),
	}
	if d.Sleep != nil {
		faultOpts = append(faultOpts, middleware.WithSleep(d.Sleep))
	}
	faults := middleware.Faults(middleware.FaultConfig{
		Latency:             latency,
		ChanceOfServerError: d.Config.ChanceOfServerError,
	}, d.Rand, faultOpts...)

	// --- API routes (fault injection applies) ---
	users := e.Group("/users", faults)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	roles := e.Group("/roles", faults)
	roles.GET("", roleHandler.List)
	roles.POST("", roleHandler.Create)
	roles.GET("/:id", roleHandler.Get)
	roles.PATCH("/:id", roleHandler.Update)
	roles.DELETE("/:id", roleHandler.Delete)

	// --- Infrastructure routes (no fault injection) ---
	healthHandler := handler.NewHealthHandler(d.Store)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – is the store consistent?
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/swagger", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	return e
}
