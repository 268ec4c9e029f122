// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/shyam-539/GoTicket-server/internal/config"
	"github.com/shyam-539/GoTicket-server/internal/handler"
	"github.com/shyam-539/GoTicket-server/internal/middleware"
	"github.com/shyam-539/GoTicket-server/internal/observability"
)

// Handlers groups the HTTP handlers the routes point at.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Shows    *handler.ShowHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Admin    *handler.AdminHandler
}

// Options carries the middleware configuration.  Redis may be nil; the
// cache and idempotency store are then disabled and the rate limiter runs
// in process.
type Options struct {
	Config      config.Config
	Log         observability.Logger
	Redis       *redis.Client
	Cache       config.CacheConfig
	RateLimit   config.RateLimitConfig
	Idempotency config.IdempotencyConfig
}

// middlewares built once and shared by the route files.
type chain struct {
	auth     echo.MiddlewareFunc
	optional echo.MiddlewareFunc
	limit    echo.MiddlewareFunc
	cache    echo.MiddlewareFunc
	idem     echo.MiddlewareFunc
}

// New returns an Echo instance with every route registered.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewErrorHandler(opt.Config.IsDevelopment(), opt.Log)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opt.Log))
	e.Use(middleware.Metrics())
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("1M"))

	m := chain{
		auth:     middleware.JWTAuth(opt.Config.JWTSecret),
		optional: middleware.OptionalJWT(opt.Config.JWTSecret),
		limit:    middleware.NewRateLimiter(opt.RateLimit, opt.Redis, opt.Log).Middleware(),
		cache:    middleware.NewRedisCache(opt.Cache, opt.Redis, opt.Log),
		idem:     middleware.Idempotency(opt.Idempotency, opt.Redis, opt.Log),
	}

	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	registerAuth(api, h.Auth, m)
	registerPublic(api, h, m)
	registerOwner(api, h, m)
	registerCustomer(api, h, m)
	registerAdmin(api, h, m)
	return e
}
