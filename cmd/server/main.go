package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/shyam-539/GoTicket-server/internal/config"
	"github.com/shyam-539/GoTicket-server/internal/database"
	"github.com/shyam-539/GoTicket-server/internal/handler"
	"github.com/shyam-539/GoTicket-server/internal/mailer"
	"github.com/shyam-539/GoTicket-server/internal/observability"
	"github.com/shyam-539/GoTicket-server/internal/payment"
	"github.com/shyam-539/GoTicket-server/internal/queue"
	"github.com/shyam-539/GoTicket-server/internal/repository"
	"github.com/shyam-539/GoTicket-server/internal/router"
	"github.com/shyam-539/GoTicket-server/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load() // Load environment config
	log := observability.NewLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func run(cfg config.Config, log observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	rdb, err := config.NewRedisClient()
	if err != nil {
		log.WithError(err).Warn("redis unavailable: cache and idempotency disabled, rate limiting in process")
	} else {
		defer rdb.Close()
	}

	docs := openDocuments(ctx, cfg, log)
	if docs.client != nil {
		defer func() { _ = docs.client.Disconnect(context.Background()) }()
	}

	gateway, err := newGateway(cfg, log)
	if err != nil {
		return err
	}

	e := router.New(buildHandlers(cfg, log, db, docs, gateway), router.Options{
		Config:      cfg,
		Log:         log,
		Redis:       rdb,
		Cache:       config.LoadCacheConfig(),
		RateLimit:   config.LoadRateLimitConfig(),
		Idempotency: config.LoadIdempotencyConfig(),
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("listening on %s (env=%s)", srv.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.RabbitURL != "" {
		g.Go(func() error {
			return queue.StartBookingConsumer(gctx, cfg.RabbitURL, docs.auditRecorder(), log)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// documents holds the optional MongoDB backed stores.
type documents struct {
	client *mongo.Client
	audit  *repository.AuditRepo
	notes  *repository.NotificationRepo
}

func openDocuments(ctx context.Context, cfg config.Config, log observability.Logger) documents {
	if cfg.MongoURI == "" {
		log.Warn("MONGO_URI not set: audit trail and admin notifications disabled")
		return documents{}
	}
	client, mdb, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.WithError(err).Warn("mongo unavailable: audit trail and admin notifications disabled")
		return documents{}
	}
	return documents{
		client: client,
		audit:  repository.NewAuditRepo(mdb, log),
		notes:  repository.NewNotificationRepo(mdb),
	}
}

// The accessors below return untyped nils so services see a nil interface
// when MongoDB is not configured.

func (d documents) auditStore() service.AuditStore {
	if d.audit == nil {
		return nil
	}
	return d.audit
}

func (d documents) auditRecorder() queue.AuditRecorder {
	if d.audit == nil {
		return nil
	}
	return d.audit
}

func (d documents) auditReader() service.AuditReader {
	if d.audit == nil {
		return nil
	}
	return d.audit
}

func (d documents) noteStore() service.NotificationStore {
	if d.notes == nil {
		return nil
	}
	return d.notes
}

func newGateway(cfg config.Config, log observability.Logger) (payment.Gateway, error) {
	if cfg.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set: using the offline payment gateway")
		return payment.NewOffline(cfg.PaymentKeySecret), nil
	}
	return payment.NewStripe(cfg.StripeSecretKey, log)
}

func buildHandlers(cfg config.Config, log observability.Logger, db *sql.DB, docs documents,
	gateway payment.Gateway) router.Handlers {
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	theaters := repository.NewTheaterRepo(db)
	screens := repository.NewScreenRepo(db)
	seats := repository.NewSeatRepo(db)
	movies := repository.NewMovieRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)

	mail := mailer.New(cfg.SMTP, log)
	deps := service.PaymentDeps{Audit: docs.auditStore(), Mail: mail}
	if cfg.RabbitURL != "" {
		deps.Publisher = queue.NewPublisher(cfg.RabbitURL, log)
	}

	auth := service.NewAuthService(users, tokens, docs.noteStore(), mail, cfg, log)
	catalog := service.NewCatalogService(theaters, screens, seats, movies)
	showSvc := service.NewShowService(theaters, screens, movies, shows, cfg.ShowTurnaround, log)
	bookingSvc := service.NewBookingService(shows, theaters, bookings, docs.auditStore(),
		cfg.BookingMaxSeats, cfg.PaymentCurrency, log)
	paymentSvc := service.NewPaymentService(bookings, users, gateway, deps, cfg.PaymentCurrency, log)
	admin := service.NewAdminService(users, theaters, docs.noteStore(), docs.auditReader())

	return router.Handlers{
		Auth:     handler.NewAuthHandler(auth, cfg),
		Catalog:  handler.NewCatalogHandler(catalog),
		Shows:    handler.NewShowHandler(showSvc),
		Bookings: handler.NewBookingHandler(bookingSvc),
		Payments: handler.NewPaymentHandler(paymentSvc),
		Admin:    handler.NewAdminHandler(admin),
	}
}
