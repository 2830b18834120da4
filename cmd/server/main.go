package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venue-booking/config"
	"venue-booking/internal/cache"
	"venue-booking/internal/database"
	"venue-booking/internal/handler"
	"venue-booking/internal/middleware"
	"venue-booking/internal/notify"
	"venue-booking/internal/payment"
	"venue-booking/internal/queue"
	"venue-booking/internal/repository"
	"venue-booking/internal/service"
	"venue-booking/internal/worker"
	"venue-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.SetLevel(cfg.Server.LogLevel)
	defer logger.Sync()
	gin.SetMode(cfg.Server.GinMode)

	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	// repositories
	eventRepo := repository.NewEventRepository(pool)
	tableRepo := repository.NewTableRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	promoRepo := repository.NewPromoRepository(pool)
	issueRepo := repository.NewReconciliationRepository(pool)

	notifications, err := newNotificationQueue(ctx, cfg, rdb)
	if err != nil {
		log.Fatal("failed to initialize notification queue", zap.Error(err))
	}

	provider := payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	bridge := payment.NewBridge(provider, cfg.Stripe.Currency)

	// services
	availabilityCache := cache.NewRedisAvailabilityCache(rdb, cfg.Booking.AvailabilityTTL)
	availabilityService := service.NewAvailabilityService(tableRepo, bookingRepo, availabilityCache)
	promoService := service.NewPromoService(promoRepo, purchaseRepo)
	eventService := service.NewEventService(pool, eventRepo, purchaseRepo)
	guard := service.NewIdempotencyGuard(pool, eventRepo, purchaseRepo, bookingRepo, reservationRepo)
	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		DB:            pool,
		Events:        eventRepo,
		Tables:        tableRepo,
		Bookings:      bookingRepo,
		Purchases:     purchaseRepo,
		Issues:        issueRepo,
		Promos:        promoService,
		Availability:  availabilityService,
		Payments:      bridge,
		Guard:         guard,
		Notifications: notifications,
		MinimumAge:    cfg.Booking.MinimumAge,
	})
	bookingAdminService := service.NewBookingAdminService(pool, bookingRepo, eventRepo, reservationRepo, availabilityService)
	reconciliationService := service.NewReconciliationService(issueRepo, checkoutService, cfg.Scheduler.ReconcileMaxAttempts)

	// background workers
	var sinks []notify.Sink
	if cfg.Mail.Enabled {
		sinks = append(sinks, notify.NewMailer(cfg.Mail))
	}
	if cfg.AMQP.Enabled {
		publisher := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}
	if err := worker.NewNotificationWorker(notify.NewDispatcher(sinks...), notifications).Start(ctx); err != nil {
		log.Fatal("failed to start notification worker", zap.Error(err))
	}

	reconcileJob := worker.NewReconcileJob(reconciliationService, cfg.Scheduler.ReconcileInterval)
	if err := reconcileJob.Start(); err != nil {
		log.Fatal("failed to start reconcile job", zap.Error(err))
	}
	defer func() {
		if err := reconcileJob.Stop(); err != nil {
			log.Warn("reconcile job shutdown failed", zap.Error(err))
		}
	}()

	router := handler.NewRouter(
		middleware.RequireRole(cfg.Auth.JWTSecret, cfg.Auth.AdminRole),
		handler.NewEventHandler(eventService, availabilityService),
		handler.NewPromoHandler(promoService),
		handler.NewCheckoutHandler(checkoutService),
		handler.NewAdminHandler(bookingAdminService, reconciliationService),
		handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": pool,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		}),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", zap.Error(err))
	}
}

func newNotificationQueue(ctx context.Context, cfg *config.Config, rdb *redis.Client) (queue.NotificationQueue, error) {
	if cfg.Booking.NotificationQueue == "memory" {
		return queue.NewNotificationQueue(cfg.Booking.QueueBufferSize, nil), nil
	}
	hostname, _ := os.Hostname()
	return queue.NewRedisStreamNotificationQueue(ctx, rdb, hostname, nil)
}
