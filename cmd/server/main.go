package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/danbahadur2060/event/internal/ai"
	"github.com/danbahadur2060/event/internal/auth"
	"github.com/danbahadur2060/event/internal/booking"
	bookingapi "github.com/danbahadur2060/event/internal/booking/api"
	bookingdb "github.com/danbahadur2060/event/internal/booking/db"
	"github.com/danbahadur2060/event/internal/config"
	"github.com/danbahadur2060/event/internal/coupon"
	couponapi "github.com/danbahadur2060/event/internal/coupon/api"
	coupondb "github.com/danbahadur2060/event/internal/coupon/db"
	"github.com/danbahadur2060/event/internal/database"
	"github.com/danbahadur2060/event/internal/events"
	eventsapi "github.com/danbahadur2060/event/internal/events/api"
	eventsdb "github.com/danbahadur2060/event/internal/events/db"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/mailer"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/order"
	orderapi "github.com/danbahadur2060/event/internal/order/api"
	orderdb "github.com/danbahadur2060/event/internal/order/db"
	orderkafka "github.com/danbahadur2060/event/internal/order/kafka"
	orderredis "github.com/danbahadur2060/event/internal/order/redis"
	"github.com/danbahadur2060/event/internal/reminder"
	reminderapi "github.com/danbahadur2060/event/internal/reminder/api"
	"github.com/danbahadur2060/event/internal/tickets"
	ticketsapi "github.com/danbahadur2060/event/internal/tickets/api"
	ticketsdb "github.com/danbahadur2060/event/internal/tickets/db"
	"github.com/danbahadur2060/event/internal/tickets/qr"
	usersapi "github.com/danbahadur2060/event/internal/users/api"
	usersdb "github.com/danbahadur2060/event/internal/users/db"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx := context.Background()

	// --- PostgreSQL ---
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatal("STARTUP", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	if err := database.Migrate(ctx, bunDB); err != nil {
		log.Fatal("STARTUP", fmt.Sprintf("Migration failed: %v", err))
	}

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("STARTUP", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	defer redisClient.Close()

	// --- Kafka ---
	var publisher order.Publisher
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		topics := []string{
			cfg.Kafka.Topics.OrderCreated,
			cfg.Kafka.Topics.OrderPaid,
			cfg.Kafka.Topics.OrderFailed,
			cfg.Kafka.Topics.OrderRefunded,
		}
		if err := orderkafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("STARTUP", fmt.Sprintf("Kafka topic setup failed, continuing: %v", err))
		}
		producer := orderkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, log)
		defer producer.Close()
		publisher = producer
	} else {
		log.Warn("STARTUP", "Kafka disabled or in mock mode, order events will be logged only")
		publisher = orderkafka.NewMockProducer(log)
	}

	// --- Services ---
	eventService := events.NewService(eventsdb.New(bunDB), log)
	couponService := coupon.NewService(coupondb.New(bunDB), log)
	ticketService := tickets.NewService(ticketsdb.New(bunDB), qr.NewQRGenerator(cfg.Auth.QRSecret), log)
	bookingService := booking.NewService(bookingdb.New(bunDB), eventService, log)

	payments, err := order.NewStripeProvider(cfg.Stripe.SecretKey, log)
	if err != nil {
		log.Warn("STARTUP", "Stripe not configured, checkout will be rejected")
	}
	var paymentProvider order.PaymentProvider
	if payments != nil {
		paymentProvider = payments
	} else {
		paymentProvider = unavailableProvider{}
	}

	orderService := order.NewOrderService(
		orderdb.New(bunDB),
		ticketService,
		couponService,
		paymentProvider,
		publisher,
		orderredis.NewDedup(redisClient),
		log,
		cfg.Server.AppURL,
		cfg.Stripe.WebhookSecret,
	)

	var sender mailer.Sender
	if smtp, err := mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
		cfg.Email.SMTPUsername, cfg.Email.SMTPPassword, cfg.Email.From, log); err == nil {
		sender = smtp
	} else {
		log.Warn("STARTUP", "SMTP not configured, reminder emails will be logged only")
		sender = mailer.NewLogMailer(log)
	}

	aiClient := ai.NewClient(&http.Client{Timeout: 30 * time.Second},
		cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.APIKey, log)
	reminderService := reminder.NewService(eventService, bookingService, aiClient, sender, log)

	// --- Handlers ---
	eventHandler := eventsapi.NewHandler(eventService, log)
	couponHandler := couponapi.NewHandler(couponService, log)
	ticketHandler := ticketsapi.NewHandler(ticketService, log)
	bookingHandler := bookingapi.NewHandler(bookingService, log)
	orderHandler := orderapi.NewHandler(orderService, log)
	reminderHandler := reminderapi.NewHandler(reminderService, cfg.Cron.Secret, log)
	userHandler := usersapi.NewHandler(usersdb.New(bunDB), log)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	authn := auth.Middleware(cfg.Auth.JWTSecret)
	adminOnly := auth.RequireRole(models.RoleAdmin)
	organizerOrAdmin := auth.RequireRole(models.RoleOrganizer, models.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface.
		r.Get("/events", eventHandler.ListEvents)
		r.Get("/events/{slug}", eventHandler.GetEventBySlug)
		r.Get("/events/id/{eventId}/tickets", ticketHandler.ListForEvent)
		r.Post("/checkout", orderHandler.Checkout)
		r.Post("/bookings", bookingHandler.CreateBooking)
		r.Post("/webhooks/stripe", orderHandler.StripeWebhook)

		// Scheduler, authenticated by shared header secret.
		r.Post("/cron/reminders", reminderHandler.TriggerReminders)

		// Organizer surface.
		r.Group(func(r chi.Router) {
			r.Use(authn, organizerOrAdmin)
			r.Post("/events", eventHandler.CreateEvent)
			r.Put("/events/id/{eventId}", eventHandler.UpdateEvent)
			r.Delete("/events/id/{eventId}", eventHandler.DeleteEvent)
			r.Post("/events/id/{eventId}/tickets", ticketHandler.CreateTicketType)
			r.Put("/events/id/{eventId}/tickets/{ticketTypeId}", ticketHandler.UpdateTicketType)
			r.Delete("/events/id/{eventId}/tickets/{ticketTypeId}", ticketHandler.DeleteTicketType)
		})

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(authn, adminOnly)
			r.Get("/coupons", couponHandler.ListCoupons)
			r.Post("/coupons", couponHandler.CreateCoupon)
			r.Put("/coupons/{couponId}", couponHandler.UpdateCoupon)
			r.Delete("/coupons/{couponId}", couponHandler.DeleteCoupon)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{orderId}", orderHandler.GetOrder)
			r.Put("/orders/{orderId}/status", orderHandler.OverrideStatus)
			r.Get("/admin/bookings", bookingHandler.ListBookings)
			r.Get("/admin/users", userHandler.ListUsers)
			r.Put("/admin/users/{userId}/role", userHandler.UpdateUserRole)
		})
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("STARTUP", fmt.Sprintf("Event platform listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SHUTDOWN", "Shutdown signal received, cleaning up")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SHUTDOWN", fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	log.Info("SHUTDOWN", "Server exited gracefully")
}

// unavailableProvider rejects checkout when Stripe credentials are missing,
// keeping the rest of the API usable.
type unavailableProvider struct{}

func (unavailableProvider) CreateCheckoutSession(ctx context.Context, p order.CheckoutSessionParams) (*order.CheckoutSession, error) {
	return nil, order.ErrProviderUnavailable
}

func (unavailableProvider) ExpireSession(ctx context.Context, sessionID string) error {
	return nil
}
