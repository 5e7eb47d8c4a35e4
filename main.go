package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fooddelivery/config"
	"fooddelivery/controllers"
	"fooddelivery/database"
	"fooddelivery/events"
	"fooddelivery/middleware"
	"fooddelivery/repository"
	"fooddelivery/services"
	"fooddelivery/utils"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// Load configuration from .env and the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(utils.ErrorWithTrace(err, "load config"))
	}

	logger := utils.NewLogger("food-delivery", cfg.LogLevel, cfg.LogPretty)
	zerolog.DefaultContextLogger = &logger

	// Money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	db, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	// Handle migrations
	if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	store := repository.NewStore(db)
	auth := middleware.NewAuth(cfg.JWTSecretKey, cfg.TokenTTL)
	publisher := newPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("close event publisher")
		}
	}()

	users := services.NewUserService(store, auth, logger)
	if err := users.BootstrapAdmin(ctx, cfg.BootstrapAdminEmail); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap admin")
	}

	controllers.SetServices(controllers.Services{
		Orders:      services.NewOrderService(store, publisher, logger),
		Restaurants: services.NewRestaurantService(store, logger),
		Reviews:     services.NewReviewService(store, logger),
		Addresses:   services.NewAddressService(store),
		Users:       users,
		Drivers:     services.NewDriverService(store, logger),
		Health:      store,
	})

	// Initialize the router and define routes
	r := controllers.NewRouter(auth, logger, cfg.RequestTimeout)

	// Enable CORS
	corsOptions := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
		handlers.PrintRecoveryStack(true),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           recovery(corsOptions(r)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Bool("events", cfg.EventsEnabled()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
		os.Exit(1)
	}
}

// newPublisher returns the Kafka publisher when brokers are configured and
// a no-op otherwise.
func newPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	if !cfg.EventsEnabled() {
		return events.Noop{}
	}
	pub, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOrderTopic,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create event publisher")
	}
	return pub
}

// recoveryLogger routes gorilla's panic reports into zerolog.
type recoveryLogger struct {
	log zerolog.Logger
}

func (l recoveryLogger) Println(args ...interface{}) {
	l.log.Error().Interface("panic", args).Msg("recovered from panic")
}
