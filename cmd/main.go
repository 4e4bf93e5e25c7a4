package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/auth"
	"github.com/ukydev/taller-finder/internal/config"
	"github.com/ukydev/taller-finder/internal/db"
	"github.com/ukydev/taller-finder/internal/diagnosis"
	"github.com/ukydev/taller-finder/internal/events"
	"github.com/ukydev/taller-finder/internal/geocode"
	"github.com/ukydev/taller-finder/internal/handlers"
	"github.com/ukydev/taller-finder/internal/location"
	"github.com/ukydev/taller-finder/internal/logging"
	"github.com/ukydev/taller-finder/internal/places"
	"github.com/ukydev/taller-finder/internal/proximity"
	"github.com/ukydev/taller-finder/internal/server"
	"github.com/ukydev/taller-finder/internal/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	telemetry.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("taller-finder", version)
		if err != nil {
			log.WithError(err).Warn("Tracing disabled")
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	app, err := build(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialise server")
	}
	defer app.close()

	if err := app.server.Run(ctx); err != nil {
		log.WithError(err).Fatal("HTTP server error")
	}
}

// application is a wired server plus the resources it owns.
type application struct {
	server    *server.Server
	publisher events.Publisher
	store     *db.Store
}

func (a *application) close() {
	a.publisher.Close()
	if a.store != nil {
		if err := a.store.Close(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to close MongoDB client")
		}
	}
}

func build(ctx context.Context, cfg *config.Config) (*application, error) {
	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}

	placesOpts := []places.Option{places.WithTimeout(cfg.HTTPTimeout)}
	if cfg.PlacesBaseURL != "" {
		placesOpts = append(placesOpts, places.WithBaseURL(cfg.PlacesBaseURL))
	}
	placesClient := places.NewClient(cfg.GoogleMapsAPIKey, placesOpts...)
	if !placesClient.HasCredential() {
		log.Warn("Google Maps API key not configured; workshop searches will fail")
	}

	proximityService := proximity.NewService(
		placesClient,
		geocode.NewClient(cfg.GeocoderBaseURL, cfg.HTTPTimeout),
		location.NewStaticLocator(cfg.DeviceLocation, cfg.DeviceLocationGranted),
		proximity.WithLocationTimeout(cfg.LocationTimeout),
		proximity.WithProviderName("google_places"),
	)
	diagnosisService := diagnosis.NewService(
		diagnosis.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.HTTPTimeout),
		diagnosis.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.HTTPTimeout),
	)

	app := &application{publisher: newPublisher(cfg)}
	opts := server.Options{
		Addr:              ":" + cfg.Port,
		AuthService:       authService,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	}

	var history db.HistoryCollection
	if store := openStore(ctx, cfg); store != nil {
		app.store = store
		history = store.History()
		opts.Auth = handlers.NewAuthHandler(authService, store.Users())
		opts.History = handlers.NewHistoryHandler(history)
	}
	opts.Places = handlers.NewPlacesHandler(proximityService, history, app.publisher)
	opts.Diagnosis = handlers.NewDiagnosisHandler(diagnosisService, history)

	app.server = server.NewServer(opts)
	return app, nil
}

// openStore returns nil when accounts are not configured or MongoDB is unreachable;
// the finder keeps serving anonymous requests in that case.
func openStore(ctx context.Context, cfg *config.Config) *db.Store {
	if cfg.MongoURI == "" {
		log.Info("MONGO_URI not set; accounts and history disabled")
		return nil
	}
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Warn("MongoDB unavailable; accounts and history disabled")
		return nil
	}
	store := db.NewStore(client, cfg.MongoDB)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Failed to create MongoDB indexes")
	}
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return store
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.MQTTBroker == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTTopic)
	if err != nil {
		log.WithError(err).WithField("broker", cfg.MQTTBroker).Warn("MQTT unavailable; search events disabled")
		return events.NopPublisher{}
	}
	return publisher
}
