package main

import (
	"context"
	"log"
	"time"

	accountUseCase "github.com/hilthontt/doctrack/internal/application/usecases/account"
	documentUseCase "github.com/hilthontt/doctrack/internal/application/usecases/document"
	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/configs"
	"github.com/hilthontt/doctrack/internal/infrastructure/events"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/hilthontt/doctrack/internal/infrastructure/messaging"
	"github.com/hilthontt/doctrack/internal/infrastructure/metrics"
	"github.com/hilthontt/doctrack/internal/infrastructure/qrcode"
	"github.com/hilthontt/doctrack/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/doctrack/internal/infrastructure/repository"
	"github.com/hilthontt/doctrack/internal/infrastructure/security"
	"github.com/hilthontt/doctrack/internal/infrastructure/tracing"
	"github.com/hilthontt/doctrack/internal/infrastructure/ws"
	"github.com/hilthontt/doctrack/internal/persistence/db"
	mongoRepository "github.com/hilthontt/doctrack/internal/persistence/repository"
	"github.com/hilthontt/doctrack/internal/presentation/api"
	accountsHandler "github.com/hilthontt/doctrack/internal/presentation/handler/accounts"
	documentsHandler "github.com/hilthontt/doctrack/internal/presentation/handler/documents"
	feedHandler "github.com/hilthontt/doctrack/internal/presentation/handler/feed"
	healthHandler "github.com/hilthontt/doctrack/internal/presentation/handler/health"
	"github.com/hilthontt/doctrack/internal/presentation/views"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	serviceName = "doctrack"

	// bcryptCost of 0 falls back to bcrypt.DefaultCost.
	bcryptCost = 0
)

func main() {
	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})
	defer logger.Sync()

	sh, err := tracing.InitTracer(tracing.Config{
		ServiceName: serviceName,
		Environment: cfg.Tracing.Environment,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger.Info(logging.General, logging.Startup, "configuration loaded", map[logging.ExtraKey]any{
		logging.File: configPath,
	})

	m := metrics.New()
	checks := map[string]healthHandler.Check{}

	documentRepository := repository.NewDocumentRepository(cfg.Storage.DocumentsFile)
	userRepository := repository.NewUserRepository(cfg.Storage.UsersFile)

	var auditRepository domain.AuditRepository
	switch cfg.Audit.Backend {
	case "mongo":
		mongoCfg := &db.MongoConfig{
			URI:               cfg.Audit.MongoURI,
			Database:          cfg.Audit.MongoDatabase,
			ConnectionTimeout: cfg.Audit.MongoTimeout,
		}
		client, err := db.NewMongoClient(ctx, mongoCfg, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.DisconnectMongo(shutdownCtx, client)
		}()

		repo := mongoRepository.NewAuditRepository(db.GetDatabase(client, mongoCfg))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Fatalf("Failed to create audit indexes: %v", err)
		}
		auditRepository = repo
		checks["mongo"] = mongoCheck(client)
	default:
		auditRepository = repository.NewAuditRepository(cfg.Storage.LogsDir)
	}

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	publishers := []domain.DocumentEventPublisher{hub}
	if cfg.Messaging.RabbitMQURI != "" {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.Messaging.RabbitMQURI, cfg.Messaging.Exchange)
		if err != nil {
			logger.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "RabbitMQ connected", map[logging.ExtraKey]any{
			"Exchange": cfg.Messaging.Exchange,
		})
		publishers = append(publishers, events.NewDocumentPublisher(rabbitmq))
	}

	documents := documentUseCase.NewDocumentUseCase(
		documentUseCase.Config{BaseURL: cfg.HTTP.BaseURL},
		documentRepository,
		auditRepository,
		qrcode.NewGenerator(cfg.Storage.QRCodesDir, cfg.QR.Level, cfg.QR.Scale),
		events.NewFanOut(publishers...),
		m,
		logger,
	)
	accounts := accountUseCase.NewAccountUseCase(userRepository, security.NewBcryptHasher(bcryptCost), m, logger)

	renderer, err := views.New()
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	var limiter ratelimiter.Limiter
	if cfg.RateLimiter.Enabled {
		rl := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
		defer rl.Close()
		limiter = rl
	}

	app := api.NewApplication(
		*cfg,
		documentsHandler.NewHandler(documents, renderer, logger),
		accountsHandler.NewHandler(accounts, renderer, logger),
		feedHandler.NewHandler(documents, hub, logger),
		healthHandler.NewHandler(checks),
		m,
		logger,
		limiter,
	)

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Errorf("server stopped: %v", err)
	}
}

func mongoCheck(client *mongo.Client) healthHandler.Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
}
