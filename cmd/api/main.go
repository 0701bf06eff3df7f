package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/stress-shield-api/internal/application/history"
	"github.com/stress-shield-api/internal/application/ingest"
	"github.com/stress-shield-api/internal/application/session"
	"github.com/stress-shield-api/internal/application/user"
	"github.com/stress-shield-api/internal/config"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/infrastructure/classifier"
	"github.com/stress-shield-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/stress-shield-api/internal/infrastructure/jwt"
	mqttconsumer "github.com/stress-shield-api/internal/infrastructure/mqtt"
	"github.com/stress-shield-api/internal/infrastructure/postgres"
	redisrelay "github.com/stress-shield-api/internal/infrastructure/redis"
	s3infra "github.com/stress-shield-api/internal/infrastructure/s3"
	"github.com/stress-shield-api/internal/infrastructure/sns"
	"github.com/stress-shield-api/internal/logger"
	"github.com/stress-shield-api/internal/metrics"
	"github.com/stress-shield-api/internal/realtime"
	transporthttp "github.com/stress-shield-api/internal/transport/http"
)

// Record stores shared by the ingest and history services. Both the DynamoDB
// and the Postgres repos satisfy them.
type readingRepo interface {
	Insert(ctx context.Context, rd *domain.Reading) (*domain.Reading, error)
	Get(ctx context.Context, readingID string) (*domain.Reading, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Reading, error)
}

type alertRepo interface {
	Insert(ctx context.Context, a *domain.Alert) (*domain.Alert, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Alert, error)
}

type interventionRepo interface {
	Insert(ctx context.Context, in *domain.Intervention) (*domain.Intervention, error)
	ListByReading(ctx context.Context, readingID string) ([]domain.Intervention, error)
}

type stressClassifier interface {
	Classify(ctx context.Context, s domain.Sample) (domain.Classification, error)
}

type records struct {
	readings      readingRepo
	alerts        alertRepo
	interventions interventionRepo
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "stress-shield-api")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	os.Exit(finish(zl, run(cfg, zl)))
}

// finish logs a failed run and flushes the logger before the process exits.
// os.Exit skips deferred calls, so the sync happens here.
func finish(zl *zap.Logger, err error) int {
	code := 0
	if err != nil {
		zl.Error("server exited", zap.Error(err))
		code = 1
	}
	_ = zl.Sync()
	return code
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Register()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("dynamodb client: %w", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, cfg.RecordsBackend == config.BackendDynamo, zl)

	store, db, err := openRecords(ctx, cfg, dynamoClient)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	var cls stressClassifier = classifier.RuleBased{}
	if cfg.ClassifierURL != "" {
		cls = classifier.NewClient(cfg.ClassifierURL, cfg.ClassifierTimeout, zl)
	} else {
		zl.Info("CLASSIFIER_URL not set, using rule-based classifier")
	}

	hub := realtime.NewHub(zl)
	defer hub.Close()

	publisher, err := buildPublisher(ctx, cfg, hub, zl)
	if err != nil {
		return err
	}

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("s3 client: %w", err)
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	sessionRepo := dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions)

	ingestSvc := ingest.NewService(ingest.ServiceDeps{
		Classifier:       cls,
		ReadingRepo:      store.readings,
		AlertRepo:        store.alerts,
		InterventionRepo: store.interventions,
		Publisher:        publisher,
		Logger:           zl,
	})
	historySvc := history.NewService(history.ServiceDeps{
		ReadingRepo:      store.readings,
		AlertRepo:        store.alerts,
		InterventionRepo: store.interventions,
		ExportStore:      s3infra.NewStore(s3Client, cfg.S3BucketName),
		ExportURLTTL:     cfg.ExportURLTTL,
	})
	userSvc := user.NewService(user.ServiceDeps{UserRepo: userRepo})
	sessionSvc := session.NewService(session.ServiceDeps{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		JWTProvider: jwtProvider,
	})

	if cfg.MQTTBrokerURL != "" {
		mqttClient, err := mqttconsumer.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("mqtt client: %w", err)
		}
		consumer := mqttconsumer.NewConsumer(mqttClient, cfg.MQTTTopic, ingestSvc, userRepo, zl)
		if err := consumer.Start(); err != nil {
			return fmt.Errorf("mqtt subscribe: %w", err)
		}
		defer consumer.Stop()
		zl.Info("device ingestion enabled", zap.String("topic", cfg.MQTTTopic))
	}

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{
		UserSvc:    userSvc,
		SessionSvc: sessionSvc,
		IngestSvc:  ingestSvc,
		HistorySvc: historySvc,
		Hub:        hub,
		Verifier:   jwtProvider,
		Logger:     zl,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("port", cfg.AppPort),
			zap.String("env", cfg.AppEnv),
			zap.String("records_backend", cfg.RecordsBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	zl.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	zl.Info("server stopped")
	return nil
}

// openRecords selects the store for readings, alerts and interventions.
// The returned *sql.DB is nil for the DynamoDB backend.
func openRecords(ctx context.Context, cfg *config.Config, client dynamo.API) (records, *sql.DB, error) {
	switch cfg.RecordsBackend {
	case config.BackendDynamo:
		return records{
			readings:      dynamo.NewReadingRepo(client, cfg.DynamoTables.Readings),
			alerts:        dynamo.NewAlertRepo(client, cfg.DynamoTables.Alerts),
			interventions: dynamo.NewInterventionRepo(client, cfg.DynamoTables.Interventions),
		}, nil, nil
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return records{}, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return records{}, nil, err
		}
		return records{
			readings:      postgres.NewReadingRepo(db),
			alerts:        postgres.NewAlertRepo(db),
			interventions: postgres.NewInterventionRepo(db),
		}, db, nil
	default:
		return records{}, nil, fmt.Errorf("unknown RECORDS_BACKEND %q", cfg.RecordsBackend)
	}
}

// buildPublisher composes the notification delivery paths. With Redis the
// relay feeds the local hub, so the local publisher is left out.
func buildPublisher(ctx context.Context, cfg *config.Config, hub *realtime.Hub, zl *zap.Logger) (realtime.Publisher, error) {
	var out realtime.Fanout
	if cfg.RedisAddr != "" {
		client, err := redisrelay.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("redis client: %w", err)
		}
		relay := redisrelay.NewRelay(client, cfg.RedisChannel, hub, zl)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("redis relay stopped", zap.Error(err))
			}
		}()
		out = append(out, relay)
	} else {
		out = append(out, realtime.NewLocalPublisher(hub))
	}

	if cfg.AlertTopicARN != "" {
		client, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		out = append(out, sns.NewAlertForwarder(client, cfg.AlertTopicARN))
	}
	return out, nil
}
