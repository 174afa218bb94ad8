package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/ai/openai"
	"github.com/corvidhq/copilot-api/internal/config"
	"github.com/corvidhq/copilot-api/internal/crm/hubspot"
	"github.com/corvidhq/copilot-api/internal/pkg/database"
	applogger "github.com/corvidhq/copilot-api/internal/pkg/logger"
	chrepo "github.com/corvidhq/copilot-api/internal/repository/clickhouse"
	pgrepo "github.com/corvidhq/copilot-api/internal/repository/postgres"
	"github.com/corvidhq/copilot-api/internal/service"
	"github.com/corvidhq/copilot-api/internal/storage"
	"github.com/corvidhq/copilot-api/internal/vector/pinecone"
	"github.com/corvidhq/copilot-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := applogger.Init(applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer applogger.Sync()
	logger := applogger.Log

	ctx := context.Background()

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
	}
	defer pgDB.Close()

	chDB, err := database.NewClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		logger.Fatal("failed to initialize ClickHouse", zap.Error(err))
	}
	defer chDB.Close()

	minioClient, err := initMinio(cfg)
	if err != nil {
		logger.Warn("failed to initialize MinIO, model snapshots will be unavailable", zap.Error(err))
	}

	crmClient := hubspot.NewClient(cfg.HubSpot, logger)
	index := pinecone.NewClient(cfg.Pinecone.IndexHost, cfg.Pinecone.APIKey, logger)
	embedder := openai.NewEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, logger)
	snapshots := storage.NewSnapshotStore(minioClient, cfg.MinIO.Bucket, logger)

	candidateRepo := pgrepo.NewCandidateRepository(pgDB)
	roleRepo := pgrepo.NewRoleRepository(pgDB)
	modelRepo := pgrepo.NewModelRepository(pgDB)
	dealScoreRepo := pgrepo.NewDealScoreRepository(pgDB)
	scoreEventRepo := chrepo.NewScoreEventRepository(chDB)

	deps := &worker.Dependencies{
		TrainingService: service.NewTrainingService(
			crmClient,
			modelRepo,
			snapshots,
			embedder,
			index,
			cfg.Worker.TrainingBatch,
			logger,
		),
		DealScoreService: service.NewDealScoreService(
			crmClient,
			modelRepo,
			dealScoreRepo,
			scoreEventRepo,
			logger,
		),
		CandidateService: service.NewCandidateService(candidateRepo),
		RoleService:      service.NewRoleService(roleRepo),
		Embedder:         embedder,
		Index:            index,
	}

	server, err := worker.NewServer(logger, cfg, deps)
	if err != nil {
		logger.Fatal("failed to create worker server", zap.Error(err))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down worker...")
		server.Stop()
	}()

	if err := server.Start(); err != nil {
		logger.Fatal("worker server failed", zap.Error(err))
	}

	logger.Info("worker stopped")
}

// initMinio initializes the MinIO client used for model snapshots
func initMinio(cfg *config.Config) (*minio.Client, error) {
	if cfg.MinIO.Endpoint == "" {
		return nil, nil // MinIO not configured
	}

	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return client, nil
}
