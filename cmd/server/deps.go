package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/ai/gemini"
	"github.com/corvidhq/copilot-api/internal/ai/openai"
	"github.com/corvidhq/copilot-api/internal/config"
	"github.com/corvidhq/copilot-api/internal/crm/hubspot"
	"github.com/corvidhq/copilot-api/internal/handler"
	"github.com/corvidhq/copilot-api/internal/middleware"
	"github.com/corvidhq/copilot-api/internal/pkg/database"
	chrepo "github.com/corvidhq/copilot-api/internal/repository/clickhouse"
	pgrepo "github.com/corvidhq/copilot-api/internal/repository/postgres"
	"github.com/corvidhq/copilot-api/internal/service"
	"github.com/corvidhq/copilot-api/internal/storage"
	"github.com/corvidhq/copilot-api/internal/vector/pinecone"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Database connections
	Postgres   *database.PostgresDB
	ClickHouse *database.ClickHouseDB
	Redis      *redis.Client
	Minio      *minio.Client

	// External clients
	HubSpot  *hubspot.Client
	Pinecone *pinecone.Client
	Embedder *openai.Embedder
	Insights *gemini.InsightWriter

	// Repositories
	CandidateRepo  *pgrepo.CandidateRepository
	RoleRepo       *pgrepo.RoleRepository
	ModelRepo      *pgrepo.ModelRepository
	DealScoreRepo  *pgrepo.DealScoreRepository
	APIKeyRepo     *pgrepo.APIKeyRepository
	ScoreEventRepo *chrepo.ScoreEventRepository

	// Services
	CandidateService *service.CandidateService
	RoleService      *service.RoleService
	FitService       *service.FitService
	MatchService     *service.MatchService
	DealScoreService *service.DealScoreService
	TrainingService  *service.TrainingService
	StatsService     *service.StatsService
	AuthService      *service.AuthService

	// Handlers
	HealthHandler     *handler.HealthHandler
	CandidatesHandler *handler.CandidatesHandler
	RolesHandler      *handler.RolesHandler
	MatchingHandler   *handler.MatchingHandler
	ScoringHandler    *handler.ScoringHandler
	TrainingHandler   *handler.TrainingHandler
	APIKeysHandler    *handler.APIKeysHandler

	// Middleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	// Asynq client
	AsynqClient *asynq.Client
}

// initDependencies initializes all dependencies
func initDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	deps.Postgres = pgDB

	chDB, err := database.NewClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ClickHouse: %w", err)
	}
	deps.ClickHouse = chDB

	redisClient, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	deps.Redis = redisClient

	minioClient, err := initMinio(cfg)
	if err != nil {
		logger.Warn("failed to initialize MinIO, model snapshots will be unavailable", zap.Error(err))
	}
	deps.Minio = minioClient

	// External API clients
	deps.HubSpot = hubspot.NewClient(cfg.HubSpot, logger)
	deps.Pinecone = pinecone.NewClient(cfg.Pinecone.IndexHost, cfg.Pinecone.APIKey, logger)
	deps.Embedder = openai.NewEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, logger)

	if cfg.Gemini.APIKey != "" {
		generator, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			logger.Warn("failed to initialize Gemini, match explanations will be unavailable", zap.Error(err))
		} else {
			deps.Insights = gemini.NewInsightWriter(generator, logger)
		}
	}

	// Repositories
	deps.CandidateRepo = pgrepo.NewCandidateRepository(pgDB)
	deps.RoleRepo = pgrepo.NewRoleRepository(pgDB)
	deps.ModelRepo = pgrepo.NewModelRepository(pgDB)
	deps.DealScoreRepo = pgrepo.NewDealScoreRepository(pgDB)
	deps.APIKeyRepo = pgrepo.NewAPIKeyRepository(pgDB)
	deps.ScoreEventRepo = chrepo.NewScoreEventRepository(chDB)

	// Asynq client for enqueuing background tasks
	deps.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	snapshots := storage.NewSnapshotStore(minioClient, cfg.MinIO.Bucket, logger)

	// Services
	deps.CandidateService = service.NewCandidateService(deps.CandidateRepo)
	deps.RoleService = service.NewRoleService(deps.RoleRepo)
	deps.FitService = service.NewFitService(
		deps.CandidateRepo,
		deps.RoleRepo,
		deps.ScoreEventRepo,
		service.FitWeights{
			Capabilities: cfg.Scoring.CapabilityWeight,
			Skills:       cfg.Scoring.SkillWeight,
		},
		logger,
	)

	var insights service.InsightGenerator
	if deps.Insights != nil {
		insights = deps.Insights
	}
	deps.MatchService = service.NewMatchService(
		deps.Embedder,
		deps.Pinecone,
		deps.CandidateRepo,
		deps.RoleRepo,
		insights,
		cfg.Scoring.MatchLimit,
		logger,
	)
	deps.DealScoreService = service.NewDealScoreService(
		deps.HubSpot,
		deps.ModelRepo,
		deps.DealScoreRepo,
		deps.ScoreEventRepo,
		logger,
	)
	deps.TrainingService = service.NewTrainingService(
		deps.HubSpot,
		deps.ModelRepo,
		snapshots,
		deps.Embedder,
		deps.Pinecone,
		cfg.Worker.TrainingBatch,
		logger,
	)
	deps.StatsService = service.NewStatsService(deps.ScoreEventRepo)
	deps.AuthService = service.NewAuthService(deps.APIKeyRepo, cfg.JWT)

	// Handlers
	deps.HealthHandler = handler.NewHealthHandler(pgDB.Pool, chDB.Conn, redisClient, appVersion)
	deps.CandidatesHandler = handler.NewCandidatesHandler(deps.CandidateService, deps.AsynqClient, logger)
	deps.RolesHandler = handler.NewRolesHandler(deps.RoleService, deps.FitService, deps.AsynqClient, logger)
	deps.MatchingHandler = handler.NewMatchingHandler(deps.MatchService, logger)
	deps.ScoringHandler = handler.NewScoringHandler(deps.DealScoreService, deps.StatsService, logger)
	deps.TrainingHandler = handler.NewTrainingHandler(deps.TrainingService, deps.AsynqClient, logger)
	deps.APIKeysHandler = handler.NewAPIKeysHandler(deps.AuthService, logger)

	// Middleware
	deps.RateLimitMiddleware = middleware.NewRateLimitMiddleware(redisClient)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() {
	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.ClickHouse != nil {
		_ = d.ClickHouse.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
	if d.AsynqClient != nil {
		d.AsynqClient.Close()
	}
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

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinIO.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIO.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return client, nil
}
