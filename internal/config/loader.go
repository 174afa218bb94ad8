package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/copilot-api")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")

	// PostgreSQL
	cfg.Postgres.Host = v.GetString("postgres_host")
	cfg.Postgres.Port = v.GetInt("postgres_port")
	cfg.Postgres.User = v.GetString("postgres_user")
	cfg.Postgres.Password = v.GetString("postgres_password")
	cfg.Postgres.Database = v.GetString("postgres_db")
	cfg.Postgres.SSLMode = v.GetString("postgres_ssl_mode")
	cfg.Postgres.MaxConns = int32(v.GetInt("postgres_max_conns"))
	cfg.Postgres.MinConns = int32(v.GetInt("postgres_min_conns"))

	// ClickHouse
	cfg.ClickHouse.Host = v.GetString("clickhouse_host")
	cfg.ClickHouse.Port = v.GetInt("clickhouse_port")
	cfg.ClickHouse.User = v.GetString("clickhouse_user")
	cfg.ClickHouse.Password = v.GetString("clickhouse_password")
	cfg.ClickHouse.Database = v.GetString("clickhouse_db")

	// Redis
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")

	// MinIO
	cfg.MinIO.Endpoint = v.GetString("minio_endpoint")
	cfg.MinIO.AccessKey = v.GetString("minio_access_key")
	cfg.MinIO.SecretKey = v.GetString("minio_secret_key")
	cfg.MinIO.UseSSL = v.GetBool("minio_use_ssl")
	cfg.MinIO.Bucket = v.GetString("minio_bucket")

	// JWT
	cfg.JWT.Secret = v.GetString("jwt_secret")
	cfg.JWT.ExpiryHours = v.GetInt("jwt_expiry_hours")
	cfg.JWT.Issuer = v.GetString("jwt_issuer")

	// Rate Limiting
	cfg.RateLimit.Enabled = v.GetBool("rate_limit_enabled")
	cfg.RateLimit.RequestsPerMinute = v.GetInt("rate_limit_requests_per_minute")

	// Worker
	cfg.Worker.Concurrency = v.GetInt("worker_concurrency")
	cfg.Worker.RescoreCron = v.GetString("worker_rescore_cron")
	cfg.Worker.TrainingBatch = v.GetInt("worker_training_batch")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// HubSpot
	cfg.HubSpot.BaseURL = v.GetString("hubspot_base_url")
	cfg.HubSpot.ClientID = v.GetString("hubspot_client_id")
	cfg.HubSpot.ClientSecret = v.GetString("hubspot_client_secret")
	cfg.HubSpot.RefreshToken = v.GetString("hubspot_refresh_token")
	cfg.HubSpot.RateLimit = v.GetFloat64("hubspot_rate_limit")
	cfg.HubSpot.RateBurst = v.GetInt("hubspot_rate_burst")

	// Pinecone
	cfg.Pinecone.IndexHost = v.GetString("pinecone_index_host")
	cfg.Pinecone.APIKey = v.GetString("pinecone_api_key")

	// OpenAI
	cfg.OpenAI.APIKey = v.GetString("openai_api_key")
	cfg.OpenAI.EmbeddingModel = v.GetString("openai_embedding_model")

	// Gemini
	cfg.Gemini.APIKey = v.GetString("gemini_api_key")
	cfg.Gemini.Model = v.GetString("gemini_model")

	// Sentry
	cfg.Sentry.Enabled = v.GetBool("sentry_enabled")
	cfg.Sentry.DSN = v.GetString("sentry_dsn")
	cfg.Sentry.Environment = v.GetString("sentry_environment")
	cfg.Sentry.Release = v.GetString("sentry_release")
	cfg.Sentry.SampleRate = v.GetFloat64("sentry_sample_rate")

	// Scoring
	cfg.Scoring.CapabilityWeight = v.GetFloat64("scoring_capability_weight")
	cfg.Scoring.SkillWeight = v.GetFloat64("scoring_skill_weight")
	cfg.Scoring.MatchLimit = v.GetInt("scoring_match_limit")

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_env", "development")

	// PostgreSQL defaults
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "copilot")
	v.SetDefault("postgres_password", "copilot")
	v.SetDefault("postgres_db", "copilot")
	v.SetDefault("postgres_ssl_mode", "disable")
	v.SetDefault("postgres_max_conns", 25)
	v.SetDefault("postgres_min_conns", 5)

	// ClickHouse defaults
	v.SetDefault("clickhouse_host", "localhost")
	v.SetDefault("clickhouse_port", 9000)
	v.SetDefault("clickhouse_user", "copilot")
	v.SetDefault("clickhouse_password", "copilot")
	v.SetDefault("clickhouse_db", "copilot")

	// Redis defaults
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// MinIO defaults
	v.SetDefault("minio_endpoint", "localhost:9002")
	v.SetDefault("minio_access_key", "copilot")
	v.SetDefault("minio_secret_key", "copilot123")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("minio_bucket", "copilot-models")

	// JWT defaults
	v.SetDefault("jwt_secret", "change-me-in-production")
	v.SetDefault("jwt_expiry_hours", 24)
	v.SetDefault("jwt_issuer", "copilot-api")

	// Rate limiting defaults
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_requests_per_minute", 120)

	// Worker defaults
	v.SetDefault("worker_concurrency", 10)
	v.SetDefault("worker_rescore_cron", "0 2 * * *")
	v.SetDefault("worker_training_batch", 100)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// HubSpot defaults
	v.SetDefault("hubspot_base_url", "https://api.hubapi.com")
	v.SetDefault("hubspot_rate_limit", 8.0)
	v.SetDefault("hubspot_rate_burst", 10)

	// OpenAI defaults
	v.SetDefault("openai_embedding_model", "text-embedding-3-small")

	// Gemini defaults
	v.SetDefault("gemini_model", "gemini-2.0-flash")

	// Sentry defaults
	v.SetDefault("sentry_enabled", false)
	v.SetDefault("sentry_sample_rate", 1.0)

	// Scoring defaults
	v.SetDefault("scoring_capability_weight", 0.6)
	v.SetDefault("scoring_skill_weight", 0.4)
	v.SetDefault("scoring_match_limit", 50)
}

func validate(cfg *Config) error {
	if cfg.JWT.Secret == "change-me-in-production" && cfg.IsProduction() {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	if cfg.Scoring.CapabilityWeight < 0 || cfg.Scoring.SkillWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	return nil
}
