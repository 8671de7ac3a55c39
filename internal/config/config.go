package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	AI        AIConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Mastery   MasteryConfig   `mapstructure:"mastery"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
	OTP       OTPConfig       `mapstructure:"otp"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type AIConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// MasteryConfig 掌握度算法参数
type MasteryConfig struct {
	InitialScore         float64 `mapstructure:"initial_score"`
	CorrectIncrement     float64 `mapstructure:"correct_increment"`
	IncorrectDecrement   float64 `mapstructure:"incorrect_decrement"`
	WeakThreshold        float64 `mapstructure:"weak_threshold"`
	SpacedRepetitionDays int     `mapstructure:"spaced_repetition_days"`
}

// PlannerConfig 学习计划参数
type PlannerConfig struct {
	DefaultDurationMinutes int `mapstructure:"default_duration_minutes"`
}

// IngestionConfig 教材内容切分参数
type IngestionConfig struct {
	ChunkSizeMin    int `mapstructure:"chunk_size_min"`
	ChunkSizeMax    int `mapstructure:"chunk_size_max"`
	ChunkOverlap    int `mapstructure:"chunk_overlap"`
	MaxUploadSizeMB int `mapstructure:"max_upload_size_mb"`
}

type OTPConfig struct {
	Length        int `mapstructure:"length"`
	ExpiryMinutes int `mapstructure:"expiry_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("MED_EDU")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// AI
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")
	viper.BindEnv("ai.embedding_model", "AI_EMBEDDING_MODEL")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Mastery
	viper.BindEnv("mastery.initial_score", "MASTERY_INITIAL_SCORE")
	viper.BindEnv("mastery.correct_increment", "MASTERY_CORRECT_INCREMENT")
	viper.BindEnv("mastery.incorrect_decrement", "MASTERY_INCORRECT_DECREMENT")
	viper.BindEnv("mastery.weak_threshold", "MASTERY_WEAK_THRESHOLD")
	viper.BindEnv("mastery.spaced_repetition_days", "SPACED_REPETITION_THRESHOLD_DAYS")

	// Planner
	viper.BindEnv("planner.default_duration_minutes", "STUDY_PLAN_DURATION_MINUTES")

	// 掌握度与学习计划参数默认值
	viper.SetDefault("mastery.initial_score", 0.0)
	viper.SetDefault("mastery.correct_increment", 0.1)
	viper.SetDefault("mastery.incorrect_decrement", 0.05)
	viper.SetDefault("mastery.weak_threshold", 0.7)
	viper.SetDefault("mastery.spaced_repetition_days", 2)
	viper.SetDefault("planner.default_duration_minutes", 120)
	viper.SetDefault("ingestion.chunk_size_min", 300)
	viper.SetDefault("ingestion.chunk_size_max", 700)
	viper.SetDefault("ingestion.chunk_overlap", 50)
	viper.SetDefault("ingestion.max_upload_size_mb", 50)
	viper.SetDefault("otp.length", 6)
	viper.SetDefault("otp.expiry_minutes", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
