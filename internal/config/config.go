package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OIDC      OIDCConfig
	R2        R2Config
	TTS       TTSConfig
	Video     VideoConfig
	Quota     QuotaConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type PostgresConfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessExpiryHours  int
	RefreshExpiryHours int
}

type OIDCConfig struct {
	Issuer   string
	ClientID string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type TTSConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

type VideoConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

type QuotaConfig struct {
	FreeLimit    int
	CreatorLimit int
	ProLimit     int
}

type RateLimitConfig struct {
	SubmitPerHour int
	AuthPerMin    int
}

type WorkerConfig struct {
	Concurrency int
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("DATABASE_URL")
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("postgres.url", "DATABASE_URL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.access_expiry_hours", "JWT_ACCESS_EXPIRY_HOURS")
	_ = viper.BindEnv("jwt.refresh_expiry_hours", "JWT_REFRESH_EXPIRY_HOURS")
	_ = viper.BindEnv("oidc.issuer", "OIDC_ISSUER")
	_ = viper.BindEnv("oidc.client_id", "OIDC_CLIENT_ID")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = viper.BindEnv("tts.service_url", "TTS_SERVICE_URL")
	_ = viper.BindEnv("tts.timeout", "TTS_SERVICE_TIMEOUT")
	_ = viper.BindEnv("video.service_url", "VIDEO_SERVICE_URL")
	_ = viper.BindEnv("video.timeout", "VIDEO_SERVICE_TIMEOUT")
	_ = viper.BindEnv("quota.free_limit", "QUOTA_FREE_LIMIT")
	_ = viper.BindEnv("quota.creator_limit", "QUOTA_CREATOR_LIMIT")
	_ = viper.BindEnv("quota.pro_limit", "QUOTA_PRO_LIMIT")
	_ = viper.BindEnv("ratelimit.submit_per_hour", "RATELIMIT_SUBMIT_PER_HOUR")
	_ = viper.BindEnv("ratelimit.auth_per_min", "RATELIMIT_AUTH_PER_MIN")
	_ = viper.BindEnv("worker.concurrency", "WORKER_CONCURRENCY")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("postgres.url", "postgres://localhost:5432/devotionalai?sslmode=disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.access_expiry_hours", 24)
	viper.SetDefault("jwt.refresh_expiry_hours", 168)
	viper.SetDefault("tts.service_url", "http://localhost:8084")
	viper.SetDefault("tts.timeout", 300)
	viper.SetDefault("video.service_url", "http://localhost:8085")
	viper.SetDefault("video.timeout", 600)
	viper.SetDefault("quota.free_limit", 5)
	viper.SetDefault("quota.creator_limit", 50)
	viper.SetDefault("quota.pro_limit", 1000)
	viper.SetDefault("ratelimit.submit_per_hour", 20)
	viper.SetDefault("ratelimit.auth_per_min", 10)
	viper.SetDefault("worker.concurrency", 2)

	// Config file is optional
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Postgres: PostgresConfig{
			URL: viper.GetString("postgres.url"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("jwt.secret"),
			AccessExpiryHours:  viper.GetInt("jwt.access_expiry_hours"),
			RefreshExpiryHours: viper.GetInt("jwt.refresh_expiry_hours"),
		},
		OIDC: OIDCConfig{
			Issuer:   viper.GetString("oidc.issuer"),
			ClientID: viper.GetString("oidc.client_id"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
		TTS: TTSConfig{
			ServiceURL: viper.GetString("tts.service_url"),
			Timeout:    viper.GetInt("tts.timeout"),
		},
		Video: VideoConfig{
			ServiceURL: viper.GetString("video.service_url"),
			Timeout:    viper.GetInt("video.timeout"),
		},
		Quota: QuotaConfig{
			FreeLimit:    viper.GetInt("quota.free_limit"),
			CreatorLimit: viper.GetInt("quota.creator_limit"),
			ProLimit:     viper.GetInt("quota.pro_limit"),
		},
		RateLimit: RateLimitConfig{
			SubmitPerHour: viper.GetInt("ratelimit.submit_per_hour"),
			AuthPerMin:    viper.GetInt("ratelimit.auth_per_min"),
		},
		Worker: WorkerConfig{
			Concurrency: viper.GetInt("worker.concurrency"),
		},
	}

	return cfg, nil
}

// LimitForPlan returns the monthly generation limit for a plan name.
func (q QuotaConfig) LimitForPlan(plan string) int {
	switch plan {
	case "creator":
		return q.CreatorLimit
	case "pro":
		return q.ProLimit
	default:
		return q.FreeLimit
	}
}
