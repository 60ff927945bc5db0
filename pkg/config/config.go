package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	RedisAddr               string
	FriendCacheTTL          time.Duration
	JWTSecret               string
	FirebaseCredentialsPath string
	AssetBaseURL            string
	MetricsPort             string
	CommentRateLimit        float64
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("FRIEND_CACHE_TTL", "5m")
	v.SetDefault("ASSET_BASE_URL", "http://localhost:8080")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("COMMENT_RATE_LIMIT", 5)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		PostgresConnStr:         v.GetString("POSTGRES_CONN_STR"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		FriendCacheTTL:          v.GetDuration("FRIEND_CACHE_TTL"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		AssetBaseURL:            v.GetString("ASSET_BASE_URL"),
		MetricsPort:             v.GetString("METRICS_PORT"),
		CommentRateLimit:        v.GetFloat64("COMMENT_RATE_LIMIT"),
	}

	if cfg.PostgresConnStr == "" {
		return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}
	if cfg.FriendCacheTTL <= 0 {
		return nil, fmt.Errorf("FRIEND_CACHE_TTL must be positive, got %q", v.GetString("FRIEND_CACHE_TTL"))
	}
	if cfg.CommentRateLimit <= 0 {
		return nil, fmt.Errorf("COMMENT_RATE_LIMIT must be positive")
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
