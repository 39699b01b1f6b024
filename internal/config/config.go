package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const envProduction = "production"

// Configはアプリ全体の設定（環境変数から読む）
type Config struct {
	Addr        string `env:"ADDR,default=:8080"`        // サーバーアドレス
	DatabaseURL string `env:"DATABASE_URL,required"`     // postgres DSN か sqlite:<path>
	JWTSecret   string `env:"JWT_SECRET,required"`       // JWT署名シークレット
	GoEnv       string `env:"GO_ENV,default=development"` // development/production
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,default=168h"`
	BcryptCost      int           `env:"BCRYPT_COST,default=12"`
	PruneInterval   time.Duration `env:"PRUNE_INTERVAL,default=1h"`

	CookieDomain       string   `env:"COOKIE_DOMAIN"`
	AllowedOrigins     []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE,default=60"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL,default=postmessage"`

	NATSURL      string `env:"NATS_URL"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load は環境変数を読んで必須チェックまで行う
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は値の範囲を確認する
func (c Config) Validate() error {
	if len(c.JWTSecret) < 32 && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes in production")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.GoEnv == envProduction
}

// Googleログインが設定されているか
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
