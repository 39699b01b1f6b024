package main

import (
	"context"
	"fmt"

	"authcore/internal/config"
	"authcore/internal/infra/db"
	infraRepo "authcore/internal/infra/repository"
	"authcore/internal/logging"
	auth "authcore/internal/usecase/auth_usecase"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// コマンド共通の部品。serve/migrate/pruneはここから組み立てる
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	db     *gorm.DB
	issuer *auth.JWTIssuer
	tokens *auth.TokenService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.IsProduction())

	//DB接続
	gormDB, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	users := infraRepo.NewUserGormRepository(gormDB)
	ledger := infraRepo.NewRefreshTokenRepository(gormDB)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	tokens := auth.NewTokenService(users, ledger, issuer, auth.UUIDGenerator{}, auth.SystemClock{}, cfg.RefreshTokenTTL)

	return &app{cfg: cfg, log: logger, db: gormDB, issuer: issuer, tokens: tokens}, nil
}

func (a *app) close() {
	if err := db.Close(a.db); err != nil {
		a.log.Warn().Err(err).Msg("close database")
	}
}
