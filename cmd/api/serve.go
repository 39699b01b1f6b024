package main

import (
	"context"
	"fmt"
	"time"

	"authcore/internal/config"
	"authcore/internal/handler"
	"authcore/internal/infra/bus"
	"authcore/internal/infra/db"
	"authcore/internal/infra/federation"
	infraRepo "authcore/internal/infra/repository"
	"authcore/internal/metrics"
	"authcore/internal/middleware"
	"authcore/internal/server"
	"authcore/internal/telemetry"
	auth "authcore/internal/usecase/auth_usecase"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	shutdownTracing, err := telemetry.Init(ctx, "authcore", a.cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			a.log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	if err := db.Migrate(ctx, a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	//イベント送信先。NATS_URLが無ければ捨てる
	var events auth.EventPublisher = auth.NopPublisher{}
	if a.cfg.NATSURL != "" {
		b, err := bus.New(a.cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer b.Close()
		events = b
	}

	//Repository（GORM実装）生成
	users := infraRepo.NewUserGormRepository(a.db)
	ledger := infraRepo.NewRefreshTokenRepository(a.db)
	txm := infraRepo.NewTxManagerGorm(a.db)

	sessions := auth.NewSessionService(auth.SessionDeps{
		Users:      users,
		Ledger:     ledger,
		Tx:         txm,
		Hasher:     auth.NewBcryptPasswordHasher(a.cfg.BcryptCost),
		Tokens:     a.tokens,
		Federation: newFederation(a.cfg),
		Events:     events,
		Logger:     a.log,
	})

	guard := middleware.NewGuard(a.issuer, users, auth.SystemClock{})

	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}

	//Handler生成
	authH := handler.NewAuthHandler(sessions, handler.CookieConfig{
		Secure:     a.cfg.IsProduction(),
		Domain:     a.cfg.CookieDomain,
		AccessTTL:  a.cfg.AccessTokenTTL,
		RefreshTTL: a.cfg.RefreshTokenTTL,
	})

	e := server.New(server.Deps{
		Logger:             a.log,
		Auth:               authH,
		Health:             handler.NewHealthHandler(sqlDB),
		Guard:              guard,
		AllowedOrigins:     a.cfg.AllowedOrigins,
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
	})

	go runPruner(ctx, sessions, a.cfg.PruneInterval, a.log)

	//Server起動
	return server.Run(ctx, e, a.cfg.Addr, a.log)
}

func newFederation(cfg config.Config) auth.FederationAdapter {
	if !cfg.GoogleEnabled() {
		return federation.Disabled{}
	}
	return federation.NewGoogleAdapter(federation.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
}

// 期限切れのリフレッシュトークンを定期的に消す
func runPruner(ctx context.Context, sessions *auth.SessionService, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PruneExpiredTokens(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("prune refresh tokens")
				continue
			}
			metrics.AddPruned(n)
			if n > 0 {
				logger.Info().Int64("deleted", n).Msg("expired refresh tokens pruned")
			}
		}
	}
}
