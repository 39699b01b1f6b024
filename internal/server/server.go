package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"authcore/internal/handler"
	"authcore/internal/middleware"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 10 * time.Second

// Serverの組み立てに必要なもの
type Deps struct {
	Logger             zerolog.Logger
	Auth               *handler.AuthHandler
	Health             *handler.HealthHandler
	Guard              *middleware.Guard
	AllowedOrigins     []string
	RateLimitPerMinute int // 0なら制限なし
}

// New はechoを組み立ててルートを登録する
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Logger)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	registerRoutes(e, d)
	return e
}

func registerRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := e.Group("/auth")
	if d.RateLimitPerMinute > 0 {
		// IP単位。認証系だけに掛ける
		g.Use(echo.WrapMiddleware(httprate.LimitByIP(d.RateLimitPerMinute, time.Minute)))
	}
	d.Auth.RegisterRoutes(g, d.Guard)
}

// Run はctxがキャンセルされるまでサーバーを動かし、その後graceful shutdownする
func Run(ctx context.Context, e *echo.Echo, addr string, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(e, "authcore"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
