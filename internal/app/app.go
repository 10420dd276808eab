package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"nhgate/internal/config"
	httpHandler "nhgate/internal/delivery/http"
	"nhgate/internal/logging"
	"nhgate/internal/metrics"
	"nhgate/internal/repository/api/nicehash"
	"nhgate/internal/service/rigs"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	bot      *tgbotapi.BotAPI
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collector
	api      *nicehash.PrivateClient
}

func New() (*App, error) {
	app := new(App)
	if err := app.InitDeps(); err != nil {
		return nil, err
	}
	return app, nil
}

// Start serves the rig status front-ends until SIGTERM or SIGINT.
func (a *App) Start(ctx context.Context) error {
	rigService := rigs.New(a.api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           httpHandler.New(rigService, a.logger).Routes(a.registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("http server failed", "error", err)
		}
	}()

	if a.bot != nil {
		go a.RunTelegramBot(ctx, rigService)
	}

	ctx, stop := signalContext(ctx)
	defer stop()
	<-ctx.Done()

	a.logger.Info("Shutting down app...")

	if a.bot != nil {
		a.bot.StopReceivingUpdates()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(logging.ErrorCtx(shutdownCtx, err), "http shutdown", "error", err)
		return err
	}

	return nil
}

// signalContext is cancelled on SIGTERM or SIGINT.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
}
