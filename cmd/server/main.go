package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eurekazheng/learning-react/internal/app"
	"github.com/eurekazheng/learning-react/internal/config"
	"github.com/eurekazheng/learning-react/internal/logger"
	"github.com/eurekazheng/learning-react/internal/web"
	"go.uber.org/zap"
)

var configPath = flag.String("config", "config.yml", "Path to the YAML config file")

func main() {
	flag.Parse()

	conf := config.MustLoad(*configPath)
	log, err := logger.New(conf.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, conf); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests.
func run(log *zap.Logger, conf *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := app.NewService(app.Options{
		TTL:         conf.SessionTTL,
		MaxSessions: conf.MaxSessions,
		Logger:      log,
	})
	if conf.SessionTTL > 0 && conf.SweepInterval > 0 {
		go svc.MaintainSessions(ctx, conf.SweepInterval)
	}

	srv := &http.Server{
		Addr:              conf.Addr(),
		Handler:           web.NewServer(svc, web.Options{Logger: log, CookieTTL: conf.SessionTTL}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("received signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
