package appbootstrap

import (
	"context"
	"fmt"
	"time"

	"rightswatch/api"
	"rightswatch/config"
	"rightswatch/core/utils"
)

// Run serves until ctx is cancelled and then shuts everything down in reverse order.
func Run(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) error {
	rt, err := composeRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.close(closeCtx); err != nil {
			logger.Errorf("close store: %v", err)
		}
	}()

	srv := api.NewServer(cfg, rt.serverDeps, logger)
	for _, w := range rt.workers {
		if err := w.StartWithContext(ctx); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	for i := len(rt.workers) - 1; i >= 0; i-- {
		if err := rt.workers[i].StopWithContext(shutdownCtx); err != nil {
			logger.Errorf("stop worker: %v", err)
		}
	}
	logger.Printf("stopped")
	return serveErr
}
