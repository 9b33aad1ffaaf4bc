package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/kurvalgom/internal/app"
	"github.com/dtnitsch/kurvalgom/internal/httpapi"
	"github.com/dtnitsch/kurvalgom/pkg/resolver"
)

const shutdownTimeout = 10 * time.Second

// ServeAction runs the web UI and JSON endpoint until SIGINT or SIGTERM.
func ServeAction(c *cli.Context) error {
	a, err := app.FromCLI(c)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.Config.ListenAddr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	mux := http.NewServeMux()
	httpapi.NewRouter(a.Finder, resolver.Slug(a.Locator.AreaName()), a.Logger.With("component", "http")).Register(mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", "addr", addr, "browser", a.Config.Browser, "blacklist", a.Config.BlacklistPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
