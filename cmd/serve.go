package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/property-intel/internal/api"
	"github.com/sells-group/property-intel/internal/config"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildHandler(env, cfg),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return runServer(ctx, srv, time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
	},
}

// buildHandler wires the API against env.
func buildHandler(env *appEnv, c *config.Config) http.Handler {
	return api.New(env.Records, env.Searches, env.Store, env.Dataset.Sources, api.Options{
		DefaultUser:    env.User,
		DefaultSort:    env.Sort,
		PageSize:       c.Search.PageSize,
		MaxPageSize:    c.Search.MaxPageSize,
		RateLimitRPS:   c.Server.RateLimitRPS,
		RateLimitBurst: c.Server.RateLimitBurst,
		CORSOrigins:    c.Server.CORSOrigins,
		Users:          env.Dataset.Users,

		RateLimitClients: c.Server.RateLimitClients,
		TrustProxy:       c.Server.TrustProxy,
		MapCacheEntries:  c.Server.MapCacheEntries,
		MapCacheTTL:      time.Duration(c.Server.MapCacheTTLSecs) * time.Second,
	}).Handler()
}

// runServer serves until ctx is done, then drains in-flight requests for up
// to grace.
func runServer(ctx context.Context, srv *http.Server, grace time.Duration) error {
	if grace <= 0 {
		grace = 10 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
