package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/yukikurage/society-committee-api/internal/constants"
	"github.com/yukikurage/society-committee-api/internal/database"
	"github.com/yukikurage/society-committee-api/internal/handlers"
	"github.com/yukikurage/society-committee-api/internal/middleware"
	"go.uber.org/zap"
)

var serveFlags = struct {
	migrate bool
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := commonRun()
		if err != nil {
			return err
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		if serveFlags.migrate {
			if err := database.Migrate(); err != nil {
				return err
			}
		}

		gin.SetMode(cfg.GinMode)
		r := gin.New()
		r.Use(
			middleware.RequestLogger(logger, a.metrics),
			middleware.Recovery(logger),
		)

		// Setup session middleware with Redis
		store, err := redisStore.NewStore(
			10,                // Redis pool size
			"tcp",             // network type
			cfg.RedisAddr(),   // Redis address from config
			"",                // username (empty for default user)
			cfg.RedisPassword, // password
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return fmt.Errorf("failed to create Redis session store: %w", err)
		}
		store.Options(sessions.Options{
			Path:     "/",
			MaxAge:   86400 * 7, // 7 days
			HttpOnly: true,
			Secure:   cfg.IsRelease(),
			SameSite: http.SameSiteLaxMode,
		})
		r.Use(sessions.Sessions(constants.SessionCookieName, store))

		var cachePinger handlers.Pinger
		if a.redis != nil {
			cachePinger = a.redis
		}

		handlers.RegisterRoutes(r,
			handlers.NewCommitteeHandler(a.committee, a.tenure, a.designations),
			handlers.NewArchiveHandler(a.archive),
			handlers.NewHealthHandler(programName, database.GetDB(), cachePinger),
			middleware.RequireAuth(),
		)
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

		srv := &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting", zap.String("addr", srv.Addr))
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

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveFlags.migrate, "migrate", false, "run migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
