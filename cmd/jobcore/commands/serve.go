package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/skillconnect/jobcore/internal/config"
	"github.com/skillconnect/jobcore/internal/jobs/handler"
	"github.com/skillconnect/jobcore/internal/security/jwt"
	"github.com/skillconnect/jobcore/internal/server"
	"github.com/skillconnect/jobcore/internal/server/middleware"
	"github.com/spf13/cobra"
)

func newServeCommand(confPath *string) *cobra.Command {
	var ensureIndexes bool

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the HTTP API server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := newApp(ctx, *confPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if ensureIndexes {
				if err := a.data.Jobs.EnsureIndexes(ctx); err != nil {
					return err
				}
			}

			config.Watch(func(c *config.Config) {
				if err := a.logger.SetLevelString(c.Logger.Level); err != nil {
					a.logger.Warn(context.Background(), "ignoring invalid log level", "level", c.Logger.Level)
					return
				}
				a.logger.Info(context.Background(), "configuration reloaded", "log_level", c.Logger.Level)
			}, func(err error) {
				a.logger.Warn(context.Background(), "failed to reload configuration", "error", err)
			})

			health := map[string]server.HealthCheck{"jobs": a.data.Ping}
			var limiter middleware.Limiter
			if a.redis != nil {
				limiter = middleware.NewRedisLimiter(a.redis, a.config.RateLimit.Window)
				health["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
			}

			srv := server.New(server.Options{
				Config:  a.config,
				Logger:  a.logger,
				Handler: handler.NewHandler(a.service, a.logger),
				Tokens:  jwt.NewTokenManager(a.config.Auth.JWT.Secret),
				Limiter: limiter,
				Health:  health,
				Drain:   []server.Drainer{a.service.Views, a.service.Events},
			})
			return srv.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&ensureIndexes, "ensure-indexes", true, "create job indexes before serving")
	return cmd
}
