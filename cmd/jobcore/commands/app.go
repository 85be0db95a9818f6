package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/skillconnect/jobcore/internal/config"
	"github.com/skillconnect/jobcore/internal/employer"
	"github.com/skillconnect/jobcore/internal/events"
	"github.com/skillconnect/jobcore/internal/jobs/data"
	"github.com/skillconnect/jobcore/internal/jobs/service"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/observes"
	"github.com/skillconnect/jobcore/internal/version"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	config    *config.Config
	logger    *logging.Logger
	data      *data.Data
	redis     *redis.Client
	publisher events.Publisher
	service   *service.Service
	cleanups  []func()
}

// newApp loads configuration and wires the data, side-effect and service
// layers. The returned cleanup releases everything in reverse order.
func newApp(ctx context.Context, confPath string) (*app, func(), error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Init(confPath)
	if err != nil {
		return nil, nil, err
	}

	logger, closeLog, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	info := version.GetVersionInfo()
	logger.SetVersion(info.Version)

	a := &app{config: cfg, logger: logger}
	a.cleanups = append(a.cleanups, closeLog)
	cleanup := func() {
		for i := len(a.cleanups) - 1; i >= 0; i-- {
			a.cleanups[i]()
		}
	}

	if err := a.initObservers(ctx, info.Version); err != nil {
		cleanup()
		return nil, nil, err
	}

	d, err := data.New(ctx, cfg.Data, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	a.data = d
	a.cleanups = append(a.cleanups, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.Close(closeCtx); err != nil {
			logger.Error(closeCtx, "failed to close data layer", "error", err)
		}
	})

	a.initRedis(ctx)
	a.initPublisher(ctx)

	var counter employer.Counter = employer.Nop{}
	var reconciler employer.Reconciler = employer.Nop{}
	if db := d.DB(); db != nil {
		mc := employer.NewMongoCounter(db, cfg.Employer, logger)
		counter = employer.WithBreaker(mc, 30*time.Second)
		reconciler = mc
	}

	a.service = service.New(service.Options{
		Jobs:         d.Jobs,
		Counter:      counter,
		Reconciler:   reconciler,
		Events:       a.publisher,
		Logger:       logger,
		ViewTimeout:  cfg.Views.Timeout,
		EventTimeout: cfg.Data.QueryTimeout,
	})
	return a, cleanup, nil
}

func (a *app) initObservers(ctx context.Context, ver string) error {
	cfg := a.config
	enabled, err := observes.NewSentry(cfg.Observes.Sentry, cfg.AppName)
	if err != nil {
		return fmt.Errorf("failed to init sentry: %w", err)
	}
	if enabled {
		hook := logging.NewSentryHook(sentry.CurrentHub())
		a.logger.AddHook(hook)
		a.cleanups = append(a.cleanups, func() { hook.Flush(2 * time.Second) })
	}

	shutdown, err := observes.NewTracer(ctx, cfg.Observes.Tracer, ver, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to init tracer: %w", err)
	}
	a.cleanups = append(a.cleanups, func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			a.logger.Warn(sctx, "failed to flush traces", "error", err)
		}
	})
	return nil
}

// initRedis connects the rate limiter store. Without an address, or when
// the server is unreachable at boot, rate limiting is disabled.
func (a *app) initRedis(ctx context.Context) {
	rc := a.config.Data.Redis
	if rc.Addr == "" {
		a.logger.Info(ctx, "redis not configured, rate limiting disabled")
		return
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	pctx, cancel := context.WithTimeout(ctx, a.config.Data.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		a.logger.Warn(ctx, "redis unreachable, rate limiting disabled", "addr", rc.Addr, "error", err)
		_ = client.Close()
		return
	}
	a.redis = client
	a.cleanups = append(a.cleanups, func() { _ = client.Close() })
}

// initPublisher connects the event exchange, falling back to dropping events.
func (a *app) initPublisher(ctx context.Context) {
	a.publisher = events.Nop{}
	rc := a.config.Data.RabbitMQ
	if rc.URL == "" {
		return
	}
	p, err := events.NewRabbitPublisher(rc.URL, rc.Exchange)
	if err != nil {
		a.logger.Warn(ctx, "rabbitmq unreachable, lifecycle events disabled", "error", err)
		return
	}
	a.publisher = p
	a.cleanups = append(a.cleanups, func() { _ = p.Close() })
}
