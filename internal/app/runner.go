package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/cache"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/service/geoindex"
	"courier-dispatch/internal/transport/kafka"
	"courier-dispatch/internal/transport/ws"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the service until its context is cancelled.
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the service using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	logger := logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })

	err := r.runFn(container)
	switch {
	case err == nil:
		return
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		panic(err)
	}
}

type runIn struct {
	dig.In

	Ctx      context.Context
	Cfg      *config.Config
	Logger   logx.Logger
	Server   *http.Server
	Pprof    *http.Server `name:"pprof_server" optional:"true"`
	Service  *dispatch.Service
	Geo      *geoindex.Index
	Stores   *storeSet
	Mirror   *cache.LocationMirror
	Redis    *redis.Client
	Consumer *kafka.Consumer
	Producer *kafka.Producer
	Hub      *ws.Hub
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(in runIn) error {
	defer closeResources(in)

	if in.Mirror != nil {
		warmLocations(in.Ctx, in.Mirror, in.Geo, in.Logger)
	}

	g, ctx := errgroup.WithContext(in.Ctx)

	g.Go(func() error {
		in.Logger.Info("service-dispatch listening", logx.String("addr", in.Server.Addr))
		if err := in.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if in.Pprof != nil {
		g.Go(func() error {
			in.Logger.Info("pprof listening", logx.String("addr", in.Pprof.Addr))
			if err := in.Pprof.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof listen: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		in.Logger.Info("shutting down service-dispatch...")
		in.Hub.Close()
		gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
		if in.Pprof != nil {
			gracefulShutdown(in.Pprof, in.Logger, shutdownTimeout)
		}
		return nil
	})
	g.Go(func() error {
		return in.Consumer.Run(ctx)
	})
	g.Go(func() error {
		runSweeper(ctx, in.Service, in.Cfg.Dispatch.RecheckInterval, in.Logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return in.Ctx.Err()
}

type locationSource interface {
	Load(ctx context.Context) (map[int64]domain.Location, error)
}

type locationSink interface {
	UpsertLocation(agentID int64, lat, lng float64, ts time.Time) error
	RemoveAgent(agentID int64)
}

// warmLocations restores last known positions so agents that come back
// online are matchable before their next report. Restored entries stay
// hidden until the agent switches online.
func warmLocations(ctx context.Context, src locationSource, geo locationSink, logger logx.Logger) {
	locs, err := src.Load(ctx)
	if err != nil {
		logger.Warn("location warm-up failed", logx.Err(err))
		return
	}
	restored := 0
	for id, loc := range locs {
		if err := geo.UpsertLocation(id, loc.Lat, loc.Lng, loc.RecordedAt); err != nil {
			logger.Debug("skip mirrored location", logx.Int64("agent_id", id), logx.Err(err))
			continue
		}
		geo.RemoveAgent(id)
		restored++
	}
	logger.Info("locations restored", logx.Int("count", restored))
}

type rechecker interface {
	Recheck(ctx context.Context) error
}

func runSweeper(ctx context.Context, svc rechecker, interval time.Duration, logger logx.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Recheck(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("recheck sweep failed", logx.Err(err))
			}
		}
	}
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(in runIn) {
	if err := in.Consumer.Close(); err != nil {
		in.Logger.Error("kafka consumer close error", logx.Err(err))
	}
	if err := in.Producer.Close(); err != nil {
		in.Logger.Error("kafka producer close error", logx.Err(err))
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			in.Logger.Error("redis close error", logx.Err(err))
		}
	}
	in.Stores.Close()
	_ = in.Logger.Sync()
}
