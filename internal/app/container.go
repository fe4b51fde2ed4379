package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"courier-dispatch/internal/cache"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/gateway/store"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/middleware/identity"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/http/pprofserver"
	"courier-dispatch/internal/http/router"
	"courier-dispatch/internal/keymutex"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/repository/memory"
	"courier-dispatch/internal/service/availability"
	"courier-dispatch/internal/service/claim"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/service/geoindex"
	"courier-dispatch/internal/service/matcher"
	"courier-dispatch/internal/service/notify"
	"courier-dispatch/internal/transport/kafka"
	"courier-dispatch/internal/transport/ws"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

type redisConnectFunc func(ctx context.Context, addr, password string, db int) (*redis.Client, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect    dbConnectFunc
	redisConnect redisConnectFunc
	loadConfig   func() (*config.Config, error)
	logFatalf    func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect:    connectDbWithRetry,
		redisConnect: cache.Connect,
		loadConfig:   config.Load,
		logFatalf:    log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithRedisConnect sets the Redis connection function
func (b *ContainerBuilder) WithRedisConnect(fn redisConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.redisConnect = fn
	}
	return b
}

// WithConfig replaces config loading with a fixed config
func (b *ContainerBuilder) WithConfig(cfg *config.Config) *ContainerBuilder {
	if cfg != nil {
		b.loadConfig = func() (*config.Config, error) { return cfg, nil }
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStores(container, b.dbConnect, b.redisConnect); err != nil {
		return nil, fmt.Errorf("stores: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerTransport(container); err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, loadConfig func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		loadConfig,
		NewLogger,
		provideMetrics,
	)
}

type orderStore interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, tr domain.StatusTransition) (domain.Order, error)
	ListByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error)
	ListForAgent(ctx context.Context, agentID int64, statuses ...domain.OrderStatus) ([]domain.Order, error)
}

type agentStore interface {
	Save(ctx context.Context, a domain.Agent) error
	Get(ctx context.Context, id int64) (domain.Agent, error)
	UpdateOnline(ctx context.Context, id int64, online bool) error
}

type eventStore interface {
	Append(ctx context.Context, ev domain.NotificationEvent) (domain.NotificationEvent, error)
	Get(ctx context.Context, id uuid.UUID) (domain.NotificationEvent, error)
	ListUndelivered(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error)
	MarkDelivered(ctx context.Context, ids ...uuid.UUID) (int64, error)
}

// storeSet is the persistence selected by STORE_DRIVER.
type storeSet struct {
	Orders orderStore
	Agents agentStore
	Events eventStore

	pool *pgxpool.Pool
}

// Ping checks the database, if any.
func (s *storeSet) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Close releases the database pool, if any.
func (s *storeSet) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

type storesIn struct {
	dig.In

	Ctx     context.Context
	Cfg     *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"store_retries_total"`
}

func newStores(connect dbConnectFunc) func(storesIn) (*storeSet, error) {
	return func(in storesIn) (*storeSet, error) {
		var set storeSet
		switch in.Cfg.StoreDriver {
		case config.DriverMemory:
			agents := memory.NewAgentRepo()
			if err := seedAgents(in.Ctx, agents, in.Cfg.SeedAgents); err != nil {
				return nil, err
			}
			set.Orders = memory.NewOrderRepo()
			set.Agents = agents
			set.Events = memory.NewNotificationRepo()
		default:
			pool, err := connect(in.Ctx, in.Logger, in.Cfg.DB.DSN(), 10, time.Second)
			if err != nil {
				return nil, err
			}
			if err := repository.EnsureSchema(in.Ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			set.Orders = repository.NewOrderRepo(pool)
			set.Agents = repository.NewAgentRepo(pool)
			set.Events = repository.NewNotificationRepo(pool)
			set.pool = pool
		}

		r := in.Cfg.StoreRetry
		set.Orders = store.NewRetryingOrders(set.Orders, in.Logger, in.Retries, store.RetryConfig{
			MaxAttempts: r.MaxAttempts,
			BaseDelay:   r.BaseDelay,
			MaxDelay:    r.MaxDelay,
		})
		in.Logger.Info("stores ready", logx.String("driver", in.Cfg.StoreDriver))
		return &set, nil
	}
}

func seedAgents(ctx context.Context, agents agentStore, seeds []config.AgentSeed) error {
	for _, s := range seeds {
		a := domain.Agent{
			ID:       s.ID,
			Name:     fmt.Sprintf("agent-%d", s.ID),
			Approval: domain.ApprovalActive,
			Capacity: s.Capacity,
		}
		if err := agents.Save(ctx, a); err != nil {
			return fmt.Errorf("seed agent %d: %w", s.ID, err)
		}
	}
	return nil
}

func newRedisClient(connect redisConnectFunc) func(context.Context, *config.Config, logx.Logger) (*redis.Client, error) {
	return func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*redis.Client, error) {
		if cfg.Redis.Addr == "" {
			logger.Info("location mirror disabled")
			return nil, nil
		}
		return connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
}

func newLocationMirror(client *redis.Client, cfg *config.Config, logger logx.Logger) *cache.LocationMirror {
	if client == nil {
		return nil
	}
	return cache.NewLocationMirror(client, cfg.Dispatch.LocationTTL, logger)
}

func registerStores(container *dig.Container, connect dbConnectFunc, redisConnect redisConnectFunc) error {
	return provideAll(container,
		newStores(connect),
		newRedisClient(redisConnect),
		newLocationMirror,
	)
}

type notifierIn struct {
	dig.In

	Cfg       *config.Config
	Logger    logx.Logger
	Stores    *storeSet
	Producer  *kafka.Producer
	Published prometheus.Counter `name:"notifications_published_total"`
	Dropped   prometheus.Counter `name:"notifications_push_dropped_total"`
}

func newNotifier(in notifierIn) *notify.Dispatcher {
	opts := []notify.Option{
		notify.WithBuffer(in.Cfg.Dispatch.NotifyBuffer),
		notify.WithCounters(in.Published, in.Dropped),
	}
	if in.Producer != nil {
		opts = append(opts, notify.WithSink(in.Producer))
	}
	return notify.NewDispatcher(in.Stores.Events, in.Logger, opts...)
}

type arbiterIn struct {
	dig.In

	Cfg      *config.Config
	Logger   logx.Logger
	Stores   *storeSet
	Registry *availability.Registry
	Matcher  *matcher.Matcher
	Locks    *keymutex.Map
	Claims   *prometheus.CounterVec `name:"claims_total"`
}

func newArbiter(in arbiterIn) *claim.Arbiter {
	return claim.NewArbiter(
		in.Stores.Orders,
		in.Stores.Agents,
		in.Registry,
		in.Matcher,
		in.Locks,
		in.Claims,
		in.Cfg.Dispatch.OperationTimeout,
		in.Logger,
	)
}

type serviceIn struct {
	dig.In

	Cfg      *config.Config
	Logger   logx.Logger
	Stores   *storeSet
	Geo      *geoindex.Index
	Registry *availability.Registry
	Matcher  *matcher.Matcher
	Arbiter  *claim.Arbiter
	Notifier *notify.Dispatcher
	Mirror   *cache.LocationMirror
	Stale    prometheus.Counter `name:"stale_location_updates_total"`
}

func newDispatchService(in serviceIn) *dispatch.Service {
	deps := dispatch.Deps{
		Orders:   in.Stores.Orders,
		Agents:   in.Stores.Agents,
		Geo:      in.Geo,
		Registry: in.Registry,
		Matcher:  in.Matcher,
		Arbiter:  in.Arbiter,
		Notifier: in.Notifier,
		Stale:    in.Stale,
	}
	if in.Mirror != nil {
		deps.Mirror = in.Mirror
	}
	return dispatch.NewService(deps, in.Cfg.Dispatch.OperationTimeout, in.Logger)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) *geoindex.Index {
			return geoindex.New(geoindex.WithStaleAfter(cfg.Dispatch.LocationTTL))
		},
		func(geo *geoindex.Index) *availability.Registry {
			return availability.NewRegistry(geo)
		},
		keymutex.New,
		newNotifier,
		func(
			cfg *config.Config,
			logger logx.Logger,
			stores *storeSet,
			geo *geoindex.Index,
			reg *availability.Registry,
			notifier *notify.Dispatcher,
			locks *keymutex.Map,
		) *matcher.Matcher {
			return matcher.New(stores.Orders, geo, reg, notifier, locks, matcher.Config{
				RadiusMeters:     cfg.Dispatch.RadiusMeters,
				OperationTimeout: cfg.Dispatch.OperationTimeout,
			}, logger)
		},
		newArbiter,
		newDispatchService,
	)
}

func registerTransport(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) (*kafka.Producer, error) {
			return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		},
		func(cfg *config.Config, logger logx.Logger, svc *dispatch.Service) (*kafka.Consumer, error) {
			k := cfg.Kafka
			return kafka.NewConsumer(logger, k.Brokers, k.Group, k.OrdersTopic, makeOrdersKafka(svc, logger))
		},
		func(notifier *notify.Dispatcher, svc *dispatch.Service, logger logx.Logger) *ws.Hub {
			return ws.NewHub(notifier, svc, ws.DefaultConfig(), logger)
		},
	)
}

func newRateLimiter(cfg *config.Config, clock ratelimit.Clock) ratelimit.Limiter {
	rl := cfg.RateLimit
	if rl.Limit <= 0 || rl.Window <= 0 {
		return ratelimit.AllowAll{}
	}
	limits := ratelimit.Config{
		Default:    ratelimit.Budget{Limit: rl.Limit, Window: rl.Window},
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	}
	if rl.ServiceLimit > 0 {
		limits.ByClass = map[string]ratelimit.Budget{
			string(identity.KindService): {Limit: rl.ServiceLimit, Window: rl.Window},
		}
	}
	return ratelimit.NewBuckets(clock, limits)
}

type rateLimitIn struct {
	dig.In

	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter)
}

func newBaseHandlers(logger logx.Logger, stores *storeSet, client *redis.Client) *handlers.Handlers {
	checks := []handlers.Check{{Name: "store", Probe: stores.Ping}}
	if client != nil {
		checks = append(checks, handlers.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	}
	return handlers.New(logger, checks...)
}

type routerIn struct {
	dig.In

	Logger        logx.Logger
	Handlers      *handlers.Handlers
	Orders        *handlers.OrderHandler
	Agents        *handlers.AgentHandler
	Notifications *handlers.NotificationHandler
	Hub           *ws.Hub
	Limiter       *ratelimit.Middleware
}

func newRouter(in routerIn) http.Handler {
	return router.New(in.Logger, in.Handlers, in.Orders, in.Agents, in.Notifications, in.Hub, in.Limiter)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	pprofProvider := func(cfg *config.Config, logger logx.Logger) pprofOut {
		return pprofOut{Server: pprofserver.New(pprofserver.Config{
			Addr: cfg.Pprof.Addr,
			User: cfg.Pprof.User,
			Pass: cfg.Pprof.Pass,
		}, logger)}
	}
	return provideAll(container,
		func() ratelimit.Clock { return nil },
		newRateLimiter,
		newRateLimitMiddleware,
		newBaseHandlers,
		handlers.NewDispatchUsecase,
		handlers.NewOrderHandler,
		handlers.NewAgentHandler,
		handlers.NewNotificationHandler,
		newRouter,
		serverProvider,
		pprofProvider,
	)
}

// pprofOut carries the profiling server; nil when disabled.
type pprofOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}
