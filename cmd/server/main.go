package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"personas/internal/audit"
	jwttoken "personas/internal/jwt_token"
	"personas/internal/platform/config"
	"personas/internal/platform/httpserver"
	"personas/internal/platform/logger"
	"personas/internal/platform/metrics"
	"personas/internal/platform/postgres"
	redisclient "personas/internal/platform/redis"
	"personas/internal/platform/tracing"
	"personas/internal/profile/cache"
	"personas/internal/profile/handler"
	profilemetrics "personas/internal/profile/metrics"
	"personas/internal/profile/models"
	"personas/internal/profile/resolver"
	"personas/internal/profile/service"
	"personas/internal/profile/store"
	"personas/internal/profile/visibility"
	"personas/internal/ratelimit"
	id "personas/pkg/domain"
	"personas/pkg/platform/circuit"
	"personas/pkg/platform/httputil"
	"personas/pkg/platform/middleware/admin"
	"personas/pkg/platform/middleware/auth"
	"personas/pkg/platform/middleware/request"
	"personas/pkg/platform/middleware/requesttime"
)

// recordStore is what every profile component reads and writes.
type recordStore interface {
	service.Store
	resolver.Store
	visibility.Store
}

type flags struct {
	envFile string
	addr    string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("personas", pflag.ContinueOnError)
	fs.StringVar(&f.envFile, "env-file", ".env", "optional env file layered under the environment")
	fs.StringVar(&f.addr, "addr", "", "listen address, overrides PERSONAS_ADDR")
	return f, fs.Parse(args)
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(f.envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}

	log := logger.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup(cfg.Tracing.ServiceName)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	profileMetrics := profilemetrics.New(reg)

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	records, err := buildStore(ctx, db, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	auditSink, closeSink, err := buildAuditSink(cfg.Audit, log)
	if err != nil {
		return err
	}
	queue := audit.NewQueue(cfg.Audit.QueueSize, log)
	publisher := audit.NewPublisher(queue)

	evaluator, err := visibility.New(records,
		visibility.WithLogger(log),
		visibility.WithMetrics(profileMetrics),
		visibility.WithAuditPublisher(publisher),
		visibility.WithConcurrency(cfg.Batch.Concurrency),
	)
	if err != nil {
		return err
	}
	base, err := resolver.New(records, resolver.WithLogger(log), resolver.WithMetrics(profileMetrics))
	if err != nil {
		return err
	}
	var profileCache cache.ProfileCache = cache.NewMemory[id.ProfileID, *models.EffectiveProfile]()
	if rdb != nil {
		profileCache = cache.NewRedis[id.ProfileID, *models.EffectiveProfile](rdb, cfg.Cache.KeyPrefix)
	}
	cached, err := cache.NewCachedResolver(base, profileCache,
		cache.WithTTL(cfg.Cache.EffectiveProfileTTL),
		cache.WithLogger(log),
		cache.WithMetrics(profileMetrics),
		cache.WithBreaker(circuit.New("effective_profile_cache", circuit.WithCooldown(cfg.Cache.BreakerCooldown))),
	)
	if err != nil {
		return err
	}
	svc, err := service.New(records, cached, evaluator,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	var limitStore ratelimit.Store = ratelimit.NewInMemoryStore()
	if rdb != nil {
		limitStore = ratelimit.NewRedisStore(rdb, "personas:rl:")
	}
	limiter := ratelimit.NewMiddleware(limitStore, cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
	router := newRouter(cfg, log, reg, records, svc, tokens, limiter, health(db, rdb))
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	g.Go(func() error {
		err := audit.NewWorker(auditSink, queue.Inbox(), log).Run(workerCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("starting personas", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		stopWorker()
		return err
	})
	err = g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if closeErr := closeSink(closeCtx); closeErr != nil {
		log.Warn("audit sink close failed", "error", closeErr)
	}
	return err
}

func buildStore(ctx context.Context, db *sqlx.DB, log *slog.Logger) (recordStore, error) {
	if db == nil {
		log.Warn("DATABASE_URL not set, profiles are kept in memory")
		return store.NewInMemory(), nil
	}
	pg := store.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pg, nil
}

func buildAuditSink(cfg config.Audit, log *slog.Logger) (audit.Store, func(context.Context) error, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return audit.NewLogStore(log), func(context.Context) error { return nil }, nil
	}
	kafka, err := audit.NewKafkaStore(cfg.KafkaBrokers, cfg.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("audit kafka: %w", err)
	}
	return kafka, kafka.Close, nil
}

func health(db *sqlx.DB, rdb *redisclient.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				status["postgres"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				status["redis"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		if code != http.StatusOK {
			status["status"] = "degraded"
		}
		httputil.WriteJSON(w, code, status)
	}
}

func newRouter(
	cfg *config.Config,
	log *slog.Logger,
	reg *prometheus.Registry,
	records recordStore,
	svc *service.Service,
	tokens *jwttoken.Service,
	limiter *ratelimit.Middleware,
	healthz http.HandlerFunc,
) http.Handler {
	httpMetrics := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(httpMetrics.Middleware)
	r.Get("/healthz", healthz)
	r.With(admin.RequireAdminToken(cfg.Server.AdminToken, log)).
		Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(requesttime.Middleware)
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
		r.Use(auth.RequireViewer(tokens, log))
		r.Use(limiter.Handler)
		r.Use(resolver.Middleware(records))
		handler.New(svc, log).Register(r)
	})
	return r
}
