package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/simaogato/mutualfund-backend/internal/adapter/feed"
	grpcadapter "github.com/simaogato/mutualfund-backend/internal/adapter/grpc"
	"github.com/simaogato/mutualfund-backend/internal/adapter/httpapi"
	"github.com/simaogato/mutualfund-backend/internal/adapter/lock"
	"github.com/simaogato/mutualfund-backend/internal/adapter/repository/memory"
	"github.com/simaogato/mutualfund-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/mutualfund-backend/internal/config"
	"github.com/simaogato/mutualfund-backend/internal/domain"
	"github.com/simaogato/mutualfund-backend/internal/logger"
	"github.com/simaogato/mutualfund-backend/internal/metrics"
	"github.com/simaogato/mutualfund-backend/internal/scheduler"
	"github.com/simaogato/mutualfund-backend/internal/usecase/catalog"
	"github.com/simaogato/mutualfund-backend/internal/usecase/importer"
	"github.com/simaogato/mutualfund-backend/internal/usecase/portfolio"
	"github.com/simaogato/mutualfund-backend/internal/usecase/reconcile"
	"github.com/simaogato/mutualfund-backend/internal/usecase/revaluation"
)

// repositories groups the store implementations selected at startup
type repositories struct {
	fundHouses domain.FundHouseRepository
	schemes    domain.SchemeRepository
	navs       domain.NAVRepository
	portfolios domain.PortfolioRepository
	tasks      domain.PeriodicTaskRepository
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	envOnly := flag.Bool("env-only", false, "ignore the config file and read only defaults and environment")
	syncOnce := flag.Bool("sync-once", false, "run one NAV sync and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envOnly)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Setup store
	var (
		repos repositories
		db    *postgres.DB
	)
	if cfg.DB.DSN == "" {
		zl.Warn("no database configured, using in-memory store")
		store := memory.NewStore()
		repos = repositories{
			fundHouses: store.FundHouses(),
			schemes:    store.Schemes(),
			navs:       store.NAVs(),
			portfolios: store.Portfolios(),
			tasks:      store.PeriodicTasks(),
		}
	} else {
		db, err = postgres.NewDB(cfg.DB.DSN, postgres.PoolConfig{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
		})
		if err != nil {
			zl.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close()

		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				zl.Fatal("auto-migrate failed", zap.Error(err))
			}
		}
		repos = repositories{
			fundHouses: postgres.NewFundHouseRepository(db),
			schemes:    postgres.NewSchemeRepository(db),
			navs:       postgres.NewNAVRepository(db),
			portfolios: postgres.NewPortfolioRepository(db),
			tasks:      postgres.NewPeriodicTaskRepository(db),
		}
	}

	// 2. Initialize services
	feedClient := feed.NewClient(nil, feed.Config{
		Host:    cfg.Feed.Host,
		BaseURL: cfg.Feed.BaseURL,
		APIKey:  cfg.Feed.APIKey,
		Timeout: cfg.Feed.Timeout,
	})
	if cfg.Feed.APIKey == "" {
		zl.Warn("feed api key is empty; snapshot fetches will likely be rejected")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	revaluator := revaluation.NewService(repos.portfolios, repos.navs, zl.Named("revaluation"))
	syncService := reconcile.NewService(feedClient, repos.schemes, repos.navs, revaluator, zl.Named("nav_sync"))
	syncService.Workers = cfg.Sync.Workers
	syncService.Metrics = metrics.NewSync(reg)
	syncService.Locker = newLocker(ctx, cfg, zl)

	catalogService := catalog.NewCatalogService(repos.fundHouses, repos.schemes)
	portfolioService := portfolio.NewPortfolioService(repos.portfolios, repos.schemes, revaluator)
	catalogImporter := importer.NewImporter(feedClient, repos.fundHouses, repos.schemes, zl.Named("importer"))

	if *syncOnce {
		syncService.RunScheduled(ctx)
		return
	}

	// 3. Register and schedule periodic tasks
	if cfg.Sync.Enabled {
		navSync := &domain.PeriodicTask{
			Name:     cfg.Sync.TaskName,
			Task:     scheduler.NAVSyncTask,
			Interval: cfg.Sync.Interval,
			Enabled:  true,
		}
		if err := scheduler.Register(ctx, repos.tasks, navSync, zl); err != nil {
			zl.Warn("task registration failed", zap.Error(err))
		}

		runner := scheduler.NewRunner(zl.Named("cron"), ctx)
		jobs := map[string]scheduler.Job{scheduler.NAVSyncTask: syncService.RunScheduled}
		if _, err := scheduler.Schedule(ctx, runner, repos.tasks, jobs, []*domain.PeriodicTask{navSync}, zl); err != nil {
			zl.Fatal("failed to schedule tasks", zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	// 4. Start gRPC server
	grpcServer := grpclib.NewServer(
		grpclib.UnaryInterceptor(grpcadapter.AuthInterceptor(cfg.GRPC.APIToken)),
	)
	grpcadapter.RegisterMutualFundServiceServer(grpcServer, grpcadapter.NewServer(catalogService, portfolioService, catalogImporter))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		zl.Fatal("grpc listen failed", zap.String("addr", cfg.GRPC.Addr), zap.Error(err))
	}
	go func() {
		zl.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcServer.Serve(lis); err != nil {
			zl.Error("gRPC server stopped", zap.Error(err))
			stop()
		}
	}()

	// 5. Start ops HTTP server
	var pinger httpapi.Pinger
	if db != nil {
		pinger = db
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewEngine(strings.EqualFold(cfg.App.Env, "dev"), pinger, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zl.Info("ops HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("ops HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	zl.Info("shutting down")

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Warn("ops HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	zl.Info("gRPC server stopped")
}

// newLocker picks the shared Redis lease when configured, otherwise an in-process lock
func newLocker(ctx context.Context, cfg config.Config, zl *zap.Logger) lock.Locker {
	if cfg.Redis.Addr == "" {
		return lock.NewLocal()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zl.Warn("redis unreachable, falling back to in-process lock", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return lock.NewLocal()
	}

	return lock.NewRedis(client, cfg.Sync.LeaseKey, cfg.Sync.LeaseTTL)
}
