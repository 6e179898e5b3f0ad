package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/config"
	"xfinance-dashboard/internal/database"
	"xfinance-dashboard/internal/grid"
	httpapi "xfinance-dashboard/internal/http"
	"xfinance-dashboard/internal/logger"
	"xfinance-dashboard/internal/mqtt"
	"xfinance-dashboard/internal/repository"
	"xfinance-dashboard/internal/service"
	"xfinance-dashboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "xfinance-dashboard")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync()

	// Repositories: Postgres when enabled and reachable, memory otherwise
	var (
		db          *sql.DB
		inspections repository.InspectionsRepository
		users       repository.UsersRepository
		auditRepo   repository.AuditRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for xfinance-dashboard")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory", zap.Error(err))
		}
	}
	if db != nil {
		inspections = repository.NewPostgresInspectionsRepo(db, log)
		users = repository.NewPostgresUsersRepo(db, log)
		auditRepo = repository.NewPostgresAuditRepo(db, log)
	} else {
		memUsers := repository.NewMemoryUsersRepo()
		inspections = repository.NewMemoryInspectionsRepo(memUsers)
		users = memUsers
		auditRepo = repository.NewMemoryAuditRepo()
	}
	defer database.Close(db)

	// KPI cache: Redis when reachable, otherwise every KPI call hits the repository
	var kv store.KV
	redisClient := store.NewRedisClient(&cfg.Redis)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := store.Ping(pingCtx, redisClient); err != nil {
		log.Warn("Redis unavailable, KPI cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = redisClient.Close()
	} else {
		kv = store.NewRedisKV(redisClient)
		defer redisClient.Close()
	}
	pingCancel()

	// Record-change events
	var events mqtt.Publisher = mqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Warn("MQTT unavailable, record-change events disabled", zap.Error(err))
		} else {
			events = mqtt.NewEventPublisher(client, cfg.MQTT.Topic, cfg.MQTT.QoS, log)
			defer client.Disconnect()
		}
	}

	clock := alerts.SystemClock{}
	audit := service.NewAuditService(auditRepo, clock, log)
	kpis := service.NewKPIService(inspections, kv, cfg.KPI.CacheTTL, log)
	inspSvc := service.NewInspectionService(inspections, audit, kpis, events, clock, log)
	actions := service.NewActionService(inspections, users, audit, kpis, events, clock, log)
	lookups := service.NewLookupService(users, log)
	projector := grid.NewProjector(alerts.NewEvaluator(clock), cfg.Grid.PageSize)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterInspectionRoutes(httpapi.NewInspectionsHandler(inspSvc, audit, projector, log))
	router.RegisterAcoesRoutes(httpapi.NewAcoesHandler(actions, log))
	router.RegisterLookupRoutes(httpapi.NewLookupsHandler(lookups, kpis, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// audit retention
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			if _, err := audit.Purge(ctx); err != nil {
				log.Warn("Audit purge failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop HTTP server", zap.Error(err))
	}
}
