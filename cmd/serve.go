package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/shenikar/crowd_safety_engine/internal/adapter"
	"github.com/shenikar/crowd_safety_engine/internal/attachment"
	"github.com/shenikar/crowd_safety_engine/internal/config"
	"github.com/shenikar/crowd_safety_engine/internal/detector"
	"github.com/shenikar/crowd_safety_engine/internal/fanout"
	v1 "github.com/shenikar/crowd_safety_engine/internal/handler/http/v1"
	"github.com/shenikar/crowd_safety_engine/internal/health"
	"github.com/shenikar/crowd_safety_engine/internal/lifecycle"
	"github.com/shenikar/crowd_safety_engine/internal/repository"
	"github.com/shenikar/crowd_safety_engine/internal/service"
	"github.com/shenikar/crowd_safety_engine/internal/store"
	"github.com/shenikar/crowd_safety_engine/internal/webhook"
	"github.com/shenikar/crowd_safety_engine/pkg/logger"
	"github.com/shenikar/crowd_safety_engine/pkg/postgres"
	redisclient "github.com/shenikar/crowd_safety_engine/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/crowd_safety_engine/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func runServe() error {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// PostgreSQL необязателен: без него движок работает только в памяти
	var (
		persister    store.Persister
		incidentRepo service.IncidentRepository
		auditTrail   service.AuditTrail
		probes       []health.Probe
	)
	if cfg.DatabaseURL != "" {
		if err := runMigrations(cfg.DatabaseURL, "migrations", log); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")

		repo := repository.NewIncidentRepository(dbpool, redisClient)
		persister = repo
		incidentRepo = repo
		auditTrail = repository.NewAuditRepository(dbpool)
		probes = append(probes, health.NewPingProbe(health.SubsystemStorageProvider, dbpool.Ping))
	} else {
		log.Warn("DATABASE_URL is not set, incidents are kept in memory only")
	}

	// Ядро: хранилище, рассылка, жизненный цикл, адаптер сигналов
	incidentStore := store.New(log, cfg.DedupWindow, persister)
	incidentStore.Start(ctx)
	restored, err := incidentStore.Recover(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover open incidents: %w", err)
	}
	log.WithField("restored", restored).Info("Open incidents recovered")

	broker := fanout.NewBroker(cfg.FanoutQueueSize, log)
	engine := lifecycle.NewEngine(incidentStore, broker, cfg.AckSLA, log)
	signalAdapter := adapter.New(engine, incidentStore, log)

	// Внешние детекторы
	crowdClient := detector.NewClient(health.SubsystemCrowdDetector, cfg.CrowdDetectorURL, cfg.DetectorTimeout)
	faceClient := detector.NewClient(health.SubsystemFaceMatcher, cfg.FaceMatcherURL, cfg.DetectorTimeout)
	anomalyClient := detector.NewClient(health.SubsystemAnomalyDetector, cfg.AnomalyDetectorURL, cfg.DetectorTimeout)
	runner := detector.NewRunner(crowdClient, faceClient, anomalyClient, signalAdapter, cfg.CrowdCountThreshold, log)

	// Вебхуки полевым командам
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)
	relay := webhook.NewRelay(broker, webhookPublisher, log)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(ctx)
	}()

	// Проверки подсистем
	probeClient := &http.Client{Timeout: cfg.ProbeTimeout}
	for name, url := range map[string]string{
		health.SubsystemCrowdDetector:      cfg.CrowdDetectorURL,
		health.SubsystemFaceMatcher:        cfg.FaceMatcherURL,
		health.SubsystemAnomalyDetector:    cfg.AnomalyDetectorURL,
		health.SubsystemNavigationProvider: cfg.NavigationProviderURL,
	} {
		if url != "" {
			probes = append(probes, health.NewHTTPProbe(name, url, probeClient))
		}
	}
	probes = append(probes, health.NewPingProbe(health.SubsystemWebhookQueue, webhookPublisher.Ping))
	aggregator := health.NewAggregator(incidentStore, cfg.ProbeTimeout, cfg.OpenIncidentAlarm, log, probes...)

	if cfg.ProbesFile != "" {
		loader, err := health.NewLoader(cfg.ProbesFile, probeClient, log)
		if err != nil {
			return fmt.Errorf("failed to load probes file: %w", err)
		}
		loader.OnChange(aggregator.SetProbes)
		if _, err := loader.Reload(); err != nil {
			return fmt.Errorf("failed to load probes file: %w", err)
		}
		stopWatch, err := loader.Watch()
		if err != nil {
			return fmt.Errorf("failed to watch probes file: %w", err)
		}
		defer stopWatch()
	}

	// Плановые задачи: истечение SLA, вытеснение закрытых, обновление среза
	scheduler, err := newScheduler(ctx, cfg, engine, incidentStore, aggregator, log)
	if err != nil {
		return err
	}
	scheduler.Start()

	// Инициализация сервисов
	incidentService := service.NewIncidentService(service.Deps{
		Store:       incidentStore,
		Engine:      engine,
		Adapter:     signalAdapter,
		Broker:      broker,
		Health:      aggregator,
		Detectors:   runner,
		Repo:        incidentRepo,
		Audit:       auditTrail,
		Attachments: attachment.NewStore(redisClient, cfg.AttachmentTTL, cfg.AttachmentMaxSize),
	}, log)

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("Received shutdown signal, shutting down server...")
	case err := <-serverErr:
		log.WithError(err).Error("HTTP server failed")
	}

	// Закрытие рассылки завершает SSE-потоки, иначе Shutdown ждет их до таймаута
	broker.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	<-scheduler.Stop().Done()
	cancel()
	<-relayDone
	webhookWorker.Wait()
	incidentStore.Wait()

	log.Info("Server gracefully stopped")
	return nil
}

// newScheduler регистрирует фоновые задачи обслуживания
func newScheduler(
	ctx context.Context,
	cfg *config.Config,
	engine *lifecycle.Engine,
	incidentStore *store.Store,
	aggregator *health.Aggregator,
	log *logrus.Logger,
) (*cron.Cron, error) {
	scheduler := cron.New()
	jobLog := log.WithField("component", "scheduler")

	_, err := scheduler.AddFunc(cfg.MaintenanceSchedule, func() {
		expired, err := engine.ExpireOverdue(ctx)
		if err != nil {
			jobLog.WithError(err).Error("SLA sweep failed")
		}
		evicted := incidentStore.Evict(engine.Now(), cfg.RetentionHorizon)
		if expired > 0 || evicted > 0 {
			jobLog.WithFields(logrus.Fields{
				"expired": expired,
				"evicted": evicted,
			}).Info("Maintenance sweep completed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid MAINTENANCE_SCHEDULE %q: %w", cfg.MaintenanceSchedule, err)
	}

	if cfg.HealthRefreshInterval > 0 {
		_, err = scheduler.AddFunc("@every "+cfg.HealthRefreshInterval.String(), func() {
			snapshot := aggregator.Refresh(ctx)
			if snapshot.Degraded {
				jobLog.WithField("open", snapshot.Incidents.Open).Warn("System health degraded")
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid HEALTH_REFRESH_INTERVAL: %w", err)
		}
	}
	return scheduler, nil
}
