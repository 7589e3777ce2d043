package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yukikurage/society-committee-api/internal/cache"
	"github.com/yukikurage/society-committee-api/internal/config"
	"github.com/yukikurage/society-committee-api/internal/constants"
	"github.com/yukikurage/society-committee-api/internal/database"
	"github.com/yukikurage/society-committee-api/internal/events"
	"github.com/yukikurage/society-committee-api/internal/metrics"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"github.com/yukikurage/society-committee-api/internal/services"
	"go.uber.org/zap"
)

// app holds the wired services shared by every command.
type app struct {
	cfg          *config.Config
	logger       *zap.Logger
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	redis        *cache.RedisCache
	publisher    events.Publisher
	store        repository.Store
	committee    *services.CommitteeService
	tenure       *services.TenureService
	archive      *services.ArchiveService
	designations *services.DesignationService
	seed         *services.SeedService
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	database.SetLogger(logger.Named("database"))
	if err := database.Connect(cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		store:    repository.NewStore(database.GetDB()),
	}

	var numberCache cache.NumberCache
	if cfg.UseRedisCache() {
		a.redis = cache.NewRedisCache(cache.RedisOptions{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cache.DefaultKey,
		}, logger)
		numberCache = a.redis
	} else {
		numberCache = cache.NewMemoryCache()
	}

	if cfg.AMQPURL != "" {
		publisher, err := events.NewRabbitMQPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		a.publisher = publisher
	} else {
		a.publisher = events.NopPublisher{}
	}

	m := metrics.New(a.registry)
	a.metrics = m
	numbering := services.NewNumbering(numberCache, cfg.CommitteeCacheTTL, logger)
	confirmation := cfg.ConfirmationToken
	if confirmation == "" {
		confirmation = constants.EndTenureConfirmation
	}

	a.committee = services.NewCommitteeService(a.store, numbering, a.publisher, m, logger)
	a.tenure = services.NewTenureService(a.store, numbering, a.publisher, m, logger, confirmation)
	a.archive = services.NewArchiveService(a.store)
	a.designations = services.NewDesignationService(a.store)
	a.seed = services.NewSeedService(a.store)

	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close event publisher", zap.Error(err))
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if err := database.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
