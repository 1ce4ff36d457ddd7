package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader/internal/archive"
	"github.com/noah-isme/gema-grader/internal/config"
	"github.com/noah-isme/gema-grader/internal/database"
	"github.com/noah-isme/gema-grader/internal/gateway"
	"github.com/noah-isme/gema-grader/internal/repository"
	"github.com/noah-isme/gema-grader/internal/service"
	"github.com/noah-isme/gema-grader/internal/storage"
)

// app holds the services a command needs. It is built once per invocation.
type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	validate *validator.Validate

	grading service.GradingService
	rubric  service.RubricService
	samples service.SampleService
	export  service.ExportService
	results service.ResultService
	scores  service.ScoreService
	saver   *storage.DiskSaver

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, downloadDir string) (*app, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(cfg.LogLevel).With().Timestamp().Logger()

	gw, err := gateway.New(gateway.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.AppName,
	}, nil, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, validate: service.NewValidator()}

	store, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	if downloadDir == "" {
		downloadDir = cfg.DownloadDir
	}
	saver, err := storage.NewDiskSaver(downloadDir, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	results, err := service.NewResultService(store, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	a.grading = service.NewGradingService(gw, a.validate, logger)
	a.rubric = service.NewRubricService(gw, a.validate, logger)
	a.samples = service.NewSampleService(gw, archive.NewExtractor(cfg.MaxArchiveEntry, logger), logger)
	a.export = service.NewExportService(gw, saver, logger)
	a.results = results
	a.scores = service.NewScoreService(gw, logger)
	a.saver = saver

	logger.Debug().Str("api_url", gw.BaseURL()).Str("store", cfg.StoreDriver).Msg("grader client ready")
	return a, nil
}

func (a *app) openStore(ctx context.Context) (repository.ResultStore, error) {
	switch a.cfg.StoreDriver {
	case config.StoreMemory:
		return repository.NewMemoryResultStore(), nil
	case config.StoreRedis:
		client, err := database.ConnectRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return repository.NewRedisResultStore(client, "grader:", 0), nil
	case config.StoreSQLite, config.StorePostgres:
		db, err := database.OpenResultDB(a.cfg.StoreDriver, a.cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("result store handle: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)
		return repository.NewGormResultStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", a.cfg.StoreDriver)
	}
}

func (a *app) close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close resource")
		}
	}
	a.closers = nil
}
