package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"agreement-radar/config"
	"agreement-radar/logger"
	"agreement-radar/logic/chat"
	"agreement-radar/logic/ingestion/extract"
	"agreement-radar/logic/ingestion/parser"
	"agreement-radar/service"
	"agreement-radar/storage/es"
	"agreement-radar/storage/objectstore"
	"agreement-radar/storage/postgres"
)

// app holds everything the commands share.
type app struct {
	cfg  *config.Config
	log  zerolog.Logger
	db   *gorm.DB
	repo *postgres.AgreementRepo
	svc  *service.AgreementService
}

func loadBase() (*config.Config, zerolog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Environment)

	db, err := postgres.InitDB(cfg.DB, log)
	if err != nil {
		return nil, log, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, log, db, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, log, db, err := loadBase()
	if err != nil {
		return nil, err
	}
	repo := postgres.NewAgreementRepo(db)

	objects, err := objectstore.NewLocalStore(cfg.Storage.Root, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}

	textExtractor, err := parser.NewPDFTextExtractor(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("init pdf parser: %w", err)
	}

	chatModel, err := chat.CreateChatModel(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	fieldExtractor := extract.NewFieldExtractor(chatModel, cfg.LLM.Model)

	var search service.SearchIndex
	if len(cfg.Search.Addresses) > 0 {
		idx, err := es.NewESIndexer(ctx, cfg.Search.Addresses, cfg.Search.Index)
		if err != nil {
			log.Warn().Err(err).Strs("addresses", cfg.Search.Addresses).Msg("search index disabled")
		} else {
			search = idx
		}
	}

	svc := service.NewAgreementService(repo, objects, textExtractor, fieldExtractor, search, log)
	log.Info().
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Bool("search", search != nil).
		Msg("services ready")

	return &app{cfg: cfg, log: log, db: db, repo: repo, svc: svc}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
