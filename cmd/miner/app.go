package main

import (
	"net/http"
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/api"
	"github.com/just-nibble/service-miner/internal/adapters/db"
	"github.com/just-nibble/service-miner/internal/adapters/storage"
	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/just-nibble/service-miner/pkg/difftool"
	"gorm.io/gorm"
)

// app holds the wired services of one invocation.
type app struct {
	db       *gorm.DB
	commits  *db.GormCommitStore
	repos    *db.GormRepositoryStore
	manager  *service.ServiceManager
	analyzer *service.Analyzer
}

func newApp() (*app, error) {
	conn, err := storage.InitDB(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	commitStore := db.NewGormCommitStore(conn)
	serviceStore := db.NewGormServiceStore(conn)
	repoStore := db.NewGormRepositoryStore(conn)
	commits := service.NewCommitService(commitStore, logger)
	manager := service.NewServiceManager(serviceStore, repoStore, db.NewGormIssueStore(conn), commits, cfg.Filter.ExcludingPatterns, logger)

	recon := service.NewReconstructor(service.NewBugFixClassifier(), service.NewIssueReferenceClassifier(), logger)
	binner := service.NewTimeBinner(serviceStore, commitStore, logger)

	return &app{
		db:       conn,
		commits:  commitStore,
		repos:    repoStore,
		manager:  manager,
		analyzer: service.NewAnalyzer(manager, binner, recon),
	}, nil
}

func (a *app) githubClient() (*api.GitHubClient, error) {
	return api.NewGitHubClient(cfg.GitHub, &http.Client{Timeout: time.Minute}, logger)
}

func (a *app) repairer(client *api.GitHubClient) *service.Repairer {
	revisions := api.NewRevisionCache(cfg.Repair.DiffDir, client, logger)
	return service.NewRepairer(a.commits, revisions, difftool.New(), cfg.Repair.SkipSuffixes, logger)
}

// indexer wires mining; repair is skipped when withRepair is false.
func (a *app) indexer(withRepair bool) (*service.Indexer, error) {
	client, err := a.githubClient()
	if err != nil {
		return nil, err
	}

	var repairer *service.Repairer
	if withRepair {
		repairer = a.repairer(client)
	}

	commits := service.NewCommitService(a.commits, logger)
	return service.NewIndexer(client, a.repos, db.NewGormUserStore(a.db), db.NewGormIssueStore(a.db),
		commits, a.manager, repairer, logger), nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
