package container

import (
	"github.com/pagehub/contentd/cmd/contentd/dedup"
	"github.com/pagehub/contentd/cmd/contentd/repository"
	"github.com/pagehub/contentd/cmd/contentd/service"
	"github.com/pagehub/contentd/common/bootstrap"
)

// Container holds all initialized repositories and services
// (singleton pattern, created once at startup)
type Container struct {
	Components *bootstrap.Components

	// Repositories
	PageRepo    *repository.PageRepository
	ContentRepo *repository.ContentRepository
	RecordStore *repository.RecordStore

	// Dedup engine
	HashStore      *dedup.HashStore
	DuplicateIndex *dedup.DuplicateIndex

	// Services
	PageService    *service.PageService
	CounterService *service.CounterService
	UploadService  *service.UploadService
}

// NewContainer initializes all repositories and services once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	// Repositories
	pageRepo := repository.NewPageRepository(components.DB)
	contentRepo := repository.NewContentRepository(components.DB)
	recordStore := repository.NewRecordStore(components.DB)

	// Dedup engine (content repo doubles as the record-scan tier)
	hashStore := dedup.NewHashStore(components.Config.Media.ChunkSize)
	duplicateIndex := dedup.NewDuplicateIndex(
		hashStore,
		contentRepo,
		components.Config.Media.Root,
		components.Logger,
	)

	// Services (bottom-up: dependencies first)
	pageService := service.NewPageService(
		pageRepo,
		contentRepo,
		components.Cache,
		components.Queue,
		components.Config.Cache.PageTTL,
		components.Logger,
	)
	counterService := service.NewCounterService(contentRepo, components.Logger)
	uploadService := service.NewUploadService(
		hashStore,
		duplicateIndex,
		recordStore,
		components.Config.Media.Root,
		components.Logger,
	)

	return &Container{
		Components:     components,
		PageRepo:       pageRepo,
		ContentRepo:    contentRepo,
		RecordStore:    recordStore,
		HashStore:      hashStore,
		DuplicateIndex: duplicateIndex,
		PageService:    pageService,
		CounterService: counterService,
		UploadService:  uploadService,
	}, nil
}
