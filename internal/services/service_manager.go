package services

import (
	"log/slog"

	"github.com/edutrial/thpt-score-service/internal/cache"
	"github.com/edutrial/thpt-score-service/internal/events"
	"github.com/edutrial/thpt-score-service/internal/repositories"
)

// ServiceManager exposes every service to the handler layer
type ServiceManager interface {
	Graduation() GraduationService
	Batch() BatchService
}

type serviceManager struct {
	graduation GraduationService
	batch      BatchService
}

func NewServiceManager(
	batchRepo repositories.BatchRepository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	opts BatchOptions,
) ServiceManager {
	return &serviceManager{
		graduation: NewGraduationService(NewServiceLogger(logger, "graduation")),
		batch:      NewBatchService(batchRepo, cacheService, publisher, NewServiceLogger(logger, "batch"), opts),
	}
}

func (m *serviceManager) Graduation() GraduationService { return m.graduation }
func (m *serviceManager) Batch() BatchService           { return m.batch }
