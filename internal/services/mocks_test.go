package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/edutrial/thpt-score-service/internal/cache"
	"github.com/edutrial/thpt-score-service/internal/events"
	"github.com/edutrial/thpt-score-service/internal/models"
	"github.com/edutrial/thpt-score-service/internal/repositories"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockBatchRepository is a mock implementation of BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, tx *gorm.DB, batch *models.CalculationBatch) error {
	args := m.Called(ctx, tx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.CalculationBatch, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalculationBatch), args.Error(1)
}

func (m *MockBatchRepository) Update(ctx context.Context, tx *gorm.DB, batch *models.CalculationBatch) error {
	args := m.Called(ctx, tx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockBatchRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.BatchFilters) ([]*models.CalculationBatch, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.CalculationBatch), args.Get(1).(int64), args.Error(2)
}

func (m *MockBatchRepository) IsOwner(ctx context.Context, tx *gorm.DB, id string, ownerID string) (bool, error) {
	args := m.Called(ctx, tx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type batchFixture struct {
	repo      *MockBatchRepository
	redis     *miniredis.Miniredis
	publisher *events.MockEventPublisher
	service   BatchService
}

func newBatchFixture(t *testing.T, maxRows int) *batchFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &batchFixture{
		repo:      new(MockBatchRepository),
		redis:     mr,
		publisher: events.NewMockEventPublisher(discardLogger()),
	}
	f.service = NewBatchService(
		f.repo,
		cache.NewRedisCache(client, discardLogger()),
		f.publisher,
		NewServiceLogger(discardLogger(), "batch"),
		BatchOptions{MaxRows: maxRows, ReportTTL: time.Hour, LookupTTL: time.Minute},
	)
	return f
}
