package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/edutrial/thpt-score-service/internal/models"
	"gorm.io/gorm"
)

// BatchFilters narrows a batch listing
type BatchFilters struct {
	OwnerID   string              `json:"owner_id"`
	Status    *models.BatchStatus `json:"status"`
	DateFrom  *time.Time          `json:"date_from"`
	DateTo    *time.Time          `json:"date_to"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at", "total_rows", "file_name"
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}

// BatchRepository persists calculation batches
type BatchRepository interface {
	Create(ctx context.Context, tx *gorm.DB, batch *models.CalculationBatch) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.CalculationBatch, error)
	Update(ctx context.Context, tx *gorm.DB, batch *models.CalculationBatch) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error // Soft delete

	List(ctx context.Context, tx *gorm.DB, filters BatchFilters) ([]*models.CalculationBatch, int64, error)
	IsOwner(ctx context.Context, tx *gorm.DB, id string, ownerID string) (bool, error)

	// Ping reports whether the underlying database answers
	Ping(ctx context.Context) error
}

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
