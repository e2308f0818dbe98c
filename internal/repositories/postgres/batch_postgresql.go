package postgres

import (
	"context"
	"fmt"

	"github.com/edutrial/thpt-score-service/internal/models"
	"github.com/edutrial/thpt-score-service/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var sortableColumns = map[string]string{
	"created_at": "created_at",
	"total_rows": "total_rows",
	"file_name":  "file_name",
}

type BatchPostgreSQL struct {
	db *gorm.DB
}

func NewBatchPostgreSQL(db *gorm.DB) repositories.BatchRepository {
	return &BatchPostgreSQL{db: db}
}

func (b *BatchPostgreSQL) Create(ctx context.Context, tx *gorm.DB, batch *models.CalculationBatch) error {
	db := b.getDB(tx)
	if err := db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

func (b *BatchPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.CalculationBatch, error) {
	db := b.getDB(tx)
	var batch models.CalculationBatch
	if err := db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (b *BatchPostgreSQL) Update(ctx context.Context, tx *gorm.DB, batch *models.CalculationBatch) error {
	db := b.getDB(tx)
	return db.WithContext(ctx).Save(batch).Error
}

func (b *BatchPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := b.getDB(tx)
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&models.CalculationBatch{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of batches and the total matching count
func (b *BatchPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.BatchFilters) ([]*models.CalculationBatch, int64, error) {
	query := b.applyFilters(b.getDB(tx).WithContext(ctx).Model(&models.CalculationBatch{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batches []*models.CalculationBatch
	// Row results can be large; listings only need the counts
	err := b.applyPaginationAndSort(query, filters).
		Omit("results").
		Find(&batches).Error
	if err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

func (b *BatchPostgreSQL) IsOwner(ctx context.Context, tx *gorm.DB, id string, ownerID string) (bool, error) {
	db := b.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.CalculationBatch{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Count(&count).Error
	return count > 0, err
}

func (b *BatchPostgreSQL) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *BatchPostgreSQL) applyFilters(query *gorm.DB, filters repositories.BatchFilters) *gorm.DB {
	if filters.OwnerID != "" {
		query = query.Where("owner_id = ?", filters.OwnerID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (b *BatchPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.BatchFilters) *gorm.DB {
	column, ok := sortableColumns[filters.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	return query.Order(column + " " + order).Limit(limit).Offset(offset)
}

func (b *BatchPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return b.db
}
