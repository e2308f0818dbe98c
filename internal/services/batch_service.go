package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/edutrial/thpt-score-service/internal/cache"
	"github.com/edutrial/thpt-score-service/internal/events"
	"github.com/edutrial/thpt-score-service/internal/graduation"
	"github.com/edutrial/thpt-score-service/internal/models"
	"github.com/edutrial/thpt-score-service/internal/repositories"
	"github.com/google/uuid"
)

// BatchService scores uploaded spreadsheets of candidates and serves their reports
type BatchService interface {
	Process(ctx context.Context, upload BatchUpload) (*models.CalculationBatch, error)
	Get(ctx context.Context, id, userID string) (*models.CalculationBatch, error)
	List(ctx context.Context, userID string, filters repositories.BatchFilters) ([]*models.CalculationBatch, int64, error)
	Results(ctx context.Context, id, userID string) ([]models.BatchRowResult, error)
	Report(ctx context.Context, id, userID, format string) (*Report, error)
	Delete(ctx context.Context, id, userID string) error
}

// BatchUpload is an uploaded spreadsheet
type BatchUpload struct {
	OwnerID  string
	FileName string
	Size     int64
	Label    string
	Content  io.Reader
}

// Report is a generated result file
type Report struct {
	FileName    string
	ContentType string
	Data        []byte
}

// BatchOptions bounds processing and cache lifetimes
type BatchOptions struct {
	MaxRows   int
	ReportTTL time.Duration
	LookupTTL time.Duration
}

var reportContentTypes = map[string]string{
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeCSV:  "text/csv; charset=utf-8",
}

type batchService struct {
	repo      repositories.BatchRepository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *ServiceLogger
	opts      BatchOptions
	now       func() time.Time
}

func NewBatchService(repo repositories.BatchRepository, cacheService cache.CacheService, publisher events.EventPublisher, logger *ServiceLogger, opts BatchOptions) BatchService {
	return &batchService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// ===== PROCESSING =====

func (s *batchService) Process(ctx context.Context, upload BatchUpload) (batch *models.CalculationBatch, err error) {
	op := s.logger.WithOperation(ctx, "process_batch", upload.OwnerID)
	defer func() {
		id := ""
		if batch != nil {
			id = batch.ID
		}
		op.LogResult(id, err)
	}()

	fileType, err := fileTypeOf(upload.FileName)
	if err != nil {
		return nil, err
	}

	startedAt := s.now()
	batch = &models.CalculationBatch{
		ID:        uuid.NewString(),
		OwnerID:   upload.OwnerID,
		Label:     upload.Label,
		FileName:  upload.FileName,
		FileType:  fileType,
		FileSize:  upload.Size,
		Status:    models.BatchProcessing,
		StartedAt: &startedAt,
	}
	if err := s.repo.Create(ctx, nil, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	rows, err := s.readRows(fileType, upload.Content)
	if err != nil {
		s.fail(ctx, batch, err)
		return batch, err
	}

	results, importErrors := scoreRows(rows)
	if err := s.complete(batch, results, importErrors, startedAt); err != nil {
		return batch, err
	}
	if err := s.repo.Update(ctx, nil, batch); err != nil {
		return batch, fmt.Errorf("failed to save batch: %w", err)
	}

	s.cacheReports(ctx, batch.ID, results)
	s.cacheBatch(ctx, batch)
	s.publish(ctx, events.NewBatchCompletedEvent(events.BatchCompletedEvent{
		BatchID:           batch.ID,
		OwnerID:           batch.OwnerID,
		FileName:          batch.FileName,
		TotalRows:         batch.TotalRows,
		PassedCount:       batch.PassedCount,
		BelowThreshold:    batch.BelowThresholdCount,
		DisqualifiedCount: batch.DisqualifiedCount,
		InvalidCount:      batch.InvalidCount,
		AverageScore:      batch.AverageScore,
		CompletedAt:       *batch.CompletedAt,
	}))

	return batch, nil
}

func (s *batchService) readRows(fileType string, content io.Reader) ([]sheetRow, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: empty upload", ErrBadRequest)
	}
	records, err := readSheet(fileType, content)
	if err != nil {
		return nil, err
	}
	return parseRecords(records, s.opts.MaxRows)
}

// scoreRows computes every row independently. Invalid rows yield one import error per violation.
func scoreRows(rows []sheetRow) ([]models.BatchRowResult, []models.ImportValidationError) {
	results := make([]models.BatchRowResult, 0, len(rows))
	var importErrors []models.ImportValidationError

	for _, row := range rows {
		in := row.toInput()
		outcome := graduation.Compute(in)
		presented := graduation.Present(outcome)

		result := models.BatchRowResult{
			Row:           row.number,
			StudentID:     row.get(ColumnStudentID),
			FullName:      row.get(ColumnFullName),
			ElectiveGroup: string(in.ElectiveGroup),
			Verdict:       string(presented.Verdict),
			Score:         presented.Score,
			Reason:        presented.Reason,
			Errors:        presented.Errors,
		}
		results = append(results, result)

		if invalid, ok := outcome.(graduation.Invalid); ok {
			for _, ve := range invalid.Validation.Errors {
				importErrors = append(importErrors, models.ImportValidationError{
					Row:     row.number,
					Column:  ve.Field,
					Message: ve.Message,
					Value:   fmt.Sprint(ve.Value),
					Code:    ve.Rule,
				})
			}
		}
	}
	return results, importErrors
}

// complete fills counts, summary and status from the row results
func (s *batchService) complete(batch *models.CalculationBatch, results []models.BatchRowResult, importErrors []models.ImportValidationError, startedAt time.Time) error {
	summary := models.BatchSummary{GroupCounts: map[string]int{}}
	var total float64
	scored := 0

	for _, r := range results {
		switch graduation.Verdict(r.Verdict) {
		case graduation.VerdictPassed:
			batch.PassedCount++
		case graduation.VerdictBelowThreshold:
			batch.BelowThresholdCount++
		case graduation.VerdictDisqualified:
			batch.DisqualifiedCount++
		case graduation.VerdictInvalid:
			batch.InvalidCount++
		}
		if r.ElectiveGroup != "" {
			summary.GroupCounts[r.ElectiveGroup]++
		}

		if r.Score == nil {
			continue
		}
		score := *r.Score
		scored++
		total += score
		if summary.HighestScore == nil || score > *summary.HighestScore {
			summary.HighestScore = &score
		}
		if summary.LowestScore == nil || score < *summary.LowestScore {
			summary.LowestScore = &score
		}
	}

	batch.TotalRows = len(results)
	if scored > 0 {
		average := graduation.RoundScore(total / float64(scored))
		batch.AverageScore = &average
	}
	// disqualified candidates did not graduate, so they count against the rate
	if candidates := scored + batch.DisqualifiedCount; candidates > 0 {
		summary.PassRate = graduation.RoundScore(float64(batch.PassedCount) * 100 / float64(candidates))
	}

	completedAt := s.now()
	summary.ProcessingTime = completedAt.Sub(startedAt)
	batch.CompletedAt = &completedAt
	batch.Status = models.BatchCompleted

	if err := batch.SetResults(results); err != nil {
		return fmt.Errorf("failed to encode batch results: %w", err)
	}
	if err := batch.SetErrors(importErrors); err != nil {
		return fmt.Errorf("failed to encode batch errors: %w", err)
	}
	if err := batch.SetSummary(summary); err != nil {
		return fmt.Errorf("failed to encode batch summary: %w", err)
	}
	return nil
}

// fail records why a file could not be processed. The original error is still returned to the caller.
func (s *batchService) fail(ctx context.Context, batch *models.CalculationBatch, cause error) {
	completedAt := s.now()
	batch.Status = models.BatchFailed
	batch.FailureReason = cause.Error()
	batch.CompletedAt = &completedAt

	if err := s.repo.Update(ctx, nil, batch); err != nil {
		s.logger.Warn(ctx, "Failed to record batch failure", "batch_id", batch.ID, "error", err)
	}
	s.publish(ctx, events.NewBatchFailedEvent(events.BatchFailedEvent{
		BatchID:  batch.ID,
		OwnerID:  batch.OwnerID,
		FileName: batch.FileName,
		Reason:   batch.FailureReason,
		FailedAt: completedAt,
	}))
}

// ===== QUERIES =====

func (s *batchService) Get(ctx context.Context, id, userID string) (*models.CalculationBatch, error) {
	var cached models.CalculationBatch
	err := s.cache.Get(ctx, cache.BatchKey(id), &cached)
	if err == nil {
		if err := s.checkOwner(&cached, userID); err != nil {
			return nil, err
		}
		return &cached, nil
	}
	if !cache.IsMiss(err) {
		s.logger.Warn(ctx, "Batch cache unavailable, reading from database", "batch_id", id, "error", err)
	}

	batch, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.cacheBatch(ctx, batch)
	return batch, nil
}

func (s *batchService) List(ctx context.Context, userID string, filters repositories.BatchFilters) ([]*models.CalculationBatch, int64, error) {
	filters.OwnerID = userID
	batches, total, err := s.repo.List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, total, nil
}

// Results returns the per-row outcomes of a batch
func (s *batchService) Results(ctx context.Context, id, userID string) ([]models.BatchRowResult, error) {
	batch, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	results, err := batch.GetResults()
	if err != nil {
		return nil, fmt.Errorf("failed to decode batch results: %w", err)
	}
	return results, nil
}

// Report serves the cached report file, rebuilding it from stored results after expiry
func (s *batchService) Report(ctx context.Context, id, userID, format string) (*Report, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = FileTypeXLSX
	}
	contentType, ok := reportContentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrReportFormat, format)
	}

	batch, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if batch.Status != models.BatchCompleted {
		return nil, ErrReportUnavailable
	}

	report := &Report{
		FileName:    fmt.Sprintf("ket-qua-%s.%s", id, format),
		ContentType: contentType,
	}

	data, err := s.cache.GetBytes(ctx, cache.ReportKey(id, format))
	if err == nil {
		report.Data = data
		return report, nil
	}

	results, err := s.Results(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if report.Data, err = buildReport(format, results); err != nil {
		return nil, err
	}
	if err := s.cache.SetBytes(ctx, cache.ReportKey(id, format), report.Data, s.opts.ReportTTL); err != nil {
		s.logger.Warn(ctx, "Failed to cache report", "batch_id", id, "format", format, "error", err)
	}
	return report, nil
}

func (s *batchService) Delete(ctx context.Context, id, userID string) (err error) {
	op := s.logger.WithOperation(ctx, "delete_batch", userID)
	defer func() { op.LogResult(id, err) }()

	if _, err = s.load(ctx, id, userID); err != nil {
		return err
	}
	if err = s.repo.Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrBatchNotFound
		}
		return fmt.Errorf("failed to delete batch: %w", err)
	}

	if err := s.cache.Delete(ctx, cache.BatchKey(id)); err != nil {
		s.logger.Warn(ctx, "Failed to evict batch", "batch_id", id, "error", err)
	}
	if err := s.cache.DeletePattern(ctx, cache.ReportPattern(id)); err != nil {
		s.logger.Warn(ctx, "Failed to evict reports", "batch_id", id, "error", err)
	}
	return nil
}

// ===== HELPERS =====

// load reads the full batch, results included, from the database
func (s *batchService) load(ctx context.Context, id, userID string) (*models.CalculationBatch, error) {
	batch, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	if err := s.checkOwner(batch, userID); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *batchService) checkOwner(batch *models.CalculationBatch, userID string) error {
	if batch.OwnerID != userID {
		return NewPermissionError(userID, batch.ID, "batch", "read", "not owner")
	}
	return nil
}

func (s *batchService) cacheBatch(ctx context.Context, batch *models.CalculationBatch) {
	if err := s.cache.Set(ctx, cache.BatchKey(batch.ID), batch, s.opts.LookupTTL); err != nil {
		s.logger.Warn(ctx, "Failed to cache batch", "batch_id", batch.ID, "error", err)
	}
}

func (s *batchService) cacheReports(ctx context.Context, id string, results []models.BatchRowResult) {
	for format := range reportContentTypes {
		data, err := buildReport(format, results)
		if err == nil {
			err = s.cache.SetBytes(ctx, cache.ReportKey(id, format), data, s.opts.ReportTTL)
		}
		if err != nil {
			s.logger.Warn(ctx, "Failed to cache report", "batch_id", id, "format", format, "error", err)
		}
	}
}

func (s *batchService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func buildReport(format string, results []models.BatchRowResult) ([]byte, error) {
	switch format {
	case FileTypeCSV:
		return buildCSVReport(results)
	case FileTypeXLSX:
		return buildXLSXReport(results)
	}
	return nil, fmt.Errorf("%w: %q", ErrReportFormat, format)
}
