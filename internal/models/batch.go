package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// CalculationBatch is one uploaded spreadsheet of students scored together
type CalculationBatch struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"` // UUID
	OwnerID string `json:"owner_id" gorm:"not null;index;size:255"`
	Label   string `json:"label" gorm:"size:100"`

	// File info
	FileName string `json:"file_name" gorm:"not null;size:255"`
	FileType string `json:"file_type" gorm:"not null;size:10"` // xlsx, csv
	FileSize int64  `json:"file_size"`

	Status BatchStatus `json:"status" gorm:"default:pending;index;size:20"`

	// Counts
	TotalRows           int      `json:"total_rows"`
	PassedCount         int      `json:"passed_count"`
	BelowThresholdCount int      `json:"below_threshold_count"`
	DisqualifiedCount   int      `json:"disqualified_count"`
	InvalidCount        int      `json:"invalid_count"`
	AverageScore        *float64 `json:"average_score"`

	// Results
	Errors  datatypes.JSON `json:"errors" gorm:"type:jsonb"`  // []ImportValidationError
	Results datatypes.JSON `json:"-" gorm:"type:jsonb"`       // []BatchRowResult
	Summary datatypes.JSON `json:"summary" gorm:"type:jsonb"` // BatchSummary

	FailureReason string `json:"failure_reason,omitempty" gorm:"type:text"`

	// Timestamps
	StartedAt   *time.Time     `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (CalculationBatch) TableName() string {
	return "calculation_batches"
}

// ImportValidationError locates a rejected cell in the uploaded sheet
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

// BatchRowResult is the scored outcome of one spreadsheet row
type BatchRowResult struct {
	Row           int      `json:"row"`
	StudentID     string   `json:"student_id"`
	FullName      string   `json:"full_name"`
	ElectiveGroup string   `json:"elective_group"`
	Verdict       string   `json:"verdict"`
	Score         *float64 `json:"score,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

type BatchSummary struct {
	HighestScore   *float64       `json:"highest_score"`
	LowestScore    *float64       `json:"lowest_score"`
	PassRate       float64        `json:"pass_rate"` // percent of valid rows (scored or disqualified) that passed
	GroupCounts    map[string]int `json:"group_counts"`
	ProcessingTime time.Duration  `json:"processing_time"`
}

func (b *CalculationBatch) SetErrors(errs []ImportValidationError) error {
	return setJSON(&b.Errors, errs)
}

func (b *CalculationBatch) GetErrors() ([]ImportValidationError, error) {
	var errs []ImportValidationError
	return errs, getJSON(b.Errors, &errs)
}

func (b *CalculationBatch) SetResults(results []BatchRowResult) error {
	return setJSON(&b.Results, results)
}

func (b *CalculationBatch) GetResults() ([]BatchRowResult, error) {
	var results []BatchRowResult
	return results, getJSON(b.Results, &results)
}

func (b *CalculationBatch) SetSummary(summary BatchSummary) error {
	return setJSON(&b.Summary, summary)
}

func (b *CalculationBatch) GetSummary() (BatchSummary, error) {
	var summary BatchSummary
	return summary, getJSON(b.Summary, &summary)
}

func setJSON(dst *datatypes.JSON, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	*dst = datatypes.JSON(raw)
	return nil
}

func getJSON(src datatypes.JSON, v interface{}) error {
	if len(src) == 0 {
		return nil
	}
	return json.Unmarshal(src, v)
}
