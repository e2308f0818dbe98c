package graduation

import (
	"fmt"
	"strconv"

	apperrors "github.com/edutrial/thpt-score-service/internal/errors"
)

// Field bounds
const (
	MinScore    = 0.0
	MaxScore    = 10.0
	MaxPriority = 2.75
)

// Field identifiers used in validation errors
const (
	FieldElectiveGroup = "toHop"
	FieldGrade10       = "dtbLop10"
	FieldGrade11       = "dtbLop11"
	FieldGrade12       = "dtbLop12"
	FieldEncouragement = "diemKhuyenKhich"
	FieldPriority      = "diemUuTien"
)

const (
	labelGrade10       = "ĐTB lớp 10"
	labelGrade11       = "ĐTB lớp 11"
	labelGrade12       = "ĐTB lớp 12"
	labelEncouragement = "Điểm khuyến khích"
	labelPriority      = "Điểm Ưu tiên"

	msgMissingGroup = "Bạn chưa chọn tổ hợp môn (KHTN hoặc KHXH)."
)

// ValidationResult lists every violation found in an Input
type ValidationResult struct {
	IsValid bool                       `json:"isValid"`
	Errors  apperrors.ValidationErrors `json:"errors"`
}

// Messages returns the error messages in the order they were found
func (r ValidationResult) Messages() []string {
	return r.Errors.Messages()
}

// ValidInput is an Input that passed validation, with every value parsed.
// Only Validate constructs it.
type ValidInput struct {
	mandatory     [3]float64
	group         ElectiveGroup
	elective      [3]float64
	grade10       float64
	grade11       float64
	grade12       float64
	encouragement *float64
	priority      *float64
}

// Group returns the selected elective group
func (v *ValidInput) Group() ElectiveGroup {
	return v.group
}

// ExamScores returns the exam scores: the three mandatory ones then the three electives
func (v *ValidInput) ExamScores() []float64 {
	scores := make([]float64, 0, 6)
	scores = append(scores, v.mandatory[:]...)
	scores = append(scores, v.elective[:]...)
	return scores
}

// collector folds field checks into one error list and the parsed values
type collector struct {
	errs apperrors.ValidationErrors
}

func (c *collector) add(field, message, rule string, raw RawValue) {
	c.errs = append(c.errs, *apperrors.NewValidationErrorWithRule(field, message, rule, raw.String()))
}

// subjectScore: required, [0,10]
func (c *collector) subjectScore(s SubjectScore) float64 {
	if s.Raw.IsEmpty() {
		c.add(s.ID, fmt.Sprintf("Điểm môn %s không được để trống.", s.Name), apperrors.RuleRequired, s.Raw)
		return 0
	}
	f, ok := s.Raw.Float()
	if !ok || f < MinScore || f > MaxScore {
		c.add(s.ID, fmt.Sprintf("Điểm môn %s không hợp lệ (phải từ 0 đến %s).", s.Name, formatBound(MaxScore)), apperrors.RuleRange, s.Raw)
		return 0
	}
	return f
}

// ranged: [0,max], required unless optional. Returns nil when absent or invalid.
func (c *collector) ranged(field, label string, raw RawValue, max float64, optional bool) *float64 {
	if raw.IsEmpty() {
		if !optional {
			c.add(field, fmt.Sprintf("%s không được để trống.", label), apperrors.RuleRequired, raw)
		}
		return nil
	}
	f, ok := raw.Float()
	if !ok || f < 0 || f > max {
		c.add(field, fmt.Sprintf("%s không hợp lệ (phải từ 0 đến %s).", label, formatBound(max)), apperrors.RuleRange, raw)
		return nil
	}
	return &f
}

// nonNegative: optional, >= 0, uncapped
func (c *collector) nonNegative(field, label string, raw RawValue) *float64 {
	if raw.IsEmpty() {
		return nil
	}
	f, ok := raw.Float()
	if !ok || f < 0 {
		c.add(field, fmt.Sprintf("%s không hợp lệ (phải là số không âm).", label), apperrors.RuleNonNegative, raw)
		return nil
	}
	return &f
}

// Validate checks every field and never stops at the first failure.
// The returned ValidInput is nil unless the result is valid.
func Validate(in Input) (*ValidInput, ValidationResult) {
	var c collector
	v := &ValidInput{}

	for i, s := range in.MandatorySubjectScores() {
		v.mandatory[i] = c.subjectScore(s)
	}

	groupSelected := in.ElectiveGroup.IsValid()
	if !groupSelected {
		c.add(FieldElectiveGroup, msgMissingGroup, apperrors.RuleElectiveGroup, Text(string(in.ElectiveGroup)))
	} else {
		v.group = in.ElectiveGroup
		for i, s := range in.ElectiveSubjectScores() {
			v.elective[i] = c.subjectScore(s)
		}
	}

	g10 := c.ranged(FieldGrade10, labelGrade10, in.YearlyAverages.Grade10, MaxScore, false)
	g11 := c.ranged(FieldGrade11, labelGrade11, in.YearlyAverages.Grade11, MaxScore, false)
	g12 := c.ranged(FieldGrade12, labelGrade12, in.YearlyAverages.Grade12, MaxScore, false)

	v.encouragement = c.nonNegative(FieldEncouragement, labelEncouragement, in.EncouragementPoints)
	v.priority = c.ranged(FieldPriority, labelPriority, in.PriorityPoints, MaxPriority, true)

	result := ValidationResult{
		IsValid: len(c.errs) == 0 && groupSelected,
		Errors:  c.errs,
	}
	if !result.IsValid {
		return nil, result
	}

	v.grade10, v.grade11, v.grade12 = *g10, *g11, *g12
	return v, result
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
