package services

import (
	"context"

	"github.com/edutrial/thpt-score-service/internal/graduation"
)

// GraduationService answers single-candidate calculator requests
type GraduationService interface {
	Form(ctx context.Context) graduation.FormDescriptor
	Validate(ctx context.Context, in graduation.Input) graduation.ValidationResult
	// Calculate returns ValidationErrors when the input cannot be scored
	Calculate(ctx context.Context, in graduation.Input) (*CalculationResult, error)
}

// CalculationResult is the presented outcome plus the formula terms behind it
type CalculationResult struct {
	graduation.Presentation
	ElectiveGroup   graduation.ElectiveGroup `json:"electiveGroup"`
	Breakdown       *graduation.Breakdown    `json:"breakdown,omitempty"`
	FailingSubjects []graduation.Subject     `json:"failingSubjects,omitempty"`
}

type graduationService struct {
	logger *ServiceLogger
}

func NewGraduationService(logger *ServiceLogger) GraduationService {
	return &graduationService{logger: logger}
}

func (s *graduationService) Form(ctx context.Context) graduation.FormDescriptor {
	return graduation.Form()
}

func (s *graduationService) Validate(ctx context.Context, in graduation.Input) graduation.ValidationResult {
	op := s.logger.WithOperation(ctx, "validate_input", "")
	_, result := graduation.Validate(in)
	if !result.IsValid {
		op.LogResult("", result.Errors)
	} else {
		op.LogResult("", nil)
	}
	return result
}

func (s *graduationService) Calculate(ctx context.Context, in graduation.Input) (*CalculationResult, error) {
	op := s.logger.WithOperation(ctx, "calculate_score", "")

	outcome := graduation.Compute(in)
	if invalid, ok := outcome.(graduation.Invalid); ok {
		op.LogResult("", invalid.Validation.Errors)
		return nil, invalid.Validation.Errors
	}

	result := &CalculationResult{
		Presentation:  graduation.Present(outcome),
		ElectiveGroup: in.ElectiveGroup,
	}
	switch out := outcome.(type) {
	case graduation.Scored:
		breakdown := out.Breakdown
		result.Breakdown = &breakdown
	case graduation.Disqualified:
		result.FailingSubjects = out.FailingSubjects
	}

	op.LogResult("", nil)
	return result, nil
}
