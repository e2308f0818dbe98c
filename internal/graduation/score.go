package graduation

import "math"

// Formula constants
const (
	FailingGradeThreshold = 1.0
	PassThreshold         = 5.0

	weightGrade10 = 1.0
	weightGrade11 = 2.0
	weightGrade12 = 3.0
	weightTotal   = weightGrade10 + weightGrade11 + weightGrade12

	ReasonFailingGrade = "Có môn thi bị điểm liệt (<= 1.0 điểm). Không đủ điều kiện xét tốt nghiệp."
)

// Breakdown holds the intermediate terms of the formula, unrounded
type Breakdown struct {
	ElectiveAverage float64 `json:"electiveAverage"`
	ExamTotal       float64 `json:"examTotal"`
	YearlyAverage   float64 `json:"yearlyAverage"`
	Encouragement   float64 `json:"encouragement"`
	Priority        float64 `json:"priority"`
	InnerTerm       float64 `json:"innerTerm"`
	RawScore        float64 `json:"rawScore"`
}

// Outcome is what Compute yields: Invalid, Disqualified or Scored
type Outcome interface {
	Verdict() Verdict
}

// Invalid carries the validation errors of an input that could not be scored
type Invalid struct {
	Validation ValidationResult
}

func (Invalid) Verdict() Verdict { return VerdictInvalid }

// Disqualified means at least one exam score is a failing grade
type Disqualified struct {
	Reason          string    `json:"reason"`
	FailingSubjects []Subject `json:"failingSubjects"`
}

func (Disqualified) Verdict() Verdict { return VerdictDisqualified }

// Scored carries the final score rounded to two decimals
type Scored struct {
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

func (s Scored) Verdict() Verdict {
	if s.Score >= PassThreshold {
		return VerdictPassed
	}
	return VerdictBelowThreshold
}

// Score applies the graduation formula to a validated input.
// The result is either Disqualified or Scored.
func Score(v *ValidInput) Outcome {
	var failing []Subject
	subjects := append(MandatorySubjects(), v.group.Subjects()...)
	for i, score := range v.ExamScores() {
		if score <= FailingGradeThreshold {
			failing = append(failing, subjects[i])
		}
	}
	if len(failing) > 0 {
		return Disqualified{Reason: ReasonFailingGrade, FailingSubjects: failing}
	}

	b := Breakdown{}
	b.ElectiveAverage = (v.elective[0] + v.elective[1] + v.elective[2]) / float64(len(v.elective))
	b.ExamTotal = v.mandatory[0] + v.mandatory[1] + v.mandatory[2] + b.ElectiveAverage
	b.YearlyAverage = (v.grade10*weightGrade10 + v.grade11*weightGrade11 + v.grade12*weightGrade12) / weightTotal
	if v.encouragement != nil {
		b.Encouragement = *v.encouragement
	}
	if v.priority != nil {
		b.Priority = *v.priority
	}
	b.InnerTerm = (b.ExamTotal+b.Encouragement)/4 + b.YearlyAverage
	b.RawScore = b.InnerTerm/2 + b.Priority

	return Scored{Score: RoundScore(b.RawScore), Breakdown: b}
}

// Compute validates the input and, when valid, scores it
func Compute(in Input) Outcome {
	valid, result := Validate(in)
	if !result.IsValid {
		return Invalid{Validation: result}
	}
	return Score(valid)
}

// RoundScore rounds to two decimals, half away from zero
func RoundScore(x float64) float64 {
	return math.Round(x*100) / 100
}
