package graduation

import "fmt"

// Verdict is the judgement shown to the user for an Outcome
type Verdict string

const (
	VerdictPassed         Verdict = "passed"
	VerdictBelowThreshold Verdict = "below_threshold"
	VerdictDisqualified   Verdict = "disqualified"
	VerdictInvalid        Verdict = "invalid"
)

// Message is the user-facing sentence for the verdict
func (v Verdict) Message() string {
	switch v {
	case VerdictPassed:
		return "Chúc mừng! Bạn có khả năng đủ điều kiện tốt nghiệp."
	case VerdictBelowThreshold:
		return "Rất tiếc! Điểm của bạn có khả năng chưa đủ điều kiện tốt nghiệp (Yêu cầu ≥ 5.0 và không có môn nào bị điểm liệt)."
	case VerdictDisqualified:
		return "Có môn thi bị điểm liệt. Không đủ điều kiện xét tốt nghiệp."
	case VerdictInvalid:
		return "Vui lòng kiểm tra lại các lỗi sau:"
	}
	return ""
}

// Presentation is the formatted view of an Outcome
type Presentation struct {
	Verdict      Verdict  `json:"verdict"`
	Passed       bool     `json:"passed"`
	Message      string   `json:"message"`
	Score        *float64 `json:"score,omitempty"`
	DisplayScore string   `json:"displayScore,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// Present formats an Outcome. A disqualified outcome never carries a score.
func Present(o Outcome) Presentation {
	verdict := o.Verdict()
	p := Presentation{
		Verdict: verdict,
		Passed:  verdict == VerdictPassed,
		Message: verdict.Message(),
	}

	switch out := o.(type) {
	case Scored:
		score := out.Score
		p.Score = &score
		p.DisplayScore = FormatScore(score)
	case Disqualified:
		p.Reason = out.Reason
	case Invalid:
		p.Errors = out.Validation.Messages()
	}
	return p
}

// FormatScore renders a score with exactly two decimals
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}
