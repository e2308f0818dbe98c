package graduation

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// plainDecimal is what a score form accepts: an optional sign, digits and at most one
// decimal point. Exponents and hex floats are malformed here.
var plainDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// RawValue is a form value as the user typed it. It decodes from a JSON
// string, number or null; anything else is kept as text and fails numeric parsing.
type RawValue struct {
	text string
}

// Text wraps a typed string
func Text(s string) RawValue {
	return RawValue{text: s}
}

// Number wraps a numeric value
func Number(f float64) RawValue {
	return RawValue{text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// IsEmpty reports whether nothing was entered
func (v RawValue) IsEmpty() bool {
	return strings.TrimSpace(v.text) == ""
}

func (v RawValue) String() string {
	return v.text
}

// Float parses the value. A single comma is accepted as the decimal separator.
// Only plain decimals parse; NaN, infinities, exponents and hex are rejected.
func (v RawValue) Float() (float64, bool) {
	s := strings.TrimSpace(v.text)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if !plainDecimal.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case string(data) == "null":
		v.text = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.text = s
	default:
		v.text = string(data)
	}
	return nil
}

func (v RawValue) MarshalJSON() ([]byte, error) {
	if v.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(v.text)
}

// MandatoryScores holds the three required national-exam scores
type MandatoryScores struct {
	Math            RawValue `json:"math"`
	Literature      RawValue `json:"literature"`
	ForeignLanguage RawValue `json:"foreignLanguage"`
}

// YearlyAverages holds the grade 10, 11 and 12 yearly averages
type YearlyAverages struct {
	Grade10 RawValue `json:"grade10"`
	Grade11 RawValue `json:"grade11"`
	Grade12 RawValue `json:"grade12"`
}

// Input is the full calculator form
type Input struct {
	MandatoryScores     MandatoryScores `json:"mandatoryScores"`
	ElectiveGroup       ElectiveGroup   `json:"electiveGroup"`
	ElectiveScores      [3]RawValue     `json:"electiveScores"`
	YearlyAverages      YearlyAverages  `json:"yearlyAverages"`
	EncouragementPoints RawValue        `json:"encouragementPoints"`
	PriorityPoints      RawValue        `json:"priorityPoints"`
}

// SelectElectiveGroup switches the active group and clears its three scores
func (in *Input) SelectElectiveGroup(g ElectiveGroup) {
	in.ElectiveGroup = g
	in.ElectiveScores = [3]RawValue{}
}

// MandatorySubjectScores pairs the mandatory subjects with their entered values
func (in Input) MandatorySubjectScores() []SubjectScore {
	return []SubjectScore{
		{Subject: SubjectMath, Raw: in.MandatoryScores.Math},
		{Subject: SubjectLiterature, Raw: in.MandatoryScores.Literature},
		{Subject: SubjectForeignLanguage, Raw: in.MandatoryScores.ForeignLanguage},
	}
}

// ElectiveSubjectScores pairs the selected group's subjects with their entered values.
// It is empty when no valid group is selected.
func (in Input) ElectiveSubjectScores() []SubjectScore {
	subjects := in.ElectiveGroup.Subjects()
	scores := make([]SubjectScore, 0, len(subjects))
	for i, s := range subjects {
		scores = append(scores, SubjectScore{Subject: s, Raw: in.ElectiveScores[i]})
	}
	return scores
}
