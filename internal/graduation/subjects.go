// Package graduation implements the THPT graduation-score calculator:
// input validation that reports every violation at once, and the fixed
// scoring formula that yields either a rounded score or a disqualification.
package graduation

import (
	"encoding/json"
	"strings"
)

// Subject identifies one exam subject on the form
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var (
	SubjectMath            = Subject{ID: "toan", Name: "Toán"}
	SubjectLiterature      = Subject{ID: "van", Name: "Ngữ văn"}
	SubjectForeignLanguage = Subject{ID: "ngoaiNgu", Name: "Ngoại ngữ"}

	SubjectPhysics   = Subject{ID: "vatLy", Name: "Vật lí"}
	SubjectChemistry = Subject{ID: "hoaHoc", Name: "Hóa học"}
	SubjectBiology   = Subject{ID: "sinhHoc", Name: "Sinh học"}

	SubjectHistory   = Subject{ID: "lichSu", Name: "Lịch sử"}
	SubjectGeography = Subject{ID: "diaLy", Name: "Địa lí"}
	SubjectCivics    = Subject{ID: "gdcd", Name: "Giáo dục công dân"}
)

// MandatorySubjects returns the three national-exam subjects every candidate sits
func MandatorySubjects() []Subject {
	return []Subject{SubjectMath, SubjectLiterature, SubjectForeignLanguage}
}

// ElectiveGroup is one of the two fixed three-subject bundles. The zero value means no group chosen.
type ElectiveGroup string

const (
	ElectiveNone           ElectiveGroup = ""
	ElectiveNaturalScience ElectiveGroup = "KHTN"
	ElectiveSocialScience  ElectiveGroup = "KHXH"
)

// ElectiveGroups lists the selectable groups in display order
func ElectiveGroups() []ElectiveGroup {
	return []ElectiveGroup{ElectiveNaturalScience, ElectiveSocialScience}
}

// ParseElectiveGroup accepts the short codes and the long aliases, case-insensitively
func ParseElectiveGroup(s string) (ElectiveGroup, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "KHTN", "NATURAL_SCIENCE":
		return ElectiveNaturalScience, true
	case "KHXH", "SOCIAL_SCIENCE":
		return ElectiveSocialScience, true
	}
	return ElectiveNone, false
}

// IsValid reports whether g is one of the two known groups
func (g ElectiveGroup) IsValid() bool {
	return g == ElectiveNaturalScience || g == ElectiveSocialScience
}

// Subjects returns the group's three subjects, or nil for an unknown group
func (g ElectiveGroup) Subjects() []Subject {
	switch g {
	case ElectiveNaturalScience:
		return []Subject{SubjectPhysics, SubjectChemistry, SubjectBiology}
	case ElectiveSocialScience:
		return []Subject{SubjectHistory, SubjectGeography, SubjectCivics}
	}
	return nil
}

// Label is the human-readable group name
func (g ElectiveGroup) Label() string {
	switch g {
	case ElectiveNaturalScience:
		return "Khoa học Tự nhiên (Lý, Hóa, Sinh)"
	case ElectiveSocialScience:
		return "Khoa học Xã hội (Sử, Địa, GDCD)"
	}
	return ""
}

// UnmarshalJSON normalises known aliases. Unknown strings are kept verbatim
// so validation can report them instead of failing the whole request.
func (g *ElectiveGroup) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = ElectiveNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*g = ElectiveGroup(strings.TrimSpace(string(data)))
		return nil
	}
	if parsed, ok := ParseElectiveGroup(s); ok {
		*g = parsed
		return nil
	}
	*g = ElectiveGroup(strings.TrimSpace(s))
	return nil
}

// SubjectScore is one subject's entered score before validation
type SubjectScore struct {
	Subject
	Raw RawValue `json:"score"`
}
