package graduation

// FieldBounds describes the accepted numeric range of a form field. A nil Max means uncapped.
type FieldBounds struct {
	Field    string   `json:"field"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Min      float64  `json:"min"`
	Max      *float64 `json:"max,omitempty"`
}

// GroupDescriptor describes one selectable elective group
type GroupDescriptor struct {
	Code     ElectiveGroup `json:"code"`
	Label    string        `json:"label"`
	Subjects []Subject     `json:"subjects"`
}

// FormDescriptor is everything a client needs to render the calculator form
type FormDescriptor struct {
	MandatorySubjects []Subject         `json:"mandatorySubjects"`
	ElectiveGroups    []GroupDescriptor `json:"electiveGroups"`
	Fields            []FieldBounds     `json:"fields"`
	Formulas          []string          `json:"formulas"`
	PassThreshold     float64           `json:"passThreshold"`
	FailingGrade      float64           `json:"failingGrade"`
}

// Form returns the calculator form description
func Form() FormDescriptor {
	maxScore, maxPriority := MaxScore, MaxPriority

	var fields []FieldBounds
	for _, s := range MandatorySubjects() {
		fields = append(fields, FieldBounds{Field: s.ID, Label: s.Name, Required: true, Max: &maxScore})
	}
	var groups []GroupDescriptor
	for _, g := range ElectiveGroups() {
		groups = append(groups, GroupDescriptor{Code: g, Label: g.Label(), Subjects: g.Subjects()})
		for _, s := range g.Subjects() {
			fields = append(fields, FieldBounds{Field: s.ID, Label: s.Name, Required: true, Max: &maxScore})
		}
	}
	fields = append(fields,
		FieldBounds{Field: FieldGrade10, Label: labelGrade10, Required: true, Max: &maxScore},
		FieldBounds{Field: FieldGrade11, Label: labelGrade11, Required: true, Max: &maxScore},
		FieldBounds{Field: FieldGrade12, Label: labelGrade12, Required: true, Max: &maxScore},
		FieldBounds{Field: FieldEncouragement, Label: labelEncouragement},
		FieldBounds{Field: FieldPriority, Label: labelPriority, Max: &maxPriority},
	)

	return FormDescriptor{
		MandatorySubjects: MandatorySubjects(),
		ElectiveGroups:    groups,
		Fields:            fields,
		Formulas: []string{
			"ĐTB các năm học = (ĐTB lớp 10 × 1 + ĐTB lớp 11 × 2 + ĐTB lớp 12 × 3) / 6",
			"ĐXTN = ((Tổng điểm 4 môn thi + Tổng điểm KK) / 4 + ĐTB các năm học) / 2 + Điểm ƯT",
			"Tổng điểm 4 môn thi = Toán + Ngữ văn + Ngoại ngữ + Điểm TB môn tổ hợp",
		},
		PassThreshold: PassThreshold,
		FailingGrade:  FailingGradeThreshold,
	}
}
