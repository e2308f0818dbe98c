package graduation

import (
	"encoding/json"
	"math/rand"
	"testing"

	apperrors "github.com/edutrial/thpt-score-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseInput is the worked example: Toán 8, Văn 7, Ngoại ngữ 6, KHTN 8/7/9, averages 8.0/8.2/8.5
func baseInput() Input {
	in := Input{
		MandatoryScores: MandatoryScores{
			Math:            Number(8),
			Literature:      Number(7),
			ForeignLanguage: Number(6),
		},
		YearlyAverages: YearlyAverages{
			Grade10: Text("8.0"),
			Grade11: Text("8.2"),
			Grade12: Text("8.5"),
		},
		EncouragementPoints: Number(0),
		PriorityPoints:      Number(0),
	}
	in.SelectElectiveGroup(ElectiveNaturalScience)
	in.ElectiveScores = [3]RawValue{Number(8), Number(7), Number(9)}
	return in
}

func TestCompute_WorkedExample(t *testing.T) {
	out := Compute(baseInput())

	scored, ok := out.(Scored)
	require.True(t, ok, "expected Scored, got %T", out)
	assert.Equal(t, 7.78, scored.Score)
	assert.Equal(t, VerdictPassed, scored.Verdict())

	b := scored.Breakdown
	assert.InDelta(t, 8.0, b.ElectiveAverage, 1e-9)
	assert.InDelta(t, 29.0, b.ExamTotal, 1e-9)
	assert.InDelta(t, 49.9/6, b.YearlyAverage, 1e-9)
	assert.InDelta(t, 7.25+49.9/6, b.InnerTerm, 1e-9)
	assert.InDelta(t, 7.7833, b.RawScore, 1e-4)
}

func TestCompute_FailingGradeDisqualifies(t *testing.T) {
	in := baseInput()
	in.MandatoryScores.ForeignLanguage = Text("1.0")

	out := Compute(in)

	dq, ok := out.(Disqualified)
	require.True(t, ok, "expected Disqualified, got %T", out)
	assert.Equal(t, ReasonFailingGrade, dq.Reason)
	assert.Equal(t, []Subject{SubjectForeignLanguage}, dq.FailingSubjects)

	p := Present(out)
	assert.Equal(t, VerdictDisqualified, p.Verdict)
	assert.Nil(t, p.Score)
	assert.Empty(t, p.DisplayScore)
	assert.False(t, p.Passed)
}

func TestValidate_MissingAverageAndPriorityOutOfRange(t *testing.T) {
	in := baseInput()
	in.YearlyAverages.Grade11 = Text("")
	in.PriorityPoints = Number(3.0)

	valid, result := Validate(in)

	assert.Nil(t, valid)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"ĐTB lớp 11 không được để trống.",
		"Điểm Ưu tiên không hợp lệ (phải từ 0 đến 2.75).",
	}, result.Messages())
	assert.Equal(t, []string{FieldGrade11, FieldPriority}, result.Errors.Fields())
}

func TestValidate_NoElectiveGroupSkipsElectiveScores(t *testing.T) {
	in := baseInput()
	in.ElectiveGroup = ElectiveNone
	in.ElectiveScores = [3]RawValue{Text("garbage"), Text(""), Number(42)}

	_, result := Validate(in)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, FieldElectiveGroup, result.Errors[0].Field)
	assert.Equal(t, apperrors.RuleElectiveGroup, result.Errors[0].Rule)
	assert.Equal(t, "Bạn chưa chọn tổ hợp môn (KHTN hoặc KHXH).", result.Errors[0].Message)
}

func TestValidate_UnknownElectiveGroup(t *testing.T) {
	in := baseInput()
	in.ElectiveGroup = ElectiveGroup("KHAC")

	_, result := Validate(in)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, FieldElectiveGroup, result.Errors[0].Field)
	assert.Equal(t, "KHAC", result.Errors[0].Value)
}

func TestValidate_NegativeEncouragement(t *testing.T) {
	in := baseInput()
	in.EncouragementPoints = Number(-5)

	_, result := Validate(in)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, FieldEncouragement, result.Errors[0].Field)
	assert.Equal(t, "Điểm khuyến khích không hợp lệ (phải là số không âm).", result.Errors[0].Message)
	assert.Contains(t, result.Errors[0].Message, "không hợp lệ (phải là số không âm)")
}

func TestValidate_AccumulatesEveryViolation(t *testing.T) {
	in := baseInput()
	in.MandatoryScores.Math = Text("")
	in.MandatoryScores.Literature = Text("11")
	in.YearlyAverages.Grade10 = Text("abc")
	in.EncouragementPoints = Number(-1)
	in.PriorityPoints = Number(2.76)

	_, result := Validate(in)

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"Điểm môn Toán không được để trống.",
		"Điểm môn Ngữ văn không hợp lệ (phải từ 0 đến 10).",
		"ĐTB lớp 10 không hợp lệ (phải từ 0 đến 10).",
		"Điểm khuyến khích không hợp lệ (phải là số không âm).",
		"Điểm Ưu tiên không hợp lệ (phải từ 0 đến 2.75).",
	}, result.Messages())
}

func TestValidate_MissingGroupCascadesWithOtherErrors(t *testing.T) {
	in := Input{}

	_, result := Validate(in)

	// 3 mandatory + group + 3 averages; optional bonuses add nothing
	assert.Len(t, result.Errors, 7)
	assert.Equal(t, "Điểm môn Ngoại ngữ không được để trống.", result.Errors[2].Message)
	assert.Equal(t, FieldElectiveGroup, result.Errors[3].Field)
}

func TestValidate_ElectiveScoresRequiredOnceGroupSelected(t *testing.T) {
	in := baseInput()
	in.SelectElectiveGroup(ElectiveSocialScience)
	in.ElectiveScores[1] = Text("9.5")

	_, result := Validate(in)

	assert.Equal(t, []string{
		"Điểm môn Lịch sử không được để trống.",
		"Điểm môn Giáo dục công dân không được để trống.",
	}, result.Messages())
	assert.Equal(t, []string{"lichSu", "gdcd"}, result.Errors.Fields())
}

func TestValidate_PriorityBoundary(t *testing.T) {
	tests := []struct {
		name  string
		value RawValue
		valid bool
	}{
		{"absent", Text(""), true},
		{"zero", Number(0), true},
		{"max", Number(2.75), true},
		{"max-as-text", Text("2.75"), true},
		{"just-over", Number(2.76), false},
		{"negative", Number(-0.25), false},
		{"not-a-number", Text("hai"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.PriorityPoints = tt.value
			_, result := Validate(in)
			assert.Equal(t, tt.valid, result.IsValid, result.Messages())
		})
	}
}

func TestValidate_EncouragementBoundary(t *testing.T) {
	tests := []struct {
		name  string
		value RawValue
		valid bool
	}{
		{"absent", Text(""), true},
		{"zero", Number(0), true},
		{"large", Number(100), true},
		{"negative", Number(-0.01), false},
		{"malformed", Text("1.5.2"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.EncouragementPoints = tt.value
			_, result := Validate(in)
			assert.Equal(t, tt.valid, result.IsValid, result.Messages())
		})
	}
}

func TestValidate_MalformedNumbersAreRangeErrors(t *testing.T) {
	for _, raw := range []string{"abc", "NaN", "Inf", "8..5", "true", "0x1p3", "1e0", "8e-1"} {
		t.Run(raw, func(t *testing.T) {
			in := baseInput()
			in.MandatoryScores.Math = Text(raw)
			_, result := Validate(in)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, apperrors.RuleRange, result.Errors[0].Rule)
			assert.Equal(t, "Điểm môn Toán không hợp lệ (phải từ 0 đến 10).", result.Errors[0].Message)
		})
	}
}

func TestRawValue_Float(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"8", 8, true},
		{" 8.25 ", 8.25, true},
		{"8,5", 8.5, true},
		{"", 0, false},
		{"1,000.5", 0, false},
		{"-Inf", 0, false},
		{"0x1p3", 0, false},
		{"1e0", 0, false},
		{"1_0", 0, false},
		{".5", 0.5, true},
		{"-1", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Text(tt.raw).Float()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompute_HexAndExponentAreNotScores(t *testing.T) {
	in := baseInput()
	in.MandatoryScores.ForeignLanguage = Text("0x1p3")
	in.YearlyAverages.Grade12 = Text("1e0")

	out := Compute(in)
	invalid, ok := out.(Invalid)
	require.True(t, ok, "got %#v", out)
	assert.Equal(t, []string{"ngoaiNgu", "dtbLop12"}, invalid.Validation.Errors.Fields())
}

func TestInput_DecodeJSON(t *testing.T) {
	body := `{
		"mandatoryScores": {"math": 8, "literature": "7", "foreignLanguage": "6"},
		"electiveGroup": "NATURAL_SCIENCE",
		"electiveScores": [8, "7", 9],
		"yearlyAverages": {"grade10": 8.0, "grade11": "8.2", "grade12": 8.5},
		"encouragementPoints": null,
		"priorityPoints": ""
	}`

	var in Input
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	assert.Equal(t, ElectiveNaturalScience, in.ElectiveGroup)
	assert.True(t, in.EncouragementPoints.IsEmpty())
	assert.True(t, in.PriorityPoints.IsEmpty())

	scored, ok := Compute(in).(Scored)
	require.True(t, ok)
	assert.Equal(t, 7.78, scored.Score)
}

func TestElectiveGroup_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		body string
		want ElectiveGroup
	}{
		{`"KHTN"`, ElectiveNaturalScience},
		{`"khxh"`, ElectiveSocialScience},
		{`"SOCIAL_SCIENCE"`, ElectiveSocialScience},
		{`null`, ElectiveNone},
		{`"other"`, ElectiveGroup("other")},
		{`3`, ElectiveGroup("3")},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var g ElectiveGroup
			require.NoError(t, json.Unmarshal([]byte(tt.body), &g))
			assert.Equal(t, tt.want, g)
		})
	}
}

func TestSelectElectiveGroup_ResetsScores(t *testing.T) {
	in := baseInput()
	in.SelectElectiveGroup(ElectiveSocialScience)

	assert.Equal(t, ElectiveSocialScience, in.ElectiveGroup)
	for _, s := range in.ElectiveScores {
		assert.True(t, s.IsEmpty())
	}
}

func TestCompute_AllScoresAboveFailingGradeAlwaysScored(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pick := func() RawValue {
		// (1.0, 10.0] in 0.01 steps
		return Number(float64(101+rng.Intn(900)) / 100)
	}

	for i := 0; i < 500; i++ {
		in := baseInput()
		in.MandatoryScores = MandatoryScores{Math: pick(), Literature: pick(), ForeignLanguage: pick()}
		if rng.Intn(2) == 0 {
			in.SelectElectiveGroup(ElectiveSocialScience)
		}
		in.ElectiveScores = [3]RawValue{pick(), pick(), pick()}

		out := Compute(in)
		_, ok := out.(Scored)
		require.True(t, ok, "iteration %d: expected Scored, got %T", i, out)
	}
}

func TestCompute_AnyFailingGradeDisqualifies(t *testing.T) {
	for idx := 0; idx < 6; idx++ {
		for _, failing := range []float64{0, 0.5, 1.0} {
			in := baseInput()
			in.MandatoryScores = MandatoryScores{Math: Number(10), Literature: Number(10), ForeignLanguage: Number(10)}
			in.ElectiveScores = [3]RawValue{Number(10), Number(10), Number(10)}
			in.EncouragementPoints = Number(100)
			in.PriorityPoints = Number(2.75)

			if idx < 3 {
				switch idx {
				case 0:
					in.MandatoryScores.Math = Number(failing)
				case 1:
					in.MandatoryScores.Literature = Number(failing)
				case 2:
					in.MandatoryScores.ForeignLanguage = Number(failing)
				}
			} else {
				in.ElectiveScores[idx-3] = Number(failing)
			}

			out := Compute(in)
			dq, ok := out.(Disqualified)
			require.True(t, ok, "subject %d score %v: expected Disqualified, got %T", idx, failing, out)
			assert.Len(t, dq.FailingSubjects, 1)
		}
	}
}

func TestCompute_YearlyAverageFailingValuesDoNotDisqualify(t *testing.T) {
	in := baseInput()
	in.YearlyAverages.Grade10 = Number(0.5)

	_, ok := Compute(in).(Scored)
	assert.True(t, ok)
}

func TestCompute_Grade12IsMonotonic(t *testing.T) {
	prev := -1.0
	for _, g12 := range []float64{5, 6, 7, 8, 9, 10} {
		in := baseInput()
		in.YearlyAverages.Grade12 = Number(g12)

		scored, ok := Compute(in).(Scored)
		require.True(t, ok)
		assert.Greater(t, scored.Score, prev, "grade12=%v", g12)
		prev = scored.Score
	}
}

func TestCompute_BelowThreshold(t *testing.T) {
	in := baseInput()
	in.MandatoryScores = MandatoryScores{Math: Number(2), Literature: Number(2), ForeignLanguage: Number(2)}
	in.ElectiveScores = [3]RawValue{Number(2), Number(2), Number(2)}
	in.YearlyAverages = YearlyAverages{Grade10: Number(5), Grade11: Number(5), Grade12: Number(5)}

	out := Compute(in)

	scored, ok := out.(Scored)
	require.True(t, ok)
	// ((8 + 0)/4 + 5)/2 = 3.5
	assert.Equal(t, 3.5, scored.Score)
	assert.Equal(t, VerdictBelowThreshold, out.Verdict())
	assert.False(t, Present(out).Passed)
}

func TestCompute_BonusPoints(t *testing.T) {
	in := baseInput()
	in.EncouragementPoints = Number(2)
	in.PriorityPoints = Number(0.75)

	scored, ok := Compute(in).(Scored)
	require.True(t, ok)
	// ((29 + 2)/4 + 49.9/6)/2 + 0.75 = 8.7833...
	assert.Equal(t, 8.78, scored.Score)
	assert.Equal(t, 2.0, scored.Breakdown.Encouragement)
	assert.Equal(t, 0.75, scored.Breakdown.Priority)
}

func TestRoundScore_Idempotent(t *testing.T) {
	for _, x := range []float64{0, 0.01, 3.5, 4.99, 5, 7.78, 8.61, 9.99, 12.75} {
		once := RoundScore(x)
		assert.Equal(t, x, once)
		assert.Equal(t, once, RoundScore(once))
	}
	assert.Equal(t, 7.78, RoundScore(7.783333))
	assert.Equal(t, 7.79, RoundScore(7.7866))
}

func TestPresent(t *testing.T) {
	passed := Present(Compute(baseInput()))
	assert.Equal(t, VerdictPassed, passed.Verdict)
	assert.True(t, passed.Passed)
	require.NotNil(t, passed.Score)
	assert.Equal(t, 7.78, *passed.Score)
	assert.Equal(t, "7.78", passed.DisplayScore)
	assert.Equal(t, VerdictPassed.Message(), passed.Message)

	invalid := Present(Compute(Input{}))
	assert.Equal(t, VerdictInvalid, invalid.Verdict)
	assert.Len(t, invalid.Errors, 7)
	assert.Nil(t, invalid.Score)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "5.00", FormatScore(5))
	assert.Equal(t, "7.78", FormatScore(7.78))
}

func TestForm(t *testing.T) {
	form := Form()

	assert.Len(t, form.MandatorySubjects, 3)
	require.Len(t, form.ElectiveGroups, 2)
	assert.Equal(t, ElectiveNaturalScience, form.ElectiveGroups[0].Code)
	assert.Len(t, form.ElectiveGroups[1].Subjects, 3)
	// 3 mandatory + 6 elective + 3 averages + 2 bonuses
	assert.Len(t, form.Fields, 14)
	assert.Equal(t, PassThreshold, form.PassThreshold)

	last := form.Fields[len(form.Fields)-1]
	assert.Equal(t, FieldPriority, last.Field)
	require.NotNil(t, last.Max)
	assert.Equal(t, MaxPriority, *last.Max)
	assert.Nil(t, form.Fields[len(form.Fields)-2].Max)
}
