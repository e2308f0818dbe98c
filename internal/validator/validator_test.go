package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadForm struct {
	ElectiveGroup string `form:"electiveGroup" validate:"omitempty,elective_group"`
	Label         string `form:"label" validate:"max=10"`
}

type reportQuery struct {
	Format string `form:"format" validate:"omitempty,report_format"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(uploadForm{ElectiveGroup: "khtn", Label: "12A1"}))
	assert.NoError(t, v.Validate(uploadForm{}))
	assert.NoError(t, v.Validate(reportQuery{Format: "CSV"}))
}

func TestValidate_CustomTags(t *testing.T) {
	v := New()

	err := v.Validate(uploadForm{ElectiveGroup: "KHAC"})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "electiveGroup", errs[0].Field)
	assert.Equal(t, "elective_group", errs[0].Rule)
	assert.Equal(t, "electiveGroup phải là KHTN hoặc KHXH", errs[0].Message)

	err = v.Validate(reportQuery{Format: "pdf"})
	require.Error(t, err)
	errs = err.(ValidationErrors)
	assert.Equal(t, "format phải là xlsx hoặc csv", errs[0].Message)
}

func TestValidate_AccumulatesFields(t *testing.T) {
	v := New()

	err := v.Validate(uploadForm{ElectiveGroup: "x", Label: "a very long label"})
	require.Error(t, err)

	errs := err.(ValidationErrors)
	assert.Len(t, errs, 2)
	assert.Equal(t, []string{"electiveGroup", "label"}, errs.Fields())
	assert.NotEmpty(t, errs[1].Message)
}
