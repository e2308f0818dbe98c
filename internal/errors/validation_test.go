package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("toan", "Điểm môn Toán không được để trống.", "")

	assert.Equal(t, "toan", err.Field)
	assert.Equal(t, "Điểm môn Toán không được để trống.", err.Message)
	assert.Equal(t, "", err.Value)
	assert.Equal(t, "validation error on field 'toan': Điểm môn Toán không được để trống.", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("field1", "message1", nil))
	assert.Equal(t, "validation failed: field1 message1", errs.Error())

	errs = append(errs, *NewValidationError("field2", "message2", nil))
	errs = append(errs, *NewValidationError("field1", "message3", nil))
	assert.Equal(t, "validation failed: 3 field errors", errs.Error())
	assert.Equal(t, []string{"message1", "message2", "message3"}, errs.Messages())
	assert.Equal(t, []string{"field1", "field2"}, errs.Fields())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("diemUuTien", "out of range", RuleRange, "3")

	assert.Equal(t, RuleRange, err.Rule)
	assert.Equal(t, "diemUuTien", err.Field)
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		Format string `validate:"required,oneof=xlsx csv"`
		Limit  int    `validate:"max=100"`
	}

	err := validator.New().Struct(payload{Format: "pdf", Limit: 500})
	require.Error(t, err)

	errs := ToValidationErrors(err, nil)
	require.Len(t, errs, 2)
	assert.Equal(t, "oneof", errs[0].Rule)
	assert.Equal(t, "phải là một trong: xlsx csv", errs[0].Message)
	assert.Equal(t, "max", errs[1].Rule)
	assert.Equal(t, "phải nhỏ hơn hoặc bằng 100", errs[1].Message)
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	assert.Empty(t, ToValidationErrors(assert.AnError, nil))
}
