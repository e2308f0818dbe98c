package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/edutrial/thpt-score-service/internal/errors"
	"github.com/edutrial/thpt-score-service/internal/graduation"
	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	vi_translations "github.com/go-playground/validator/v10/translations/vi"
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

const (
	electiveGroupTag  = "elective_group"
	electiveGroupText = "{0} phải là KHTN hoặc KHXH"

	reportFormatTag  = "report_format"
	reportFormatText = "{0} phải là xlsx hoặc csv"
)

// Validator checks request envelopes (query strings, multipart forms) with struct tags.
// Calculator fields are checked by graduation.Validate instead.
type Validator struct {
	structValidator *validator.Validate
	translator      ut.Translator
}

// New creates a validator whose messages are in Vietnamese
func New() *Validator {
	structValidator := validator.New()

	locale := vi.New()
	uni := ut.New(locale, locale)
	translator, _ := uni.GetTranslator(locale.Locale())
	_ = vi_translations.RegisterDefaultTranslations(structValidator, translator)

	registerCustomValidators(structValidator, translator)

	return &Validator{
		structValidator: structValidator,
		translator:      translator,
	}
}

// ValidateStruct validates struct tags only, returning the raw validator error
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to translated ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err, v.translator); len(errs) > 0 {
		return errs
	}
	return err
}

// Translator returns the Vietnamese translator
func (v *Validator) Translator() ut.Translator {
	return v.translator
}

func registerCustomValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(electiveGroupTag, validateElectiveGroup)
	registerTranslation(validate, translator, electiveGroupTag, electiveGroupText)

	_ = validate.RegisterValidation(reportFormatTag, validateReportFormat)
	registerTranslation(validate, translator, reportFormatTag, reportFormatText)

	// Use form/JSON tag names for errors instead of Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func validateElectiveGroup(fl validator.FieldLevel) bool {
	_, ok := graduation.ParseElectiveGroup(fl.Field().String())
	return ok
}

func validateReportFormat(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "xlsx", "csv":
		return true
	}
	return false
}
