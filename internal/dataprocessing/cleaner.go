package dataprocessing

import (
	stderrors "errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"reportcards/pkg/contracts/domain"
)

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New()

	// Report spreadsheet column names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("column"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Clean applies the validation rules in order: rows with an empty identity
// field or score are dropped, then rows whose score is not a finite number
// are dropped. Nothing is an error; every exclusion is listed in Dropped.
func Clean(records []domain.RawRecord) domain.CleanResult {
	result := domain.CleanResult{
		Records: make([]domain.CleanRecord, 0, len(records)),
	}

	for _, raw := range records {
		trimmed := domain.RawRecord{
			Row:       raw.Row,
			StudentID: strings.TrimSpace(raw.StudentID),
			Name:      strings.TrimSpace(raw.Name),
			Subject:   strings.TrimSpace(raw.Subject),
			Score:     strings.TrimSpace(raw.Score),
		}

		if field, ok := firstMissingField(trimmed); !ok {
			result.Dropped = append(result.Dropped, domain.DroppedRow{
				Row:       raw.Row,
				StudentID: trimmed.StudentID,
				Reason:    domain.DropReasonMissingField,
				Field:     field,
				Value:     raw.Field(field),
			})
			continue
		}

		score, ok := ParseScore(trimmed.Score)
		if !ok {
			result.Dropped = append(result.Dropped, domain.DroppedRow{
				Row:       raw.Row,
				StudentID: trimmed.StudentID,
				Reason:    domain.DropReasonInvalidScore,
				Field:     domain.ColumnScore,
				Value:     raw.Score,
			})
			continue
		}

		result.Records = append(result.Records, domain.CleanRecord{
			Row:       raw.Row,
			StudentID: trimmed.StudentID,
			Name:      trimmed.Name,
			Subject:   trimmed.Subject,
			Score:     score,
		})
	}

	return result
}

// firstMissingField returns the first required column that is empty, in
// column order, or ok=true when all are present.
func firstMissingField(r domain.RawRecord) (string, bool) {
	err := recordValidator.Struct(r)
	if err == nil {
		return "", true
	}
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldErrs[0].Field(), false
	}
	return "", false
}

// ParseScore coerces a score cell to a finite base-10 number.
func ParseScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
