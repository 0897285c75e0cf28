package record

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"agreement-radar/types"
)

// UploadMeta is what the pipeline knows about the upload itself.
type UploadMeta struct {
	FileName  string
	FilePath  string
	SHA256    string
	ModelName string
	RawJSON   json.RawMessage
}

// ValidationError lists every field the composed agreement violates.
type ValidationError struct {
	Issues types.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Issues.Error()
}

// Build maps normalized fields onto a new agreement, resolves its end date and
// validates the result. Nothing is returned unless the whole record is valid.
func Build(fields *types.ExtractedFields, meta UploadMeta) (*types.Agreement, error) {
	if fields == nil {
		return nil, &ValidationError{Issues: types.FieldErrors{{Field: "fields", Message: "required"}}}
	}

	a := &types.Agreement{
		Vendor:                 strings.TrimSpace(fields.Vendor),
		Title:                  strings.TrimSpace(fields.AgreementTitle),
		EffectiveDate:          fields.EffectiveDate,
		EndDate:                ResolveEndDate(fields.EffectiveDate, fields.TermLengthMonths, fields.EndDate),
		TermLengthMonths:       fields.TermLengthMonths,
		AutoRenews:             fields.AutoRenews,
		NoticeDays:             fields.NoticeDays,
		ExplicitOptOutDate:     fields.ExplicitOptOutDate,
		RenewalFrequencyMonths: fields.RenewalFrequencyMonths,
		SourceFileName:         meta.FileName,
		SourceFilePath:         meta.FilePath,
		SourceSHA256:           meta.SHA256,
		ModelName:              meta.ModelName,
		ParseStatus:            types.ParseStatusParsed,
	}
	if len(meta.RawJSON) > 0 {
		a.RawExtraction = datatypes.JSON(meta.RawJSON)
	}

	if issues := Validate(a); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return a, nil
}

// ResolveEndDate returns the explicit end date verbatim, otherwise
// effective + term months - 1 day, otherwise nil.
func ResolveEndDate(effective *types.Date, termMonths int, explicit *types.Date) *types.Date {
	if explicit != nil {
		return explicit
	}
	if effective == nil || termMonths <= 0 {
		return nil
	}
	end := effective.AddMonths(termMonths).AddDays(-1)
	return &end
}

// Validate checks the agreement shape before it may be persisted.
func Validate(a *types.Agreement) types.FieldErrors {
	var errs types.FieldErrors

	if a.Vendor == "" {
		errs = append(errs, types.FieldError{Field: "vendor", Message: "must not be empty"})
	}
	if a.Title == "" {
		errs = append(errs, types.FieldError{Field: "title", Message: "must not be empty"})
	}
	if a.SourceFilePath == "" {
		errs = append(errs, types.FieldError{Field: "sourceFilePath", Message: "must not be empty"})
	}
	if a.TermLengthMonths < 0 {
		errs = append(errs, types.FieldError{Field: "termLengthMonths", Message: "must not be negative"})
	}
	if a.NoticeDays < 0 {
		errs = append(errs, types.FieldError{Field: "noticeDays", Message: "must not be negative"})
	}
	if a.RenewalFrequencyMonths < 0 {
		errs = append(errs, types.FieldError{Field: "renewalFrequencyMonths", Message: "must not be negative"})
	}
	if a.EndDate != nil && !storable(*a.EndDate) {
		errs = append(errs, types.FieldError{Field: "endDate", Message: "must fall within years 0001-9999"})
	} else if a.EndDate != nil && a.AutoRenews && a.NoticeDays > 0 && !storable(a.EndDate.AddDays(-a.NoticeDays)) {
		errs = append(errs, types.FieldError{Field: "noticeDays", Message: "puts the notice deadline before year 0001"})
	}
	if a.ParseStatus != types.ParseStatusParsed {
		errs = append(errs, types.FieldError{Field: "parseStatus", Message: "must be " + types.ParseStatusParsed})
	}
	if len(a.RawExtraction) > 0 && !json.Valid(a.RawExtraction) {
		errs = append(errs, types.FieldError{Field: "rawExtraction", Message: "must be valid JSON"})
	}

	return errs
}

// storable reports whether d still prints as YYYY-MM-DD, which is also the
// range a DATE column accepts.
func storable(d types.Date) bool {
	return d.Year() >= 1 && d.Year() <= 9999
}
