package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"agreement-radar/types"
	"agreement-radar/vars"
)

// NormalizeError reports why the model output does not match ExtractedFields.
type NormalizeError struct {
	Issues types.FieldErrors
}

func (e *NormalizeError) Error() string {
	return "extraction output rejected: " + e.Issues.Error()
}

var (
	errInvalidJSON = errors.New("extraction output is not valid JSON")
	errNotObject   = errors.New("extraction output must be a single JSON object")
)

// Normalize decodes the untrusted completion in one pass. Either every field
// conforms (with defaults applied) or nothing is returned.
func Normalize(raw []byte) (*types.ExtractedFields, error) {
	// Decode stops after the first value; anything left over, including a
	// stray closing bracket, makes the whole answer invalid.
	if !json.Valid(raw) {
		return nil, errInvalidJSON
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	n := normalizer{obj: obj}
	fields := &types.ExtractedFields{
		Vendor:                 n.requiredString("vendor"),
		AgreementTitle:         n.requiredString("agreementTitle"),
		EffectiveDate:          n.optionalDate("effectiveDate"),
		TermLengthMonths:       n.count("termLengthMonths", vars.DefaultTermLengthMonths),
		EndDate:                n.optionalDate("endDate"),
		AutoRenews:             n.requiredBool("autoRenews"),
		NoticeDays:             n.count("noticeDays", vars.DefaultNoticeDays),
		ExplicitOptOutDate:     n.optionalDate("explicitOptOutDate"),
		RenewalFrequencyMonths: n.count("renewalFrequencyMonths", vars.DefaultRenewalFrequencyMonths),
	}
	if len(n.issues) > 0 {
		return nil, &NormalizeError{Issues: n.issues}
	}
	return fields, nil
}

type normalizer struct {
	obj    map[string]any
	issues types.FieldErrors
}

func (n *normalizer) fail(field, msg string) {
	n.issues = append(n.issues, types.FieldError{Field: field, Message: msg})
}

func (n *normalizer) requiredString(field string) string {
	v, ok := n.obj[field]
	if !ok || v == nil {
		n.fail(field, "required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		n.fail(field, "must be a string")
		return ""
	}
	return s
}

func (n *normalizer) requiredBool(field string) bool {
	v, ok := n.obj[field]
	if !ok || v == nil {
		n.fail(field, "required")
		return false
	}
	b, ok := v.(bool)
	if !ok {
		n.fail(field, "must be a boolean")
		return false
	}
	return b
}

// count reads a non-negative integer; absent or null takes the default.
func (n *normalizer) count(field string, def int) int {
	v, ok := n.obj[field]
	if !ok || v == nil {
		return def
	}
	num, ok := v.(json.Number)
	if !ok {
		n.fail(field, "must be an integer")
		return def
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		n.fail(field, "must be an integer")
		return def
	}
	if f < 0 {
		n.fail(field, "must not be negative")
		return def
	}
	if f > math.MaxInt32 {
		n.fail(field, "is too large")
		return def
	}
	return int(f)
}

// optionalDate reads YYYY-MM-DD or null. A string in any other shape is an
// error, never a silent null.
func (n *normalizer) optionalDate(field string) *types.Date {
	v, ok := n.obj[field]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		n.fail(field, "must be a YYYY-MM-DD string or null")
		return nil
	}
	d, err := types.ParseDate(s)
	if err != nil {
		n.fail(field, err.Error())
		return nil
	}
	return &d
}
