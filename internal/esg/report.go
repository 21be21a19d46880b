package esg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for report decoding; compare with errors.Is.
var (
	// ErrInvalidReportJSON wraps syntax errors in an uploaded report and
	// documents that are not JSON objects.
	ErrInvalidReportJSON = constError("invalid report JSON")

	// ErrMissingReportFields indicates an uploaded report lacks a usable
	// summary or metrics section.
	ErrMissingReportFields = constError("JSON must contain summary and metrics fields")
)

// requiredReportKeys must be present and truthy in an uploaded report.
//
//nolint:gochecknoglobals // Read-only lookup table.
var requiredReportKeys = []string{"summary", "metrics"}

// reportFields has Report's fields without its JSON methods.
type reportFields Report

// DecodeReport parses a prebuilt report uploaded as JSON. summary and
// metrics must be present and not falsy. Everything else is accepted: the
// document is kept in Raw and served back as uploaded, while the typed
// fields hold whatever parts of it match the report shape.
func DecodeReport(data []byte) (Report, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidReportJSON, err)
	}

	for _, key := range requiredReportKeys {
		raw, ok := top[key]
		if !ok || isFalsy(raw) {
			return Report{}, ErrMissingReportFields
		}
	}

	r, err := decodeLenient(data)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidReportJSON, err)
	}
	return r, nil
}

// MarshalJSON writes Raw when set, otherwise the typed fields.
func (r Report) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(reportFields(r))
}

// UnmarshalJSON decodes leniently and keeps the document in Raw when the
// typed fields cannot reproduce it, so archived uploads read back intact.
func (r *Report) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	out, err := decodeLenient(data)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// Sections returns the encoded value of each top-level key of the report
// as it would be served, keyed by JSON name.
func (r Report) Sections() (map[string]json.RawMessage, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeLenient fills the typed fields from a JSON object. Values of the
// wrong JSON type are left zero instead of failing the decode.
func decodeLenient(data []byte) (Report, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Report{}, errors.New("report must be a JSON object")
	}

	var fields reportFields
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return Report{}, err
		}
	}
	r := Report(fields)
	r.Raw = nil

	typed, err := json.Marshal(fields)
	if err != nil {
		return Report{}, err
	}
	if !sameDocument(trimmed, typed) {
		var buf bytes.Buffer
		if err = json.Compact(&buf, trimmed); err != nil {
			return Report{}, err
		}
		r.Raw = buf.Bytes()
	}
	return r, nil
}

// sameDocument reports whether a and b encode the same JSON value.
func sameDocument(a, b []byte) bool {
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}

// isFalsy reports whether a JSON value is null, false, 0 or "".
func isFalsy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	switch string(v) {
	case "null", "false", `""`:
		return true
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f == 0
	}
	return false
}
