// Package core provides the ledger record, its validation rules and the
// read envelope.
//
// This file contains amount coercion and formatting. Amounts are float64
// end to end and are only rounded when they are written out with two
// fractional digits.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseAmount coerces a caller-supplied amount to float64.
//
// Numbers of any Go numeric kind are accepted, as are json.Number and
// numeric strings (surrounding whitespace is ignored). NaN and infinities
// are rejected. The sign is not checked here.
//
// Examples:
//
//	ParseAmount(12.5)     -> 12.5, nil
//	ParseAmount(" 3.20 ") -> 3.2, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		f = parsed
	default:
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// AmountCell is an amount column as found in storage. Numeric is false when
// the cell could not be parsed; Raw then carries the original text.
type AmountCell struct {
	Raw     string
	Value   float64
	Numeric bool
}

// ParseAmountCell never fails: unparseable text is kept as-is.
func ParseAmountCell(raw string) AmountCell {
	if raw == "" {
		return AmountCell{}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return AmountCell{Raw: raw}
	}
	return AmountCell{Raw: raw, Value: f, Numeric: true}
}

// NumberCell returns a numeric cell for f.
func NumberCell(f float64) AmountCell {
	return AmountCell{Raw: FormatAmount(f), Value: f, Numeric: true}
}

// MarshalJSON emits a number, the raw string, or null for an empty cell.
func (c AmountCell) MarshalJSON() ([]byte, error) {
	switch {
	case c.Numeric:
		return json.Marshal(c.Value)
	case c.Raw == "":
		return []byte("null"), nil
	default:
		return marshalNoEscape(c.Raw)
	}
}
