package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Feed field names used downstream of the feed client
const (
	FieldSchemeCode       = "Scheme_Code"
	FieldNetAssetValue    = "Net_Asset_Value"
	FieldDate             = "Date"
	FieldFundFamily       = "Mutual_Fund_Family"
	FieldSchemeName       = "Scheme_Name"
	FieldSchemeType       = "Scheme_Type"
	FieldSchemeCategory   = "Scheme_Category"
	FieldISINGrowth       = "ISIN_Div_Payout_ISIN_Growth"
	FieldISINReinvestment = "ISIN_Div_Reinvestment"
)

// RawRecord is one untyped object of a feed snapshot
type RawRecord map[string]any

// Text returns the field rendered as trimmed text.
// Missing, null, false, empty and numeric-zero values all render as "".
func (r RawRecord) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if !t {
			return ""
		}
		return "true"
	default:
		return ""
	}
}

// OptionalText returns a pointer to the field text, or nil when the field is empty
func (r RawRecord) OptionalText(key string) *string {
	s := r.Text(key)
	if s == "" {
		return nil
	}
	return &s
}

// SchemeCode parses Scheme_Code as an integer
func (r RawRecord) SchemeCode() (int64, bool) {
	s := r.Text(FieldSchemeCode)
	if s == "" {
		return 0, false
	}
	code, err := strconv.ParseInt(s, 10, 64)
	if err != nil || code <= 0 {
		return 0, false
	}
	return code, true
}
