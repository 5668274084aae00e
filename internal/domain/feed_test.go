package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, raw string) RawRecord {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var rec RawRecord
	require.NoError(t, dec.Decode(&rec))
	return rec
}

func TestRawRecord_Text(t *testing.T) {
	rec := decodeRecord(t, `{
		"Scheme_Code": 119551,
		"Net_Asset_Value": "250.3333",
		"Date": " 01-Apr-2024 ",
		"Zero": 0,
		"Null": null,
		"Flag": false,
		"Empty": ""
	}`)

	assert.Equal(t, "119551", rec.Text(FieldSchemeCode))
	assert.Equal(t, "250.3333", rec.Text(FieldNetAssetValue))
	assert.Equal(t, "01-Apr-2024", rec.Text(FieldDate))
	assert.Equal(t, "", rec.Text("Zero"))
	assert.Equal(t, "", rec.Text("Null"))
	assert.Equal(t, "", rec.Text("Flag"))
	assert.Equal(t, "", rec.Text("Empty"))
	assert.Equal(t, "", rec.Text("Missing"))
	assert.Nil(t, rec.OptionalText("Empty"))
	assert.Equal(t, "01-Apr-2024", *rec.OptionalText(FieldDate))
}

func TestRawRecord_SchemeCode(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int64
		wantOK bool
	}{
		{name: "Numeric code", raw: `{"Scheme_Code": 119551}`, want: 119551, wantOK: true},
		{name: "String code", raw: `{"Scheme_Code": "100027"}`, want: 100027, wantOK: true},
		{name: "Missing code", raw: `{}`, wantOK: false},
		{name: "Non-integer code", raw: `{"Scheme_Code": "ABC"}`, wantOK: false},
		{name: "Negative code", raw: `{"Scheme_Code": -4}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := decodeRecord(t, tt.raw).SchemeCode()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestParseNAVDate(t *testing.T) {
	d, err := ParseNAVDate("01-Apr-2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01T00:00:00Z", d.Format("2006-01-02T15:04:05Z07:00"))

	d, err = ParseNAVDate("1-Apr-2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01T00:00:00Z", d.Format("2006-01-02T15:04:05Z07:00"))

	_, err = ParseNAVDate("2024-04-01")
	assert.Error(t, err)
}

func TestIsOpenEndedType(t *testing.T) {
	assert.True(t, IsOpenEndedType("Open Ended Schemes"))
	assert.True(t, IsOpenEndedType("INTERVAL FUND - OPEN"))
	assert.False(t, IsOpenEndedType("Close Ended Schemes"))
	assert.False(t, IsOpenEndedType(""))
}
