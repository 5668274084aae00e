package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPortfolio_Revalue(t *testing.T) {
	tests := []struct {
		name      string
		units     string
		nav       string
		wantNAV   string
		wantValue string
	}{
		{
			name:      "Fractional units round half away from zero",
			units:     "10.5",
			nav:       "250.3333",
			wantValue: "2628.5",
		},
		{
			name:      "Whole units",
			units:     "100",
			nav:       "12.3456",
			wantValue: "1234.56",
		},
		{
			name:      "Rounds down below half",
			units:     "3",
			nav:       "1.0011",
			wantValue: "3",
		},
		{
			name:      "NAV beyond stored precision is quantized first",
			units:     "1000000",
			nav:       "10.1234565",
			wantNAV:   "10.123457",
			wantValue: "10123457",
		},
		{
			name:      "Zero NAV yields zero value",
			units:     "42.123",
			nav:       "0",
			wantValue: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Portfolio{
				ID:       uuid.New(),
				UserID:   uuid.New(),
				SchemeID: uuid.New(),
				Units:    decimal.RequireFromString(tt.units),
			}

			p.Revalue(decimal.RequireFromString(tt.nav))

			wantNAV := tt.wantNAV
			if wantNAV == "" {
				wantNAV = tt.nav
			}
			assert.True(t, p.CurrentNAV.Equal(decimal.RequireFromString(wantNAV)),
				"got nav %s want %s", p.CurrentNAV, wantNAV)
			assert.True(t, p.CurrentValue.Equal(decimal.RequireFromString(tt.wantValue)),
				"got %s want %s", p.CurrentValue, tt.wantValue)
			assert.True(t, p.CurrentValue.Equal(ValueOf(p.Units, p.CurrentNAV)))
		})
	}
}

func TestPortfolio_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Portfolio
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Valid holding",
			p:       Portfolio{UserID: uuid.New(), SchemeID: uuid.New(), Units: decimal.NewFromInt(5)},
			wantErr: false,
		},
		{
			name:    "Missing user",
			p:       Portfolio{SchemeID: uuid.New(), Units: decimal.NewFromInt(5)},
			wantErr: true,
			errMsg:  "portfolio must reference a user",
		},
		{
			name:    "Missing scheme",
			p:       Portfolio{UserID: uuid.New(), Units: decimal.NewFromInt(5)},
			wantErr: true,
			errMsg:  "portfolio must reference a scheme",
		},
		{
			name:    "Zero units",
			p:       Portfolio{UserID: uuid.New(), SchemeID: uuid.New(), Units: decimal.Zero},
			wantErr: true,
			errMsg:  "portfolio units must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				assert.EqualError(t, err, tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
