package timefmt_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cmlabs-hris/hris-notify/internal/pkg/timefmt"
)

func TestClock12(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Skip("tzdata not available")
	}

	tests := []struct {
		name  string
		value string
		loc   *time.Location
		want  string
	}{
		{"iso utc", "2024-03-01T09:15:00Z", time.UTC, "09:15 AM"},
		{"iso afternoon", "2024-03-01T17:05:00Z", time.UTC, "05:05 PM"},
		{"iso millis", "2024-03-01T09:15:00.000Z", time.UTC, "09:15 AM"},
		{"iso converted to location", "2024-03-01T02:15:00Z", jakarta, "09:15 AM"},
		{"iso without offset read in location", "2024-03-01T09:15:00", jakarta, "09:15 AM"},
		{"display string passes through", "09:15 AM", time.UTC, "09:15 AM"},
		{"free text passes through", "forgot to punch", time.UTC, "forgot to punch"},
		{"malformed iso passes through", "2024-03-01Tnope", time.UTC, "2024-03-01Tnope"},
		{"empty", "", time.UTC, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timefmt.Clock12(tt.value, tt.loc))
		})
	}
}

func TestParseClock12(t *testing.T) {
	tests := []struct {
		value string
		want  int
		ok    bool
	}{
		{"09:15 AM", 9*60 + 15, true},
		{"12:00 PM", 12 * 60, true},
		{"12:30 AM", 30, true},
		{"1:05 pm", 13*60 + 5, true},
		{"17:45", 17*60 + 45, true},
		{"later", 0, false},
	}
	for _, tt := range tests {
		got, ok := timefmt.ParseClock12(tt.value)
		assert.Equal(t, tt.ok, ok, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}

func TestDatePart(t *testing.T) {
	assert.Equal(t, "2024-03-01", timefmt.DatePart("2024-03-01T00:00:00Z"))
	assert.Equal(t, "2024-03-01", timefmt.DatePart("2024-03-01"))
	assert.Equal(t, "2024-03-01", timefmt.DatePart("2024-03-01 08:00:00"))
	assert.Equal(t, "01/03/2024", timefmt.DatePart(" 01/03/2024 "))
}

func TestHumanDate(t *testing.T) {
	assert.Equal(t, "01 Mar 2024", timefmt.HumanDate("2024-03-01T00:00:00Z"))
	assert.Equal(t, "N/A", timefmt.HumanDate(""))
	assert.Equal(t, "soon", timefmt.HumanDate("soon"))
}

func TestHumanTime(t *testing.T) {
	assert.Equal(t, "N/A", timefmt.HumanTime(nil, time.UTC))
	ts := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "01 Mar 2024", timefmt.HumanTime(&ts, time.UTC))
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"1500000", "IDR", "IDR 1,500,000.00"},
		{"999.5", "USD", "USD 999.50"},
		{"0", "", "0.00"},
		{"-1234.567", "EUR", "EUR -1,234.57"},
		{"100000", "INR", "INR 100,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timefmt.Currency(decimal.RequireFromString(tt.amount), tt.code))
	}
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, "N/A", timefmt.OrNA("  "))
	assert.Equal(t, "x", timefmt.OrNA("x"))
}
