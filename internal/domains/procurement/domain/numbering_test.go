package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPONumber(t *testing.T) {
	day := PONumberDay(time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "20240601", day)

	first, err := NextPONumber(day, "")
	require.NoError(t, err)
	assert.Equal(t, "PO-20240601-0001", first)

	second, err := NextPONumber(day, first)
	require.NoError(t, err)
	assert.Equal(t, "PO-20240601-0002", second)

	_, err = NextPONumber("20240602", second)
	require.ErrorIs(t, err, ErrMalformedPONumber)
}

func TestFormatPONumber_PadsAndCaps(t *testing.T) {
	number, err := FormatPONumber("20240601", 42)
	require.NoError(t, err)
	assert.Equal(t, "PO-20240601-0042", number)

	last, err := FormatPONumber("20240601", MaxPOSequence)
	require.NoError(t, err)
	assert.Equal(t, "PO-20240601-9999", last)
	assert.Less(t, number, last)

	for _, seq := range []int{0, MaxPOSequence + 1, 12345} {
		_, err := FormatPONumber("20240601", seq)
		assert.ErrorIs(t, err, ErrPOSequenceExhausted, seq)
	}

	_, err = NextPONumber("20240601", last)
	require.ErrorIs(t, err, ErrPOSequenceExhausted)
}

func TestParsePONumber(t *testing.T) {
	day, seq, err := ParsePONumber("PO-20240601-0007")
	require.NoError(t, err)
	assert.Equal(t, "20240601", day)
	assert.Equal(t, 7, seq)

	for _, bad := range []string{"", "PO-2024-0001", "XX-20240601-0001", "PO-20240601-abc", "PO-20241301-0001", "PO-20240601-0000"} {
		_, _, err := ParsePONumber(bad)
		assert.ErrorIs(t, err, ErrMalformedPONumber, bad)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := map[string]string{
		"0":           "$0.00",
		"5":           "$5.00",
		"1234.5":      "$1,234.50",
		"999":         "$999.00",
		"1000":        "$1,000.00",
		"1234567.891": "$1,234,567.89",
		"-42.5":       "-$42.50",
	}
	for raw, expected := range tests {
		assert.Equal(t, expected, FormatCurrency(decimal.RequireFromString(raw)), raw)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 50))
	long := "ÄÖÜ" + string(make([]rune, 60))
	assert.Len(t, []rune(Truncate(long, 50)), 50)
	assert.Equal(t, "", Truncate("abc", 0))
}
