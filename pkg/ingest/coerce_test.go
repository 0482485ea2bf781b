package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceTimeToSeconds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int64
	}{
		{name: "hours and minutes", input: "2:30", want: int64Ptr(9000)},
		{name: "zero", input: "0:00", want: int64Ptr(0)},
		{name: "large hours", input: "48:15", want: int64Ptr(174300)},
		{name: "spaced", input: " 1 : 05 ", want: int64Ptr(3900)},
		{name: "na sentinel", input: "NA", want: nil},
		{name: "empty", input: "", want: nil},
		{name: "no colon", input: "230", want: nil},
		{name: "three parts", input: "1:02:03", want: nil},
		{name: "non numeric", input: "x:y", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceTimeToSeconds(tt.input))
		})
	}
}

func TestCoerceDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{name: "plain number", input: "123.4", want: float64Ptr(123.4)},
		{name: "integer", input: "42", want: float64Ptr(42)},
		{name: "percent stripped", input: "87.5%", want: float64Ptr(87.5)},
		{name: "percent with space", input: "87.5 %", want: float64Ptr(87.5)},
		{name: "negative", input: "-0.12", want: float64Ptr(-0.12)},
		{name: "na sentinel", input: "NA", want: nil},
		{name: "empty", input: "", want: nil},
		{name: "non numeric", input: "abc", want: nil},
		{name: "nan normalized to nil", input: "NaN", want: nil},
		{name: "inf normalized to nil", input: "Inf", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceDecimal(tt.input))
		})
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int64
	}{
		{name: "plain", input: "12345", want: int64Ptr(12345)},
		{name: "negative", input: "-7", want: int64Ptr(-7)},
		{name: "na sentinel", input: "NA", want: nil},
		{name: "empty", input: "", want: nil},
		{name: "float rejected", input: "1.5", want: nil},
		{name: "non numeric", input: "many", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceInt(tt.input))
		})
	}
}

func TestCoerceDate(t *testing.T) {
	t.Run("ddmmyyyy round trip", func(t *testing.T) {
		// 31/01/2024 must parse as January 31st, never month/day swapped.
		got := CoerceDate("31/01/2024")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("ambiguous day month", func(t *testing.T) {
		// 01/02/2024 is February 1st in DD/MM/YYYY.
		got := CoerceDate("01/02/2024")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("iso fallback", func(t *testing.T) {
		got := CoerceDate("2024-01-31")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("invalid date yields nil", func(t *testing.T) {
		assert.Nil(t, CoerceDate("32/01/2024"))
		assert.Nil(t, CoerceDate("31/13/2024"))
		assert.Nil(t, CoerceDate("not a date"))
	})

	t.Run("na and empty yield nil", func(t *testing.T) {
		assert.Nil(t, CoerceDate("NA"))
		assert.Nil(t, CoerceDate(""))
		assert.Nil(t, CoerceDate("   "))
	})
}

func TestCoerceString(t *testing.T) {
	assert.Nil(t, CoerceString(""))
	assert.Nil(t, CoerceString("NA"))
	assert.Nil(t, CoerceString("   "))

	got := CoerceString("  hello ")
	require.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
