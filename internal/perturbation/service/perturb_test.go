package service

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPerturber() *Perturber {
	return NewPerturber(slog.New(slog.DiscardHandler))
}

func TestPerturber_AmountBounds(t *testing.T) {
	perturber := newTestPerturber()

	// The last entries exceed what an int64 seed conversion could hold.
	amounts := []float64{0.01, 1, 99.99, 100, 1234.56, 100000, -0.5, -100, -98765.43, 9.3e15, 1e16, 1e18, -1e16}
	for _, amount := range amounts {
		perturbed := perturber.Amount(amount)

		low := math.Abs(amount) * 0.9
		high := math.Abs(amount) * 1.1
		got := math.Abs(perturbed)

		// Half a cent of slack for the 2-decimal rounding.
		assert.GreaterOrEqual(t, got, low-0.005, "amount %v perturbed to %v", amount, perturbed)
		assert.LessOrEqual(t, got, high+0.005, "amount %v perturbed to %v", amount, perturbed)
	}
}

func TestPerturber_AmountPreservesSign(t *testing.T) {
	perturber := newTestPerturber()

	assert.Positive(t, perturber.Amount(100.0))
	assert.Negative(t, perturber.Amount(-100.0))
	assert.Zero(t, perturber.Amount(0))
}

func TestPerturber_AmountDeterministic(t *testing.T) {
	perturber := newTestPerturber()

	assert.Equal(t, perturber.Amount(1234.56), perturber.Amount(1234.56))
}

func TestPerturber_AmountRoundsToCents(t *testing.T) {
	perturber := newTestPerturber()

	perturbed := perturber.Amount(1234.5678)
	assert.Equal(t, math.Round(perturbed*100)/100, perturbed)
}

func TestPerturber_DateBounds(t *testing.T) {
	perturber := newTestPerturber()

	dates := []string{"2025-01-01", "2024-12-31", "2020-02-29", "1999-06-15"}
	for _, date := range dates {
		perturbed := perturber.Date(date)

		original, err := time.Parse("2006-01-02", date)
		require.NoError(t, err)
		shifted, err := time.Parse("2006-01-02", perturbed)
		require.NoError(t, err, "perturbed date %q should keep the input layout", perturbed)

		diff := shifted.Sub(original)
		assert.LessOrEqual(t, diff.Abs(), 30*24*time.Hour, "date %s shifted to %s", date, perturbed)
	}
}

func TestPerturber_DateDeterministic(t *testing.T) {
	perturber := newTestPerturber()

	assert.Equal(t, perturber.Date("2025-01-01"), perturber.Date("2025-01-01"))
}

func TestPerturber_DateLayoutPreserved(t *testing.T) {
	perturber := newTestPerturber()

	tests := []struct {
		name   string
		date   string
		layout string
	}{
		{"iso date", "2025-01-01", "2006-01-02"},
		{"rfc3339", "2025-01-01T12:30:00Z", time.RFC3339},
		{"datetime", "2025-01-01 12:30:00", "2006-01-02 15:04:05"},
		{"slash date", "2025/01/01", "2006/01/02"},
		{"us date", "01/31/2025", "01/02/2006"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perturbed := perturber.Date(tt.date)
			_, err := time.Parse(tt.layout, perturbed)
			assert.NoError(t, err, "perturbed %q", perturbed)
		})
	}
}

func TestPerturber_UnparseableDateFailsOpen(t *testing.T) {
	perturber := newTestPerturber()

	for _, value := range []string{"not-a-date", "", "32/13/9999", "yesterday"} {
		assert.Equal(t, value, perturber.Date(value))
	}
}
