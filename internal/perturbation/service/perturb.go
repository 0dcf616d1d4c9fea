// Package service implements bounded deterministic perturbation of
// transaction amounts and dates.
//
// Both functions derive their noise from the plaintext value itself, so the
// same input always perturbs the same way and no mapping is needed to keep
// outputs stable. This also means an observer who knows the algorithm can
// narrow the true value from the perturbed one; exact values are only
// protected by the reversible mapping, not by the perturbation.
package service

import (
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"math"
	"time"
)

const (
	// amountSpread is the total multiplicative range around 1.0 (±10%).
	amountSpread = 0.2
	// maxDayOffset bounds date shifts to ±30 days.
	maxDayOffset = 30
)

// dateLayouts are tried in order; the matching layout is also used to render
// the shifted date, so the output keeps the input's shape.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// Perturber applies the two sensitivity-driven transforms. These run on
// every transaction's amount and date regardless of PII detection results.
type Perturber struct {
	logger *slog.Logger
}

// NewPerturber creates a perturber. The logger is used for fail-open date
// parsing warnings only.
func NewPerturber(logger *slog.Logger) *Perturber {
	return &Perturber{logger: logger}
}

// Amount multiplies the value by a factor in [0.90, 1.10] seeded from the
// value's own magnitude, preserves the sign, and rounds to 2 decimals.
func (p *Perturber) Amount(amount float64) float64 {
	if amount == 0 {
		return 0
	}

	magnitude := math.Abs(amount)
	// Seed stays in floating point: converting to int overflows for very
	// large magnitudes and would push the factor outside the ±10% band.
	seed := math.Mod(math.Floor(magnitude*1000), 100)
	factor := (1 - amountSpread/2) + seed/100*amountSpread

	perturbed := math.Round(magnitude*factor*100) / 100
	if amount < 0 {
		return -perturbed
	}
	return perturbed
}

// Date shifts the date by an offset in [-30, +30] days seeded from a content
// hash of the literal string, rendering the result with the layout that
// parsed. Unparseable input is returned unchanged (fail-open, logged).
func (p *Perturber) Date(date string) string {
	parsed, layout, ok := parseDate(date)
	if !ok {
		p.logger.Warn("unparseable date left unperturbed", slog.String("value", date))
		return date
	}

	sum := sha256.Sum256([]byte(date))
	seed := binary.BigEndian.Uint64(sum[:8])
	offset := int(seed%(2*maxDayOffset+1)) - maxDayOffset

	return parsed.AddDate(0, 0, offset).Format(layout)
}

func parseDate(date string) (time.Time, string, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, date); err == nil {
			return parsed, layout, true
		}
	}
	return time.Time{}, "", false
}
