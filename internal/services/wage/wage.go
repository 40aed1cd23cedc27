// Package wage holds the money math for work logs and gig invoices.
// Amounts are kept at currency-minor-unit precision (two decimals).
package wage

import (
	"math"
	"time"

	"github.com/pehchaan/pehchaan_be/internal/models"
)

// Visiting charge breakdown applied to every gig at request time.
const (
	VisitingCharge        = 110.00
	PlatformFee           = 10.00
	LaborerVisitingPayout = 100.00
)

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Compute converts a checked-out interval into earned wages.
// HOURLY pays rate per elapsed hour (minutes/60, two-decimal precision);
// DAILY pays the flat rate regardless of elapsed time.
func Compute(wageType models.WageType, rate float64, checkIn, checkOut time.Time) float64 {
	switch wageType {
	case models.WageDaily:
		return Round2(rate)
	case models.WageHourly:
		minutes := checkOut.Sub(checkIn).Minutes()
		hours := Round2(minutes / 60)
		return Round2(rate * hours)
	}
	return 0
}

// InvoiceTotal is the final gig amount: visiting charge plus any add-ons.
func InvoiceTotal(visitingCharge, additionalAmount float64) float64 {
	return Round2(visitingCharge + additionalAmount)
}
