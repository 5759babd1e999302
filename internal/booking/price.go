package booking

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Nights returns the number of nights billed for a stay: the elapsed time
// between check-in and check-out divided by one day, rounded up.  A
// non-positive span yields zero.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// TotalPrice returns pricePerNight × nights.
func TotalPrice(pricePerNight float64, nights int) float64 {
	return pricePerNight * float64(nights)
}

// Overlaps reports whether two stays conflict.  Bounds are inclusive, so
// a check-out on the same instant as another stay's check-in counts as a
// conflict (no same-day turnover).  This mirrors the storage query.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return !aIn.After(bOut) && !aOut.Before(bIn)
}
