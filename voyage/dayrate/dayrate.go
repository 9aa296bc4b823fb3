// Package dayrate selects a port's daylight or night shore-power tariff for
// a given arrival time and location, grounded on the same suncalc sun-times
// lookup the teacher's MPC solar-forecast step uses.
package dayrate

import (
	"time"

	"github.com/sixdouglas/suncalc"
)

// Rates is a port's flat day/night £/kWh shore-power tariff pair. This is a
// static rate selector, not spot pricing: no time-of-day market feed is
// consulted.
type Rates struct {
	DayPriceGBPPerKWh   float64
	NightPriceGBPPerKWh float64
}

// PriceAt returns the tariff applicable at t for a port at (lat, lon): the
// day rate between sunrise and sunset, the night rate otherwise.
func PriceAt(t time.Time, lat, lon float64, rates Rates) float64 {
	if IsDaylight(t, lat, lon) {
		return rates.DayPriceGBPPerKWh
	}
	return rates.NightPriceGBPPerKWh
}

// IsDaylight reports whether t falls between sunrise and sunset at (lat, lon).
func IsDaylight(t time.Time, lat, lon float64) bool {
	times := suncalc.GetTimes(t, lat, lon)
	sunrise := times["sunrise"].Value
	sunset := times["sunset"].Value
	if sunrise.IsZero() || sunset.IsZero() {
		// Polar day/night: suncalc leaves these zero when the sun never
		// rises or sets; treat as daylight only if the sun is above the
		// horizon right now.
		pos := suncalc.GetPosition(t, lat, lon)
		return pos.Altitude > 0
	}
	return t.After(sunrise) && t.Before(sunset)
}
