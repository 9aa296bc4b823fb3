package dayrate

import (
	"testing"
	"time"
)

func TestPriceAtNoon(t *testing.T) {
	loc := time.UTC
	noon := time.Date(2026, 6, 21, 12, 0, 0, 0, loc)
	rates := Rates{DayPriceGBPPerKWh: 0.20, NightPriceGBPPerKWh: 0.08}

	price := PriceAt(noon, 51.5, -0.12, rates)
	if price != rates.DayPriceGBPPerKWh {
		t.Errorf("expected day rate %v at local noon, got %v", rates.DayPriceGBPPerKWh, price)
	}
}

func TestPriceAtMidnight(t *testing.T) {
	loc := time.UTC
	midnight := time.Date(2026, 6, 21, 0, 30, 0, 0, loc)
	rates := Rates{DayPriceGBPPerKWh: 0.20, NightPriceGBPPerKWh: 0.08}

	price := PriceAt(midnight, 51.5, -0.12, rates)
	if price != rates.NightPriceGBPPerKWh {
		t.Errorf("expected night rate %v at local midnight, got %v", rates.NightPriceGBPPerKWh, price)
	}
}
