package services

import "math"

// FareCalculator applies the static per-km rate. There is no surge or
// time-of-day pricing in this product.
type FareCalculator struct {
	perKm float64
}

func NewFareCalculator(perKm float64) *FareCalculator {
	return &FareCalculator{perKm: perKm}
}

// Price returns the fare for a distance in km, rounded to 2 decimals.
func (f *FareCalculator) Price(distanceKm float64) float64 {
	return math.Round(distanceKm*f.perKm*100) / 100
}
