package voyage

// VesselSpeedProfile holds the speed and consumption constants used by the
// energy and timing model for both laden and unladen operation.
type VesselSpeedProfile struct {
	LadenSpeedKn       float64
	UnladenSpeedKn     float64
	LadenConsumption   float64 // kWh per nautical mile, base rate
	UnladenConsumption float64 // kWh per nautical mile, base rate
}

// ComputeLeg is the pure energy & timing model from spec.md §4.1. It is the
// single implementation shared by the DP engine and every diagnostic, which
// is a required invariant (testable property 6).
//
// Travel time = distance / (vessel_speed + current); the function fails
// with a DomainError when that denominator is non-positive, regardless of
// distance. Energy = distance * base_consumption * flow_multiplier, where
// the multiplier is 1.2 for a head current (current < 0), 0.8 for a tail
// current (current > 0), and 1.0 for slack water.
func ComputeLeg(distanceNM, currentKn float64, mode LegMode, profile VesselSpeedProfile) (energyKWh, travelTimeHr float64, err error) {
	speed := profile.LadenSpeedKn
	consumption := profile.LadenConsumption
	if mode == ModeUnladen {
		speed = profile.UnladenSpeedKn
		consumption = profile.UnladenConsumption
	}

	groundSpeed := speed + currentKn
	if groundSpeed <= 0 {
		return 0, 0, &DomainError{
			Operation: "ComputeLeg",
			Message:   "vessel speed plus current is non-positive; travel time is undefined",
		}
	}

	travelTimeHr = distanceNM / groundSpeed

	multiplier := 1.0
	switch {
	case currentKn < 0:
		multiplier = 1.2
	case currentKn > 0:
		multiplier = 0.8
	}
	energyKWh = distanceNM * consumption * multiplier

	return energyKWh, travelTimeHr, nil
}

// resolveLegs derives EnergyKWh/TravelTimeHr for every leg specified in
// distance-and-current form via ComputeLeg, so the DP engine never sees a
// leg whose cost bypassed the energy & timing model. A leg with
// DistanceNM == 0 is assumed to already carry precomputed EnergyKWh and
// TravelTimeHr and is left untouched.
func resolveLegs(in *FixedPathInputs) error {
	for i := range in.Legs {
		leg := &in.Legs[i]
		if leg.DistanceNM == 0 {
			continue
		}
		energyKWh, travelTimeHr, err := ComputeLeg(leg.DistanceNM, leg.CurrentKn, leg.Mode, in.Vessel.SpeedProfile)
		if err != nil {
			return err
		}
		leg.EnergyKWh = energyKWh
		leg.TravelTimeHr = travelTimeHr
	}
	return nil
}
