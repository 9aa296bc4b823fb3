package voyage

import "testing"

func testProfile() VesselSpeedProfile {
	return VesselSpeedProfile{
		LadenSpeedKn:       10,
		UnladenSpeedKn:     12,
		LadenConsumption:   50,
		UnladenConsumption: 40,
	}
}

func TestComputeLegTailCurrent(t *testing.T) {
	energyKWh, travelTimeHr, err := ComputeLeg(100, 2, ModeLaden, testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(travelTimeHr, 100.0/12) {
		t.Errorf("expected travel time %v, got %v", 100.0/12, travelTimeHr)
	}
	if !almostEqual(energyKWh, 100*50*0.8) {
		t.Errorf("expected energy %v, got %v", 100*50*0.8, energyKWh)
	}
}

func TestComputeLegHeadCurrent(t *testing.T) {
	energyKWh, _, err := ComputeLeg(100, -2, ModeUnladen, testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(energyKWh, 100*40*1.2) {
		t.Errorf("expected energy %v, got %v", 100*40*1.2, energyKWh)
	}
}

// TestComputeLegNonPositiveGroundSpeed covers spec.md §4.1's domain-error
// requirement (testable property 9): the denominator check fires
// regardless of distance, including a zero-length leg.
func TestComputeLegNonPositiveGroundSpeed(t *testing.T) {
	cases := []struct {
		name       string
		distanceNM float64
	}{
		{"zero distance", 0},
		{"positive distance", 50},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := ComputeLeg(c.distanceNM, -15, ModeLaden, testProfile())
			if err == nil {
				t.Fatal("expected a domain error when ground speed is non-positive")
			}
			if _, ok := err.(*DomainError); !ok {
				t.Fatalf("expected *DomainError, got %T", err)
			}
		})
	}
}

func TestResolveLegsDerivesFromDistance(t *testing.T) {
	in := &FixedPathInputs{
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", DistanceNM: 100, CurrentKn: 2, Mode: ModeLaden},
			{FromPort: "B", ToPort: "C", TravelTimeHr: 5, EnergyKWh: 1000},
		},
		Vessel: VesselConfig{SpeedProfile: testProfile()},
	}

	if err := resolveLegs(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(in.Legs[0].TravelTimeHr, 100.0/12) {
		t.Errorf("expected derived travel time %v, got %v", 100.0/12, in.Legs[0].TravelTimeHr)
	}
	if !almostEqual(in.Legs[0].EnergyKWh, 100*50*0.8) {
		t.Errorf("expected derived energy %v, got %v", 100*50*0.8, in.Legs[0].EnergyKWh)
	}

	// The precomputed leg has no distance, so it must be left untouched.
	if in.Legs[1].TravelTimeHr != 5 || in.Legs[1].EnergyKWh != 1000 {
		t.Errorf("expected precomputed leg to be left untouched, got %+v", in.Legs[1])
	}
}

func TestResolveLegsPropagatesDomainError(t *testing.T) {
	in := &FixedPathInputs{
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", DistanceNM: 100, CurrentKn: -20, Mode: ModeLaden},
		},
		Vessel: VesselConfig{SpeedProfile: testProfile()},
	}

	err := resolveLegs(in)
	if err == nil {
		t.Fatal("expected a domain error to propagate from ComputeLeg")
	}
	if _, ok := err.(*DomainError); !ok {
		t.Fatalf("expected *DomainError, got %T", err)
	}
}
