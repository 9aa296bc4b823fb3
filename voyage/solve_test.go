package voyage

import (
	"math"
	"testing"
)

// zeroHotellingTable turns off hotelling power entirely, so the worked
// examples that don't mention a hotelling term (spec.md §8) can be checked
// against exact expected figures.
func zeroHotellingTable() *ColdIroningTable {
	return &ColdIroningTable{
		Fallbacks: map[string]ColdIroningFallback{
			"": {FactorPerGT: 0, MinKW: 0, MaxKW: 0},
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// TestSolveSingleLegNoOps covers spec.md §8 scenario S1.
func TestSolveSingleLegNoOps(t *testing.T) {
	in := &FixedPathInputs{
		Route: []Port{{Name: "A"}, {Name: "B"}},
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", TravelTimeHr: 8, EnergyKWh: 9800},
		},
		Vessel: VesselConfig{
			CapacityKWh:        20000,
			InitialSOCKWh:      20000,
			MinFinalSOCKWh:     4000,
			MinOperatingSOCKWh: 4000,
		},
		SOCStepKWh:  100,
		TimeQuantHr: 1,
		ColdIroning: zeroHotellingTable(),
	}

	result, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(result.Steps))
	}
	step := result.Steps[0]
	if step.Operation != OpNone {
		t.Errorf("expected none operation, got %v", step.Operation)
	}
	if step.PortName != "A" {
		t.Errorf("expected operation at A, got %s", step.PortName)
	}
	if !almostEqual(step.SOCAfterSegmentKWh, 10200) {
		t.Errorf("expected SoC after segment 10200, got %v", step.SOCAfterSegmentKWh)
	}
	if !almostEqual(result.TotalCostGBP, 0) {
		t.Errorf("expected zero cost, got %v", result.TotalCostGBP)
	}
	if !almostEqual(result.FinishTimeHr, 8) {
		t.Errorf("expected finish at hour 8, got %v", result.FinishTimeHr)
	}
}

// TestSolveNonZeroStartTime re-runs S1 with a non-zero StartTime and checks
// that every reconstructed step's arrival/departure times are offset by
// StartTime consistently with OptimizationResult.FinishTimeHr, per
// spec.md §4.6.
func TestSolveNonZeroStartTime(t *testing.T) {
	in := &FixedPathInputs{
		Route: []Port{{Name: "A"}, {Name: "B"}},
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", TravelTimeHr: 8, EnergyKWh: 9800},
		},
		Vessel: VesselConfig{
			CapacityKWh:        20000,
			InitialSOCKWh:      20000,
			MinFinalSOCKWh:     4000,
			MinOperatingSOCKWh: 4000,
		},
		SOCStepKWh:  100,
		StartTime:   100,
		TimeQuantHr: 1,
		ColdIroning: zeroHotellingTable(),
	}

	result, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.FinishTimeHr, 108) {
		t.Errorf("expected finish at hour 108, got %v", result.FinishTimeHr)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(result.Steps))
	}
	step := result.Steps[0]
	if !almostEqual(step.ArrivalTimeHr, 100) {
		t.Errorf("expected arrival at hour 100, got %v", step.ArrivalTimeHr)
	}
	if !almostEqual(step.DepartureTimeHr, 100) {
		t.Errorf("expected departure at hour 100, got %v", step.DepartureTimeHr)
	}
}

// TestSolveForcedSingleSwap covers spec.md §8 scenario S2.
func TestSolveForcedSingleSwap(t *testing.T) {
	in := &FixedPathInputs{
		Route: []Port{
			{Name: "A"},
			{
				Name:               "B",
				AllowSwap:          true,
				InitialReady:       4,
				TotalStock:         4,
				PerContainerKWh:    3000,
				ServiceFeeGBP:      15,
				PriceGBPPerKWh:     0.25,
				SwapTimeHr:         1,
				MinSwapSOCFraction: 0.2,
			},
			{Name: "C"},
		},
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", TravelTimeHr: 8, EnergyKWh: 9800},
			{FromPort: "B", ToPort: "C", TravelTimeHr: 8, EnergyKWh: 9800},
		},
		Vessel: VesselConfig{
			CapacityKWh:        12000,
			PerContainerKWh:    3000,
			InitialSOCKWh:      12000,
			MinFinalSOCKWh:     2000,
			MinOperatingSOCKWh: 2000,
		},
		SOCStepKWh:  100,
		TimeQuantHr: 1,
		ColdIroning: zeroHotellingTable(),
	}

	result, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var swapStep *Step
	for i := range result.Steps {
		if result.Steps[i].Operation == OpSwap {
			swapStep = &result.Steps[i]
		}
	}
	if swapStep == nil {
		t.Fatalf("expected a swap step, got steps: %+v", result.Steps)
	}
	if swapStep.ContainersSwapped != 4 {
		t.Errorf("expected full swap of 4 containers, got %d", swapStep.ContainersSwapped)
	}
	if !almostEqual(swapStep.SOCAfterOpKWh, 12000) {
		t.Errorf("expected SoC after op 12000, got %v", swapStep.SOCAfterOpKWh)
	}
	expectedStepCost := 4*15.0 + 4*3000*0.25
	if !almostEqual(swapStep.StepCostGBP, expectedStepCost) {
		t.Errorf("expected step cost %v, got %v", expectedStepCost, swapStep.StepCostGBP)
	}
}

// TestSolveInfeasibleNoStations covers spec.md §8 scenario S4: the route
// cannot possibly be completed and no port offers swap or charge.
func TestSolveInfeasibleNoStations(t *testing.T) {
	in := &FixedPathInputs{
		Route: []Port{{Name: "A"}, {Name: "B"}},
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", TravelTimeHr: 8, EnergyKWh: 9800},
		},
		Vessel: VesselConfig{
			CapacityKWh:        5000,
			InitialSOCKWh:      5000,
			MinFinalSOCKWh:     0,
			MinOperatingSOCKWh: 0,
		},
		SOCStepKWh:  100,
		TimeQuantHr: 1,
		ColdIroning: zeroHotellingTable(),
	}

	_, err := Solve(in)
	if err == nil {
		t.Fatal("expected a pre-infeasibility error, got nil")
	}
	preErr, ok := err.(*PreInfeasibilityError)
	if !ok {
		t.Fatalf("expected *PreInfeasibilityError, got %T: %v", err, err)
	}
	if preErr.Report == nil || preErr.Report.Summary == "" {
		t.Errorf("expected a non-empty diagnostic summary")
	}
}

// TestSolvePartialSwapCheaperThanFull covers spec.md §8 scenario S5: with
// partial swap allowed, the optimizer should not pay for more containers
// than the journey requires.
func TestSolvePartialSwapCheaperThanFull(t *testing.T) {
	in := &FixedPathInputs{
		Route: []Port{
			{Name: "A"},
			{
				Name:               "B",
				AllowSwap:          true,
				AllowPartialSwap:   true,
				InitialReady:       4,
				TotalStock:         4,
				PerContainerKWh:    3000,
				ServiceFeeGBP:      15,
				PriceGBPPerKWh:     0.25,
				SwapTimeHr:         1,
				MinSwapSOCFraction: 0.2,
			},
			{Name: "C"},
		},
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", TravelTimeHr: 1, EnergyKWh: 9800},
			{FromPort: "B", ToPort: "C", TravelTimeHr: 1, EnergyKWh: 2500},
		},
		Vessel: VesselConfig{
			CapacityKWh:        12000,
			PerContainerKWh:    3000,
			InitialSOCKWh:      12000,
			MinFinalSOCKWh:     2000,
			MinOperatingSOCKWh: 2000,
		},
		SOCStepKWh:  100,
		TimeQuantHr: 1,
		ColdIroning: zeroHotellingTable(),
	}

	result, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var swapStep *Step
	for i := range result.Steps {
		if result.Steps[i].Operation == OpSwap {
			swapStep = &result.Steps[i]
		}
	}
	if swapStep == nil {
		t.Fatalf("expected a swap step, got steps: %+v", result.Steps)
	}
	if swapStep.ContainersSwapped >= 4 {
		t.Errorf("expected fewer than a full swap when partial swap is allowed and sufficient, got %d", swapStep.ContainersSwapped)
	}
}

// TestSolveBackgroundPrechargeRecovery covers spec.md §8 scenario S3: a
// port's background charging recovers a fully-depleted container stock
// between two visits, enabling a second full swap that would otherwise be
// infeasible (ReadyCount would still be zero without the recharge).
func TestSolveBackgroundPrechargeRecovery(t *testing.T) {
	portB := Port{
		Name:                  "B",
		AllowSwap:             true,
		InitialReady:          4,
		TotalStock:            4,
		PerContainerKWh:       3000,
		ServiceFeeGBP:         15,
		PriceGBPPerKWh:        0.25,
		SwapTimeHr:            1,
		MinSwapSOCFraction:    0.5,
		BackgroundChargeAllow: true,
		BackgroundPowerKW:     2000,
		ChargingEfficiency:    1.0,
	}
	in := &FixedPathInputs{
		Route: []Port{
			{Name: "A"},
			portB,
			{Name: "C"},
			portB,
			{Name: "D"},
		},
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", TravelTimeHr: 8, EnergyKWh: 9800},
			{FromPort: "B", ToPort: "C", TravelTimeHr: 8, EnergyKWh: 9800},
			{FromPort: "C", ToPort: "B", TravelTimeHr: 8, EnergyKWh: 2000},
			{FromPort: "B", ToPort: "D", TravelTimeHr: 8, EnergyKWh: 2000},
		},
		Vessel: VesselConfig{
			CapacityKWh:        12000,
			PerContainerKWh:    3000,
			InitialSOCKWh:      12000,
			MinFinalSOCKWh:     2000,
			MinOperatingSOCKWh: 0,
		},
		SOCStepKWh:  100,
		TimeQuantHr: 1,
		ColdIroning: zeroHotellingTable(),
	}

	result, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error (background recharge should make this feasible): %v", err)
	}

	var swapSteps []Step
	for _, s := range result.Steps {
		if s.PortName == "B" && s.Operation == OpSwap {
			swapSteps = append(swapSteps, s)
		}
	}
	if len(swapSteps) != 2 {
		t.Fatalf("expected 2 swap visits to B, got %d: %+v", len(swapSteps), result.Steps)
	}
	for i, s := range swapSteps {
		if s.ContainersSwapped != 4 {
			t.Errorf("visit %d: expected full swap of 4 containers, got %d", i, s.ContainersSwapped)
		}
	}
}

// TestSolveChargePreferredOverSwap covers spec.md §8 scenario S6: when
// charging is markedly cheaper than swapping for the same SoC deficit, the
// optimizer picks the charge candidate.
func TestSolveChargePreferredOverSwap(t *testing.T) {
	in := &FixedPathInputs{
		Route: []Port{
			{Name: "A"},
			{
				Name:               "B",
				AllowSwap:          true,
				AllowCharge:        true,
				InitialReady:       4,
				TotalStock:         4,
				PerContainerKWh:    3000,
				ServiceFeeGBP:      500,
				PriceGBPPerKWh:     0.10,
				SwapTimeHr:         1,
				MinSwapSOCFraction: 0.2,
				ChargingPowerKW:    500,
				ChargingEfficiency: 1.0,
				FixedSessionFeeGBP: 10,
			},
			{Name: "C"},
		},
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", TravelTimeHr: 1, EnergyKWh: 4000},
			// The B->C leg needs a full battery, so the 4000 kWh deficit
			// left by the first leg must be made up at B.
			{FromPort: "B", ToPort: "C", TravelTimeHr: 1, EnergyKWh: 12000},
		},
		Vessel: VesselConfig{
			CapacityKWh:             12000,
			PerContainerKWh:         3000,
			InitialSOCKWh:           12000,
			MinFinalSOCKWh:          0,
			MinOperatingSOCKWh:      0,
			MaxChargeAcceptKWhPerHr: 500,
		},
		SOCStepKWh:  100,
		TimeQuantHr: 1,
		ColdIroning: zeroHotellingTable(),
	}

	result, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var bStep *Step
	for i := range result.Steps {
		if result.Steps[i].PortName == "B" {
			bStep = &result.Steps[i]
		}
	}
	if bStep == nil {
		t.Fatalf("expected a step at B, got steps: %+v", result.Steps)
	}
	if bStep.Operation != OpCharge {
		t.Errorf("expected charge to be preferred over the costlier swap, got %v", bStep.Operation)
	}
	if !almostEqual(bStep.EnergyChargedKWh, 4000) {
		t.Errorf("expected ~4000 kWh charged to cover the deficit, got %v", bStep.EnergyChargedKWh)
	}
}

// TestSolveSwapFeasibleBySameDwellPrecharge covers spec.md §4.4's "checked
// against the inventory in the current DP state plus same-visit precharge"
// rule: a port with zero ready containers on this (first) visit still
// supports a full swap when its own background charging, running for the
// duration of this dwell, promotes enough containers before the swap
// feasibility check runs. There is no prior visit to this port, so the
// elapsed-time background precharge in dp.go's step 2 cannot be the source
// of the readiness; only the candidate's own same-dwell precharge can be.
func TestSolveSwapFeasibleBySameDwellPrecharge(t *testing.T) {
	in := &FixedPathInputs{
		Route: []Port{
			{Name: "A"},
			{
				Name:                  "B",
				AllowSwap:             true,
				InitialReady:          0,
				TotalStock:            4,
				PerContainerKWh:       3000,
				ServiceFeeGBP:         15,
				PriceGBPPerKWh:        0.25,
				SwapTimeHr:            2,
				MinSwapSOCFraction:    0.5,
				BackgroundChargeAllow: true,
				BackgroundPowerKW:     5000,
				ChargingEfficiency:    1.0,
				// PreCheck does not count background charging during the
				// dwell, so B opts out of it; the DP alone decides here.
				Unlimited: true,
			},
			{Name: "C"},
		},
		Legs: []Leg{
			{FromPort: "A", ToPort: "B", TravelTimeHr: 8, EnergyKWh: 9800},
			{FromPort: "B", ToPort: "C", TravelTimeHr: 8, EnergyKWh: 9800},
		},
		Vessel: VesselConfig{
			CapacityKWh:        12000,
			PerContainerKWh:    3000,
			InitialSOCKWh:      12000,
			MinFinalSOCKWh:     2000,
			MinOperatingSOCKWh: 2000,
		},
		SOCStepKWh:  100,
		TimeQuantHr: 1,
		ColdIroning: zeroHotellingTable(),
	}

	result, err := Solve(in)
	if err != nil {
		t.Fatalf("unexpected error (same-dwell precharge should make the swap feasible): %v", err)
	}

	var swapStep *Step
	for i := range result.Steps {
		if result.Steps[i].Operation == OpSwap {
			swapStep = &result.Steps[i]
		}
	}
	if swapStep == nil {
		t.Fatalf("expected a swap step, got steps: %+v", result.Steps)
	}
	if swapStep.ContainersSwapped != 4 {
		t.Errorf("expected full swap of 4 containers once same-dwell precharge promotes them, got %d", swapStep.ContainersSwapped)
	}
}
