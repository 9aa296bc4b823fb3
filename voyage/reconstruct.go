package voyage

// selectTerminal picks the lexicographically minimum (cost, time) among
// all entries at the final leg index whose level meets the final-SoC
// requirement (spec.md §4.6).
func selectTerminal(dp *dpResult) (key string, rec *stateRecord, ok bool) {
	terminalTable := dp.tables[len(dp.tables)-1]

	var bestKey string
	var best *stateRecord
	for _, k := range terminalTable.order {
		r := terminalTable.records[k]
		if r.level < dp.finalLevel {
			continue
		}
		if best == nil || improves(r.costGBP, r.timeHr, best.costGBP, best.timeHr) {
			bestKey = k
			best = r
		}
	}
	if best == nil {
		return "", nil, false
	}
	return bestKey, best, true
}

// reconstruct walks the back-pointer chain from the terminal state to
// produce the raw step list (spec.md §4.6). Richer inventory fields are
// filled in afterward by simulateInventory (spec.md §4.7).
func reconstruct(in *FixedPathInputs, dp *dpResult, terminalKey string) ([]Step, error) {
	n := len(dp.tables)
	steps := make([]Step, 0, n-1)

	key := terminalKey
	for legIdx := n - 1; legIdx > 0; legIdx-- {
		rec, ok := dp.tables[legIdx].records[key]
		if !ok {
			return nil, &InternalError{Operation: "reconstruct", Message: "missing state record while walking back-pointers"}
		}
		tr := rec.transition
		if tr == nil {
			return nil, &InternalError{Operation: "reconstruct", Message: "missing back-pointer transition"}
		}

		// The operation captured by this transition happened at the
		// departure port of leg (legIdx-1), i.e. Route[legIdx-1] — the
		// worked examples in spec.md §8 name the operating port this way
		// (e.g. S1's single step is "operation=none at A").
		prevRec, ok := dp.tables[legIdx-1].records[rec.prevKey]
		if !ok {
			return nil, &InternalError{Operation: "reconstruct", Message: "missing predecessor state record"}
		}
		port := in.Route[legIdx-1]
		arrivalTimeHr := in.StartTime + prevRec.timeHr
		departureTimeHr := arrivalTimeHr + tr.berthHr

		steps = append(steps, Step{
			PortName:          port.Name,
			PortIdx:           legIdx - 1,
			ArrivalTimeHr:     arrivalTimeHr,
			DepartureTimeHr:   departureTimeHr,
			Operation:         tr.kind,
			ContainersSwapped: tr.containersSwapped,
			EnergyChargedKWh:  tr.energyChargedKWh,
			HotellingKWh:      tr.hotellingKWh,
			PrechargeKWh:      tr.prechargeKWh,
			SOCBeforeOpKWh:    levelToSOC(tr.prevLevel, in.SOCStepKWh),
			SOCAfterOpKWh:     tr.postOpSOCKWh,
			SOCAfterSegmentKWh: levelToSOC(rec.level, in.SOCStepKWh),
			StepCostGBP:       tr.costGBP + tr.legExtraCostGBP,
			CumulativeCostGBP: rec.costGBP,
			LegEnergyKWh:      tr.legEnergyKWh,
			LegTravelTimeHr:   tr.legTravelTimeHr,
			LegExtraCostGBP:   tr.legExtraCostGBP,
		})

		key = rec.prevKey
	}

	// Steps were appended in reverse (terminal-first); restore chronology.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps, nil
}
