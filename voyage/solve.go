package voyage

// Solve runs the full pipeline from spec.md §4: validate inputs, pre-check
// energy feasibility, run the forward DP pass, select the best terminal
// state, reconstruct the chosen trajectory, then enrich it with a forward
// inventory simulation.
func Solve(in *FixedPathInputs) (*OptimizationResult, error) {
	if err := resolveLegs(in); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := PreCheck(in); err != nil {
		return nil, err
	}

	dp, err := runForwardPass(in)
	if err != nil {
		return nil, err
	}

	terminalKey, terminalRec, ok := selectTerminal(dp)
	if !ok {
		return nil, &InfeasibilityError{Report: DiagnoseInfeasibility(in, dp)}
	}

	rawSteps, err := reconstruct(in, dp, terminalKey)
	if err != nil {
		return nil, err
	}

	steps, timelines, err := simulateInventory(in, rawSteps)
	if err != nil {
		return nil, err
	}

	finishTime := in.StartTime + terminalRec.timeHr

	return &OptimizationResult{
		TotalCostGBP:     terminalRec.costGBP,
		TotalTimeHr:      terminalRec.timeHr,
		FinishTimeHr:     finishTime,
		Steps:            steps,
		StationTimelines: timelines,
	}, nil
}
