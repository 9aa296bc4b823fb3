package voyage

import (
	"fmt"
	"math"
	"strings"
)

// DiagnosticReport is the plain-text explanation produced when a route
// cannot be solved, either before the DP engine runs (PreCheck) or after it
// exhausts all states without reaching a feasible terminal (spec.md §4.8).
type DiagnosticReport struct {
	Summary string
	Lines   []string
}

func (r *DiagnosticReport) String() string {
	return strings.Join(r.Lines, "\n")
}

// emojiReplacements mirrors the ASCII-fold table the original Streamlit tool
// applied before printing a diagnostic report to a console or log file.
var emojiReplacements = []struct {
	from string
	to   string
}{
	{"❌", "[FAIL]"},
	{"⚠️", "[WARNING]"},
	{"✅", "[OK]"},
	{"✓", "[OK]"},
	{"→", "->"},
	{"❎", "[*]"},
}

// SanitizeReport strips the glyphs a terminal or a log aggregator may not
// render cleanly, folding them to their ASCII equivalents.
func SanitizeReport(s string) string {
	for _, r := range emojiReplacements {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}

// PreCheck runs the pre-run energy-balance check from spec.md §4.8: can the
// journey possibly be completed given the vessel's own SoC budget plus the
// best-case energy obtainable from every swap-capable port along the route?
// A port marked Unlimited opts the whole check out, since it represents an
// inexhaustible energy source reachable somewhere on the route.
func PreCheck(in *FixedPathInputs) error {
	var totalEnergyNeeded float64
	for _, leg := range in.Legs {
		totalEnergyNeeded += leg.EnergyKWh
	}

	socBudget := in.Vessel.InitialSOCKWh - in.Vessel.MinFinalSOCKWh
	if totalEnergyNeeded <= socBudget+1e-9 {
		return nil
	}

	distinct, _ := distinctPorts(in.Route)

	lines := []string{
		"ENERGY FEASIBILITY:",
		fmt.Sprintf("  Total energy for journey: %.1f kWh", totalEnergyNeeded),
		fmt.Sprintf("  Initial SoC: %.1f kWh", in.Vessel.InitialSOCKWh),
		fmt.Sprintf("  Final SoC required: %.1f kWh", in.Vessel.MinFinalSOCKWh),
		fmt.Sprintf("  → Onboard SoC budget alone: %.1f kWh", socBudget),
	}

	for _, p := range distinct {
		if p.Unlimited {
			lines = append(lines, fmt.Sprintf("  • %s: unlimited charged containers (cannot pre-check)", p.Name))
			lines = append(lines, "✓ Unlimited port on route; pre-run check passes unconditionally.")
			return nil
		}
	}

	// Every call on the route counts, not just each distinct port: a
	// revisited port can hand over its stock again on a later call.
	var stationEnergyKWh float64
	for _, p := range in.Route {
		if !p.AllowSwap || p.PerContainerKWh <= 0 {
			continue
		}
		precharge := 0
		if p.AllowCharge && p.ChargingPowerKW > 0 && p.DockingTimeHr > 0 {
			energyCanCharge := p.ChargingPowerKW * p.DockingTimeHr * p.ChargingEfficiency
			precharge = int(math.Floor(energyCanCharge / p.PerContainerKWh))
		}
		effective := p.InitialReady + precharge
		if p.TotalStock > 0 && effective > p.TotalStock {
			effective = p.TotalStock
		}
		lines = append(lines, fmt.Sprintf("  • %s: charged=%d, precharge_possible_dock=%d, total=%d, effective=%d",
			p.Name, p.InitialReady, precharge, p.TotalStock, effective))
		stationEnergyKWh += float64(effective) * p.PerContainerKWh
	}

	energyAvailable := socBudget + stationEnergyKWh
	lines = append(lines, fmt.Sprintf("  → Total additional container energy available: %.1f kWh", stationEnergyKWh))
	lines = append(lines, fmt.Sprintf("  → Combined energy availability: %.1f kWh", energyAvailable))

	if totalEnergyNeeded <= energyAvailable+1e-9 {
		return nil
	}

	summary := fmt.Sprintf("journey requires %.1f kWh but only %.1f kWh is obtainable from onboard SoC and swap-capable ports",
		totalEnergyNeeded, energyAvailable)
	lines = append([]string{
		fmt.Sprintf("❌ %s", summary),
		"   → Must swap or charge at least once; no combination of stops can cover the shortfall.",
		"",
	}, lines...)

	return &PreInfeasibilityError{Report: &DiagnosticReport{
		Summary: summary,
		Lines:   lines,
	}}
}

// DiagnoseInfeasibility explains a post-DP failure: the forward pass ran to
// completion but no state at the final leg met the final-SoC requirement
// (spec.md §4.8). It walks the same per-leg reachable-state counts the DP
// engine already produced, looking for the leg where the state count
// collapses to zero.
func DiagnoseInfeasibility(in *FixedPathInputs, dp *dpResult) *DiagnosticReport {
	var lines []string

	terminalTable := dp.tables[len(dp.tables)-1]
	reachableFinal := len(terminalTable.order)

	var bestLevel = math.MinInt64
	for _, k := range terminalTable.order {
		r := terminalTable.records[k]
		if r.level > bestLevel {
			bestLevel = r.level
		}
	}

	if reachableFinal == 0 {
		lines = append(lines, "❌ CRITICAL: cannot reach the destination at all under current constraints.")
	} else {
		bestSOC := levelToSOC(bestLevel, in.SOCStepKWh)
		requiredSOC := levelToSOC(dp.finalLevel, in.SOCStepKWh)
		lines = append(lines,
			fmt.Sprintf("✓ Destination reachable (%d distinct states at the final leg)", reachableFinal),
			fmt.Sprintf("   → Best achievable final SoC: %.1f kWh", bestSOC),
			fmt.Sprintf("   → Required final SoC: %.1f kWh", requiredSOC),
			fmt.Sprintf("   → Shortfall: %.1f kWh", requiredSOC-bestSOC),
		)
	}

	lines = append(lines, "", "SEGMENT ANALYSIS:")
	for k := range in.Legs {
		before := len(dp.tables[k].order)
		after := len(dp.tables[k+1].order)
		lines = append(lines, fmt.Sprintf("  Leg %d: %s -> %s, states before=%d after=%d",
			k+1, in.Route[k].Name, in.Route[k+1].Name, before, after))

		if after == 0 && before > 0 {
			port := in.Route[k]
			lines = append(lines, "    ❌ BOTTLENECK: no candidate at this port reaches a surviving state.")
			if !port.AllowSwap && !port.AllowCharge {
				lines = append(lines, fmt.Sprintf("       ❌ no swap or charge capability at %s", port.Name))
				lines = append(lines, "          SOLUTION: enable swap or charging at this port")
			}
			if in.Legs[k].EnergyKWh > in.Vessel.CapacityKWh {
				lines = append(lines, fmt.Sprintf("       ❌ leg requires %.1f kWh, more than the vessel's %.1f kWh capacity",
					in.Legs[k].EnergyKWh, in.Vessel.CapacityKWh))
			}
		} else if before > 0 && float64(after) < float64(before)*0.5 {
			lines = append(lines, "    ⚠️ significant state reduction (bottleneck forming)")
		}
	}

	lines = append(lines, "", "SUGGESTED ACTIONS:",
		"  1. Enable swap/charging at more intermediate ports",
		"  2. Increase battery capacity or reduce leg energy requirements",
		"  3. Relax the final SoC requirement",
		"  4. Ensure sufficient containers are available at swap ports",
		"  5. Increase charging power at charging ports",
	)

	summary := "no state at the final leg meets the required final SoC"
	if reachableFinal == 0 {
		summary = "destination is unreachable under current constraints"
	}

	return &DiagnosticReport{Summary: summary, Lines: lines}
}
