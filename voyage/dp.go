package voyage

import (
	"math"
	"time"
)

// dominanceTolerance is the floating-point tolerance used when comparing
// (cost, time) pairs for dominance, per spec.md §9.
const dominanceTolerance = 1e-9

// transition records everything needed to replay one DP edge during
// reconstruction (spec.md §3 "Transition").
type transition struct {
	prevLevel int
	prevInv   inventoryState

	kind              OperationKind
	containersSwapped int
	energyChargedKWh  float64
	costGBP           float64
	berthHr           float64
	postOpSOCKWh      float64

	legOptionIndex  int
	legEnergyKWh    float64
	legTravelTimeHr float64
	legExtraCostGBP float64

	hotellingKWh float64
	prechargeKWh float64
}

// stateRecord is one DP table entry: the best-so-far (cost, time) for a
// state, the decoded inventory it carries, and the back-pointer to reach
// it (spec.md §3 "DP table entry").
type stateRecord struct {
	level int
	inv   inventoryState

	costGBP float64
	timeHr  float64

	prevKey    string
	transition *transition
}

// stateTable is a sparse, insertion-ordered map from state key to record,
// satisfying spec.md §5's "store DP tables as sparse mappings ... not
// dense arrays" and "iteration ... follow a stable order".
type stateTable struct {
	records map[string]*stateRecord
	order   []string
}

func newStateTable() *stateTable {
	return &stateTable{records: make(map[string]*stateRecord)}
}

// improves implements the dominance predicate from spec.md §9: strictly
// lower cost, or equal cost with strictly lower time, within tolerance.
func improves(newCost, newTime, curCost, curTime float64) bool {
	if newCost < curCost-dominanceTolerance {
		return true
	}
	if math.Abs(newCost-curCost) <= dominanceTolerance && newTime < curTime-dominanceTolerance {
		return true
	}
	return false
}

// upsert writes rec into the table iff it dominates any existing entry at
// the same key, recording insertion order only on first write.
func (t *stateTable) upsert(key string, rec *stateRecord) {
	existing, ok := t.records[key]
	if !ok {
		t.records[key] = rec
		t.order = append(t.order, key)
		return
	}
	if improves(rec.costGBP, rec.timeHr, existing.costGBP, existing.timeHr) {
		t.records[key] = rec
	}
}

func socToLevel(socKWh, socStepKWh float64) int {
	return int(math.Round(socKWh / socStepKWh))
}

func levelToSOC(level int, socStepKWh float64) float64 {
	return float64(level) * socStepKWh
}

func timeToQuantum(timeHr, quantHr float64) int64 {
	return int64(math.Round(timeHr / quantHr))
}

// dpResult is the full forward-pass output: one state table per visited
// port index (0..len(route)-1) plus bookkeeping needed by terminal
// selection and reconstruction.
type dpResult struct {
	tables     []*stateTable
	distinct   []Port
	routeToDistinct []int
	minOperatingLevel int
	finalLevel        int
}

// runForwardPass is the DP engine from spec.md §4.5.
func runForwardPass(in *FixedPathInputs) (*dpResult, error) {
	distinct, routeToDistinct := distinctPorts(in.Route)

	tables := make([]*stateTable, len(in.Route))
	for i := range tables {
		tables[i] = newStateTable()
	}

	initLevel := socToLevel(in.Vessel.InitialSOCKWh, in.SOCStepKWh)
	initInv := newInventoryState(distinct)
	initKey := stateKey(initLevel, initInv)
	tables[0].upsert(initKey, &stateRecord{
		level:   initLevel,
		inv:     initInv,
		costGBP: 0,
		timeHr:  0,
	})

	minOperatingLevel := socToLevel(in.Vessel.MinOperatingSOCKWh, in.SOCStepKWh)
	finalLevel := socToLevel(in.Vessel.MinFinalSOCKWh, in.SOCStepKWh)

	for k := 0; k < len(in.Legs); k++ {
		port := &in.Route[k]
		leg := in.Legs[k]
		distinctIdx := routeToDistinct[k]
		isTerminalLeg := k == len(in.Legs)-1

		hotellingKW := HotellingPower(in.ColdIroning, in.Vessel.VesselType, in.Vessel.GrossTonnage)

		for _, key := range tables[k].order {
			rec := tables[k].records[key]

			arrivalTimeHr := in.StartTime + rec.timeHr
			lastVisitQ := rec.inv.lastVisitQ[distinctIdx]

			// Step 2: background precharge since last visit, applied to a
			// fresh inventory view so the DP key's inventory stays immutable.
			workingInv := StationInventory{
				PerContainerKWh: port.PerContainerKWh,
				Charged:         rec.inv.charged[distinctIdx],
				Total:           port.TotalStock,
				StartEmptySOC:   0.2,
			}
			if port.BackgroundChargeAllow && lastVisitQ != neverVisited {
				elapsedHr := arrivalTimeHr - float64(lastVisitQ)*in.TimeQuantHr
				if elapsedHr > 0 {
					energy := port.BackgroundPowerKW * elapsedHr * port.ChargingEfficiency
					workingInv.AddEnergy(energy, 1.0, port.MinSwapSOCFraction)
				}
			}

			var arrivalTime time.Time
			if !in.EpochStart.IsZero() {
				arrivalTime = in.EpochStart.Add(time.Duration(arrivalTimeHr * float64(time.Hour)))
			}
			candidates := GenerateCandidates(port, levelToSOC(rec.level, in.SOCStepKWh), workingInv, &in.Vessel, hotellingKW, arrivalTime)

			for _, cand := range candidates {
				energySteps := int(math.Ceil(leg.EnergyKWh/in.SOCStepKWh - 1e-9))
				postLevel := socToLevel(cand.PostOpSOCKWh, in.SOCStepKWh)
				if postLevel < energySteps {
					continue
				}
				newLevel := postLevel - energySteps
				if newLevel < minOperatingLevel {
					continue
				}
				if isTerminalLeg && newLevel < finalLevel {
					continue
				}

				newCost := rec.costGBP + cand.CostGBP + leg.ExtraCostGBP
				newTime := rec.timeHr + cand.BerthHr + leg.TravelTimeHr

				nextInv := rec.inv.clone()
				if cand.ContainersSwapped > 0 {
					nextInv.charged[distinctIdx] -= cand.ContainersSwapped
					// depleted containers return to the buffer; modeled by
					// the forward inventory simulation (spec.md §4.7), the
					// DP key itself only tracks ready counts and visit time.
				}
				departureTimeHr := arrivalTimeHr + cand.BerthHr
				nextInv.lastVisitQ[distinctIdx] = timeToQuantum(departureTimeHr, in.TimeQuantHr)

				nextKey := stateKey(newLevel, nextInv)
				tr := &transition{
					prevLevel:         rec.level,
					prevInv:           rec.inv,
					kind:              cand.Kind,
					containersSwapped: cand.ContainersSwapped,
					energyChargedKWh:  cand.EnergyChargedKWh,
					costGBP:           cand.CostGBP,
					berthHr:           cand.BerthHr,
					postOpSOCKWh:      cand.PostOpSOCKWh,
					legOptionIndex:    0,
					legEnergyKWh:      leg.EnergyKWh,
					legTravelTimeHr:   leg.TravelTimeHr,
					legExtraCostGBP:   leg.ExtraCostGBP,
					hotellingKWh:      cand.HotellingKWh,
					prechargeKWh:      cand.PrechargeKWh,
				}

				tables[k+1].upsert(nextKey, &stateRecord{
					level:      newLevel,
					inv:        nextInv,
					costGBP:    newCost,
					timeHr:     newTime,
					prevKey:    key,
					transition: tr,
				})
			}
		}
	}

	return &dpResult{
		tables:            tables,
		distinct:          distinct,
		routeToDistinct:   routeToDistinct,
		minOperatingLevel: minOperatingLevel,
		finalLevel:        finalLevel,
	}, nil
}

