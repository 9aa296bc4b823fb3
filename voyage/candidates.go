package voyage

import (
	"math"
	"time"

	"github.com/oceanvolt/voyage-optimizer/voyage/dayrate"
)

// chargeDurationsHr is the discrete berth-duration set enumerated for a
// pure charge candidate (spec.md §4.4).
var chargeDurationsHr = []float64{0.5, 1, 2, 3, 4, 6, 8, 12}

// hybridExtraChargeDurationsHr is the short set of extra charge durations
// layered on top of a swap berth for hybrid candidates.
var hybridExtraChargeDurationsHr = []float64{0.5, 1, 2, 3, 4}

// Candidate is one feasible per-port operation tuple emitted by
// GenerateCandidates (spec.md §4.4).
type Candidate struct {
	Kind              OperationKind
	CostGBP           float64
	BerthHr           float64
	ContainersSwapped int
	EnergyChargedKWh  float64
	HotellingKWh      float64
	PrechargeKWh      float64
	PostOpSOCKWh      float64
}

// GenerateCandidates emits all feasible (none/swap/charge/hybrid) operation
// tuples for one port and one arrival SoC level, given the inventory state
// at the time of this visit (already advanced for same-visit precharge by
// the caller, per spec.md §4.5 step 2-3). arrivalTime is the wall-clock
// instant of this visit; it is only consulted when the port sets
// DayNightRates, to select a day or night shore-power tariff via
// dayrate.PriceAt. A zero arrivalTime (no EpochStart configured) falls
// back to the port's flat PriceGBPPerKWh.
func GenerateCandidates(port *Port, arrivalSOCKWh float64, inv StationInventory, vessel *VesselConfig, hotellingKW float64, arrivalTime time.Time) []Candidate {
	if arrivalSOCKWh < vessel.MinOperatingSOCKWh-1e-9 {
		return nil
	}

	var candidates []Candidate
	candidates = append(candidates, noneCandidates(port, arrivalSOCKWh, hotellingKW)...)
	candidates = append(candidates, swapCandidates(port, arrivalSOCKWh, inv, vessel, hotellingKW)...)
	candidates = append(candidates, chargeCandidates(port, arrivalSOCKWh, vessel, hotellingKW, arrivalTime)...)
	candidates = append(candidates, hybridCandidates(port, arrivalSOCKWh, inv, vessel, hotellingKW, arrivalTime)...)

	out := candidates[:0]
	for _, c := range candidates {
		if c.PostOpSOCKWh < vessel.MinOperatingSOCKWh-1e-9 {
			continue
		}
		if port.MaxDockingTimeHr > 0 && c.BerthHr > port.MaxDockingTimeHr+1e-9 {
			continue
		}
		out = append(out, c)
	}
	return out
}

func noneCandidates(port *Port, arrivalSOCKWh, hotellingKW float64) []Candidate {
	if !port.MandatoryStop {
		return []Candidate{{
			Kind:         OpNone,
			BerthHr:      0,
			PostOpSOCKWh: arrivalSOCKWh,
		}}
	}

	berth := port.DockingTimeHr
	hotellingEnergy := hotellingKW * berth
	post := arrivalSOCKWh - hotellingEnergy
	if post < 0 {
		post = 0
	}

	precharge := 0.0
	if port.BackgroundChargeAllow {
		precharge = port.BackgroundPowerKW * berth * port.ChargingEfficiency
	}

	return []Candidate{{
		Kind:         OpNone,
		BerthHr:      berth,
		HotellingKWh: hotellingEnergy,
		PrechargeKWh: precharge,
		PostOpSOCKWh: post,
	}}
}

// containersTotal returns ceil(capacity/per_container), the vessel's
// total container slot count.
func containersTotal(vessel *VesselConfig) int {
	if vessel.PerContainerKWh <= 0 {
		return 0
	}
	return int(math.Ceil(vessel.CapacityKWh/vessel.PerContainerKWh - 1e-9))
}

func swapK(port *Port, arrivalSOCKWh float64, vessel *VesselConfig) []int {
	if !port.AllowSwap || port.PerContainerKWh <= 0 {
		return nil
	}
	total := containersTotal(vessel)
	if total <= 0 {
		return nil
	}
	onboardFull := int(arrivalSOCKWh / vessel.PerContainerKWh)
	maxK := total - onboardFull
	if maxK <= 0 {
		return nil
	}

	if port.AllowPartialSwap {
		ks := make([]int, 0, maxK)
		for k := 1; k <= maxK; k++ {
			ks = append(ks, k)
		}
		return ks
	}
	return []int{total}
}

func swapCost(port *Port, k int, hotellingEnergy float64) float64 {
	serviceFee := float64(k) * (port.ServiceFeeGBP + port.ContainerSurchargeGBP)
	energyCost := float64(k) * port.PerContainerKWh * port.PriceGBPPerKWh
	degradation := float64(k) * port.PerContainerKWh * port.DegradationFeeGBP
	hotellingCost := hotellingEnergy * port.PriceGBPPerKWh
	return serviceFee + energyCost + degradation + hotellingCost
}

func swapCandidates(port *Port, arrivalSOCKWh float64, inv StationInventory, vessel *VesselConfig, hotellingKW float64) []Candidate {
	ks := swapK(port, arrivalSOCKWh, vessel)
	if len(ks) == 0 {
		return nil
	}

	berth := port.SwapTimeHr
	if port.MandatoryStop {
		berth = port.DockingTimeHr
	}
	hotellingEnergy := hotellingKW * berth

	// spec.md §4.4: swap feasibility is checked against the inventory plus
	// this same-dwell precharge, not just the inventory carried over from
	// background charging since the last visit (dp.go step 2). Apply it to
	// a clone before testing readiness; inv is already a value-type copy
	// of the DP key's inventory, so mutating it here is safe.
	precharge := 0.0
	if port.BackgroundChargeAllow {
		precharge = port.BackgroundPowerKW * berth * port.ChargingEfficiency
	}
	precharged := inv
	precharged.AddEnergy(precharge, 1.0, port.MinSwapSOCFraction)

	var out []Candidate
	for _, k := range ks {
		if precharged.ReadyCount(port.MinSwapSOCFraction) < k {
			continue
		}
		post := arrivalSOCKWh + float64(k)*port.PerContainerKWh - hotellingEnergy
		if post > vessel.CapacityKWh {
			post = vessel.CapacityKWh
		}
		out = append(out, Candidate{
			Kind:              OpSwap,
			CostGBP:           swapCost(port, k, hotellingEnergy),
			BerthHr:           berth,
			ContainersSwapped: k,
			HotellingKWh:      hotellingEnergy,
			PrechargeKWh:      precharge,
			PostOpSOCKWh:      post,
		})
	}
	return out
}

// chargePriceGBPPerKWh is the £/kWh applied to charge energy and
// charge-stop hotelling load. When the port sets DayNightRates and a real
// arrivalTime is known, it is looked up via dayrate.PriceAt using the
// port's (Latitude, Longitude) instead of the flat PriceGBPPerKWh.
func chargePriceGBPPerKWh(port *Port, arrivalTime time.Time) float64 {
	if port.DayNightRates == nil || arrivalTime.IsZero() {
		return port.PriceGBPPerKWh
	}
	return dayrate.PriceAt(arrivalTime, port.Latitude, port.Longitude, *port.DayNightRates)
}

func chargeCandidates(port *Port, arrivalSOCKWh float64, vessel *VesselConfig, hotellingKW float64, arrivalTime time.Time) []Candidate {
	if !port.AllowCharge {
		return nil
	}

	durations := chargeDurationsHr
	if port.MandatoryStop {
		durations = append(append([]float64{}, chargeDurationsHr...), port.DockingTimeHr)
	}

	power := math.Min(port.ChargingPowerKW, vessel.MaxChargeAcceptKWhPerHr)
	price := chargePriceGBPPerKWh(port, arrivalTime)

	var out []Candidate
	seen := make(map[float64]bool)
	for _, t := range durations {
		if seen[t] {
			continue
		}
		seen[t] = true

		energyAdded := math.Min(t*power*port.ChargingEfficiency, vessel.CapacityKWh-arrivalSOCKWh)
		if energyAdded < 1 {
			continue
		}

		hotellingEnergy := hotellingKW * t
		cost := energyAdded*price + port.FixedSessionFeeGBP + hotellingEnergy*price
		post := arrivalSOCKWh + energyAdded - hotellingEnergy

		out = append(out, Candidate{
			Kind:             OpCharge,
			CostGBP:          cost,
			BerthHr:          t,
			EnergyChargedKWh: energyAdded,
			HotellingKWh:     hotellingEnergy,
			PostOpSOCKWh:     post,
		})
	}
	return out
}

func hybridCandidates(port *Port, arrivalSOCKWh float64, inv StationInventory, vessel *VesselConfig, hotellingKW float64, arrivalTime time.Time) []Candidate {
	if !port.AllowSwap || !port.AllowCharge {
		return nil
	}
	ks := swapK(port, arrivalSOCKWh, vessel)
	if len(ks) == 0 {
		return nil
	}

	baseBerth := port.SwapTimeHr
	if port.MandatoryStop {
		baseBerth = port.DockingTimeHr
	}

	power := math.Min(port.ChargingPowerKW, vessel.MaxChargeAcceptKWhPerHr)
	price := chargePriceGBPPerKWh(port, arrivalTime)

	// Same same-dwell-precharge fix as swapCandidates: the k-feasibility
	// check must see the inventory after this visit's own background
	// precharge, not just the inventory carried in from dp.go step 2.
	precharge := 0.0
	if port.BackgroundChargeAllow {
		precharge = port.BackgroundPowerKW * baseBerth * port.ChargingEfficiency
	}
	precharged := inv
	precharged.AddEnergy(precharge, 1.0, port.MinSwapSOCFraction)

	var out []Candidate
	for _, k := range ks {
		if precharged.ReadyCount(port.MinSwapSOCFraction) < k {
			continue
		}
		afterSwapSOC := arrivalSOCKWh + float64(k)*port.PerContainerKWh
		if afterSwapSOC > vessel.CapacityKWh {
			afterSwapSOC = vessel.CapacityKWh
		}

		for _, extra := range hybridExtraChargeDurationsHr {
			berth := baseBerth + extra
			hotellingEnergy := hotellingKW * berth

			room := vessel.CapacityKWh - afterSwapSOC
			chargeEnergy := math.Min(extra*power*port.ChargingEfficiency, room)
			if chargeEnergy < 0 {
				chargeEnergy = 0
			}

			post := afterSwapSOC + chargeEnergy - hotellingEnergy
			if post > vessel.CapacityKWh {
				post = vessel.CapacityKWh
			}

			cost := swapCost(port, k, 0) + chargeEnergy*price + port.FixedSessionFeeGBP + hotellingEnergy*price

			out = append(out, Candidate{
				Kind:              OpHybrid,
				CostGBP:           cost,
				BerthHr:           berth,
				ContainersSwapped: k,
				EnergyChargedKWh:  chargeEnergy,
				HotellingKWh:      hotellingEnergy,
				PrechargeKWh:      precharge,
				PostOpSOCKWh:      post,
			})
		}
	}
	return out
}
