package voyage

// StationInventory is the per-port battery-container inventory state from
// spec.md §4.3: a count of swap-ready containers, the total stock, and a
// residual-energy buffer accumulating charge toward the next promotion.
type StationInventory struct {
	PerContainerKWh float64
	Charged         int
	Total           int
	StartEmptySOC   float64 // default 0.2, SoC of a returned depleted container
	PartialEnergyKWh float64
}

// NewStationInventory builds the initial inventory state for a port.
func NewStationInventory(p *Port) StationInventory {
	startEmpty := 0.2
	return StationInventory{
		PerContainerKWh:  p.PerContainerKWh,
		Charged:          p.InitialReady,
		Total:            p.TotalStock,
		StartEmptySOC:    startEmpty,
		PartialEnergyKWh: 0,
	}
}

// Clone returns a copy safe to mutate independently, honoring the
// ownership discipline from spec.md §9: "transitions do not mutate keys".
func (s StationInventory) Clone() StationInventory {
	return s
}

// AddEnergy accumulates efficiency*energy plus any existing partial energy
// into the buffer, then promotes as many unready containers to "ready" as
// the buffer affords at min_swap_soc each (spec.md §4.3).
func (s *StationInventory) AddEnergy(energyKWh, efficiency, minSwapSOC float64) {
	s.PartialEnergyKWh += efficiency * energyKWh

	if s.PerContainerKWh <= 0 {
		return
	}

	perToMin := (minSwapSOC - s.StartEmptySOC) * s.PerContainerKWh
	if perToMin <= 0 {
		// Containers start above the ready threshold; nothing to promote
		// via accumulated charge.
		return
	}

	for s.PartialEnergyKWh >= perToMin && s.Total-s.Charged > 0 {
		s.Charged++
		s.PartialEnergyKWh -= perToMin
	}
}

// AddDepleted records n containers returned by the vessel at arrivalSOC
// (default 0.2). It does not change Charged or Total; the next AddEnergy
// call re-promotes them as they charge up.
func (s *StationInventory) AddDepleted(n int, arrivalSOC float64) {
	if n <= 0 {
		return
	}
	s.PartialEnergyKWh += float64(n) * arrivalSOC * s.PerContainerKWh
}

// RemoveNHighest hands over min(n, Charged) fully-charged containers to
// the vessel and returns the energy they deliver.
func (s *StationInventory) RemoveNHighest(n int) float64 {
	if n <= 0 {
		return 0
	}
	taken := n
	if taken > s.Charged {
		taken = s.Charged
	}
	s.Charged -= taken
	return float64(taken) * s.PerContainerKWh
}

// ReadyCount returns the number of containers currently eligible for
// swap. The readiness predicate is enforced at promotion time in
// AddEnergy, so this is simply the current Charged count.
func (s *StationInventory) ReadyCount(minSwapSOC float64) int {
	return s.Charged
}
