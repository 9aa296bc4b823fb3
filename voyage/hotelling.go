package voyage

// ColdIroningRange is one (min-GT, max-GT, kW) bracket for a vessel type in
// a cold-ironing reference table.
type ColdIroningRange struct {
	MinGT float64
	MaxGT float64
	KW    float64
}

// ColdIroningFallback describes the linear-factor fallback used when no
// reference-table range matches.
type ColdIroningFallback struct {
	FactorPerGT float64
	MinKW       float64
	MaxKW       float64
}

// ColdIroningTable maps vessel type to its cold-ironing lookup ranges and
// fallback parameters. spec.md §1 treats this as an external, pure
// collaborator ("a pure function from vessel type + gross tonnage to
// hotelling power"); original_source/cold_ironing_reference.py ships a
// concrete table, which this type models as a swappable default.
type ColdIroningTable struct {
	Ranges    map[string][]ColdIroningRange
	Fallbacks map[string]ColdIroningFallback
}

// DefaultColdIroningTable returns a reasonable default table grounded on
// original_source/cold_ironing_reference.py's per-type GT brackets.
func DefaultColdIroningTable() *ColdIroningTable {
	return &ColdIroningTable{
		Ranges: map[string][]ColdIroningRange{
			"container": {
				{MinGT: 0, MaxGT: 20000, KW: 500},
				{MinGT: 20000, MaxGT: 60000, KW: 1500},
				{MinGT: 60000, MaxGT: 1e9, KW: 3000},
			},
			"ropax": {
				{MinGT: 0, MaxGT: 10000, KW: 800},
				{MinGT: 10000, MaxGT: 40000, KW: 2000},
				{MinGT: 40000, MaxGT: 1e9, KW: 4000},
			},
			"tanker": {
				{MinGT: 0, MaxGT: 30000, KW: 600},
				{MinGT: 30000, MaxGT: 100000, KW: 1800},
				{MinGT: 100000, MaxGT: 1e9, KW: 3200},
			},
		},
		Fallbacks: map[string]ColdIroningFallback{
			"container": {FactorPerGT: 0.04, MinKW: 200, MaxKW: 4000},
			"ropax":     {FactorPerGT: 0.06, MinKW: 300, MaxKW: 5000},
			"tanker":    {FactorPerGT: 0.035, MinKW: 250, MaxKW: 3500},
		},
	}
}

// HotellingPower is the pure lookup from spec.md §4.2: given a vessel-type
// tag and gross tonnage, return the power (kW) consumed by onboard
// services while berthed. When a cold-ironing reference table is provided
// and yields a positive value, that value is returned; otherwise the
// result falls back to factor*GT, clamped to the per-type [min, max]
// bounds.
func HotellingPower(table *ColdIroningTable, vesselType string, grossTonnage float64) float64 {
	if table != nil {
		for _, r := range table.Ranges[vesselType] {
			if grossTonnage >= r.MinGT && grossTonnage < r.MaxGT {
				if r.KW > 0 {
					return r.KW
				}
				break
			}
		}
	}

	fallback := ColdIroningFallback{FactorPerGT: 0.05, MinKW: 200, MaxKW: 4000}
	if table != nil {
		if f, ok := table.Fallbacks[vesselType]; ok {
			fallback = f
		}
	}

	kw := fallback.FactorPerGT * grossTonnage
	if kw < fallback.MinKW {
		kw = fallback.MinKW
	}
	if kw > fallback.MaxKW {
		kw = fallback.MaxKW
	}
	return kw
}
