// Package voyage implements the joint state-space dynamic-programming
// engine that computes a minimum-cost operating schedule for an electric
// marine vessel traversing a fixed ordered sequence of ports, swapping and
// charging battery containers along the way.
package voyage

import (
	"time"

	"github.com/oceanvolt/voyage-optimizer/voyage/dayrate"
)

// Port is the static, per-visit configuration of a port of call.
type Port struct {
	Name string

	// DockingTimeHr is applied whenever the vessel is required to stop.
	DockingTimeHr float64
	// SwapTimeHr is used when the stop's sole purpose is a container swap
	// at a non-mandatory port.
	SwapTimeHr float64
	// MaxDockingTimeHr bounds the berth duration of any candidate at this
	// port. Zero means unbounded.
	MaxDockingTimeHr float64
	MandatoryStop    bool

	AllowSwap   bool
	AllowCharge bool

	InitialReady int
	TotalStock   int

	PerContainerKWh float64

	ChargingPowerKW    float64
	ChargingEfficiency float64

	BackgroundPowerKW     float64
	BackgroundChargeAllow bool

	PriceGBPPerKWh       float64
	ServiceFeeGBP        float64
	ContainerSurchargeGBP float64
	DegradationFeeGBP    float64
	FixedSessionFeeGBP   float64

	// DayNightRates, when set, overrides PriceGBPPerKWh for charge energy
	// with a day/night shore-tariff lookup keyed on (Latitude, Longitude)
	// and the visit's wall-clock arrival time (voyage/dayrate).
	DayNightRates *dayrate.Rates
	Latitude      float64
	Longitude     float64

	MinSwapSOCFraction float64
	AllowPartialSwap   bool

	// Unlimited opts this port out of the pre-run energy-balance check
	// (spec.md §4.8): treated as an inexhaustible energy source.
	Unlimited bool
}

// Validate checks the invariants from spec.md §3.
func (p *Port) Validate() error {
	switch {
	case p.DockingTimeHr < 0:
		return &ValidationError{Field: "docking_time_hr", Message: "must be non-negative"}
	case p.SwapTimeHr < 0:
		return &ValidationError{Field: "swap_time_hr", Message: "must be non-negative"}
	case p.MaxDockingTimeHr < 0:
		return &ValidationError{Field: "max_docking_time_hr", Message: "must be non-negative"}
	case p.InitialReady < 0:
		return &ValidationError{Field: "initial_ready", Message: "must be non-negative"}
	case p.TotalStock < 0:
		return &ValidationError{Field: "total_stock", Message: "must be non-negative"}
	case p.TotalStock > 0 && p.InitialReady > p.TotalStock:
		return &ValidationError{Field: "initial_ready", Message: "must not exceed total_stock"}
	case p.PerContainerKWh < 0:
		return &ValidationError{Field: "per_container_kwh", Message: "must be non-negative"}
	case p.ChargingPowerKW < 0:
		return &ValidationError{Field: "charging_power_kw", Message: "must be non-negative"}
	case p.ChargingEfficiency < 0 || p.ChargingEfficiency > 1:
		return &ValidationError{Field: "charging_efficiency", Message: "must be within [0, 1]"}
	case p.BackgroundPowerKW < 0:
		return &ValidationError{Field: "background_power_kw", Message: "must be non-negative"}
	case p.PriceGBPPerKWh < 0:
		return &ValidationError{Field: "price_gbp_per_kwh", Message: "must be non-negative"}
	case p.ServiceFeeGBP < 0:
		return &ValidationError{Field: "service_fee_gbp", Message: "must be non-negative"}
	case p.DegradationFeeGBP < 0:
		return &ValidationError{Field: "degradation_fee_gbp", Message: "must be non-negative"}
	case p.FixedSessionFeeGBP < 0:
		return &ValidationError{Field: "fixed_session_fee_gbp", Message: "must be non-negative"}
	case p.DayNightRates != nil && (p.DayNightRates.DayPriceGBPPerKWh < 0 || p.DayNightRates.NightPriceGBPPerKWh < 0):
		return &ValidationError{Field: "day_night_rates", Message: "rates must be non-negative"}
	case p.MinSwapSOCFraction < 0 || p.MinSwapSOCFraction > 1:
		return &ValidationError{Field: "min_swap_soc_fraction", Message: "must be within [0, 1]"}
	}
	return nil
}

// LegMode selects which speed/consumption constants apply to a leg.
type LegMode int

const (
	ModeLaden LegMode = iota
	ModeUnladen
)

func (m LegMode) String() string {
	if m == ModeLaden {
		return "laden"
	}
	return "unladen"
}

// Leg connects two consecutive ports in the route. A leg may either carry
// precomputed TravelTimeHr/EnergyKWh directly, or a non-zero DistanceNM,
// CurrentKn and Mode, in which case Solve derives TravelTimeHr/EnergyKWh
// via ComputeLeg before anything else runs.
type Leg struct {
	FromPort     string
	ToPort       string
	TravelTimeHr float64
	EnergyKWh    float64
	ExtraCostGBP float64

	DistanceNM float64
	CurrentKn  float64
	Mode       LegMode
}

// VesselConfig holds the static vessel parameters from spec.md §3.
type VesselConfig struct {
	CapacityKWh      float64
	PerContainerKWh  float64
	InitialSOCKWh    float64
	MinFinalSOCKWh   float64
	MinOperatingSOCKWh float64

	VesselType      string
	GrossTonnage    float64
	MaxChargeAcceptKWhPerHr float64

	// SpeedProfile feeds ComputeLeg for any leg specified by distance and
	// current rather than precomputed energy/time.
	SpeedProfile VesselSpeedProfile
}

// Validate checks the ordering invariants from spec.md §3.
func (v *VesselConfig) Validate() error {
	switch {
	case v.CapacityKWh < 0:
		return &ValidationError{Field: "capacity_kwh", Message: "must be non-negative"}
	case v.MinOperatingSOCKWh < 0:
		return &ValidationError{Field: "min_operating_soc_kwh", Message: "must be non-negative"}
	case v.MinOperatingSOCKWh > v.MinFinalSOCKWh:
		return &ValidationError{Field: "min_operating_soc_kwh", Message: "must not exceed min_final_soc_kwh"}
	case v.MinFinalSOCKWh > v.CapacityKWh:
		return &ValidationError{Field: "min_final_soc_kwh", Message: "must not exceed capacity_kwh"}
	case v.InitialSOCKWh < 0 || v.InitialSOCKWh > v.CapacityKWh:
		return &ValidationError{Field: "initial_soc_kwh", Message: "must be within [0, capacity_kwh]"}
	case v.InitialSOCKWh < v.MinOperatingSOCKWh:
		return &ValidationError{Field: "initial_soc_kwh", Message: "must be at least min_operating_soc_kwh"}
	case v.MaxChargeAcceptKWhPerHr < 0:
		return &ValidationError{Field: "max_charge_accept_kwh_per_hr", Message: "must be non-negative"}
	}
	return nil
}

// FixedPathInputs is the solver's external entry-point payload (spec.md §6).
type FixedPathInputs struct {
	Route []Port
	Legs  []Leg

	Vessel VesselConfig

	SOCStepKWh     float64
	StartTime      float64 // hours, an arbitrary epoch
	TimeQuantHr    float64

	// EpochStart anchors StartTime (and every hour offset derived from it)
	// to a real wall-clock instant. When zero, day/night tariff selection
	// has no calendar date to resolve sunrise/sunset against, so ports that
	// set DayNightRates are charged their flat PriceGBPPerKWh instead.
	EpochStart time.Time

	ColdIroning *ColdIroningTable
}

// Validate checks input-shape and invariant violations (spec.md §6).
func (in *FixedPathInputs) Validate() error {
	if len(in.Route) != len(in.Legs)+1 {
		return &ValidationError{
			Field:   "route",
			Message: "station count must equal leg count + 1",
		}
	}
	if len(in.Route) < 2 {
		return &ValidationError{Field: "route", Message: "route must contain at least two ports"}
	}
	for i := range in.Route {
		if err := in.Route[i].Validate(); err != nil {
			return err
		}
	}
	for _, leg := range in.Legs {
		if leg.TravelTimeHr < 0 {
			return &ValidationError{Field: "legs.travel_time_hr", Message: "must be non-negative"}
		}
		if leg.EnergyKWh < 0 {
			return &ValidationError{Field: "legs.energy_kwh", Message: "must be non-negative"}
		}
	}
	if err := in.Vessel.Validate(); err != nil {
		return err
	}
	if in.SOCStepKWh <= 0 {
		return &ValidationError{Field: "soc_step_kwh", Message: "must be positive"}
	}
	if in.TimeQuantHr <= 0 {
		return &ValidationError{Field: "time_quant_hr", Message: "must be positive"}
	}
	return nil
}

// OperationKind enumerates the four candidate-operation families.
type OperationKind int

const (
	OpNone OperationKind = iota
	OpSwap
	OpCharge
	OpHybrid
)

func (k OperationKind) String() string {
	switch k {
	case OpNone:
		return "none"
	case OpSwap:
		return "swap"
	case OpCharge:
		return "charge"
	case OpHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Step is one reconstructed-and-enriched entry of the chosen trajectory
// (spec.md §4.6 plus the enrichment fields added by §4.7).
type Step struct {
	PortName string
	PortIdx  int // index into Route

	ArrivalTimeHr   float64
	DepartureTimeHr float64

	Operation         OperationKind
	ContainersSwapped int
	EnergyChargedKWh  float64
	HotellingKWh      float64
	PrechargeKWh      float64

	SOCBeforeOpKWh      float64
	SOCAfterOpKWh       float64
	SOCAfterSegmentKWh  float64

	StepCostGBP       float64
	CumulativeCostGBP float64

	LegEnergyKWh    float64
	LegTravelTimeHr float64
	LegExtraCostGBP float64

	// Enriched by the forward inventory simulation.
	ChargedBefore   int
	ChargedAfter    int
	TotalBefore     int
	TotalAfter      int
	PrechargedCount int
}

// StationEvent is one entry of a per-port event timeline produced by the
// forward inventory simulation (spec.md §4.7).
type StationEvent struct {
	TimeHr      float64
	Description string
}

// OptimizationResult is the solver's external-output payload (spec.md §6).
type OptimizationResult struct {
	TotalCostGBP float64
	TotalTimeHr  float64
	FinishTimeHr float64

	Steps []Step

	StationTimelines map[string][]StationEvent
}
