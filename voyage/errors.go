package voyage

import "fmt"

// ValidationError represents an input-shape or invariant violation detected
// before the DP engine runs (station count, SoC ordering, negative numerics).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// DomainError indicates a leg's travel speed (vessel speed + current) is
// non-positive, so travel time is undefined.
type DomainError struct {
	Operation string
	Message   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error during %s: %s", e.Operation, e.Message)
}

// PreInfeasibilityError is raised by the pre-run energy-balance check,
// before the DP engine starts, when the route cannot possibly be completed.
type PreInfeasibilityError struct {
	Report *DiagnosticReport
}

func (e *PreInfeasibilityError) Error() string {
	return fmt.Sprintf("pre-run infeasibility: %s", e.Report.Summary)
}

// InfeasibilityError is raised by terminal selection when the DP completes
// but no terminal state meets the final-SoC requirement.
type InfeasibilityError struct {
	Report *DiagnosticReport
}

func (e *InfeasibilityError) Error() string {
	return fmt.Sprintf("infeasible route: %s", e.Report.Summary)
}

// InternalError indicates a bug: a missing back-pointer during
// reconstruction, or a decoding failure in the inventory encoding.
type InternalError struct {
	Operation string
	Message   string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error during %s: %s", e.Operation, e.Message)
}
