package models

// Phase identifies a stage of the scan pipeline
type Phase int

// Pipeline phases in execution order
const (
	PhaseDiscovering Phase = iota
	PhaseClassifying
	PhaseLoading
	PhaseTransforming
	PhaseFormatting
)

// UnknownTotal marks a progress report whose total is not yet known
const UnknownTotal = -1

// UnknownPercent is returned by Percent when no percentage can be computed
const UnknownPercent = -1

var phaseNames = map[Phase]string{
	PhaseDiscovering:  "Discovering",
	PhaseClassifying:  "Classifying",
	PhaseLoading:      "Loading",
	PhaseTransforming: "Transforming",
	PhaseFormatting:   "Formatting",
}

// String returns the display name of the phase
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "Unknown"
}

// ProgressReport is a single progress notification emitted by the pipeline
type ProgressReport struct {
	Phase       Phase  // Current phase
	CurrentFile string // Relative path of the item just processed, empty when not applicable
	Processed   int    // Items processed so far in this phase
	Total       int    // Items in this phase, or UnknownTotal
}

// Percent returns floor(Processed/Total*100), or UnknownPercent when the total
// is unknown or zero.
func (r ProgressReport) Percent() int {
	if r.Total <= 0 {
		return UnknownPercent
	}
	return r.Processed * 100 / r.Total
}
