// Strategy state machine for one match request.
//
// Valid stage graph:
//
//	BUILT ──► COUNTED ──► FALLBACK ──────► VALIDATED
//	                 └──► VECTOR_SEARCH ─►
//
// A request always moves strictly forward; VALIDATED is terminal.
package match

// Stage identifies where a request is in the matching pipeline.
type Stage string

const (
	StageBuilt        Stage = "BUILT"
	StageCounted      Stage = "COUNTED"
	StageFallback     Stage = "FALLBACK"
	StageVectorSearch Stage = "VECTOR_SEARCH"
	StageValidated    Stage = "VALIDATED"
)

// validStageTransitions lists every allowed (from → to) pair.
var validStageTransitions = map[Stage][]Stage{
	StageBuilt:        {StageCounted},
	StageCounted:      {StageFallback, StageVectorSearch},
	StageFallback:     {StageValidated},
	StageVectorSearch: {StageValidated},
	// VALIDATED is terminal, no outgoing transitions
}

// IsStageTransitionAllowed returns true when moving from → to is permitted.
func IsStageTransitionAllowed(from, to Stage) bool {
	for _, s := range validStageTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// PickStrategy chooses the execution path from the probe count: at or below
// the threshold the pool is small enough that filters already did the
// narrowing and the unranked fallback runs; above it the vector search runs.
func PickStrategy(probeCount, threshold int) Stage {
	if probeCount <= threshold {
		return StageFallback
	}
	return StageVectorSearch
}
