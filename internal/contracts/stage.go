package contracts

// Pipeline stage definitions.
//
// Per-item flow:
//
//	Queued → Preflighting → Sampling → {DeepExploring | Skipped} → Promoting → Terminal
//
// Every stage fails closed to a terminal status; there is no path that
// drops an item without an OutputRecord.

// Stage represents a per-item pipeline stage
type Stage string

const (
	// StageQueued: item accepted, nothing fetched yet
	StageQueued Stage = "QUEUED"

	// StagePreflighting: expirations-only viability probe
	// Fails closed to NoViableExpirations / ProviderError
	StagePreflighting Stage = "PREFLIGHTING"

	// StageSampling: single-expiration Phase 1 sample
	// Fails closed to FastReject / NoViableExpirations / ProviderError
	StageSampling Stage = "SAMPLING"

	// StageDeepExploring: full multi-expiration chain fetch (Phase 2)
	// Fails closed to NoSuitableStrikes / ProviderError
	StageDeepExploring Stage = "DEEP_EXPLORING"

	// StageSkipped: Phase 2 bypassed after a FastReject sample
	StageSkipped Stage = "SKIPPED"

	// StagePromoting: candidate reduction to one selection
	// Only items reaching here with candidates can end Success/LowLiquidity
	StagePromoting Stage = "PROMOTING"

	// StageTerminal: OutputRecord emitted
	StageTerminal Stage = "TERMINAL"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// validTransitions enumerates the only legal stage moves. Anything not
// listed is a programming error, surfaced by CanTransition.
var validTransitions = map[Stage][]Stage{
	StageQueued:        {StagePreflighting},
	StagePreflighting:  {StageSampling, StageTerminal},
	StageSampling:      {StageDeepExploring, StageSkipped, StageTerminal},
	StageDeepExploring: {StagePromoting, StageTerminal},
	StageSkipped:       {StageTerminal},
	StagePromoting:     {StageTerminal},
	StageTerminal:      {},
}

// CanTransition reports whether moving from one stage to another is legal
func CanTransition(from, to Stage) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllStages returns the stages in nominal order
func AllStages() []Stage {
	return []Stage{
		StageQueued,
		StagePreflighting,
		StageSampling,
		StageDeepExploring,
		StageSkipped,
		StagePromoting,
		StageTerminal,
	}
}
