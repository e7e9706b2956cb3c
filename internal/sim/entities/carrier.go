package entities

// CandidateState tracks a single ship's candidacy as a player's carrier.
type CandidateState struct {
	PenetrationDepth float64
	RelativeVelocity float64
	ConfirmTicks     int
	LastSeenTick     uint64
}

// CarrierDetectionState is the per-player carrier-detection bookkeeping:
// the currently assigned carrier (0 if none), the per-candidate-ship
// hysteresis counters, and the server time in milliseconds of the last
// confirmed switch (held in LastSwitchTick, compared against
// Config.SwitchCooldownMS).
type CarrierDetectionState struct {
	CarrierID      uint32
	Candidates     map[uint32]*CandidateState
	LastSwitchTick uint64
}

// NewCarrierDetectionState returns a zero-value CarrierDetectionState
// with an initialized candidate map.
func NewCarrierDetectionState() CarrierDetectionState {
	return CarrierDetectionState{Candidates: make(map[uint32]*CandidateState)}
}
