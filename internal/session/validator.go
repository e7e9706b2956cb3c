package session

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
)

// ViolationKind identifies which §4.8 check an InputFrame failed.
type ViolationKind int

const (
	ViolationNone ViolationKind = iota
	ViolationRateLimit
	ViolationBurst
	ViolationMovementBounds
	ViolationPatternAnomaly
	ViolationUnknownAction
	ViolationTimestamp
	ViolationDuplicate
)

// violationWeight is the suspicious_score contribution of each check.
// Every single weight is at most 0.25, well under the 0.85 flag
// threshold, so a single borderline frame never flags a client outright.
var violationWeight = map[ViolationKind]float64{
	ViolationRateLimit:      0.15,
	ViolationBurst:          0.2,
	ViolationMovementBounds: 0.1,
	ViolationPatternAnomaly: 0.25,
	ViolationUnknownAction:  0.2,
	ViolationTimestamp:      0.15,
	ViolationDuplicate:      0.05,
}

// Tier is a client's current activity tier, used to pick the rate cap
// applied to it.
type Tier int

const (
	TierIdle Tier = iota
	TierBackground
	TierNormal
	TierCritical
)

// tierMaxHz is the §4.8 "tiered rate caps" table.
var tierMaxHz = map[Tier]float64{
	TierIdle:       1,
	TierBackground: 10,
	TierNormal:     30,
	TierCritical:   60,
}

func (t Tier) minIntervalMS() int64 {
	return int64(1000.0 / tierMaxHz[t])
}

const (
	burstWindowMS      = 100
	maxInputsPerWindow = 20
	maxTimestampGapMS  = 200
	duplicateWindowMS  = 50
	patternFlagScore   = 5.0
	patternDecayPerTick = 0.98
	movementEpsilon    = 0.05
)

// ClientValidationState is the per-client bookkeeping §4.8 requires.
type ClientValidationState struct {
	Tier Tier

	firstSeen         bool
	lastAcceptedMS    int64
	burstWindowStart  int64
	burstCount        int
	lastMovement      entities.Vec2
	lastMovementValid bool

	MovementPatternScore float64
	SuspiciousScore      float64

	TotalInputs   int
	InvalidInputs int

	RateViolations       int
	BurstViolations      int
	MovementViolations   int
	ActionViolations     int
	TimestampAnomalies   int
	DuplicateInputs      int
}

// ValidationResult is the outcome of validating a single InputFrame.
type ValidationResult struct {
	Accepted  bool
	Violation ViolationKind
}

// InputValidator enforces §4.8's per-client checks before a frame is
// allowed to reach the simulation. Every check always runs; Config
// supplies only MinInputIntervalMS and BanThresholdScore, and no check
// can be switched off through it.
type InputValidator struct {
	cfg     Config
	clients map[uint32]*ClientValidationState
}

// NewInputValidator creates a validator bound to cfg's rate/threshold
// settings.
func NewInputValidator(cfg Config) *InputValidator {
	return &InputValidator{cfg: cfg, clients: make(map[uint32]*ClientValidationState)}
}

// StateFor returns the mutable per-client state, creating it on first
// use.
func (v *InputValidator) StateFor(clientID uint32) *ClientValidationState {
	st, ok := v.clients[clientID]
	if !ok {
		st = &ClientValidationState{Tier: TierNormal}
		v.clients[clientID] = st
	}
	return st
}

// Validate checks frame against every enabled rule and returns whether
// it should be forwarded to the simulation. nowMS is the server's
// receive time, independent of the client-reported timestamp.
func (v *InputValidator) Validate(clientID uint32, frame entities.InputFrame, nowMS int64) ValidationResult {
	st := v.StateFor(clientID)
	st.TotalInputs++

	if result := v.checkRate(st, nowMS); result.Violation != ViolationNone {
		return v.reject(st, result.Violation)
	}
	if result := v.checkBurst(st, nowMS); result.Violation != ViolationNone {
		return v.reject(st, result.Violation)
	}
	if result := v.checkMovementBounds(frame); result.Violation != ViolationNone {
		return v.reject(st, result.Violation)
	}
	if frame.HasUnknownActions() {
		return v.reject(st, ViolationUnknownAction)
	}
	if result := v.checkTimestamp(st, frame, nowMS); result.Violation != ViolationNone {
		return v.reject(st, result.Violation)
	}
	if result := v.checkDuplicate(st, frame, nowMS); result.Violation != ViolationNone {
		return v.reject(st, result.Violation)
	}

	v.checkPattern(st, frame)

	st.firstSeen = true
	st.lastAcceptedMS = nowMS
	st.lastMovement = frame.Movement
	st.lastMovementValid = true
	st.SuspiciousScore *= patternDecayPerTick
	return ValidationResult{Accepted: true, Violation: ViolationNone}
}

func (v *InputValidator) reject(st *ClientValidationState, kind ViolationKind) ValidationResult {
	st.InvalidInputs++
	st.SuspiciousScore += violationWeight[kind]
	if st.SuspiciousScore > 1.0 {
		st.SuspiciousScore = 1.0
	}
	switch kind {
	case ViolationRateLimit:
		st.RateViolations++
	case ViolationBurst:
		st.BurstViolations++
	case ViolationMovementBounds:
		st.MovementViolations++
	case ViolationUnknownAction:
		st.ActionViolations++
	case ViolationTimestamp:
		st.TimestampAnomalies++
	case ViolationDuplicate:
		st.DuplicateInputs++
	}
	return ValidationResult{Accepted: false, Violation: kind}
}

// checkRate rejects inputs arriving faster than the client's tier
// allows. The first input from a client is never rate-rejected.
func (v *InputValidator) checkRate(st *ClientValidationState, nowMS int64) ValidationResult {
	if !st.firstSeen {
		return ValidationResult{Accepted: true}
	}
	minInterval := v.cfg.MinInputIntervalMS
	if tierInterval := st.Tier.minIntervalMS(); tierInterval > minInterval {
		minInterval = tierInterval
	}
	if nowMS-st.lastAcceptedMS < minInterval {
		return ValidationResult{Violation: ViolationRateLimit}
	}
	return ValidationResult{Accepted: true}
}

// checkBurst enforces the sliding burst-window cap.
func (v *InputValidator) checkBurst(st *ClientValidationState, nowMS int64) ValidationResult {
	if nowMS-st.burstWindowStart > burstWindowMS {
		st.burstWindowStart = nowMS
		st.burstCount = 0
	}
	st.burstCount++
	if st.burstCount > maxInputsPerWindow {
		return ValidationResult{Violation: ViolationBurst}
	}
	return ValidationResult{Accepted: true}
}

// checkMovementBounds rejects a movement vector longer than 1+epsilon.
func (v *InputValidator) checkMovementBounds(frame entities.InputFrame) ValidationResult {
	if frame.Movement.Length() > 1.0+movementEpsilon {
		return ValidationResult{Violation: ViolationMovementBounds}
	}
	return ValidationResult{Accepted: true}
}

// checkTimestamp rejects a negative or implausibly large gap between
// accepted inputs.
func (v *InputValidator) checkTimestamp(st *ClientValidationState, frame entities.InputFrame, nowMS int64) ValidationResult {
	if !st.firstSeen {
		return ValidationResult{Accepted: true}
	}
	gap := nowMS - st.lastAcceptedMS
	if gap < 0 || gap > maxTimestampGapMS {
		return ValidationResult{Violation: ViolationTimestamp}
	}
	return ValidationResult{Accepted: true}
}

// checkDuplicate rejects a frame whose movement is identical to the
// last accepted one within the duplicate window.
func (v *InputValidator) checkDuplicate(st *ClientValidationState, frame entities.InputFrame, nowMS int64) ValidationResult {
	if !st.firstSeen || !st.lastMovementValid {
		return ValidationResult{Accepted: true}
	}
	if nowMS-st.lastAcceptedMS >= duplicateWindowMS {
		return ValidationResult{Accepted: true}
	}
	if frame.Movement == st.lastMovement {
		return ValidationResult{Violation: ViolationDuplicate}
	}
	return ValidationResult{Accepted: true}
}

// checkPattern accumulates the suspicious-pattern score for
// suspiciously "perfect" movement vectors (equal axes, near-unit
// magnitude), flagging once the accumulation crosses the threshold.
func (v *InputValidator) checkPattern(st *ClientValidationState, frame entities.InputFrame) {
	m := frame.Movement
	if math.Abs(math.Abs(m.X)-math.Abs(m.Y)) < 1e-6 && m.Length() > 0.9 {
		st.MovementPatternScore++
	}
	st.MovementPatternScore *= patternDecayPerTick
	if st.MovementPatternScore > patternFlagScore {
		st.SuspiciousScore += violationWeight[ViolationPatternAnomaly]
		if st.SuspiciousScore > 1.0 {
			st.SuspiciousScore = 1.0
		}
	}
}

// Flagged reports whether the client's behavior crosses either of
// §4.8's flag thresholds.
func (v *InputValidator) Flagged(clientID uint32) bool {
	st := v.StateFor(clientID)
	if st.TotalInputs == 0 {
		return false
	}
	invalidRatio := float64(st.InvalidInputs) / float64(st.TotalInputs)
	return invalidRatio > 0.10 || st.SuspiciousScore > 0.85
}

// ShouldBan reports whether the client's suspicious score has crossed
// the configured ban threshold.
func (v *InputValidator) ShouldBan(clientID uint32) bool {
	st := v.StateFor(clientID)
	return st.SuspiciousScore > v.cfg.BanThresholdScore
}

// SetTier updates a client's activity tier, used to pick its rate cap.
func (v *InputValidator) SetTier(clientID uint32, tier Tier) {
	v.StateFor(clientID).Tier = tier
}

// RemoveClient drops all validator state for a disconnected client.
func (v *InputValidator) RemoveClient(clientID uint32) {
	delete(v.clients, clientID)
}
