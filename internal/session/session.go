package session

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/kreid06/pirate-game-4-sub000/internal/observability"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/rules"
)

// Config is the tick loop's tunable set, shared verbatim with the
// rules package so the session and the simulation core never disagree
// about tick rate, rewind window, or anti-cheat thresholds.
type Config = rules.Config

// DefaultConfig returns the compile-time defaults from the external
// interfaces table.
var DefaultConfig = rules.DefaultConfig

// Session orchestrates one authoritative tick loop: buffering input
// behind InputQueue, screening it through InputValidator, advancing
// the world with rules.Step, and snapshotting each tick into a
// RewindRing for later lag-compensated validation.
type Session struct {
	world  entities.World
	cfg    Config
	queue  *InputQueue
	valid  *InputValidator
	rewind *RewindRing
	ticker *Ticker
	clock  Clock

	delays map[uint32]int64

	running bool
	logger  logr.Logger
}

// NewSession creates a session around the given initial world. cfg
// supplies the tick rate, rewind window and anti-cheat thresholds;
// maxQueueSizePerClient bounds each client's input backlog.
func NewSession(clock Clock, world entities.World, cfg Config, maxQueueSizePerClient int) *Session {
	return &Session{
		world:  world,
		cfg:    cfg,
		queue:  NewInputQueue(maxQueueSizePerClient),
		valid:  NewInputValidator(cfg),
		rewind: NewRewindRing(cfg.RewindBufferSize),
		ticker: NewRateTicker(clock, cfg.TickHz),
		clock:  clock,
		delays: make(map[uint32]int64),
	}
}

// SubmitInput screens frame through the anti-cheat validator and, if
// accepted, buffers it for the next tick. nowMS is the server's
// receive time. Returns whether the frame was accepted into the queue.
func (s *Session) SubmitInput(frame entities.InputFrame, nowMS int64) bool {
	result := s.valid.Validate(frame.ClientID, frame, nowMS)
	if !result.Accepted {
		if counter := observability.GetAnticheatViolationsCounter(); counter != nil {
			counter.WithLabelValues(violationLabel(result.Violation)).Inc()
		}
		return false
	}
	return s.queue.Enqueue(frame.Sequence, frame)
}

// violationLabel names a ViolationKind for the anti-cheat metric;
// unrecognized values fall back to "unknown" rather than panicking.
func violationLabel(kind ViolationKind) string {
	switch kind {
	case ViolationRateLimit:
		return "rate_limit"
	case ViolationBurst:
		return "burst"
	case ViolationMovementBounds:
		return "movement_bounds"
	case ViolationPatternAnomaly:
		return "pattern_anomaly"
	case ViolationUnknownAction:
		return "unknown_action"
	case ViolationTimestamp:
		return "timestamp"
	case ViolationDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// SetClientDelay records the observed network delay for a client, used
// when snapshotting ticks into the rewind ring.
func (s *Session) SetClientDelay(clientID uint32, delayMS int64) {
	s.delays[clientID] = delayMS
}

// RemoveClient drops all per-client state: buffered input, anti-cheat
// history, and tracked network delay. It does not remove the client's
// player/ship from the world; callers handle that separately.
func (s *Session) RemoveClient(clientID uint32) {
	s.queue.RemoveClient(clientID)
	s.valid.RemoveClient(clientID)
	delete(s.delays, clientID)
}

// Run executes up to maxTicks iterations of the tick loop, advancing
// the ticker by its fixed interval and calling rules.Step once per
// tick. Returns the StepResults so callers (transport) can relay
// carrier events and plank damage without re-deriving them from the
// world diff.
func (s *Session) Run(maxTicks int) []rules.StepResult {
	s.running = true
	defer func() { s.running = false }()

	now := s.clock.Now()
	elapsed := now.Sub(s.ticker.lastTick)
	totalTicks := int(elapsed / s.ticker.interval)
	if totalTicks == 0 && elapsed > 0 {
		totalTicks = 1
	}
	if totalTicks > maxTicks {
		totalTicks = maxTicks
	}

	results := make([]rules.StepResult, 0, totalTicks)
	for i := 0; i < totalTicks; i++ {
		tickStart := time.Now()

		s.ticker.lastTick = s.ticker.lastTick.Add(s.ticker.interval)
		nowMS := s.ticker.lastTick.UnixMilli()

		inputs := s.queue.Drain()
		result := rules.Step(s.world, inputs, s.cfg, nowMS)
		s.world = result.World
		s.rewind.Store(s.world.Tick, s.world, s.delays, nowMS)
		results = append(results, result)

		if gauge := observability.GetQueueDepthGauge(); gauge != nil {
			gauge.Set(float64(s.queue.TotalSize()))
		}

		if counter := observability.GetCarrierSwitchesCounter(); counter != nil {
			for _, ev := range result.CarrierEvents {
				if ev.Kind == rules.CarrierChanged {
					counter.WithLabelValues("changed").Inc()
				} else {
					counter.WithLabelValues("left_deck").Inc()
				}
			}
		}
		if histogram := observability.GetPlankDamageHistogram(); histogram != nil {
			for _, dmg := range result.PlankDamage {
				if dmg > 0 {
					histogram.Observe(dmg)
				}
			}
		}

		tickDuration := time.Since(tickStart)
		if histogram := observability.GetTickDurationHistogram(); histogram != nil {
			histogram.Observe(tickDuration.Seconds())
		}

		const slowTickThreshold = 10 * time.Millisecond
		if tickDuration > slowTickThreshold && s.logger.Enabled() {
			s.logger.WithValues(
				"component", "session",
				"tick", s.world.Tick,
				"duration_ms", tickDuration.Seconds()*1000.0,
				"threshold_ms", slowTickThreshold.Seconds()*1000.0,
			).Info("tick execution exceeded threshold")
		}
	}

	return results
}

// GetWorld returns the current world state.
func (s *Session) GetWorld() entities.World {
	return s.world
}

// Rewind returns the session's rewind ring, used by transport to
// answer hit and movement validation requests.
func (s *Session) Rewind() *RewindRing {
	return s.rewind
}

// Validator returns the session's anti-cheat validator, used by
// transport to decide when a client should be disconnected or banned.
func (s *Session) Validator() *InputValidator {
	return s.valid
}

// IsRunning reports whether Run is currently executing.
func (s *Session) IsRunning() bool {
	return s.running
}

// Stop requests that the session halt. Run already returns after
// draining its tick budget; Stop is for callers driving a longer-lived
// loop around repeated Run calls.
func (s *Session) Stop() {
	s.running = false
}

// SetLogger sets the logger used for tick-performance diagnostics.
func (s *Session) SetLogger(logger logr.Logger) {
	s.logger = logger
}
