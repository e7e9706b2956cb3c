package session

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
)

// ShipSnapshot is the minimal per-ship state §4.7 requires to
// reconstruct a past tick: identity, kinematics, health, and a
// bounding radius (derived from the hull, needed to give validate_hit
// something to intersect against without storing the full hull).
type ShipSnapshot struct {
	ID     uint32
	Pos    entities.Vec2
	Vel    entities.Vec2
	Rot    float64
	Health float64
	Radius float64
}

// PlayerSnapshot is the minimal per-player state §4.7 requires.
type PlayerSnapshot struct {
	ID     uint32
	Pos    entities.Vec2
	Vel    entities.Vec2
	Facing float64
}

// RewindEntry is one ring slot: a compact snapshot of every active
// ship and player at a tick, the wall-clock time it was captured, and
// the per-client network delay observed at that moment.
type RewindEntry struct {
	Tick        uint64
	TimestampMS int64
	Ships       []ShipSnapshot
	Players     []PlayerSnapshot
	Delays      map[uint32]int64
}

func shipSnapshotOf(s entities.Ship) ShipSnapshot {
	planks := s.Planks()
	health := 100.0
	if len(planks) > 0 {
		sum := 0.0
		for _, p := range planks {
			sum += p.Health
		}
		health = sum / float64(len(planks))
	}
	return ShipSnapshot{ID: s.ID, Pos: s.Pos, Vel: s.Vel, Rot: s.Rot, Health: health, Radius: s.BoundingRadius()}
}

func playerSnapshotOf(p entities.Player) PlayerSnapshot {
	return PlayerSnapshot{ID: p.ID, Pos: p.Pos, Vel: p.Vel, Facing: p.Facing}
}

// RewindRing is a fixed-length ring buffer of RewindEntry, indexed by
// tick modulo its capacity. It never grows: once full, storing a new
// tick silently retires the oldest one, matching §4.7's O(1) insert
// and §5's fixed-allocation resource bound.
type RewindRing struct {
	entries []RewindEntry
	filled  []bool
	size    int

	hasData    bool
	oldestTick uint64
	newestTick uint64

	totalRewinds          int
	successfulRewinds     int
	failedRewinds         int
	totalRewindDistanceMS int64
}

// NewRewindRing creates a ring with the given fixed capacity.
func NewRewindRing(size int) *RewindRing {
	if size < 1 {
		size = 1
	}
	return &RewindRing{
		entries: make([]RewindEntry, size),
		filled:  make([]bool, size),
		size:    size,
	}
}

func (r *RewindRing) slot(tick uint64) int {
	return int(tick % uint64(r.size))
}

// Store captures the world at tick into the ring, evicting whatever
// occupied that slot previously.
func (r *RewindRing) Store(tick uint64, world entities.World, delays map[uint32]int64, nowMS int64) {
	ships := make([]ShipSnapshot, len(world.Ships))
	for i, s := range world.Ships {
		ships[i] = shipSnapshotOf(s)
	}
	players := make([]PlayerSnapshot, len(world.Players))
	for i, p := range world.Players {
		players[i] = playerSnapshotOf(p)
	}

	delaysCopy := make(map[uint32]int64, len(delays))
	for k, v := range delays {
		delaysCopy[k] = v
	}

	idx := r.slot(tick)
	r.entries[idx] = RewindEntry{Tick: tick, TimestampMS: nowMS, Ships: ships, Players: players, Delays: delaysCopy}
	r.filled[idx] = true

	if !r.hasData {
		r.hasData = true
		r.oldestTick = tick
		r.newestTick = tick
		return
	}
	if tick > r.newestTick {
		r.newestTick = tick
	}
	if tick >= r.oldestTick+uint64(r.size) {
		r.oldestTick = tick - uint64(r.size) + 1
	}
}

// GetState returns the exact entry for tick, or if absent, the closest
// older entry whose tick is still within the ring. It never returns an
// entry newer than requested.
func (r *RewindRing) GetState(tick uint64) (RewindEntry, bool) {
	if !r.hasData {
		return RewindEntry{}, false
	}
	if tick > r.newestTick {
		tick = r.newestTick
	}
	for {
		idx := r.slot(tick)
		if r.filled[idx] && r.entries[idx].Tick == tick {
			return r.entries[idx], true
		}
		if tick == r.oldestTick || tick == 0 {
			break
		}
		tick--
	}
	return RewindEntry{}, false
}

// CanRewind reports whether tick currently falls within the ring.
func (r *RewindRing) CanRewind(tick uint64) bool {
	return r.hasData && tick >= r.oldestTick && tick <= r.newestTick
}

// Cleanup invalidates entries whose capture time is older than
// maxRewindMS relative to nowMS, then advances oldestTick to the first
// surviving entry.
func (r *RewindRing) Cleanup(nowMS int64, maxRewindMS int64) {
	if !r.hasData {
		return
	}
	for t := r.oldestTick; t <= r.newestTick; t++ {
		idx := r.slot(t)
		if r.filled[idx] && r.entries[idx].Tick == t && nowMS-r.entries[idx].TimestampMS > maxRewindMS {
			r.filled[idx] = false
		}
	}
	for t := r.oldestTick; t <= r.newestTick; t++ {
		idx := r.slot(t)
		if r.filled[idx] && r.entries[idx].Tick == t {
			r.oldestTick = t
			return
		}
	}
	r.hasData = false
}

// HitValidation is the result of a lag-compensated hit claim.
type HitValidation struct {
	HitValid    bool
	TargetID    uint32
	HitPosition entities.Vec2
	Damage      float64
	RewindMS    int64
	Reason      string
}

// hitDamage is the fixed damage a validated hit applies, per §4.7's
// "apply a fixed damage value".
const hitDamage = 25.0

// ValidateHit reconstructs the world as the client saw it at
// reportedTick and tests the claimed ray against every ship's bounding
// circle, nearest hit wins.
func (r *RewindRing) ValidateHit(clientID uint32, reportedTick uint64, origin, direction entities.Vec2, shotRange float64, nowMS int64) HitValidation {
	r.totalRewinds++

	entry, ok := r.GetState(reportedTick)
	if !ok {
		r.failedRewinds++
		return HitValidation{Reason: "no rewind data for tick"}
	}

	dir := direction.Normalize()
	bestDist := shotRange
	var best *ShipSnapshot
	var bestPoint entities.Vec2
	for i := range entry.Ships {
		s := &entry.Ships[i]
		if s.Health <= 0 {
			continue
		}
		if dist, point, hit := rayCircleIntersect(origin, dir, s.Pos, s.Radius, bestDist); hit {
			bestDist = dist
			best = s
			bestPoint = point
		}
	}

	rewindMS := nowMS - entry.TimestampMS
	if best == nil {
		r.failedRewinds++
		return HitValidation{RewindMS: rewindMS, Reason: "no ship along ray"}
	}

	r.successfulRewinds++
	r.totalRewindDistanceMS += rewindMS
	return HitValidation{HitValid: true, TargetID: best.ID, HitPosition: bestPoint, Damage: hitDamage, RewindMS: rewindMS}
}

// rayCircleIntersect finds the nearest intersection of the ray
// (origin, dir) with the circle (center, radius) within [0, maxRange].
func rayCircleIntersect(origin, dir, center entities.Vec2, radius, maxRange float64) (float64, entities.Vec2, bool) {
	toCenter := center.Sub(origin)
	proj := toCenter.Dot(dir)
	closest := origin.Add(dir.Scale(proj))
	distSq := closest.Sub(center).LengthSq()
	if distSq > radius*radius {
		return 0, entities.Vec2{}, false
	}
	offset := math.Sqrt(radius*radius - distSq)

	hitDist := proj - offset
	if hitDist < 0 {
		hitDist = proj + offset
	}
	if hitDist < 0 || hitDist > maxRange {
		return 0, entities.Vec2{}, false
	}
	return hitDist, origin.Add(dir.Scale(hitDist)), true
}

// MovementValidation is the result of checking a reported position
// against the physics envelope of §4.7.
type MovementValidation struct {
	Valid    bool
	Expected entities.Vec2
	Distance float64
}

// movementTolerance is the slack factor applied to the max-speed
// envelope to absorb jitter in the client's reported delta.
const movementTolerance = 1.2

// ValidateMovement checks whether a client's reported position at
// toTick is reachable from its snapshotted position at fromTick given
// maxSpeed and the tick duration dt.
func (r *RewindRing) ValidateMovement(clientID uint32, fromTick, toTick uint64, reportedPosition entities.Vec2, maxSpeed, dt float64) MovementValidation {
	entry, ok := r.GetState(fromTick)
	if !ok {
		return MovementValidation{}
	}

	var fromPos entities.Vec2
	found := false
	for _, p := range entry.Players {
		if p.ID == clientID {
			fromPos = p.Pos
			found = true
			break
		}
	}
	if !found {
		return MovementValidation{}
	}

	elapsedTicks := 0.0
	if toTick > fromTick {
		elapsedTicks = float64(toTick - fromTick)
	}
	maxDist := maxSpeed * elapsedTicks * dt * movementTolerance
	dist := reportedPosition.Sub(fromPos).Length()
	return MovementValidation{Valid: dist <= maxDist, Expected: fromPos, Distance: dist}
}

// RewindStats summarizes the ring's lifetime rewind statistics.
type RewindStats struct {
	TotalRewinds             int
	SuccessfulRewinds        int
	FailedRewinds            int
	AverageRewindDistanceMS  float64
}

// Stats returns the current lifetime rewind counters, per §4.7's
// invariant that they are updated on every validation.
func (r *RewindRing) Stats() RewindStats {
	avg := 0.0
	if r.successfulRewinds > 0 {
		avg = float64(r.totalRewindDistanceMS) / float64(r.successfulRewinds)
	}
	return RewindStats{
		TotalRewinds:            r.totalRewinds,
		SuccessfulRewinds:       r.successfulRewinds,
		FailedRewinds:           r.failedRewinds,
		AverageRewindDistanceMS: avg,
	}
}
