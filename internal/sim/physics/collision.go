package physics

import (
	"math"
	"sort"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
)

// collisionEffectiveMass is the effective mass used for ship-ship
// impulse resolution. It is deliberately a fixed constant rather than
// derived from each ship's Mass field: Mass governs thrust response
// only, not collision weight.
const collisionEffectiveMass = 1000.0

const (
	collisionRestitution  = 0.05
	collisionBroadMargin  = 5.0
	angularImpulseMinFrac = 0.0005
	angularImpulseMaxFrac = 0.002
	minLinearDamping      = 0.7
	linearDampingSlope    = 0.01
	minAngularDamping     = 0.6
	angularDampingSlope   = 0.015
	maxPlankDamage        = 15.0
	plankDamagePerDepth   = 20.0
)

// CollisionResult describes a resolved ship-ship collision, for metrics
// and plank-damage follow-up.
type CollisionResult struct {
	Collided     bool
	Normal       entities.Vec2 // oriented from A to B
	Penetration  float64
	ContactPoint entities.Vec2
}

// shipWorldPolygon returns the ship's deck polygon in world space if it
// has one, else its hull.
func shipWorldPolygon(s *entities.Ship) []entities.Vec2 {
	if deck := s.DeckPolygon(); deck != nil {
		out := make([]entities.Vec2, len(deck))
		for i, v := range deck {
			out[i] = s.LocalToWorld(v)
		}
		return out
	}
	return s.WorldHull()
}

// BroadPhaseCandidate reports whether two ships are close enough to
// warrant the narrow-phase SAT test.
func BroadPhaseCandidate(a, b *entities.Ship) bool {
	radiusSum := a.BoundingRadius() + b.BoundingRadius() + 2*collisionBroadMargin
	dist := b.Pos.Sub(a.Pos).Length()
	return dist < radiusSum
}

// DetectShipCollision runs the narrow-phase SAT test between two ships
// using their world-space hull (or deck, if present) polygons.
func DetectShipCollision(a, b *entities.Ship) CollisionResult {
	polyA := shipWorldPolygon(a)
	polyB := shipWorldPolygon(b)
	if len(polyA) < 3 || len(polyB) < 3 {
		return CollisionResult{}
	}

	sat := SAT(polyA, polyB, a.Pos, b.Pos)
	if !sat.Colliding {
		return CollisionResult{}
	}

	return CollisionResult{
		Collided:     true,
		Normal:       sat.Normal,
		Penetration:  sat.Depth,
		ContactPoint: a.Pos.Add(b.Pos).Scale(0.5),
	}
}

// ResolveShipCollision applies positional separation and an impulse
// response to a and b given a detected collision, per the fixed
// effective-mass model. Returns the plank damage (min(penetration*20, 15))
// to be applied by the caller via ApplyRadialPlankDamage.
func ResolveShipCollision(a, b *entities.Ship, res CollisionResult) float64 {
	if !res.Collided {
		return 0
	}

	// Separate positions: each ship moves by half the penetration.
	correction := res.Normal.Scale(res.Penetration / 2)
	a.Pos = a.Pos.Sub(correction)
	b.Pos = b.Pos.Add(correction)

	relVel := b.Vel.Sub(a.Vel)
	vn := relVel.Dot(res.Normal)
	if vn > 0 {
		// Already separating.
		return math.Min(res.Penetration*plankDamagePerDepth, maxPlankDamage)
	}

	const mA, mB = collisionEffectiveMass, collisionEffectiveMass
	j := -(1 + collisionRestitution) * vn / (mA + mB)

	a.Vel = a.Vel.Sub(res.Normal.Scale(j * mB))
	b.Vel = b.Vel.Add(res.Normal.Scale(j * mA))

	angularImpulseScale := math.Min(math.Abs(vn)*angularImpulseMinFrac, angularImpulseMaxFrac)
	armA := res.ContactPoint.Sub(a.Pos)
	armB := res.ContactPoint.Sub(b.Pos)
	a.AngVel -= armA.Cross(res.Normal.Scale(j)) * angularImpulseScale
	b.AngVel += armB.Cross(res.Normal.Scale(j)) * angularImpulseScale

	linDamp := math.Max(minLinearDamping, 1-math.Abs(vn)*linearDampingSlope)
	angDamp := math.Max(minAngularDamping, 1-math.Abs(vn)*angularDampingSlope)
	a.Vel = a.Vel.Scale(linDamp)
	b.Vel = b.Vel.Scale(linDamp)
	a.AngVel *= angDamp
	b.AngVel *= angDamp

	return math.Min(res.Penetration*plankDamagePerDepth, maxPlankDamage)
}

// ResolveAllShipCollisions runs broad phase, narrow phase, resolution,
// and radial plank damage for every ship pair in ships, returning the
// total plank damage each colliding ship took (keyed by ship id). Used
// once per collision substep by the tick loop. Pairs are visited in
// ascending ship-id order regardless of the input slice's order, per
// §5's determinism requirement.
func ResolveAllShipCollisions(ships []entities.Ship) map[uint32]float64 {
	order := make([]int, len(ships))
	for i := range ships {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return ships[order[i]].ID < ships[order[j]].ID })

	damage := make(map[uint32]float64)
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, b := &ships[order[i]], &ships[order[j]]
			if !BroadPhaseCandidate(a, b) {
				continue
			}
			res := DetectShipCollision(a, b)
			if !res.Collided {
				continue
			}
			dmg := ResolveShipCollision(a, b, res)
			if dmg <= 0 {
				continue
			}
			ApplyRadialPlankDamage(a, res.ContactPoint, dmg)
			ApplyRadialPlankDamage(b, res.ContactPoint, dmg)
			damage[a.ID] += dmg
			damage[b.ID] += dmg
		}
	}
	return damage
}
