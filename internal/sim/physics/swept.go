package physics

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
)

// zeroMotionLengthMin is the motion-vector length below which a swept
// test is treated as zero-length motion.
const zeroMotionLengthMin = 1e-3

// SweptResult is the outcome of a swept-disc-vs-plank-aware-hull test.
type SweptResult struct {
	NewPosition entities.Vec2
	NewVelocity entities.Vec2
	Collided    bool
	Normal      entities.Vec2
	Penetration float64
	ContactPoint entities.Vec2
}

// plankSegment is one solid (non-destroyed) hull edge in world space.
type plankSegment struct {
	a, b entities.Vec2
}

// PlankAwareSegments walks the ship's world-space hull edge by edge and
// returns only the segments whose corresponding plank (looked up by
// segment_index, per §4.6) is not destroyed. If the ship has no plank
// modules at all, every hull edge is solid. Hull edge i is protected by
// the plank whose SegmentIndex == i, regardless of that plank's
// position within the ship's module list.
func PlankAwareSegments(s *entities.Ship) []plankSegment {
	hull := s.WorldHull()
	n := len(hull)
	if n == 0 {
		return nil
	}

	bySegment := s.PlankBySegment()
	segments := make([]plankSegment, 0, n)
	for i := 0; i < n; i++ {
		if len(bySegment) > 0 {
			p, ok := bySegment[i]
			if ok && p.Destroyed() {
				continue
			}
		}
		segments = append(segments, plankSegment{a: hull[i], b: hull[(i+1)%n]})
	}
	return segments
}

// HasPlankGaps reports whether the ship's plank-aware boundary has any
// destroyed plank, i.e. the hull is not a single closed polygon.
func HasPlankGaps(s *entities.Ship) bool {
	for _, p := range s.Planks() {
		if p.Destroyed() {
			return true
		}
	}
	return false
}

// PointInsidePlankAwareHull reports whether p lies within the ship's
// hull as bounded by its solid (non-destroyed) plank segments, per
// §4.4's "isInside ... using the plank-aware polygon". Unlike
// PointInPolygon over the closed hull, a destroyed plank's gap removes
// that edge from the ray-casting boundary entirely, so a point only
// reachable through the gap is reported as outside — the same
// definition of "inside" the swept-collision path already uses.
func PointInsidePlankAwareHull(p entities.Vec2, s *entities.Ship) bool {
	segments := PlankAwareSegments(s)
	if len(segments) == 0 {
		return false
	}
	return pointInsideSegments(p, segments)
}

// DistanceToPlankAwareBoundary returns the distance from p to the
// nearest solid (non-destroyed) plank segment of s's hull. Used as the
// penetration depth for a point already known to be inside via
// PointInsidePlankAwareHull.
func DistanceToPlankAwareBoundary(p entities.Vec2, s *entities.Ship) float64 {
	return distanceToSegments(p, PlankAwareSegments(s))
}

// pointInsideSegments runs the standard ray-casting even-odd test over
// an arbitrary, possibly-open list of segments rather than a closed
// polygon's vertex ring. Omitting a segment (a plank gap) removes a
// potential crossing, which is exactly what lets a point "leak through"
// a destroyed plank's gap and come out classified as outside.
func pointInsideSegments(p entities.Vec2, segments []plankSegment) bool {
	inside := false
	for _, seg := range segments {
		vi, vj := seg.a, seg.b
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xCross := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// distanceToSegments returns the distance from p to the nearest
// segment in segments.
func distanceToSegments(p entities.Vec2, segments []plankSegment) float64 {
	min := math.Inf(1)
	for _, seg := range segments {
		d := p.Sub(ClosestPointOnSegment(p, seg.a, seg.b)).Length()
		if d < min {
			min = d
		}
	}
	return min
}

// Swept tests a moving disc of the given radius from start to end
// against the ship's plank-aware hull, per the gap/no-gap algorithms.
func Swept(start, end entities.Vec2, radius float64, velocity entities.Vec2, s *entities.Ship, eps, dt float64) SweptResult {
	miss := SweptResult{NewPosition: end, NewVelocity: velocity}

	motion := end.Sub(start)
	if motion.Length() < zeroMotionLengthMin {
		return miss
	}

	segments := PlankAwareSegments(s)
	if len(segments) == 0 {
		return miss
	}

	if HasPlankGaps(s) {
		return sweptGapCase(start, end, radius, velocity, segments, eps)
	}

	hull := s.WorldHull()
	if PointInPolygon(start, hull) {
		if PointInPolygon(end, hull) {
			return miss
		}
		// Exiting through a solid (gapless) hull is not permitted here;
		// clamp back to the boundary.
		clamped := clampToPolygonBoundary(end, hull, radius+eps)
		return SweptResult{NewPosition: clamped, NewVelocity: velocity, Collided: true}
	}

	return sweptNoGapCase(start, end, radius, velocity, segments, eps)
}

// clampToPolygonBoundary pulls an outside point p back inside poly, to
// minDist inward from the nearest point on poly's boundary.
func clampToPolygonBoundary(p entities.Vec2, poly []entities.Vec2, minDist float64) entities.Vec2 {
	n := len(poly)
	bestD := math.Inf(1)
	var bestPoint entities.Vec2
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		c := ClosestPointOnSegment(p, a, b)
		d := p.Sub(c).Length()
		if d < bestD {
			bestD = d
			bestPoint = c
		}
	}
	outward := p.Sub(bestPoint)
	if outward.Length() < segmentLengthSqMin {
		return bestPoint
	}
	return bestPoint.Sub(outward.Normalize().Scale(minDist))
}

// sweptGapCase implements the gap-case algorithm: among segments whose
// swept disk intersects, pick the one whose closest point to end is
// nearest, and push the disc out along that segment's outward normal.
func sweptGapCase(start, end entities.Vec2, radius float64, velocity entities.Vec2, segments []plankSegment, eps float64) SweptResult {
	effRadius := radius + eps

	bestDist := math.Inf(1)
	var bestClosest entities.Vec2
	found := false

	for _, seg := range segments {
		if seg.b.Sub(seg.a).LengthSq() < segmentLengthSqMin {
			continue
		}
		if !sweptIntersectsSegment(start, end, effRadius, seg) {
			continue
		}
		closest := ClosestPointOnSegment(end, seg.a, seg.b)
		d := end.Sub(closest).Length()
		if d < bestDist {
			bestDist = d
			bestClosest = closest
			found = true
		}
	}

	if !found {
		return SweptResult{NewPosition: end, NewVelocity: velocity}
	}

	outward := end.Sub(bestClosest)
	if outward.Length() < segmentLengthSqMin {
		outward = start.Sub(bestClosest)
	}
	normal := outward.Normalize()

	newPos := bestClosest.Add(normal.Scale(effRadius))
	tangent := entities.Vec2{X: -normal.Y, Y: normal.X}
	newVel := tangent.Scale(velocity.Dot(tangent))

	return SweptResult{
		NewPosition:  newPos,
		NewVelocity:  newVel,
		Collided:     true,
		Normal:       normal,
		Penetration:  math.Max(0, effRadius-bestDist),
		ContactPoint: bestClosest,
	}
}

// sweptIntersectsSegment reports whether a disc of effRadius sweeping
// from start to end comes within effRadius of the segment at some point
// along its path. Implemented as a capsule (swept-segment) vs. segment
// distance test: true iff the minimum distance between the motion
// segment [start,end] and the boundary segment [a,b] is <= effRadius.
func sweptIntersectsSegment(start, end entities.Vec2, effRadius float64, seg plankSegment) bool {
	return segmentSegmentDistance(start, end, seg.a, seg.b) <= effRadius
}

// segmentSegmentDistance returns the minimum distance between two
// line segments.
func segmentSegmentDistance(p1, p2, p3, p4 entities.Vec2) float64 {
	// Crossing segments are at distance zero; the endpoint distances
	// below only cover the non-crossing case.
	d12 := p2.Sub(p1)
	d34 := p4.Sub(p3)
	if denom := d12.Cross(d34); denom != 0 {
		t := p3.Sub(p1).Cross(d34) / denom
		u := p3.Sub(p1).Cross(d12) / denom
		if t >= 0 && t <= 1 && u >= 0 && u <= 1 {
			return 0
		}
	}
	d1 := p1.Sub(ClosestPointOnSegment(p1, p3, p4)).Length()
	d2 := p2.Sub(ClosestPointOnSegment(p2, p3, p4)).Length()
	d3 := p3.Sub(ClosestPointOnSegment(p3, p1, p2)).Length()
	d4 := p4.Sub(ClosestPointOnSegment(p4, p1, p2)).Length()
	return math.Min(math.Min(d1, d2), math.Min(d3, d4))
}

// sweptNoGapCase implements the no-gap algorithm: continuous
// swept-disc-vs-polygon-edge time-of-impact, clipped against vertex
// caps, taking the earliest valid intersection.
func sweptNoGapCase(start, end entities.Vec2, radius float64, velocity entities.Vec2, segments []plankSegment, eps float64) SweptResult {
	effRadius := radius + eps
	motion := end.Sub(start)

	bestT := math.Inf(1)
	var bestSeg plankSegment
	var bestNormal entities.Vec2
	found := false

	for _, seg := range segments {
		edge := seg.b.Sub(seg.a)
		if edge.LengthSq() < segmentLengthSqMin {
			continue
		}
		outwardNormal := entities.Vec2{X: edge.Y, Y: -edge.X}.Normalize()

		// Offset the edge line outward by effRadius; find time t where
		// start + t*motion crosses the offset line.
		offsetPoint := seg.a.Add(outwardNormal.Scale(effRadius))
		denom := motion.Dot(outwardNormal)
		if denom >= 0 {
			// Moving away from or parallel to the edge's outward face.
			continue
		}
		t := offsetPoint.Sub(start).Dot(outwardNormal) / denom
		if t < 0 || t > 1 {
			continue
		}

		hitPoint := start.Add(motion.Scale(t))
		// Clip against the edge's vertex caps (projected extent along edge).
		edgeDir := edge.Normalize()
		proj := hitPoint.Sub(seg.a).Dot(edgeDir)
		if proj < -effRadius || proj > edge.Length()+effRadius {
			continue
		}

		if t < bestT {
			bestT = t
			bestSeg = seg
			bestNormal = outwardNormal
			found = true
		}
	}

	if !found {
		return SweptResult{NewPosition: end, NewVelocity: velocity}
	}

	newPos := start.Add(motion.Scale(bestT))
	tangent := entities.Vec2{X: -bestNormal.Y, Y: bestNormal.X}
	newVel := tangent.Scale(velocity.Dot(tangent))
	contact := ClosestPointOnSegment(newPos, bestSeg.a, bestSeg.b)

	return SweptResult{
		NewPosition:  newPos,
		NewVelocity:  newVel,
		Collided:     true,
		Normal:       bestNormal,
		Penetration:  math.Max(0, effRadius-newPos.Sub(contact).Length()),
		ContactPoint: contact,
	}
}
