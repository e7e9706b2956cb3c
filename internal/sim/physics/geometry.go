// Package physics implements ship dynamics, ship-ship collision, plank
// damage, and swept collision for the tick loop in internal/sim/rules.
package physics

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
)

// segmentLengthSqMin is the squared-length floor below which a polygon
// edge is treated as degenerate and skipped.
const segmentLengthSqMin = 1e-4

// polygonEdgeNormals returns the outward-facing unit normals of each
// edge of a closed, counter-clockwise polygon.
func polygonEdgeNormals(poly []entities.Vec2) []entities.Vec2 {
	n := len(poly)
	normals := make([]entities.Vec2, 0, n)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		edge := b.Sub(a)
		if edge.LengthSq() < segmentLengthSqMin {
			continue
		}
		// Outward normal for a CCW polygon is the clockwise perpendicular.
		normals = append(normals, entities.Vec2{X: edge.Y, Y: -edge.X}.Normalize())
	}
	return normals
}

// projectPolygon projects a polygon onto an axis, returning [min, max].
func projectPolygon(poly []entities.Vec2, axis entities.Vec2) (float64, float64) {
	min := poly[0].Dot(axis)
	max := min
	for _, v := range poly[1:] {
		d := v.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// SATResult is the outcome of a separating-axis test between two convex
// polygons: whether they overlap, and if so the axis of minimum overlap
// (oriented from A to B) and the penetration depth along it.
type SATResult struct {
	Colliding bool
	Normal    entities.Vec2
	Depth     float64
}

// SAT runs the Separating Axis Theorem over the union of edge normals of
// two convex, counter-clockwise, world-space polygons. The centers are
// used only to orient the resulting normal from A to B.
func SAT(polyA, polyB []entities.Vec2, centerA, centerB entities.Vec2) SATResult {
	axes := append(polygonEdgeNormals(polyA), polygonEdgeNormals(polyB)...)

	minDepth := math.Inf(1)
	var minAxis entities.Vec2
	for _, axis := range axes {
		aMin, aMax := projectPolygon(polyA, axis)
		bMin, bMax := projectPolygon(polyB, axis)

		overlap := math.Min(aMax, bMax) - math.Max(aMin, bMin)
		if overlap <= 0 {
			return SATResult{Colliding: false}
		}
		if overlap < minDepth {
			minDepth = overlap
			minAxis = axis
		}
	}

	// Orient the chosen axis from A to B.
	centerDiff := centerB.Sub(centerA)
	if centerDiff.Dot(minAxis) < 0 {
		minAxis = minAxis.Scale(-1)
	}

	return SATResult{Colliding: true, Normal: minAxis, Depth: minDepth}
}

// ClosestPointOnSegment returns the closest point to p on the segment [a, b].
func ClosestPointOnSegment(p, a, b entities.Vec2) entities.Vec2 {
	ab := b.Sub(a)
	lenSq := ab.LengthSq()
	if lenSq < segmentLengthSqMin {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t))
}

// PointInPolygon reports whether p lies inside the closed, convex or
// concave simple polygon poly, using the standard ray-casting test.
func PointInPolygon(p entities.Vec2, poly []entities.Vec2) bool {
	n := len(poly)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := poly[i], poly[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xCross := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// DistanceToPolygonBoundary returns the distance from p (assumed inside
// poly) to the nearest edge of poly.
func DistanceToPolygonBoundary(p entities.Vec2, poly []entities.Vec2) float64 {
	n := len(poly)
	min := math.Inf(1)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		d := p.Sub(ClosestPointOnSegment(p, a, b)).Length()
		if d < min {
			min = d
		}
	}
	return min
}
