package physics

import (
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Geometry helpers", Label("scope:unit", "loop:g1-physics", "layer:sim", "dep:none", "b:geometry", "r:medium", "double:fake"), func() {
	Describe("SAT", func() {
		It("reports no collision for disjoint squares", func() {
			a := squareHull(5)
			b := translatePoly(squareHull(5), entities.NewVec2(100, 0))
			res := SAT(a, b, entities.Zero(), entities.NewVec2(100, 0))
			Expect(res.Colliding).To(BeFalse())
		})

		It("reports collision and a correctly oriented normal for overlapping squares", func() {
			a := squareHull(5)
			b := translatePoly(squareHull(5), entities.NewVec2(8, 0))
			res := SAT(a, b, entities.Zero(), entities.NewVec2(8, 0))
			Expect(res.Colliding).To(BeTrue())
			Expect(res.Depth).To(BeNumerically("~", 2, 1e-9))
			Expect(res.Normal.X).To(BeNumerically(">", 0))
		})
	})

	Describe("ClosestPointOnSegment", func() {
		It("clamps to an endpoint when the projection falls outside the segment", func() {
			p := ClosestPointOnSegment(entities.NewVec2(-5, 0), entities.NewVec2(0, 0), entities.NewVec2(10, 0))
			Expect(p).To(Equal(entities.NewVec2(0, 0)))
		})

		It("returns the perpendicular foot when the projection falls inside the segment", func() {
			p := ClosestPointOnSegment(entities.NewVec2(5, 5), entities.NewVec2(0, 0), entities.NewVec2(10, 0))
			Expect(p).To(Equal(entities.NewVec2(5, 0)))
		})

		It("returns the start point for a degenerate (zero-length) segment", func() {
			p := ClosestPointOnSegment(entities.NewVec2(5, 5), entities.NewVec2(1, 1), entities.NewVec2(1, 1))
			Expect(p).To(Equal(entities.NewVec2(1, 1)))
		})
	})

	Describe("PointInPolygon", func() {
		It("reports a center point as inside", func() {
			Expect(PointInPolygon(entities.Zero(), squareHull(5))).To(BeTrue())
		})

		It("reports a far point as outside", func() {
			Expect(PointInPolygon(entities.NewVec2(100, 100), squareHull(5))).To(BeFalse())
		})
	})

	Describe("DistanceToPolygonBoundary", func() {
		It("returns the distance from the center to the nearest edge", func() {
			d := DistanceToPolygonBoundary(entities.Zero(), squareHull(5))
			Expect(d).To(BeNumerically("~", 5, 1e-9))
		})
	})
})

func translatePoly(poly []entities.Vec2, offset entities.Vec2) []entities.Vec2 {
	out := make([]entities.Vec2, len(poly))
	for i, v := range poly {
		out[i] = v.Add(offset)
	}
	return out
}
