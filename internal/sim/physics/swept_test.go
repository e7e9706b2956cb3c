package physics

import (
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sweptTestShip(destroyedIdx int) entities.Ship {
	s := entities.NewShip(1, entities.Zero(), 0, squareHull(10), 1000, 50000, 200, 1.0, 0.99, 0.98)
	s.Modules = make([]entities.Module, 4)
	for i := 0; i < 4; i++ {
		health := 100.0
		if i == destroyedIdx {
			health = 0
		}
		s.Modules[i] = entities.Module{
			Kind:  entities.ModulePlank,
			Plank: &entities.PlankPayload{SegmentIndex: i, Health: health},
		}
	}
	return s
}

// sweptTestShipShuffled builds the same ship as sweptTestShip but with
// its plank modules stored out of hull-edge order, so segment_index no
// longer matches slice position.
func sweptTestShipShuffled(destroyedIdx int) entities.Ship {
	s := sweptTestShip(destroyedIdx)
	shuffled := make([]entities.Module, len(s.Modules))
	for i, m := range s.Modules {
		shuffled[(i+2)%len(s.Modules)] = m
	}
	s.Modules = shuffled
	return s
}

var _ = Describe("Swept", Label("scope:unit", "loop:g1-physics", "layer:sim", "dep:none", "b:swept-collision", "r:high", "double:fake"), func() {
	const dt = 1.0 / 30.0
	const eps = 0.01

	Describe("Zero-length motion", func() {
		It("reports no collision and leaves position unchanged", func() {
			s := sweptTestShip(-1)
			start := entities.NewVec2(20, 0)
			res := Swept(start, start, 1, entities.Zero(), &s, eps, dt)
			Expect(res.Collided).To(BeFalse())
			Expect(res.NewPosition).To(Equal(start))
		})
	})

	Describe("No-gap case", func() {
		It("stops a disc moving into a solid hull edge", func() {
			s := sweptTestShip(-1)
			start := entities.NewVec2(20, 0)
			end := entities.NewVec2(5, 0)
			vel := entities.NewVec2(-1, 0)

			res := Swept(start, end, 1, vel, &s, eps, dt)

			Expect(res.Collided).To(BeTrue())
			Expect(res.NewPosition.X).To(BeNumerically(">", end.X))
			Expect(res.NewPosition.X).To(BeNumerically("<=", start.X))
		})

		It("does not collide when the disc stays outside the hull", func() {
			s := sweptTestShip(-1)
			start := entities.NewVec2(30, 0)
			end := entities.NewVec2(25, 0)

			res := Swept(start, end, 1, entities.Zero(), &s, eps, dt)

			Expect(res.Collided).To(BeFalse())
			Expect(res.NewPosition).To(Equal(end))
		})
	})

	Describe("Gap case", func() {
		It("lets a disc pass through a destroyed plank's gap", func() {
			s := sweptTestShip(0) // destroy the right-hand edge plank
			start := entities.NewVec2(20, 0)
			end := entities.NewVec2(5, 0)

			res := Swept(start, end, 1, entities.Zero(), &s, eps, dt)

			Expect(res.Collided).To(BeFalse())
			Expect(res.NewPosition).To(Equal(end))
		})

		It("still collides against a different healthy edge", func() {
			s := sweptTestShip(0) // right-hand edge destroyed, others healthy
			start := entities.NewVec2(0, 20)
			end := entities.NewVec2(0, 5)

			res := Swept(start, end, 1, entities.Zero(), &s, eps, dt)

			Expect(res.Collided).To(BeTrue())
		})

		It("locates the gap by segment_index even when modules are out of hull-edge order", func() {
			s := sweptTestShipShuffled(0)
			start := entities.NewVec2(20, 0)
			end := entities.NewVec2(5, 0)

			res := Swept(start, end, 1, entities.Zero(), &s, eps, dt)

			Expect(res.Collided).To(BeFalse())
			Expect(res.NewPosition).To(Equal(end))
		})
	})
})
