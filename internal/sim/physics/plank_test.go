package physics

import (
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func shipWithPlanks(n int) entities.Ship {
	s := entities.NewShip(1, entities.Zero(), 0, squareHull(10), 1000, 50000, 200, 1.0, 0.99, 0.98)
	s.Modules = make([]entities.Module, n)
	for i := 0; i < n; i++ {
		s.Modules[i] = entities.Module{
			Kind:  entities.ModulePlank,
			Plank: &entities.PlankPayload{SegmentIndex: i, Health: 100},
		}
	}
	return s
}

var _ = Describe("ApplyRadialPlankDamage", Label("scope:unit", "loop:g1-physics", "layer:sim", "dep:none", "b:plank-damage", "r:medium", "double:fake"), func() {
	It("damages the plank nearest the contact angle the most", func() {
		s := shipWithPlanks(8)
		contact := s.LocalToWorld(entities.NewVec2(10, 0))

		ApplyRadialPlankDamage(&s, contact, 10)

		primary := s.Planks()[0]
		Expect(primary.Health).To(BeNumerically("<", 100))
	})

	It("applies less damage to planks further from the contact angle", func() {
		s := shipWithPlanks(8)
		contact := s.LocalToWorld(entities.NewVec2(10, 0))

		ApplyRadialPlankDamage(&s, contact, 10)

		planks := s.Planks()
		primaryLoss := 100 - planks[0].Health
		Expect(primaryLoss).To(BeNumerically(">", 0))

		for i := 1; i < len(planks); i++ {
			loss := 100 - planks[i].Health
			Expect(loss).To(BeNumerically("<=", primaryLoss))
		}
	})

	It("never drives plank health below zero", func() {
		s := shipWithPlanks(4)
		contact := s.LocalToWorld(entities.NewVec2(10, 0))

		ApplyRadialPlankDamage(&s, contact, 1000)

		for _, p := range s.Planks() {
			Expect(p.Health).To(BeNumerically(">=", 0))
		}
	})

	It("does nothing for a ship with no planks", func() {
		s := entities.NewShip(1, entities.Zero(), 0, squareHull(10), 1000, 50000, 200, 1.0, 0.99, 0.98)
		Expect(func() { ApplyRadialPlankDamage(&s, entities.Zero(), 10) }).NotTo(Panic())
	})

	It("skips already-destroyed planks", func() {
		s := shipWithPlanks(4)
		s.Modules[0].Plank.Health = 0
		contact := s.LocalToWorld(entities.NewVec2(10, 0))

		ApplyRadialPlankDamage(&s, contact, 10)

		Expect(s.Planks()[0].Health).To(Equal(0.0))
	})

	It("locates planks by segment_index, not by module-list position", func() {
		s := shipWithPlanks(8)
		// Shuffle the module list so slice position no longer matches
		// SegmentIndex; segment_index 0 (the primary plank for a contact
		// at local (10, 0)) now sits last in Modules.
		shuffled := make([]entities.Module, len(s.Modules))
		for i, m := range s.Modules {
			shuffled[(i+3)%len(s.Modules)] = m
		}
		s.Modules = shuffled
		contact := s.LocalToWorld(entities.NewVec2(10, 0))

		ApplyRadialPlankDamage(&s, contact, 10)

		bySegment := s.PlankBySegment()
		Expect(bySegment[0].Health).To(BeNumerically("<", 100))
		for seg, p := range bySegment {
			if seg == 0 {
				continue
			}
			Expect(100 - p.Health).To(BeNumerically("<=", 100-bySegment[0].Health))
		}
	})
})
