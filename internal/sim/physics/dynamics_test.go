package physics

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func dynamicsTestShip() entities.Ship {
	return entities.NewShip(1, entities.Zero(), 0, squareHull(10), 1000, 50000, 200, 1.0, 0.99, 0.98)
}

var _ = Describe("Ship dynamics", Label("scope:unit", "loop:g1-physics", "layer:sim", "dep:none", "b:ship-dynamics", "r:high", "double:fake"), func() {
	const dt = 1.0 / 30.0

	Describe("StepAngular", func() {
		It("increases angular velocity when steering hard over from rest", func() {
			s := dynamicsTestShip()
			StepAngular(&s, 1.0, dt)
			Expect(s.AngVel).To(BeNumerically(">", 0))
		})

		It("never exceeds the turn rate", func() {
			s := dynamicsTestShip()
			for i := 0; i < 1000; i++ {
				StepAngular(&s, 1.0, dt)
			}
			Expect(math.Abs(s.AngVel)).To(BeNumerically("<=", s.TurnRate+1e-9))
		})

		It("wraps rotation into [-pi, pi]", func() {
			s := dynamicsTestShip()
			s.AngVel = 10
			StepAngular(&s, 0, dt)
			Expect(s.Rot).To(BeNumerically(">=", -math.Pi))
			Expect(s.Rot).To(BeNumerically("<=", math.Pi))
		})
	})

	Describe("StepLinear", func() {
		It("produces minimum thrust with no masts", func() {
			s := dynamicsTestShip()
			StepLinear(&s, dt)
			Expect(s.Vel.Length()).To(BeNumerically(">", 0))
		})

		It("never exceeds max speed", func() {
			s := dynamicsTestShip()
			s.Modules = []entities.Module{
				{Kind: entities.ModuleMast, Mast: &entities.MastPayload{Openness: 100, WindEfficiency: 1}},
			}
			for i := 0; i < 1000; i++ {
				StepLinear(&s, dt)
			}
			Expect(s.Vel.Length()).To(BeNumerically("<=", s.MaxSpeed+1e-6))
		})

		It("gives a multi-mast ship at least as much thrust as a single mast", func() {
			single := dynamicsTestShip()
			single.Modules = []entities.Module{
				{Kind: entities.ModuleMast, Mast: &entities.MastPayload{Openness: 100, WindEfficiency: 1}},
			}
			multi := dynamicsTestShip()
			multi.Modules = []entities.Module{
				{Kind: entities.ModuleMast, Mast: &entities.MastPayload{Openness: 100, WindEfficiency: 1}},
				{Kind: entities.ModuleMast, Mast: &entities.MastPayload{Openness: 100, WindEfficiency: 1}},
			}

			StepLinear(&single, dt)
			StepLinear(&multi, dt)

			Expect(multi.Vel.Length()).To(BeNumerically(">=", single.Vel.Length()))
		})
	})

	Describe("StepShipDynamics", func() {
		It("reads steering from the helm module", func() {
			s := dynamicsTestShip()
			s.Modules = []entities.Module{
				{Kind: entities.ModuleHelm, Helm: &entities.HelmPayload{Steering: 1.0}},
			}
			StepShipDynamics(&s, dt)
			Expect(s.AngVel).To(BeNumerically(">", 0))
		})

		It("does not turn with no helm module present", func() {
			s := dynamicsTestShip()
			StepShipDynamics(&s, dt)
			Expect(s.AngVel).To(Equal(0.0))
		})
	})
})
