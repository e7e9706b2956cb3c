package rules

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Player motion", Label("scope:unit", "loop:g2-rules", "layer:sim", "dep:none", "b:player-motion", "r:high", "double:fake"), func() {
	var cfg Config

	BeforeEach(func() {
		cfg = DefaultConfig()
	})

	Describe("ApplyMountedMotion", func() {
		It("follows the rigid body exactly regardless of input", func() {
			ship := entities.NewShip(1, entities.NewVec2(0, 0), 0, rectHull(100, 50), 1000, 500000, 200, 1.0, 1.0, 1.0)
			ship.Vel = entities.NewVec2(5, 0)
			ship.AngVel = 0.1
			ship.Modules = []entities.Module{{ID: 9, Kind: entities.ModuleHelm, LocalPos: entities.NewVec2(10, 0), Helm: &entities.HelmPayload{}}}

			player := entities.NewPlayer(1, entities.Zero(), 8)
			player.CarrierID = 1
			player.MountedModuleID = 9

			ApplyMountedMotion(&player, []entities.Ship{ship})

			expectedPos := ship.Pos.Add(entities.NewVec2(10, 0).Rotate(ship.Rot))
			Expect(player.Pos).To(Equal(expectedPos))

			expectedVel := ship.Vel.Add(entities.NewVec2(10, 0).Perp().Scale(ship.AngVel))
			Expect(player.Vel).To(Equal(expectedVel))
		})
	})

	Describe("ApplyOnDeckMotion", func() {
		It("rotates the carried position using the exact rotation when delta theta is large", func() {
			ship := entities.NewShip(1, entities.Zero(), math.Pi, rectHull(100, 50), 1000, 500000, 200, 1.0, 1.0, 1.0)
			ship.AngVel = math.Pi / (1.0 / 30.0) // rotated by exactly pi this tick

			player := entities.NewPlayer(1, entities.NewVec2(50, 0), 8)
			input := entities.InputFrame{}

			ApplyOnDeckMotion(&player, &ship, input, cfg, 1.0/30.0)

			// prevRot = pi - pi = 0; rel = (50,0) - prevPos; rotating by pi
			// flips x. The player should end up near x = -50.
			Expect(player.Pos.X).To(BeNumerically("~", -50, 1))
		})

		It("applies an outward jump-exit boost beyond 0.7 * ship radius", func() {
			ship := entities.NewShip(1, entities.Zero(), 0, rectHull(100, 50), 1000, 500000, 200, 1.0, 1.0, 1.0)
			player := entities.NewPlayer(1, entities.NewVec2(90, 0), 8)
			input := entities.InputFrame{Actions: entities.ActionJump}

			prevPos := player.Pos
			ApplyOnDeckMotion(&player, &ship, input, cfg, 1.0/30.0)

			Expect(player.Pos.X).To(BeNumerically(">", prevPos.X))
		})
	})

	Describe("ApplyInWaterMotion", func() {
		It("accelerates toward the input direction and clamps to max swim speed", func() {
			player := entities.NewPlayer(1, entities.NewVec2(1000, 1000), 8)
			input := entities.InputFrame{Movement: entities.NewVec2(1, 0)}

			for i := 0; i < 100; i++ {
				ApplyInWaterMotion(&player, nil, input, cfg, 1.0/30.0)
			}

			Expect(player.Vel.Length()).To(BeNumerically("<=", cfg.SwimMaxSpeed+1e-6))
		})

		It("decelerates to zero when input stops", func() {
			player := entities.NewPlayer(1, entities.Zero(), 8)
			player.Vel = entities.NewVec2(5, 0)
			noInput := entities.InputFrame{}

			for i := 0; i < 100; i++ {
				ApplyInWaterMotion(&player, nil, noInput, cfg, 1.0/30.0)
			}

			Expect(player.Vel.Length()).To(BeNumerically("~", 0, 1e-6))
		})
	})

	Describe("ApplyPlayerMotion regime dispatch", func() {
		It("dispatches to exactly one regime per player", func() {
			ship := entities.NewShip(1, entities.Zero(), 0, rectHull(100, 50), 1000, 500000, 200, 1.0, 1.0, 1.0)
			player := entities.NewPlayer(1, entities.NewVec2(1000, 1000), 8)
			input := entities.InputFrame{}

			Expect(player.Regime()).To(Equal(entities.RegimeInWater))
			ApplyPlayerMotion(&player, []entities.Ship{ship}, input, cfg, 1.0/30.0)
		})
	})
})
