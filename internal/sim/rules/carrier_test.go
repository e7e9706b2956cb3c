package rules

import (
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("UpdateCarrierDetection", Label("scope:unit", "loop:g2-rules", "layer:sim", "dep:none", "b:carrier-detection", "r:high", "double:fake"), func() {
	var cfg Config
	var ship entities.Ship

	BeforeEach(func() {
		cfg = DefaultConfig()
		ship = entities.NewShip(1, entities.Zero(), 0, rectHull(100, 50), 1000, 500000, 200, 1.0, 1.0, 1.0)
	})

	It("does not assign a carrier before CONFIRM_IN ticks have elapsed", func() {
		player := entities.NewPlayer(1, entities.NewVec2(50, 0), 8)
		state := entities.NewCarrierDetectionState()

		UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 1, 0)

		Expect(player.CarrierID).To(Equal(uint32(0)))
		Expect(state.Candidates).To(HaveKey(uint32(1)))
	})

	It("assigns the carrier once CONFIRM_IN ticks are reached", func() {
		player := entities.NewPlayer(1, entities.NewVec2(50, 0), 8)
		state := entities.NewCarrierDetectionState()

		UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 1, 0)
		events := UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 2, 33)

		Expect(player.CarrierID).To(Equal(uint32(1)))
		Expect(events).To(ContainElement(CarrierEvent{Kind: CarrierChanged, PlayerID: 1, OldShip: 0, NewShip: 1, Tick: 2}))
	})

	It("forces an immediate leave beyond the hard distance threshold, bypassing cooldown", func() {
		player := entities.NewPlayer(1, entities.NewVec2(50, 0), 8)
		player.CarrierID = 1
		state := entities.CarrierDetectionState{CarrierID: 1, Candidates: map[uint32]*entities.CandidateState{}}

		player.Pos = entities.NewVec2(401, 0)
		events := UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 5, 0)

		Expect(player.CarrierID).To(Equal(uint32(0)))
		Expect(events).To(ContainElement(CarrierEvent{Kind: LeftDeck, PlayerID: 1, OldShip: 1, Tick: 5}))
	})

	It("clears the carrier when the referenced ship no longer exists", func() {
		player := entities.NewPlayer(1, entities.NewVec2(50, 0), 8)
		player.CarrierID = 99
		state := entities.CarrierDetectionState{CarrierID: 99, Candidates: map[uint32]*entities.CandidateState{}}

		events := UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 1, 0)

		Expect(player.CarrierID).To(Equal(uint32(0)))
		found := false
		for _, ev := range events {
			if ev.Kind == LeftDeck && ev.OldShip == 99 {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("skips detection entirely for a mounted player", func() {
		player := entities.NewPlayer(1, entities.NewVec2(50, 0), 8)
		player.MountedModuleID = 7
		state := entities.NewCarrierDetectionState()

		events := UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 1, 0)

		Expect(events).To(BeEmpty())
		Expect(state.Candidates).To(BeEmpty())
	})

	It("does not treat a position behind a destroyed plank's gap as inside the hull", func() {
		// rectHull(100, 50) edge 0 runs from (100,-50) to (100,50): the
		// right-hand edge. Destroying its plank opens a gap there, so a
		// point that is only enclosed via that edge's crossing (per the
		// ray-casting boundary test) must no longer count as inside.
		ship.Modules = []entities.Module{
			{Kind: entities.ModulePlank, Plank: &entities.PlankPayload{SegmentIndex: 0, Health: 0}},
			{Kind: entities.ModulePlank, Plank: &entities.PlankPayload{SegmentIndex: 1, Health: 100}},
			{Kind: entities.ModulePlank, Plank: &entities.PlankPayload{SegmentIndex: 2, Health: 100}},
			{Kind: entities.ModulePlank, Plank: &entities.PlankPayload{SegmentIndex: 3, Health: 100}},
		}
		player := entities.NewPlayer(1, entities.NewVec2(90, 0), 8)
		state := entities.NewCarrierDetectionState()

		UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 1, 0)

		Expect(state.Candidates).NotTo(HaveKey(ship.ID))
		Expect(player.CarrierID).To(Equal(uint32(0)))
	})

	It("still confirms the carrier at the same position when the hull has no gaps", func() {
		// Control case: the same ship with all planks healthy must behave
		// exactly as the pre-existing no-module tests do.
		ship.Modules = []entities.Module{
			{Kind: entities.ModulePlank, Plank: &entities.PlankPayload{SegmentIndex: 0, Health: 100}},
			{Kind: entities.ModulePlank, Plank: &entities.PlankPayload{SegmentIndex: 1, Health: 100}},
			{Kind: entities.ModulePlank, Plank: &entities.PlankPayload{SegmentIndex: 2, Health: 100}},
			{Kind: entities.ModulePlank, Plank: &entities.PlankPayload{SegmentIndex: 3, Health: 100}},
		}
		player := entities.NewPlayer(1, entities.NewVec2(90, 0), 8)
		state := entities.NewCarrierDetectionState()

		UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 1, 0)
		UpdateCarrierDetection(&player, &state, []entities.Ship{ship}, cfg, 2, 33)

		Expect(player.CarrierID).To(Equal(uint32(1)))
	})

	It("ties break confirmed candidates by greater penetration depth", func() {
		// ship2's hull is far larger, so a player near both ships' centers
		// sits much deeper inside ship2's boundary than ship1's.
		ship2 := entities.NewShip(2, entities.NewVec2(30, 0), 0, rectHull(200, 200), 1000, 500000, 200, 1.0, 1.0, 1.0)
		player := entities.NewPlayer(1, entities.NewVec2(20, 0), 8)
		state := entities.NewCarrierDetectionState()

		ships := []entities.Ship{ship, ship2}
		UpdateCarrierDetection(&player, &state, ships, cfg, 1, 0)
		UpdateCarrierDetection(&player, &state, ships, cfg, 2, 33)

		Expect(player.CarrierID).To(Equal(uint32(2)))
	})
})
