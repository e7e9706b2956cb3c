package rules

import (
	"sort"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/physics"
)

// StepResult carries the side effects of one tick that external
// collaborators (transport, observability) need but that do not belong
// on the value-typed World itself.
type StepResult struct {
	World         entities.World
	CarrierEvents []CarrierEvent
	PlankDamage   map[uint32]float64 // ship id -> total damage applied this tick
}

// Step performs one complete tick of the simulation per §4.1:
//  1. ship dynamics (§4.2), position not yet integrated
//  2. K collision substeps: integrate position/rotation, resolve ship-ship collisions (§4.3)
//  3. per-player carrier update (§4.4) then motion for the resulting regime (§4.5)
//
// Snapshotting the result into the rewind ring (§4.7) is the caller's
// responsibility (internal/session owns the ring).
//
// inputs is keyed by client/player id; a player with no entry this tick
// is treated as having issued zero movement and no actions.
func Step(world entities.World, inputs map[uint32]entities.InputFrame, cfg Config, nowMS int64) StepResult {
	dt := cfg.DT()

	shipIDs := make([]int, 0, len(world.Ships))
	for i := range world.Ships {
		shipIDs = append(shipIDs, i)
	}
	sort.Slice(shipIDs, func(i, j int) bool { return world.Ships[shipIDs[i]].ID < world.Ships[shipIDs[j]].ID })

	// 1. Ship dynamics: velocity/angular_velocity/rotation, position not
	// yet integrated.
	for _, idx := range shipIDs {
		physics.StepShipDynamics(&world.Ships[idx], dt)
	}

	// 2. Collision substeps.
	substepDT := dt / float64(cfg.CollisionSubsteps)
	plankDamage := make(map[uint32]float64)
	for step := 0; step < cfg.CollisionSubsteps; step++ {
		for _, idx := range shipIDs {
			s := &world.Ships[idx]
			s.Pos = s.Pos.Add(s.Vel.Scale(substepDT))
			s.Rot = entities.WrapAngle(s.Rot + s.AngVel*substepDT)
		}

		for id, dmg := range physics.ResolveAllShipCollisions(world.Ships) {
			plankDamage[id] += dmg
		}
	}

	// 3. Per-player carrier update then motion.
	playerIdx := make([]int, 0, len(world.Players))
	for i := range world.Players {
		playerIdx = append(playerIdx, i)
	}
	sort.Slice(playerIdx, func(i, j int) bool { return world.Players[playerIdx[i]].ID < world.Players[playerIdx[j]].ID })

	var events []CarrierEvent
	for _, idx := range playerIdx {
		player := &world.Players[idx]
		state := world.CarrierStates[player.ID]
		if state.Candidates == nil {
			state = entities.NewCarrierDetectionState()
		}

		evs := UpdateCarrierDetection(player, &state, world.Ships, cfg, world.Tick, nowMS)
		events = append(events, evs...)
		world.CarrierStates[player.ID] = state

		input, ok := inputs[player.ID]
		if !ok {
			input = entities.InputFrame{ClientID: player.ID, Tick: world.Tick}
		}
		ApplyPlayerMotion(player, world.Ships, input, cfg, dt)
	}

	world.Tick++
	world.TimestampMS = nowMS

	return StepResult{World: world, CarrierEvents: events, PlankDamage: plankDamage}
}
