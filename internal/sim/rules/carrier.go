package rules

import (
	"sort"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/physics"
)

// CarrierEventKind distinguishes the two events the carrier-detection
// state machine emits to external collaborators (the outbound encoder).
type CarrierEventKind int

const (
	CarrierChanged CarrierEventKind = iota
	LeftDeck
)

// CarrierEvent is emitted whenever a player's carrier assignment changes.
type CarrierEvent struct {
	Kind     CarrierEventKind
	PlayerID uint32
	OldShip  uint32
	NewShip  uint32
	Tick     uint64
}

// isInsideCarrierHull runs §4.4 step 2's "isInside" test: pos must lie
// within the ship's plank-aware hull (a destroyed plank's gap excludes
// whatever would otherwise be enclosed behind it, per §4.6), and, if the
// ship has a deck module, also within the deck's walkable polygon.
// Returns the penetration depth (distance to the nearest boundary that
// bounds pos) and whether pos counts as inside at all.
func isInsideCarrierHull(s *entities.Ship, pos entities.Vec2) (float64, bool) {
	if !physics.PointInsidePlankAwareHull(pos, s) {
		return 0, false
	}
	penetration := physics.DistanceToPlankAwareBoundary(pos, s)

	if deck := s.DeckPolygon(); deck != nil {
		poly := make([]entities.Vec2, len(deck))
		for i, v := range deck {
			poly[i] = s.LocalToWorld(v)
		}
		if len(poly) < 3 || !physics.PointInPolygon(pos, poly) {
			return 0, false
		}
		if d := physics.DistanceToPolygonBoundary(pos, poly); d < penetration {
			penetration = d
		}
	}

	return penetration, penetration > 0
}

// UpdateCarrierDetection runs the per-tick carrier-detection procedure
// of §4.4 for one player, mutating the player's CarrierID and the
// associated CarrierDetectionState in place, and returns any events
// that should be surfaced to external collaborators.
func UpdateCarrierDetection(
	player *entities.Player,
	state *entities.CarrierDetectionState,
	ships []entities.Ship,
	cfg Config,
	tick uint64,
	nowMS int64,
) []CarrierEvent {
	var events []CarrierEvent

	// Early exit: mounted players have a fixed carrier.
	if player.MountedModuleID != 0 {
		return events
	}

	// Early exit: hard-distance forced leave, bypassing cooldown.
	if state.CarrierID != 0 {
		if ship := entities.FindShip(ships, state.CarrierID); ship != nil {
			if player.Pos.Sub(ship.Pos).Length() > cfg.HardCarrierDistance {
				events = append(events, forceLeave(player, state, tick)...)
				return events
			}
		} else {
			// Stale carrier reference: the ship no longer exists.
			events = append(events, forceLeave(player, state, tick)...)
		}
	}

	// Candidate gathering.
	present := make(map[uint32]struct{})
	for i := range ships {
		ship := &ships[i]
		maxRadius := ship.BoundingRadius() + cfg.EpsFactor*player.Radius + player.Radius
		if player.Pos.Sub(ship.Pos).Length() > maxRadius {
			continue
		}

		penetration, ok := isInsideCarrierHull(ship, player.Pos)
		if !ok {
			continue
		}

		local := ship.WorldToLocal(player.Pos)
		shipVelAtPlayer := ship.Vel.Add(local.Perp().Scale(ship.AngVel))
		relVel := player.Vel.Sub(shipVelAtPlayer).Length()

		present[ship.ID] = struct{}{}
		cand, ok := state.Candidates[ship.ID]
		if !ok {
			cand = &entities.CandidateState{}
			state.Candidates[ship.ID] = cand
		}
		cand.PenetrationDepth = penetration
		cand.RelativeVelocity = relVel
		cand.LastSeenTick = tick
		cand.ConfirmTicks++
	}

	// Confirm counters: decrement and drop candidates not seen this tick.
	for id, cand := range state.Candidates {
		if _, ok := present[id]; ok {
			continue
		}
		cand.ConfirmTicks--
		if cand.ConfirmTicks <= 0 {
			delete(state.Candidates, id)
		}
	}

	// Selection among confirmed candidates.
	type confirmedCandidate struct {
		id    uint32
		state *entities.CandidateState
	}
	var confirmed []confirmedCandidate
	for id, cand := range state.Candidates {
		if cand.ConfirmTicks >= cfg.ConfirmInTicks {
			confirmed = append(confirmed, confirmedCandidate{id, cand})
		}
	}

	if len(confirmed) == 0 {
		return events
	}

	sort.Slice(confirmed, func(i, j int) bool {
		a, b := confirmed[i], confirmed[j]
		if a.state.PenetrationDepth != b.state.PenetrationDepth {
			return a.state.PenetrationDepth > b.state.PenetrationDepth
		}
		if a.state.RelativeVelocity != b.state.RelativeVelocity {
			return a.state.RelativeVelocity < b.state.RelativeVelocity
		}
		return a.id < b.id
	})
	winner := confirmed[0].id

	if winner == state.CarrierID {
		return events
	}

	// Switching to a different non-null carrier is cooldown-gated;
	// entering from null is not.
	if state.CarrierID != 0 {
		elapsed := nowMS - int64(state.LastSwitchTick)
		if elapsed < cfg.SwitchCooldownMS {
			return events
		}
	}

	old := state.CarrierID
	state.CarrierID = winner
	state.LastSwitchTick = uint64(nowMS)
	player.CarrierID = winner

	events = append(events, CarrierEvent{Kind: CarrierChanged, PlayerID: player.ID, OldShip: old, NewShip: winner, Tick: tick})
	return events
}

// forceLeave immediately clears the player's carrier, bypassing cooldowns.
func forceLeave(player *entities.Player, state *entities.CarrierDetectionState, tick uint64) []CarrierEvent {
	old := state.CarrierID
	if old == 0 {
		return nil
	}
	state.CarrierID = 0
	state.Candidates = make(map[uint32]*entities.CandidateState)
	player.CarrierID = 0

	return []CarrierEvent{
		{Kind: LeftDeck, PlayerID: player.ID, OldShip: old, Tick: tick},
		{Kind: CarrierChanged, PlayerID: player.ID, OldShip: old, NewShip: 0, Tick: tick},
	}
}
