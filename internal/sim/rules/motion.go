package rules

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/physics"
)

const onDeckRotationThreshold = 0.1

// findMountedModule returns the module a player is mounted to, and the
// ship that owns it, or nil if the player is not mounted.
func findMountedModule(player *entities.Player, ships []entities.Ship) (*entities.Ship, *entities.Module) {
	if player.MountedModuleID == 0 {
		return nil, nil
	}
	ship := entities.FindShip(ships, player.CarrierID)
	if ship == nil {
		return nil, nil
	}
	for i := range ship.Modules {
		if ship.Modules[i].ID == player.MountedModuleID {
			return ship, &ship.Modules[i]
		}
	}
	return nil, nil
}

// ApplyMountedMotion implements §4.5's mounted regime: the player's
// world position and velocity follow the rigid body exactly; input is
// ignored (dismount is handled by the caller via the DISMOUNT action).
func ApplyMountedMotion(player *entities.Player, ships []entities.Ship) {
	ship, module := findMountedModule(player, ships)
	if ship == nil || module == nil {
		return
	}
	local := module.LocalPos.Add(player.MountOffset)
	player.Pos = ship.Pos.Add(local.Rotate(ship.Rot))
	player.Vel = ship.Vel.Add(local.Perp().Scale(ship.AngVel))
	player.LocalPos = local
}

// ApplyOnDeckMotion implements §4.5's on-deck regime.
func ApplyOnDeckMotion(player *entities.Player, ship *entities.Ship, input entities.InputFrame, cfg Config, dt float64) {
	prevPos := ship.Pos.Sub(ship.Vel.Scale(dt))
	prevRot := entities.WrapAngle(ship.Rot - ship.AngVel*dt)
	deltaTheta := entities.AngleDiff(ship.Rot, prevRot)

	rel := player.Pos.Sub(prevPos)
	var relRotated entities.Vec2
	if math.Abs(deltaTheta) > onDeckRotationThreshold {
		relRotated = rel.Rotate(deltaTheta)
	} else {
		relRotated = rel.Add(rel.Perp().Scale(ship.AngVel * dt))
	}
	carriedPos := ship.Pos.Add(relRotated)

	inputWorld := input.Movement.Scale(cfg.PlayerWalkSpeed)

	shipVelAtPlayer := ship.Vel.Add(rel.Perp().Scale(ship.AngVel))
	vRel := player.Vel.Sub(shipVelAtPlayer)
	decay := math.Exp(-math.Ln2 * dt / cfg.IceDriftHalfLifeS)
	player.Vel = shipVelAtPlayer.Add(vRel.Scale(decay)).Add(inputWorld.Scale(dt))

	proposed := carriedPos.Add(inputWorld.Scale(dt))

	shipRadius := ship.BoundingRadius()
	if input.HasAction(entities.ActionJump) && carriedPos.Sub(ship.Pos).Length() > 0.7*shipRadius {
		boost := carriedPos.Sub(ship.Pos).Normalize().Scale(cfg.PlayerWalkSpeed * 0.5 * dt)
		player.Pos = carriedPos.Add(boost)
		return
	}

	eps := cfg.EpsFactor * player.Radius
	res := physics.Swept(carriedPos, proposed, player.Radius, player.Vel, ship, eps, dt)
	if res.Collided {
		player.Pos = res.NewPosition
		player.Vel = res.NewVelocity.Scale(0.95)
		return
	}
	player.Pos = proposed
}

// ApplyInWaterMotion implements §4.5's swimming regime: acceleration
// based motion clamped to a max speed, with swept collision against
// every nearby ship, stopping at the first hit.
func ApplyInWaterMotion(player *entities.Player, ships []entities.Ship, input entities.InputFrame, cfg Config, dt float64) {
	magnitude := input.Movement.Length()
	if magnitude > 0.01 {
		player.Vel = player.Vel.Add(input.Movement.Scale(cfg.SwimAccel * dt))
		if speed := player.Vel.Length(); speed > cfg.SwimMaxSpeed {
			player.Vel = player.Vel.Scale(cfg.SwimMaxSpeed / speed)
		}
	} else if speed := player.Vel.Length(); speed > 0 {
		reduced := speed - cfg.SwimDecel*dt
		if reduced <= 0 {
			player.Vel = entities.Zero()
		} else {
			player.Vel = player.Vel.Scale(reduced / speed)
		}
	}

	start := player.Pos
	proposed := start.Add(player.Vel.Scale(dt))
	eps := cfg.EpsFactor * player.Radius

	for i := range ships {
		ship := &ships[i]
		if player.Pos.Sub(ship.Pos).Length() > ship.BoundingRadius()+player.Radius+50 {
			continue
		}
		res := physics.Swept(start, proposed, player.Radius, player.Vel, ship, eps, dt)
		if res.Collided {
			player.Pos = res.NewPosition
			player.Vel = res.NewVelocity
			return
		}
	}
	player.Pos = proposed
}

// ApplyPlayerMotion dispatches to exactly one of the three regimes of
// §4.5 based on the player's current carrier/mount state.
func ApplyPlayerMotion(player *entities.Player, ships []entities.Ship, input entities.InputFrame, cfg Config, dt float64) {
	switch player.Regime() {
	case entities.RegimeMounted:
		ApplyMountedMotion(player, ships)
	case entities.RegimeOnDeck:
		if input.HasAction(entities.ActionDismount) {
			player.CarrierID = 0
			ApplyInWaterMotion(player, ships, input, cfg, dt)
			return
		}
		ship := entities.FindShip(ships, player.CarrierID)
		if ship == nil {
			player.CarrierID = 0
			ApplyInWaterMotion(player, ships, input, cfg, dt)
			return
		}
		ApplyOnDeckMotion(player, ship, input, cfg, dt)
	default:
		ApplyInWaterMotion(player, ships, input, cfg, dt)
	}
}
