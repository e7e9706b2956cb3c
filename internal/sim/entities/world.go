package entities

// Projectile is a fired shot in flight. The core's projectile physics
// are not specified beyond position/velocity bookkeeping; cannon firing
// logic and damage resolution are external collaborators (see
// session.RewindRing.ValidateHit for the lag-compensated hit check).
type Projectile struct {
	ID  uint32
	Pos Vec2
	Vel Vec2
}

// World represents the complete simulation world state for one tick.
type World struct {
	Tick        uint64
	TimestampMS int64

	Ships       []Ship
	Players     []Player
	Projectiles []Projectile

	// CarrierStates is keyed by player id.
	CarrierStates map[uint32]CarrierDetectionState
}

// NewWorld creates a new World at tick 0. Nil slices/maps are
// initialized empty so callers never observe a nil World collection.
func NewWorld(ships []Ship, players []Player) World {
	if ships == nil {
		ships = []Ship{}
	}
	if players == nil {
		players = []Player{}
	}
	carrierStates := make(map[uint32]CarrierDetectionState, len(players))
	for _, p := range players {
		carrierStates[p.ID] = NewCarrierDetectionState()
	}
	return World{
		Ships:         ships,
		Players:       players,
		Projectiles:   []Projectile{},
		CarrierStates: carrierStates,
	}
}

// FindShip returns a pointer to the ship with the given id within ships,
// or nil if no such ship exists. Used to resolve the weak carrier_id
// reference each tick; a missing ship is never an error, only a "no
// such ship" result that callers fold into the stale-carrier rule.
func FindShip(ships []Ship, id uint32) *Ship {
	for i := range ships {
		if ships[i].ID == id {
			return &ships[i]
		}
	}
	return nil
}

// FindPlayer returns a pointer to the player with the given id within
// players, or nil if no such player exists.
func FindPlayer(players []Player, id uint32) *Player {
	for i := range players {
		if players[i].ID == id {
			return &players[i]
		}
	}
	return nil
}
