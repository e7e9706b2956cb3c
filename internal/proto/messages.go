package proto

// InputMessage is the wire shape of one client's per-tick input, per
// §6's inbound contract: {client_id, sequence, client_tick,
// client_timestamp_ms, movement, facing, actions, dt_ms}.
type InputMessage struct {
	Type              string       `json:"t"` // "input"
	ClientID          uint32       `json:"client_id"`
	Sequence          uint32       `json:"seq"`
	ClientTick        uint64       `json:"client_tick"`
	ClientTimestampMS int64        `json:"client_timestamp_ms"`
	Movement          Vec2Snapshot `json:"movement"`
	Facing            float64      `json:"facing"`
	Actions           uint32       `json:"actions"`
	DtMS              int64        `json:"dt_ms"`
}

// RestartMessage requests a fresh session for the sending client.
type RestartMessage struct {
	Type string `json:"t"` // "restart"
}

// Vec2Snapshot is a 2D vector on the wire.
type Vec2Snapshot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EntityKind identifies what an EntitySnapshot represents.
type EntityKind string

const (
	EntityShip   EntityKind = "ship"
	EntityPlayer EntityKind = "player"
)

// ModuleStateDelta is a changed module's health, included in a ship's
// snapshot only when it differs from the client's last acknowledged
// baseline. Delta compression itself is an external concern; this type
// only describes one entry of it.
type ModuleStateDelta struct {
	ModuleID uint32  `json:"module_id"`
	Health   float64 `json:"health"`
}

// EntitySnapshot is one entity's outbound state, quantized per §6:
// position to 1/512 unit, velocity to 1/256 u/s, rotation to 1/1024
// rad. The Quantize* helpers in quantize.go apply those targets;
// callers in internal/transport are responsible for calling them before
// encoding.
type EntitySnapshot struct {
	ID       uint32             `json:"id"`
	Kind     EntityKind         `json:"kind"`
	Pos      Vec2Snapshot       `json:"pos"`
	Vel      Vec2Snapshot       `json:"vel"`
	Rot      float64            `json:"rot"`
	Health   float64            `json:"health"`
	Flags    uint32             `json:"flags"`
	Modules  []ModuleStateDelta `json:"module_state_deltas,omitempty"`
}

// SnapshotMessage is the per-tick outbound world state.
type SnapshotMessage struct {
	Type     string           `json:"t"` // "snapshot"
	Tick     uint64           `json:"tick"`
	Entities []EntitySnapshot `json:"entities"`
}

// CarrierChangedMessage reports a player's carrier assignment changing,
// per §6's carrier_changed{player_id, old, new, tick}.
type CarrierChangedMessage struct {
	Type     string `json:"t"` // "carrier_changed"
	PlayerID uint32 `json:"player_id"`
	Old      uint32 `json:"old"`
	New      uint32 `json:"new"`
	Tick     uint64 `json:"tick"`
}

// LeftDeckMessage reports a player leaving a deck without a new
// carrier assignment taking its place, per §6's left_deck{player_id,
// old, tick}.
type LeftDeckMessage struct {
	Type     string `json:"t"` // "left_deck"
	PlayerID uint32 `json:"player_id"`
	Old      uint32 `json:"old"`
	Tick     uint64 `json:"tick"`
}

// HitClaimMessage is a client's lag-compensated hit claim, per §6's
// hit-validation RPC request shape.
type HitClaimMessage struct {
	Type         string       `json:"t"` // "hit_claim"
	ClientID     uint32       `json:"client_id"`
	ReportedTick uint64       `json:"reported_tick"`
	Origin       Vec2Snapshot `json:"origin"`
	Direction    Vec2Snapshot `json:"direction"`
	Range        float64      `json:"range"`
}

// HitValidationMessage is the server's answer to a HitClaimMessage.
type HitValidationMessage struct {
	Type        string       `json:"t"` // "hit_validation"
	HitValid    bool         `json:"hit_valid"`
	TargetID    uint32       `json:"target_id"`
	HitPosition Vec2Snapshot `json:"hit_position"`
	Damage      float64      `json:"damage"`
	RewindMS    int64        `json:"rewind_ms"`
}
