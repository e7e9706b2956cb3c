package transport

import (
	"github.com/kreid06/pirate-game-4-sub000/internal/proto"
	"github.com/kreid06/pirate-game-4-sub000/internal/session"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/rules"
)

// Vec2ToPositionSnapshot converts an entities.Vec2 to a quantized
// proto.Vec2Snapshot, using the position quantization target.
func Vec2ToPositionSnapshot(v entities.Vec2) proto.Vec2Snapshot {
	return proto.QuantizeVec2Position(proto.Vec2Snapshot{X: v.X, Y: v.Y})
}

// Vec2ToVelocitySnapshot converts an entities.Vec2 to a quantized
// proto.Vec2Snapshot, using the velocity quantization target.
func Vec2ToVelocitySnapshot(v entities.Vec2) proto.Vec2Snapshot {
	return proto.QuantizeVec2Velocity(proto.Vec2Snapshot{X: v.X, Y: v.Y})
}

// shipHealth averages the health of a ship's plank modules; a ship
// with no planks modeled is treated as fully healthy.
func shipHealth(s entities.Ship) float64 {
	planks := s.Planks()
	if len(planks) == 0 {
		return 100.0
	}
	sum := 0.0
	for _, p := range planks {
		sum += p.Health
	}
	return sum / float64(len(planks))
}

// shipModuleDeltas returns the plank health of every plank module on
// the ship; transport decides separately whether to diff these against
// a client's last acknowledged baseline before sending.
func shipModuleDeltas(s entities.Ship) []proto.ModuleStateDelta {
	out := make([]proto.ModuleStateDelta, 0, len(s.Modules))
	for _, m := range s.Modules {
		if m.Kind == entities.ModulePlank && m.Plank != nil {
			out = append(out, proto.ModuleStateDelta{ModuleID: m.ID, Health: m.Plank.Health})
		}
	}
	return out
}

// ShipToSnapshot converts an entities.Ship into its outbound wire form.
func ShipToSnapshot(s entities.Ship) proto.EntitySnapshot {
	return proto.EntitySnapshot{
		ID:      s.ID,
		Kind:    proto.EntityShip,
		Pos:     Vec2ToPositionSnapshot(s.Pos),
		Vel:     Vec2ToVelocitySnapshot(s.Vel),
		Rot:     proto.QuantizeRotation(s.Rot),
		Health:  shipHealth(s),
		Modules: shipModuleDeltas(s),
	}
}

// playerFlags packs a player's regime into the outbound flags bitfield.
// Bit 0 set means on a deck, bit 1 set means mounted; both clear means
// in water. The two are mutually exclusive per entities.Player.Regime.
const (
	flagOnDeck  uint32 = 1 << 0
	flagMounted uint32 = 1 << 1
)

func playerFlags(p entities.Player) uint32 {
	switch p.Regime() {
	case entities.RegimeOnDeck:
		return flagOnDeck
	case entities.RegimeMounted:
		return flagMounted
	default:
		return 0
	}
}

// PlayerToSnapshot converts an entities.Player into its outbound wire form.
func PlayerToSnapshot(p entities.Player) proto.EntitySnapshot {
	return proto.EntitySnapshot{
		ID:     p.ID,
		Kind:   proto.EntityPlayer,
		Pos:    Vec2ToPositionSnapshot(p.Pos),
		Vel:    Vec2ToVelocitySnapshot(p.Vel),
		Rot:    proto.QuantizeRotation(p.Facing),
		Health: 100.0,
		Flags:  playerFlags(p),
	}
}

// WorldToSnapshot converts the full simulation world into the per-tick
// outbound snapshot message, quantizing every entity's kinematics.
func WorldToSnapshot(w entities.World) proto.SnapshotMessage {
	entitiesOut := make([]proto.EntitySnapshot, 0, len(w.Ships)+len(w.Players))
	for _, ship := range w.Ships {
		entitiesOut = append(entitiesOut, ShipToSnapshot(ship))
	}
	for _, player := range w.Players {
		entitiesOut = append(entitiesOut, PlayerToSnapshot(player))
	}

	return proto.SnapshotMessage{
		Type:     "snapshot",
		Tick:     w.Tick,
		Entities: entitiesOut,
	}
}

// InputMessageToFrame converts an inbound wire message into the
// simulation core's InputFrame, tagging it with the server's receive
// tick so downstream validation can compare client and server clocks.
func InputMessageToFrame(msg proto.InputMessage, serverTick uint64) entities.InputFrame {
	return entities.InputFrame{
		ClientID:          msg.ClientID,
		Sequence:          msg.Sequence,
		Tick:              serverTick,
		Movement:          entities.NewVec2(msg.Movement.X, msg.Movement.Y),
		Facing:            msg.Facing,
		Actions:           msg.Actions,
		ClientTimestampMS: msg.ClientTimestampMS,
		DtMS:              msg.DtMS,
	}
}

// CarrierEventToMessage converts a rules.CarrierEvent into its wire
// message. A CarrierChanged event yields a carrier_changed message; a
// LeftDeck event yields a left_deck message (no New field, since none
// exists).
func CarrierEventToMessage(ev rules.CarrierEvent) interface{} {
	switch ev.Kind {
	case rules.CarrierChanged:
		return CarrierChangedMessage(ev)
	default:
		return LeftDeckMessage(ev)
	}
}

// CarrierChangedMessage converts a CarrierChanged rules.CarrierEvent
// into its wire message.
func CarrierChangedMessage(ev rules.CarrierEvent) proto.CarrierChangedMessage {
	return proto.CarrierChangedMessage{
		Type:     "carrier_changed",
		PlayerID: ev.PlayerID,
		Old:      ev.OldShip,
		New:      ev.NewShip,
		Tick:     ev.Tick,
	}
}

// LeftDeckMessage converts a LeftDeck rules.CarrierEvent into its wire
// message.
func LeftDeckMessage(ev rules.CarrierEvent) proto.LeftDeckMessage {
	return proto.LeftDeckMessage{
		Type:     "left_deck",
		PlayerID: ev.PlayerID,
		Old:      ev.OldShip,
		Tick:     ev.Tick,
	}
}

// HitClaimMessageToValidationInput extracts the ray origin, direction
// and range from an inbound hit claim, along with the tick the client
// claims the hit happened on, for session.RewindRing.ValidateHit.
func HitClaimMessageToValidationInput(msg proto.HitClaimMessage) (origin, direction entities.Vec2, rng float64, reportedTick uint64) {
	return entities.NewVec2(msg.Origin.X, msg.Origin.Y),
		entities.NewVec2(msg.Direction.X, msg.Direction.Y),
		msg.Range,
		msg.ReportedTick
}

// HitValidationToMessage converts a session.HitValidation result into
// its outbound wire message.
func HitValidationToMessage(hv session.HitValidation) proto.HitValidationMessage {
	return proto.HitValidationMessage{
		Type:        "hit_validation",
		HitValid:    hv.HitValid,
		TargetID:    hv.TargetID,
		HitPosition: Vec2ToPositionSnapshot(hv.HitPosition),
		Damage:      hv.Damage,
		RewindMS:    hv.RewindMS,
	}
}
