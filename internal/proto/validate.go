package proto

import (
	"fmt"
	"math"
)

// ValidateInputMessage validates an InputMessage's wire-level shape.
// It does not apply anti-cheat rules; that is internal/session's job.
func ValidateInputMessage(msg *InputMessage) error {
	if msg == nil {
		return fmt.Errorf("input message is nil")
	}

	if msg.Type != "input" {
		return fmt.Errorf("invalid type: expected 'input', got '%s'", msg.Type)
	}

	if msg.ClientID == 0 {
		return fmt.Errorf("invalid client_id: must be greater than 0")
	}

	if err := ValidateVec2Snapshot(&msg.Movement); err != nil {
		return fmt.Errorf("invalid movement: %w", err)
	}

	if math.IsNaN(msg.Facing) || math.IsInf(msg.Facing, 0) {
		return fmt.Errorf("invalid facing: must be finite, got %f", msg.Facing)
	}

	if msg.DtMS < 0 {
		return fmt.Errorf("invalid dt_ms: must be >= 0, got %d", msg.DtMS)
	}

	return nil
}

// ValidateRestartMessage validates a RestartMessage.
func ValidateRestartMessage(msg *RestartMessage) error {
	if msg == nil {
		return fmt.Errorf("restart message is nil")
	}

	if msg.Type != "restart" {
		return fmt.Errorf("invalid type: expected 'restart', got '%s'", msg.Type)
	}

	return nil
}

// ValidateSnapshotMessage validates a SnapshotMessage.
func ValidateSnapshotMessage(msg *SnapshotMessage) error {
	if msg == nil {
		return fmt.Errorf("snapshot message is nil")
	}

	if msg.Type != "snapshot" {
		return fmt.Errorf("invalid type: expected 'snapshot', got '%s'", msg.Type)
	}

	for i, entity := range msg.Entities {
		if err := ValidateEntitySnapshot(&entity); err != nil {
			return fmt.Errorf("invalid entity at index %d: %w", i, err)
		}
	}

	return nil
}

// ValidateEntitySnapshot validates an EntitySnapshot.
func ValidateEntitySnapshot(entity *EntitySnapshot) error {
	if entity == nil {
		return fmt.Errorf("entity snapshot is nil")
	}

	if entity.ID == 0 {
		return fmt.Errorf("invalid id: must be greater than 0")
	}

	if entity.Kind != EntityShip && entity.Kind != EntityPlayer {
		return fmt.Errorf("invalid kind: must be 'ship' or 'player', got '%s'", entity.Kind)
	}

	if err := ValidateVec2Snapshot(&entity.Pos); err != nil {
		return fmt.Errorf("invalid pos: %w", err)
	}

	if err := ValidateVec2Snapshot(&entity.Vel); err != nil {
		return fmt.Errorf("invalid vel: %w", err)
	}

	if math.IsNaN(entity.Rot) || math.IsInf(entity.Rot, 0) {
		return fmt.Errorf("invalid rot: must be finite, got %f", entity.Rot)
	}

	return nil
}

// ValidateHitClaimMessage validates a HitClaimMessage.
func ValidateHitClaimMessage(msg *HitClaimMessage) error {
	if msg == nil {
		return fmt.Errorf("hit claim message is nil")
	}

	if msg.Type != "hit_claim" {
		return fmt.Errorf("invalid type: expected 'hit_claim', got '%s'", msg.Type)
	}

	if msg.ClientID == 0 {
		return fmt.Errorf("invalid client_id: must be greater than 0")
	}

	if err := ValidateVec2Snapshot(&msg.Origin); err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}

	if err := ValidateVec2Snapshot(&msg.Direction); err != nil {
		return fmt.Errorf("invalid direction: %w", err)
	}

	if msg.Range <= 0.0 {
		return fmt.Errorf("invalid range: must be > 0.0, got %f", msg.Range)
	}

	return nil
}

// ValidateVec2Snapshot validates a Vec2Snapshot.
// Returns an error if the vector is invalid (contains NaN or Inf).
func ValidateVec2Snapshot(vec *Vec2Snapshot) error {
	if vec == nil {
		return fmt.Errorf("vec2 snapshot is nil")
	}

	if math.IsNaN(vec.X) {
		return fmt.Errorf("invalid x: must be finite, got NaN")
	}

	if math.IsInf(vec.X, 0) {
		return fmt.Errorf("invalid x: must be finite, got Inf")
	}

	if math.IsNaN(vec.Y) {
		return fmt.Errorf("invalid y: must be finite, got NaN")
	}

	if math.IsInf(vec.Y, 0) {
		return fmt.Errorf("invalid y: must be finite, got Inf")
	}

	return nil
}
