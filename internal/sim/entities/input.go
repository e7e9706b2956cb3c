package entities

// Input action bitflags.
const (
	ActionJump uint32 = 1 << iota
	ActionInteract
	ActionDismount
	ActionDestroyPlank

	knownActionsMask = ActionJump | ActionInteract | ActionDismount | ActionDestroyPlank
)

// InputFrame is a single client's input for one simulation tick. The
// wire-level fields (Sequence, ClientTimestampMS, DtMS) are consumed by
// the session's queue and validator at the edge of the tick; Step
// itself only reads Movement, Facing and Actions.
type InputFrame struct {
	ClientID uint32
	Sequence uint32
	Tick     uint64

	Movement Vec2 // |Movement| <= 1 + eps
	Facing   float64
	Actions  uint32

	ClientTimestampMS int64
	DtMS              int64
}

// HasAction reports whether the given action bit is set.
func (f InputFrame) HasAction(bit uint32) bool {
	return f.Actions&bit != 0
}

// HasUnknownActions reports whether any bit outside the known action
// set is set.
func (f InputFrame) HasUnknownActions() bool {
	return f.Actions&^knownActionsMask != 0
}
