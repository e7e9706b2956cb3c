package entities

// ModuleKind identifies the kind of payload a Module carries. It is a
// closed tagged union: every kind below has exactly one corresponding
// payload field on Module, and dispatch on Kind is a plain switch rather
// than an interface, to avoid dynamic dispatch in the hot per-tick path.
type ModuleKind int

const (
	ModuleHelm ModuleKind = iota
	ModuleMast
	ModuleCannon
	ModuleSeat
	ModuleLadder
	ModulePlank
	ModuleDeck
	ModuleCustom
)

// HelmPayload is the payload for ModuleHelm.
type HelmPayload struct {
	Steering float64 // current steering input, x in [-1, 1]
}

// MastPayload is the payload for ModuleMast.
type MastPayload struct {
	Openness       float64 // [0, 100]
	WindEfficiency float64 // [0, 1]
}

// PlankPayload is the payload for ModulePlank.
type PlankPayload struct {
	SegmentIndex int     // which hull edge this plank protects
	Health       float64 // [0, 100]; 0 means destroyed (a gap)
}

// Destroyed reports whether the plank's health has reached zero.
func (p PlankPayload) Destroyed() bool {
	return p.Health <= 0
}

// DeckPayload is the payload for ModuleDeck.
type DeckPayload struct {
	Polygon []Vec2 // inward-offset walkable polygon, ship-local coordinates
}

// Module is a decorated attachment point on a ship.
type Module struct {
	ID         uint32
	Kind       ModuleKind
	LocalPos   Vec2
	LocalRot   float64
	OccupantID uint32 // 0 means unoccupied
	Flags      uint32

	Helm  *HelmPayload
	Mast  *MastPayload
	Plank *PlankPayload
	Deck  *DeckPayload
}

// ClampHealth clamps a plank health value to [0, 100].
func ClampHealth(h float64) float64 {
	if h < 0 {
		return 0
	}
	if h > 100 {
		return 100
	}
	return h
}
