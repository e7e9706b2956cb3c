package entities

// Ship represents a ship hull moving and rotating on the water plane.
type Ship struct {
	ID     uint32
	Pos    Vec2
	Rot    float64 // orientation angle in radians, wrapped to [-pi, pi]
	Vel    Vec2
	AngVel float64

	Hull    []Vec2 // ordered, counter-clockwise, ship-local coordinates, closed implicitly
	Modules []Module

	Mass            float64
	MomentOfInertia float64
	MaxSpeed        float64
	TurnRate        float64
	WaterDrag       float64 // (0, 1]
	AngularDrag     float64 // (0, 1]
}

// NewShip creates a new Ship with the given physical properties.
func NewShip(id uint32, pos Vec2, rot float64, hull []Vec2, mass, moi, maxSpeed, turnRate, waterDrag, angularDrag float64) Ship {
	return Ship{
		ID:              id,
		Pos:             pos,
		Rot:             WrapAngle(rot),
		Hull:            hull,
		Mass:            mass,
		MomentOfInertia: moi,
		MaxSpeed:        maxSpeed,
		TurnRate:        turnRate,
		WaterDrag:       waterDrag,
		AngularDrag:     angularDrag,
	}
}

// BoundingRadius returns the ship's bounding-circle radius around its
// local origin: the farthest hull vertex distance from (0,0).
func (s Ship) BoundingRadius() float64 {
	max := 0.0
	for _, v := range s.Hull {
		if l := v.Length(); l > max {
			max = l
		}
	}
	return max
}

// WorldHull returns the hull polygon transformed into world coordinates.
func (s Ship) WorldHull() []Vec2 {
	out := make([]Vec2, len(s.Hull))
	for i, v := range s.Hull {
		out[i] = s.LocalToWorld(v)
	}
	return out
}

// LocalToWorld transforms a ship-local point into world coordinates.
func (s Ship) LocalToWorld(p Vec2) Vec2 {
	return s.Pos.Add(p.Rotate(s.Rot))
}

// WorldToLocal transforms a world point into ship-local coordinates.
func (s Ship) WorldToLocal(p Vec2) Vec2 {
	return p.Sub(s.Pos).Rotate(-s.Rot)
}

// VelocityAt returns the world-frame velocity of the rigid body at the
// given ship-local point: v_ship + perp(local) * angVel.
func (s Ship) VelocityAt(local Vec2) Vec2 {
	return s.Vel.Add(local.Perp().Scale(s.AngVel))
}

// Planks returns the ship's plank payloads in module order.
func (s Ship) Planks() []*PlankPayload {
	out := make([]*PlankPayload, 0, len(s.Modules))
	for i := range s.Modules {
		if s.Modules[i].Kind == ModulePlank && s.Modules[i].Plank != nil {
			out = append(out, s.Modules[i].Plank)
		}
	}
	return out
}

// PlankBySegment returns a lookup from plank segment_index to its
// payload, per §4.6's "lookup from plank segment_index -> health".
// Modules are only an ordered list, not a hull-edge-ordered one, so
// callers that need "the plank protecting hull edge i" must key by
// SegmentIndex rather than by position in Planks() or Modules.
func (s Ship) PlankBySegment() map[int]*PlankPayload {
	out := make(map[int]*PlankPayload, len(s.Modules))
	for i := range s.Modules {
		if s.Modules[i].Kind == ModulePlank && s.Modules[i].Plank != nil {
			p := s.Modules[i].Plank
			out[p.SegmentIndex] = p
		}
	}
	return out
}

// DeckPolygon returns the ship's deck module polygon if present, or nil.
func (s Ship) DeckPolygon() []Vec2 {
	for i := range s.Modules {
		if s.Modules[i].Kind == ModuleDeck && s.Modules[i].Deck != nil {
			return s.Modules[i].Deck.Polygon
		}
	}
	return nil
}
