package physics

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
)

// plankDamageSpreadDeg is the angular spread, in degrees, over which
// falloff damage is applied to planks adjacent to the primary hit.
const plankDamageSpreadDeg = 30.0

// ApplyRadialPlankDamage applies damage to s's planks given a world-space
// contact point and total damage magnitude. The contact point is mapped
// into ship-local coordinates; the plank whose angular sector contains
// it takes full damage, and planks within a 30-degree spread on either
// side take falloff damage proportional to their angular offset. Planks
// are located by segment_index, per §4.6's segment_index -> health
// lookup, not by their position in the ship's module list.
func ApplyRadialPlankDamage(s *entities.Ship, worldContact entities.Vec2, damage float64) {
	bySegment := s.PlankBySegment()
	n := len(bySegment)
	if n == 0 || damage <= 0 {
		return
	}

	local := s.WorldToLocal(worldContact)
	theta := math.Atan2(local.Y, local.X)
	if theta < 0 {
		theta += 2 * math.Pi
	}

	sectorWidth := 2 * math.Pi / float64(n)
	primary := int(theta / sectorWidth)
	if primary >= n {
		primary = n - 1
	}

	spreadRad := plankDamageSpreadDeg * math.Pi / 180.0
	maxOffsetSectors := int(math.Ceil(spreadRad / sectorWidth))

	for offset := -maxOffsetSectors; offset <= maxOffsetSectors; offset++ {
		idx := ((primary+offset)%n + n) % n
		plank, ok := bySegment[idx]
		if !ok || plank.Destroyed() {
			continue
		}

		if offset == 0 {
			plank.Health = entities.ClampHealth(plank.Health - damage)
			continue
		}

		angularOffsetRad := math.Abs(float64(offset)) * sectorWidth
		if angularOffsetRad > spreadRad {
			continue
		}
		offsetDeg := angularOffsetRad * 180.0 / math.Pi
		falloff := damage * (1 - offsetDeg/(plankDamageSpreadDeg+1)) * 0.5
		plank.Health = entities.ClampHealth(plank.Health - falloff)
	}
}
