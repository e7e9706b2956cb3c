package proto

import "math"

// Quantization granularities from the external interfaces table.
const (
	PositionQuantum = 1.0 / 512.0
	VelocityQuantum = 1.0 / 256.0
	RotationQuantum = 1.0 / 1024.0
)

func quantize(v, quantum float64) float64 {
	return math.Round(v/quantum) * quantum
}

// QuantizePosition rounds a position component to the nearest 1/512 unit.
func QuantizePosition(v float64) float64 { return quantize(v, PositionQuantum) }

// QuantizeVelocity rounds a velocity component to the nearest 1/256 u/s.
func QuantizeVelocity(v float64) float64 { return quantize(v, VelocityQuantum) }

// QuantizeRotation rounds a rotation angle to the nearest 1/1024 rad.
func QuantizeRotation(v float64) float64 { return quantize(v, RotationQuantum) }

// QuantizeVec2Position rounds both components of a position vector.
func QuantizeVec2Position(v Vec2Snapshot) Vec2Snapshot {
	return Vec2Snapshot{X: QuantizePosition(v.X), Y: QuantizePosition(v.Y)}
}

// QuantizeVec2Velocity rounds both components of a velocity vector.
func QuantizeVec2Velocity(v Vec2Snapshot) Vec2Snapshot {
	return Vec2Snapshot{X: QuantizeVelocity(v.X), Y: QuantizeVelocity(v.Y)}
}
