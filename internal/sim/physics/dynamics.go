package physics

import (
	"math"

	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
)

// angular step tuning constants, per-tick shaping of steering input into
// a turn rate that feels heavier at low speed.
const (
	lowSpeedThreshold       = 5.0
	lowSpeedBaseEff         = 0.05
	lowSpeedSlope           = 0.1
	highSpeedBaseEff        = 0.15
	highSpeedSlope          = 0.35
	highSpeedSaturationSpd  = 40.0
	steeringAccelScale      = 1.5
	angularDampingFactor    = 0.92
)

// linear step tuning constants.
const (
	sailOpennessExponent = 0.7
	mastBonusPerExtra    = 0.1
	sailAreaMultScale    = 0.25
	sailEffectiveCap     = 1.25
	thrustMin            = 300.0
	thrustMax            = 8000.0
)

// turningEffectiveness maps current speed to a steering-to-angular-
// acceleration multiplier, heavier (less responsive) at low speed.
func turningEffectiveness(speed float64) float64 {
	if speed < lowSpeedThreshold {
		return lowSpeedBaseEff + lowSpeedSlope*(speed/lowSpeedThreshold)
	}
	return highSpeedBaseEff + highSpeedSlope*math.Min(speed/highSpeedSaturationSpd, 1.0)
}

// StepAngular advances a ship's angular_velocity and rotation by dt,
// given the helm's steering scalar in [-1, 1].
func StepAngular(s *entities.Ship, steering float64, dt float64) {
	speed := s.Vel.Length()
	eff := turningEffectiveness(speed)

	angularAccel := steering * eff * steeringAccelScale
	s.AngVel += angularAccel * dt
	s.AngVel *= angularDampingFactor
	s.AngVel *= s.AngularDrag

	if s.AngVel > s.TurnRate {
		s.AngVel = s.TurnRate
	} else if s.AngVel < -s.TurnRate {
		s.AngVel = -s.TurnRate
	}

	s.Rot = entities.WrapAngle(s.Rot + s.AngVel*dt)
}

// sailPower sums each mast's contribution: pow(openness/100, 0.7) * wind_efficiency.
func sailPower(s *entities.Ship) (power float64, mastCount int) {
	for i := range s.Modules {
		m := s.Modules[i].Mast
		if m == nil {
			continue
		}
		mastCount++
		power += math.Pow(m.Openness/100.0, sailOpennessExponent) * m.WindEfficiency
	}
	return power, mastCount
}

// StepLinear advances a ship's velocity by dt from its masts' sail power.
func StepLinear(s *entities.Ship, dt float64) {
	power, n := sailPower(s)

	thrustMag := thrustMin
	if n > 0 {
		avg := power / float64(n)
		mastBonus := 1 + mastBonusPerExtra*float64(n-1)
		areaMult := 1 + sailAreaMultScale*power
		effective := math.Min(avg*mastBonus*areaMult, sailEffectiveCap)
		thrustMag = thrustMin + (thrustMax-thrustMin)*effective
	}

	thrust := entities.NewVec2(math.Cos(s.Rot), math.Sin(s.Rot)).Scale(thrustMag)

	s.Vel = s.Vel.Add(thrust.Scale(dt / s.Mass))
	s.Vel = s.Vel.Scale(s.WaterDrag)
	if speed := s.Vel.Length(); speed > s.MaxSpeed {
		s.Vel = s.Vel.Scale(s.MaxSpeed / speed)
	}
}

// StepShipDynamics runs the full per-tick dynamics update for one ship:
// angular step driven by the helm's steering, then the linear step
// driven by its masts. steering is 0 if the ship has no helm module.
func StepShipDynamics(s *entities.Ship, dt float64) {
	steering := 0.0
	for i := range s.Modules {
		if h := s.Modules[i].Helm; h != nil {
			steering = h.Steering
			break
		}
	}
	StepAngular(s, steering, dt)
	StepLinear(s, dt)
}
