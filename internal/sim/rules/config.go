package rules

// Config holds every tunable of the tick loop. Values are struct
// fields with constructor defaults rather than package globals so
// that multiple independent simulations (as in parallel tests) never
// share mutable state.
type Config struct {
	TickHz             int
	CollisionSubsteps  int
	RewindBufferSize   int
	MaxRewindMS        int64
	ConfirmInTicks     int
	ConfirmOutTicks    int
	SwitchCooldownMS   int64
	EpsFactor          float64
	IceDriftHalfLifeS  float64
	PlayerWalkSpeed    float64
	SwimAccel          float64
	SwimDecel          float64
	SwimMaxSpeed       float64
	MinInputIntervalMS int64
	BanThresholdScore  float64

	HardCarrierDistance float64
}

// DefaultConfig returns the compile-time defaults from the external
// interfaces table; all fields may be overridden by the hosting binary
// before the simulation starts.
func DefaultConfig() Config {
	return Config{
		TickHz:              30,
		CollisionSubsteps:   3,
		RewindBufferSize:    16,
		MaxRewindMS:         350,
		ConfirmInTicks:      2,
		ConfirmOutTicks:     1,
		SwitchCooldownMS:    50,
		EpsFactor:           0.03,
		IceDriftHalfLifeS:   0.35,
		PlayerWalkSpeed:     200,
		SwimAccel:           160,
		SwimDecel:           120,
		SwimMaxSpeed:        30,
		MinInputIntervalMS:  8,
		BanThresholdScore:   0.85,
		HardCarrierDistance: 400,
	}
}

// DT returns the fixed tick period in seconds.
func (c Config) DT() float64 {
	return 1.0 / float64(c.TickHz)
}
