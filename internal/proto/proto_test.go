package proto

import (
	"encoding/json"
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestProto(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Protocol Messages Suite")
}

var _ = Describe("Protocol Messages", Label("scope:contract", "loop:g4-proto", "layer:contract"), func() {
	Describe("InputMessage", func() {
		It("serializes with the §6 inbound field names", func() {
			msg := InputMessage{
				Type:              "input",
				ClientID:          7,
				Sequence:          1,
				ClientTick:        100,
				ClientTimestampMS: 1000,
				Movement:          Vec2Snapshot{X: 1.0, Y: 0.0},
				Facing:            0.5,
				Actions:           0,
				DtMS:              33,
			}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var unmarshaled map[string]interface{}
			Expect(json.Unmarshal(data, &unmarshaled)).To(Succeed())
			Expect(unmarshaled).To(HaveKey("t"))
			Expect(unmarshaled).To(HaveKey("client_id"))
			Expect(unmarshaled).To(HaveKey("seq"))
			Expect(unmarshaled).To(HaveKey("client_tick"))
			Expect(unmarshaled).To(HaveKey("client_timestamp_ms"))
			Expect(unmarshaled).To(HaveKey("movement"))
			Expect(unmarshaled).To(HaveKey("facing"))
			Expect(unmarshaled).To(HaveKey("actions"))
			Expect(unmarshaled).To(HaveKey("dt_ms"))
		})

		It("round-trips correctly", func() {
			original := InputMessage{
				Type:              "input",
				ClientID:          3,
				Sequence:          42,
				ClientTick:        10,
				ClientTimestampMS: 500,
				Movement:          Vec2Snapshot{X: -0.3, Y: 0.8},
				Facing:            1.2,
				Actions:           entityActionsFixture,
				DtMS:              33,
			}

			data, err := json.Marshal(original)
			Expect(err).NotTo(HaveOccurred())

			var roundTripped InputMessage
			Expect(json.Unmarshal(data, &roundTripped)).To(Succeed())
			Expect(roundTripped).To(Equal(original))
		})
	})

	Describe("RestartMessage", func() {
		It("serializes to JSON matching the spec", func() {
			msg := RestartMessage{Type: "restart"}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(MatchJSON(`{"t":"restart"}`))
		})
	})

	Describe("SnapshotMessage", func() {
		It("carries a per-entity list with id/kind/position/velocity/rotation/health", func() {
			msg := SnapshotMessage{
				Type: "snapshot",
				Tick: 42,
				Entities: []EntitySnapshot{
					{ID: 1, Kind: EntityShip, Pos: Vec2Snapshot{X: 10, Y: 0}, Vel: Vec2Snapshot{X: 1, Y: 0}, Rot: 0, Health: 100},
					{ID: 2, Kind: EntityPlayer, Pos: Vec2Snapshot{X: 5, Y: 5}, Vel: Vec2Snapshot{}, Rot: 0, Health: 100},
				},
			}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var roundTripped SnapshotMessage
			Expect(json.Unmarshal(data, &roundTripped)).To(Succeed())
			Expect(roundTripped.Tick).To(Equal(uint64(42)))
			Expect(roundTripped.Entities).To(HaveLen(2))
			Expect(roundTripped.Entities[0].Kind).To(Equal(EntityShip))
			Expect(roundTripped.Entities[1].Kind).To(Equal(EntityPlayer))
		})

		It("omits module_state_deltas when empty", func() {
			msg := SnapshotMessage{
				Type:     "snapshot",
				Tick:     1,
				Entities: []EntitySnapshot{{ID: 1, Kind: EntityShip}},
			}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).NotTo(ContainSubstring("module_state_deltas"))
		})

		It("includes module_state_deltas when present", func() {
			msg := SnapshotMessage{
				Type: "snapshot",
				Tick: 1,
				Entities: []EntitySnapshot{
					{ID: 1, Kind: EntityShip, Modules: []ModuleStateDelta{{ModuleID: 3, Health: 40}}},
				},
			}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("module_state_deltas"))
		})
	})

	Describe("Carrier events", func() {
		It("serializes carrier_changed with the spec's field names", func() {
			msg := CarrierChangedMessage{Type: "carrier_changed", PlayerID: 5, Old: 1, New: 2, Tick: 10}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var unmarshaled map[string]interface{}
			Expect(json.Unmarshal(data, &unmarshaled)).To(Succeed())
			Expect(unmarshaled["t"]).To(Equal("carrier_changed"))
			Expect(unmarshaled).To(HaveKey("player_id"))
			Expect(unmarshaled).To(HaveKey("old"))
			Expect(unmarshaled).To(HaveKey("new"))
			Expect(unmarshaled).To(HaveKey("tick"))
		})

		It("serializes left_deck with the spec's field names", func() {
			msg := LeftDeckMessage{Type: "left_deck", PlayerID: 5, Old: 1, Tick: 10}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var unmarshaled map[string]interface{}
			Expect(json.Unmarshal(data, &unmarshaled)).To(Succeed())
			Expect(unmarshaled["t"]).To(Equal("left_deck"))
			Expect(unmarshaled).To(HaveKey("player_id"))
			Expect(unmarshaled).To(HaveKey("old"))
			Expect(unmarshaled).To(HaveKey("tick"))
			Expect(unmarshaled).NotTo(HaveKey("new"))
		})
	})

	Describe("Hit-validation RPC", func() {
		It("round-trips a hit claim request", func() {
			original := HitClaimMessage{
				Type:         "hit_claim",
				ClientID:     1,
				ReportedTick: 500,
				Origin:       Vec2Snapshot{X: 0, Y: 0},
				Direction:    Vec2Snapshot{X: 1, Y: 0},
				Range:        200,
			}

			data, err := json.Marshal(original)
			Expect(err).NotTo(HaveOccurred())

			var roundTripped HitClaimMessage
			Expect(json.Unmarshal(data, &roundTripped)).To(Succeed())
			Expect(roundTripped).To(Equal(original))
		})

		It("round-trips a hit validation response", func() {
			original := HitValidationMessage{
				Type:        "hit_validation",
				HitValid:    true,
				TargetID:    7,
				HitPosition: Vec2Snapshot{X: 90, Y: 0},
				Damage:      25,
				RewindMS:    40,
			}

			data, err := json.Marshal(original)
			Expect(err).NotTo(HaveOccurred())

			var roundTripped HitValidationMessage
			Expect(json.Unmarshal(data, &roundTripped)).To(Succeed())
			Expect(roundTripped).To(Equal(original))
		})
	})

	Describe("Quantization", func() {
		It("rounds a position to the nearest 1/512 unit", func() {
			Expect(QuantizePosition(1.0 / 512.0 * 3.4)).To(BeNumerically("~", 1.0/512.0*3, 1e-9))
		})

		It("rounds a velocity to the nearest 1/256 u/s", func() {
			Expect(QuantizeVelocity(1.0 / 256.0 * 7.6)).To(BeNumerically("~", 1.0/256.0*8, 1e-9))
		})

		It("rounds a rotation to the nearest 1/1024 rad", func() {
			Expect(QuantizeRotation(1.0 / 1024.0 * 2.4)).To(BeNumerically("~", 1.0/1024.0*2, 1e-9))
		})

		It("leaves an already-quantized value unchanged", func() {
			v := 5.0 * PositionQuantum
			Expect(QuantizePosition(v)).To(BeNumerically("~", v, 1e-9))
		})
	})

	Describe("Message Validation", Label("scope:contract", "loop:g4-proto", "layer:contract"), func() {
		Describe("ValidateInputMessage", func() {
			It("accepts a valid message", func() {
				msg := &InputMessage{Type: "input", ClientID: 1, Movement: Vec2Snapshot{X: 1, Y: 0}}
				Expect(ValidateInputMessage(msg)).To(Succeed())
			})

			It("rejects an invalid type", func() {
				msg := &InputMessage{Type: "invalid", ClientID: 1}
				err := ValidateInputMessage(msg)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("type"))
			})

			It("rejects client_id = 0", func() {
				msg := &InputMessage{Type: "input", ClientID: 0}
				err := ValidateInputMessage(msg)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("client_id"))
			})

			It("rejects a NaN movement vector", func() {
				msg := &InputMessage{Type: "input", ClientID: 1, Movement: Vec2Snapshot{X: math.NaN(), Y: 0}}
				err := ValidateInputMessage(msg)
				Expect(err).To(HaveOccurred())
			})

			It("rejects a negative dt_ms", func() {
				msg := &InputMessage{Type: "input", ClientID: 1, DtMS: -1}
				err := ValidateInputMessage(msg)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("dt_ms"))
			})
		})

		Describe("ValidateRestartMessage", func() {
			It("accepts a valid message", func() {
				Expect(ValidateRestartMessage(&RestartMessage{Type: "restart"})).To(Succeed())
			})

			It("rejects an invalid type", func() {
				err := ValidateRestartMessage(&RestartMessage{Type: "invalid"})
				Expect(err).To(HaveOccurred())
			})
		})

		Describe("ValidateSnapshotMessage", func() {
			It("accepts a valid message", func() {
				msg := &SnapshotMessage{
					Type:     "snapshot",
					Tick:     1,
					Entities: []EntitySnapshot{{ID: 1, Kind: EntityShip}},
				}
				Expect(ValidateSnapshotMessage(msg)).To(Succeed())
			})

			It("rejects an invalid type", func() {
				err := ValidateSnapshotMessage(&SnapshotMessage{Type: "invalid"})
				Expect(err).To(HaveOccurred())
			})

			It("rejects an entity with an unknown kind", func() {
				msg := &SnapshotMessage{
					Type:     "snapshot",
					Tick:     1,
					Entities: []EntitySnapshot{{ID: 1, Kind: "projectile"}},
				}
				err := ValidateSnapshotMessage(msg)
				Expect(err).To(HaveOccurred())
			})

			It("rejects an entity with id = 0", func() {
				msg := &SnapshotMessage{
					Type:     "snapshot",
					Tick:     1,
					Entities: []EntitySnapshot{{ID: 0, Kind: EntityShip}},
				}
				err := ValidateSnapshotMessage(msg)
				Expect(err).To(HaveOccurred())
			})
		})

		Describe("ValidateHitClaimMessage", func() {
			It("accepts a valid claim", func() {
				msg := &HitClaimMessage{Type: "hit_claim", ClientID: 1, Direction: Vec2Snapshot{X: 1, Y: 0}, Range: 100}
				Expect(ValidateHitClaimMessage(msg)).To(Succeed())
			})

			It("rejects a non-positive range", func() {
				msg := &HitClaimMessage{Type: "hit_claim", ClientID: 1, Range: 0}
				err := ValidateHitClaimMessage(msg)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("range"))
			})
		})

		Describe("ValidateVec2Snapshot", func() {
			It("accepts a finite vector", func() {
				Expect(ValidateVec2Snapshot(&Vec2Snapshot{X: 1, Y: -2})).To(Succeed())
			})

			It("rejects NaN in X", func() {
				err := ValidateVec2Snapshot(&Vec2Snapshot{X: math.NaN(), Y: 0})
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("x"))
			})

			It("rejects Inf in Y", func() {
				err := ValidateVec2Snapshot(&Vec2Snapshot{X: 0, Y: math.Inf(1)})
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("y"))
			})
		})
	})

	Describe("Protocol Versioning", Label("scope:contract", "loop:g4-proto", "layer:contract", "net:proto:v1"), func() {
		Describe("Version Constants", func() {
			It("defines ProtocolVersionV1 constant", func() {
				Expect(string(ProtocolVersionV1)).To(Equal("v1"))
			})
		})

		Describe("ParseVersion", func() {
			It("parses valid version strings", func() {
				version, err := ParseVersion("v1")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(version)).To(Equal("v1"))
			})

			It("rejects invalid version strings", func() {
				_, err := ParseVersion("invalid")
				Expect(err).To(HaveOccurred())
			})

			It("rejects an empty string", func() {
				_, err := ParseVersion("")
				Expect(err).To(HaveOccurred())
			})
		})

		Describe("IsCompatible", func() {
			It("returns true for identical versions", func() {
				Expect(IsCompatible("v1", "v1")).To(BeTrue())
			})

			It("returns false across major versions", func() {
				Expect(IsCompatible("v1", "v2")).To(BeFalse())
			})
		})

		Describe("CompareVersion", func() {
			It("orders versions by major number", func() {
				Expect(CompareVersion("v1", "v2")).To(Equal(-1))
				Expect(CompareVersion("v2", "v1")).To(Equal(1))
				Expect(CompareVersion("v1", "v1")).To(Equal(0))
			})
		})
	})

	Describe("Edge Cases", Label("scope:contract", "loop:g4-proto", "layer:contract"), func() {
		It("handles the maximum sequence number", func() {
			msg := InputMessage{Type: "input", ClientID: 1, Sequence: ^uint32(0)}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var unmarshaled InputMessage
			Expect(json.Unmarshal(data, &unmarshaled)).To(Succeed())
			Expect(unmarshaled.Sequence).To(Equal(^uint32(0)))
		})

		It("handles a large tick value", func() {
			msg := SnapshotMessage{Type: "snapshot", Tick: ^uint64(0)}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var unmarshaled SnapshotMessage
			Expect(json.Unmarshal(data, &unmarshaled)).To(Succeed())
			Expect(unmarshaled.Tick).To(Equal(^uint64(0)))
		})

		It("handles an empty entity list", func() {
			msg := SnapshotMessage{Type: "snapshot", Tick: 1, Entities: []EntitySnapshot{}}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var unmarshaled SnapshotMessage
			Expect(json.Unmarshal(data, &unmarshaled)).To(Succeed())
			Expect(unmarshaled.Entities).To(BeEmpty())
		})

		It("handles many entities", func() {
			entities := make([]EntitySnapshot, 100)
			for i := range entities {
				entities[i] = EntitySnapshot{ID: uint32(i + 1), Kind: EntityPlayer, Pos: Vec2Snapshot{X: float64(i), Y: float64(i)}}
			}
			msg := SnapshotMessage{Type: "snapshot", Tick: 1, Entities: entities}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var unmarshaled SnapshotMessage
			Expect(json.Unmarshal(data, &unmarshaled)).To(Succeed())
			Expect(unmarshaled.Entities).To(HaveLen(100))
		})
	})
})

const entityActionsFixture = 1 // ActionJump
