package vgm

// ChipKind identifies a sound chip family addressable from a log's
// header clock table, extra header, and command stream.
type ChipKind int

const (
	ChipSN76489 ChipKind = iota
	ChipYM2413
	ChipYM2612
	ChipYM2151
	ChipSegaPCM
	ChipRF5C68
	ChipYM2203
	ChipYM2608
	ChipYM2610
	ChipYM3812
	ChipYM3526
	ChipY8950
	ChipYMF262
	ChipYMF278B
	ChipYMF271
	ChipYMZ280B
	ChipRF5C164
	ChipPWM
	ChipAY8910
	ChipGameBoyDMG
	ChipNESAPU
	ChipMultiPCM
	ChipUPD7759
	ChipOKIM6258
	ChipOKIM6295
	ChipK051649
	ChipK054539
	ChipHuC6280
	ChipC140
	ChipK053260
	ChipPokey
	ChipQSound
	ChipSCSP
	ChipWonderSwan
	ChipVSU
	ChipSAA1099
	ChipES5503
	ChipES5506
	ChipX1010
	ChipC352
	ChipGA20

	chipKindCount
)

// String names a chip kind the way logs and diagnostics refer to it.
func (c ChipKind) String() string {
	if int(c) < 0 || int(c) >= len(chipKindNames) {
		return "Unknown"
	}
	return chipKindNames[c]
}

var chipKindNames = [chipKindCount]string{
	ChipSN76489:    "SN76489",
	ChipYM2413:     "YM2413",
	ChipYM2612:     "YM2612",
	ChipYM2151:     "YM2151",
	ChipSegaPCM:    "SegaPCM",
	ChipRF5C68:     "RF5C68",
	ChipYM2203:     "YM2203",
	ChipYM2608:     "YM2608",
	ChipYM2610:     "YM2610",
	ChipYM3812:     "YM3812",
	ChipYM3526:     "YM3526",
	ChipY8950:      "Y8950",
	ChipYMF262:     "YMF262",
	ChipYMF278B:    "YMF278B",
	ChipYMF271:     "YMF271",
	ChipYMZ280B:    "YMZ280B",
	ChipRF5C164:    "RF5C164",
	ChipPWM:        "PWM",
	ChipAY8910:     "AY8910",
	ChipGameBoyDMG: "GameBoyDMG",
	ChipNESAPU:     "NESAPU",
	ChipMultiPCM:   "MultiPCM",
	ChipUPD7759:    "uPD7759",
	ChipOKIM6258:   "OKIM6258",
	ChipOKIM6295:   "OKIM6295",
	ChipK051649:    "K051649",
	ChipK054539:    "K054539",
	ChipHuC6280:    "HuC6280",
	ChipC140:       "C140",
	ChipK053260:    "K053260",
	ChipPokey:      "Pokey",
	ChipQSound:     "QSound",
	ChipSCSP:       "SCSP",
	ChipWonderSwan: "WonderSwan",
	ChipVSU:        "VSU",
	ChipSAA1099:    "SAA1099",
	ChipES5503:     "ES5503",
	ChipES5506:     "ES5506",
	ChipX1010:      "X1-010",
	ChipC352:       "C352",
	ChipGA20:       "GA20",
}

// Instance distinguishes the primary chip of a kind from a second,
// paired instance of the same kind in the same log (a common setup for
// arcade boards using two identical FM chips).
type Instance int

const (
	InstancePrimary Instance = iota
	InstanceSecondary
)

func (i Instance) String() string {
	if i == InstanceSecondary {
		return "secondary"
	}
	return "primary"
}

// ClockValue unpacks a raw 32-bit header clock field into its Hz
// value and the dual-chip/variant flag bits the format overlays on
// the top two bits.
type ClockValue struct {
	Hz          uint32
	DualChip    bool
	ChipVariant bool
}

// DecodeClock splits a raw header clock field into ClockValue. Bit 31
// signals a second chip instance sharing the clock field; bit 30
// signals a chip variant (e.g. T6W28 in place of plain SN76489).
func DecodeClock(raw uint32) ClockValue {
	return ClockValue{
		Hz:          raw &^ (1 << 31) &^ (1 << 30),
		DualChip:    raw&(1<<31) != 0,
		ChipVariant: raw&(1<<30) != 0,
	}
}

// Encode packs a ClockValue back into a raw header field.
func (c ClockValue) Encode() uint32 {
	v := c.Hz &^ (1 << 31) &^ (1 << 30)
	if c.DualChip {
		v |= 1 << 31
	}
	if c.ChipVariant {
		v |= 1 << 30
	}
	return v
}
