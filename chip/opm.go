package chip

import "math"

// OPMTracker reconstructs channel state for the YM2151's eight FM
// channels. Pitch is encoded as a key code (octave + a 12-of-16 note
// index, the chip's own historical quirk of skipping four codes per
// octave to simplify its internal note-generator hardware) plus a
// 6-bit key fraction that interpolates toward the next semitone.
type OPMTracker struct {
	clockHz uint32
	regs    *sparseStorage
	ch      [8]ChannelState
}

const opmKeyOnReg = 0x08

func NewOPMTracker(clockHz uint32) *OPMTracker {
	return &OPMTracker{clockHz: clockHz, regs: newSparseStorage()}
}

func (t *OPMTracker) ChannelCount() int { return 8 }

func (t *OPMTracker) Reset() {
	t.regs.clear()
	t.ch = [8]ChannelState{}
}

func (t *OPMTracker) ReadRegister(register uint16) (uint16, bool) {
	return t.regs.load(register)
}

// noteCodeToIndex maps the YM2151's 16-value key-code note nibble to a
// 0-11 semitone index; codes 3, 7, 11, 15 are never emitted by real
// hardware and decode here as -1, which leaves the tone without a
// frequency.
var noteCodeToIndex = [16]int{0, 1, 2, -1, 3, 4, 5, -1, 6, 7, 8, -1, 9, 10, 11, -1}

func (t *OPMTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	t.regs.store(register, value)
	addr := uint8(register)
	switch {
	case addr == opmKeyOnReg:
		return t.onKeyOn(uint8(value))
	case addr >= 0x28 && addr <= 0x2F:
		return t.refresh(int(addr - 0x28))
	case addr >= 0x30 && addr <= 0x37:
		return t.refresh(int(addr - 0x30))
	}
	return nil
}

func (t *OPMTracker) onKeyOn(value uint8) []StateEvent {
	ch := int(value & 0x07)
	opBits := (value >> 3) & 0x0F
	keyOn := opBits != 0

	var events []StateEvent
	wasOn := t.ch[ch].Key == KeyOn
	if keyOn && !wasOn {
		tone := t.computeTone(ch)
		t.ch[ch] = ChannelState{Key: KeyOn, Tone: tone}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch, Tone: tone})
	} else if !keyOn && wasOn {
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	}
	return events
}

func (t *OPMTracker) refresh(ch int) []StateEvent {
	if ch >= 8 || t.ch[ch].Key != KeyOn {
		return nil
	}
	tone := t.computeTone(ch)
	if tone.Raw == t.ch[ch].Tone.Raw {
		return nil
	}
	t.ch[ch].Tone = tone
	return []StateEvent{{Kind: EventToneChange, Channel: ch, Tone: tone}}
}

func (t *OPMTracker) computeTone(ch int) ToneInfo {
	kc, _ := t.regs.load(uint16(0x28 + ch))
	kf, _ := t.regs.load(uint16(0x30 + ch))

	octave := (kc >> 4) & 0x07
	noteNibble := kc & 0x0F
	raw := uint16(kc)<<8 | kf

	info := ToneInfo{Raw: raw, Block: uint8(octave)}
	noteIdx := noteCodeToIndex[noteNibble]
	if noteIdx < 0 || t.clockHz == 0 {
		return info
	}
	frac := float64(kf>>2) / 64.0
	midiNote := float64(octave)*12 + float64(noteIdx) + frac
	info.FreqHz = freq(440.0 * math.Exp2((midiNote-57)/12.0))
	return info
}
