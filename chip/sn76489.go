package chip

// SN76489Tracker reconstructs channel state for the SN76489 PSG and
// its Game Gear variant (register-compatible; the Game Gear's stereo
// panning register carries no tone/key information and is ignored
// here). The chip's protocol is a stateful two-byte latch/data
// sequence rather than a flat register file: callers feed every byte
// written to the chip's single write port through OnRegisterWrite with
// register 0.
type SN76489Tracker struct {
	clockHz uint32

	latchedChannel int
	latchedIsVol   bool

	period     [4]uint16 // channel 3 (noise) period is unused
	attenuation [4]uint8  // 0 = loudest, 15 = silent

	ch [4]ChannelState
}

func NewSN76489Tracker(clockHz uint32) *SN76489Tracker {
	t := &SN76489Tracker{clockHz: clockHz}
	for i := range t.attenuation {
		t.attenuation[i] = 0x0F
	}
	return t
}

func (t *SN76489Tracker) ChannelCount() int { return 4 }

func (t *SN76489Tracker) Reset() {
	*t = *NewSN76489Tracker(t.clockHz)
}

// ReadRegister reports the current attenuation<<12 | period for the
// given channel (0-3); there is no real per-byte addressable register
// file to read back.
func (t *SN76489Tracker) ReadRegister(channel uint16) (uint16, bool) {
	if channel > 3 {
		return 0, false
	}
	return uint16(t.attenuation[channel])<<12 | t.period[channel], true
}

func (t *SN76489Tracker) OnRegisterWrite(_ uint16, value uint16) []StateEvent {
	b := uint8(value)
	if b&0x80 != 0 {
		t.latchedChannel = int(b>>5) & 0x03
		t.latchedIsVol = b&0x10 != 0
		if t.latchedIsVol {
			t.attenuation[t.latchedChannel] = b & 0x0F
			return t.refresh(t.latchedChannel)
		}
		t.period[t.latchedChannel] = (t.period[t.latchedChannel] &^ 0x0F) | uint16(b&0x0F)
		return t.refresh(t.latchedChannel)
	}

	if t.latchedIsVol {
		return nil
	}
	t.period[t.latchedChannel] = (t.period[t.latchedChannel] & 0x0F) | (uint16(b&0x3F) << 4)
	return t.refresh(t.latchedChannel)
}

func (t *SN76489Tracker) refresh(ch int) []StateEvent {
	audible := t.attenuation[ch] < 0x0F
	wasOn := t.ch[ch].Key == KeyOn

	var events []StateEvent
	if audible && !wasOn {
		tone := t.computeTone(ch)
		t.ch[ch] = ChannelState{Key: KeyOn, Tone: tone}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch, Tone: tone})
	} else if !audible && wasOn {
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	} else if audible && wasOn {
		tone := t.computeTone(ch)
		if tone.Raw != t.ch[ch].Tone.Raw {
			t.ch[ch].Tone = tone
			events = append(events, StateEvent{Kind: EventToneChange, Channel: ch, Tone: tone})
		}
	}
	return events
}

func (t *SN76489Tracker) computeTone(ch int) ToneInfo {
	if ch == 3 {
		// Noise channel: no fundamental frequency.
		return ToneInfo{Raw: t.period[ch]}
	}
	period := t.period[ch]
	info := ToneInfo{Raw: period}
	if period == 0 || t.clockHz == 0 {
		return info
	}
	hz := float64(t.clockHz) / (32 * float64(period))
	info.FreqHz = freq(hz)
	return info
}
