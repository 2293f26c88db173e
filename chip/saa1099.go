package chip

// SAA1099Tracker reconstructs channel state for the Philips SAA1099's
// six channels. Octave and frequency-enable fields are packed two or
// three channels to a register, matching the real chip's layout.
type SAA1099Tracker struct {
	clockHz      uint32
	amplitude    [6]uint8 // combined left/right nibble, nonzero in either half means audible
	freqValue    [6]uint8
	octave       [6]uint8
	freqEnabled  [6]bool
	globalEnable bool
	ch           [6]ChannelState
}

const (
	saaAmplitudeBase = 0x00
	saaFreqBase      = 0x08
	saaOctaveBase    = 0x10
	saaFreqEnableBase = 0x14
	saaGlobalEnable  = 0x1C
)

func NewSAA1099Tracker(clockHz uint32) *SAA1099Tracker {
	return &SAA1099Tracker{clockHz: clockHz}
}

func (t *SAA1099Tracker) ChannelCount() int { return 6 }

func (t *SAA1099Tracker) Reset() {
	*t = *NewSAA1099Tracker(t.clockHz)
}

func (t *SAA1099Tracker) ReadRegister(register uint16) (uint16, bool) {
	switch {
	case register >= saaAmplitudeBase && register < saaAmplitudeBase+6:
		return uint16(t.amplitude[register-saaAmplitudeBase]), true
	case register >= saaFreqBase && register < saaFreqBase+6:
		return uint16(t.freqValue[register-saaFreqBase]), true
	case register == saaGlobalEnable:
		if t.globalEnable {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (t *SAA1099Tracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	v := uint8(value)
	switch {
	case register >= saaAmplitudeBase && register < saaAmplitudeBase+6:
		ch := int(register - saaAmplitudeBase)
		t.amplitude[ch] = v
		return t.refresh(ch)

	case register >= saaFreqBase && register < saaFreqBase+6:
		ch := int(register - saaFreqBase)
		t.freqValue[ch] = v
		return t.refresh(ch)

	case register >= saaOctaveBase && register < saaOctaveBase+3:
		pairIdx := int(register - saaOctaveBase)
		ch0, ch1 := pairIdx*2, pairIdx*2+1
		t.octave[ch0] = v & 0x07
		t.octave[ch1] = (v >> 4) & 0x07
		var events []StateEvent
		events = append(events, t.refresh(ch0)...)
		events = append(events, t.refresh(ch1)...)
		return events

	case register >= saaFreqEnableBase && register < saaFreqEnableBase+2:
		groupIdx := int(register - saaFreqEnableBase)
		var events []StateEvent
		for i := 0; i < 3; i++ {
			ch := groupIdx*3 + i
			t.freqEnabled[ch] = v&(1<<uint(i)) != 0
			events = append(events, t.refresh(ch)...)
		}
		return events

	case register == saaGlobalEnable:
		t.globalEnable = v&0x01 != 0
		var events []StateEvent
		for ch := 0; ch < 6; ch++ {
			events = append(events, t.refresh(ch)...)
		}
		return events
	}
	return nil
}

func (t *SAA1099Tracker) refresh(ch int) []StateEvent {
	audible := t.globalEnable && t.freqEnabled[ch] && t.amplitude[ch] != 0
	tone := t.computeTone(ch)
	wasOn := t.ch[ch].Key == KeyOn

	var events []StateEvent
	if audible && !wasOn {
		t.ch[ch] = ChannelState{Key: KeyOn, Tone: tone}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch, Tone: tone})
	} else if !audible && wasOn {
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	} else if audible && wasOn && tone.Raw != t.ch[ch].Tone.Raw {
		t.ch[ch].Tone = tone
		events = append(events, StateEvent{Kind: EventToneChange, Channel: ch, Tone: tone})
	}
	return events
}

func (t *SAA1099Tracker) computeTone(ch int) ToneInfo {
	info := ToneInfo{Raw: uint16(t.freqValue[ch])}
	if t.clockHz == 0 {
		return info
	}
	octave := t.octave[ch]
	denom := float64(511-int(t.freqValue[ch])) * float64(uint32(1)<<(8-octave))
	if denom <= 0 {
		return info
	}
	info.FreqHz = freq(float64(t.clockHz) / denom)
	return info
}
