package chip

// VSUTracker reconstructs channel state for the Virtual Boy VSU's six
// channels. Each channel's control registers sit at 0x100 + ch*0x100 +
// offset; waveform memory below 0x100 holds no key/tone information
// and is accepted as a no-op.
type VSUTracker struct {
	clockHz uint32
	enabled [6]bool
	volume  [6]uint8
	freq    [6]uint16
	ch      [6]ChannelState
}

func NewVSUTracker(clockHz uint32) *VSUTracker {
	return &VSUTracker{clockHz: clockHz}
}

func (t *VSUTracker) ChannelCount() int { return 6 }

func (t *VSUTracker) Reset() {
	*t = *NewVSUTracker(t.clockHz)
}

func (t *VSUTracker) channelFor(register uint16) (int, uint16, bool) {
	if register < 0x100 {
		return 0, 0, false
	}
	ch := int((register - 0x100) / 0x100)
	if ch >= 6 {
		return 0, 0, false
	}
	return ch, (register - 0x100) % 0x100, true
}

func (t *VSUTracker) ReadRegister(register uint16) (uint16, bool) {
	ch, sub, ok := t.channelFor(register)
	if !ok {
		return 0, false
	}
	switch sub {
	case 0x00:
		v := uint16(0)
		if t.enabled[ch] {
			v = 0x80
		}
		return v, true
	case 0x01:
		return uint16(t.volume[ch]), true
	case 0x02, 0x03:
		return t.freq[ch], true
	}
	return 0, false
}

func (t *VSUTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	ch, sub, ok := t.channelFor(register)
	if !ok {
		return nil
	}
	v := uint8(value)
	switch sub {
	case 0x00:
		wasEnabled := t.enabled[ch]
		t.enabled[ch] = v&0x80 != 0
		if t.enabled[ch] != wasEnabled {
			return t.refresh(ch)
		}
		return nil
	case 0x01:
		t.volume[ch] = v
		return t.refresh(ch)
	case 0x02:
		t.freq[ch] = (t.freq[ch] &^ 0x00FF) | uint16(v)
		return t.refresh(ch)
	case 0x03:
		t.freq[ch] = (t.freq[ch] & 0x00FF) | (uint16(v&0x07) << 8)
		return t.refresh(ch)
	}
	return nil
}

func (t *VSUTracker) refresh(ch int) []StateEvent {
	audible := t.enabled[ch] && t.volume[ch] != 0
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

func (t *VSUTracker) computeTone(ch int) ToneInfo {
	period := t.freq[ch]
	info := ToneInfo{Raw: period}
	if t.clockHz == 0 || period >= 2048 {
		return info
	}
	info.FreqHz = freq(float64(t.clockHz) / (32 * float64(2048-period)))
	return info
}
