package chip

// WonderSwanTracker reconstructs channel state for the WonderSwan's
// four PCM channels. Control registers (frequency, volume, channel
// enable) are addressed 0x00-0x10; wave memory writes (register
// 0x80 and above, one of the two on-wire command shapes the format
// carries for this chip) hold no key/tone information and are
// accepted as no-ops.
type WonderSwanTracker struct {
	clockHz uint32
	freq    [4]uint16
	volume  [4]uint8
	enabled uint8
	ch      [4]ChannelState
}

const wsEnableReg = 0x10

func NewWonderSwanTracker(clockHz uint32) *WonderSwanTracker {
	return &WonderSwanTracker{clockHz: clockHz}
}

func (t *WonderSwanTracker) ChannelCount() int { return 4 }

func (t *WonderSwanTracker) Reset() {
	*t = *NewWonderSwanTracker(t.clockHz)
}

func (t *WonderSwanTracker) ReadRegister(register uint16) (uint16, bool) {
	switch {
	case register < 8:
		return t.freq[register/2], true
	case register >= 8 && register < 12:
		return uint16(t.volume[register-8]), true
	case register == wsEnableReg:
		return uint16(t.enabled), true
	}
	return 0, false
}

func (t *WonderSwanTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	if register >= 0x80 {
		return nil
	}
	v := uint8(value)
	switch {
	case register < 8:
		ch := int(register / 2)
		if register%2 == 0 {
			t.freq[ch] = (t.freq[ch] &^ 0x00FF) | uint16(v)
		} else {
			t.freq[ch] = (t.freq[ch] & 0x00FF) | (uint16(v) << 8)
		}
		return t.refresh(ch)
	case register >= 8 && register < 12:
		ch := int(register - 8)
		t.volume[ch] = v
		return t.refresh(ch)
	case register == wsEnableReg:
		old := t.enabled
		t.enabled = v
		var events []StateEvent
		for ch := 0; ch < 4; ch++ {
			if old&(1<<uint(ch)) != t.enabled&(1<<uint(ch)) {
				events = append(events, t.refresh(ch)...)
			}
		}
		return events
	}
	return nil
}

func (t *WonderSwanTracker) refresh(ch int) []StateEvent {
	audible := t.enabled&(1<<uint(ch)) != 0 && t.volume[ch] != 0
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

func (t *WonderSwanTracker) computeTone(ch int) ToneInfo {
	period := t.freq[ch]
	info := ToneInfo{Raw: period}
	if t.clockHz == 0 || period >= 2048 {
		return info
	}
	info.FreqHz = freq(float64(t.clockHz) / (128 * float64(2048-period)))
	return info
}
