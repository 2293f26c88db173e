package chip

// AY8910Tracker reconstructs channel state for the AY-3-8910 (and its
// register-compatible YM2149 variant): three tone channels, each keyed
// by the combination of the mixer's tone-disable mask and a non-zero
// channel volume.
type AY8910Tracker struct {
	clockHz uint32
	regs    *arrayStorage
	ch      [3]ChannelState
}

func NewAY8910Tracker(clockHz uint32) *AY8910Tracker {
	return &AY8910Tracker{clockHz: clockHz, regs: newArrayStorage(14)}
}

var ay8910ChannelRegs = [3]struct{ fine, coarse, mixerBit, volReg uint16 }{
	{0, 1, 0, 8},
	{2, 3, 1, 9},
	{4, 5, 2, 10},
}

func (t *AY8910Tracker) ChannelCount() int { return 3 }

func (t *AY8910Tracker) Reset() {
	t.regs.clear()
	t.ch = [3]ChannelState{}
}

func (t *AY8910Tracker) ReadRegister(register uint16) (uint16, bool) {
	return t.regs.load(register)
}

func (t *AY8910Tracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	t.regs.store(register, value)

	var events []StateEvent
	switch {
	case register == 7:
		for i := range ay8910ChannelRegs {
			events = append(events, t.refreshChannel(i)...)
		}
	case register <= 5:
		ch := -1
		for i, r := range ay8910ChannelRegs {
			if register == r.fine || register == r.coarse {
				ch = i
			}
		}
		if ch >= 0 {
			events = append(events, t.refreshChannel(ch)...)
		}
	case register >= 8 && register <= 10:
		ch := int(register - 8)
		events = append(events, t.refreshChannel(ch)...)
	}
	return events
}

func (t *AY8910Tracker) refreshChannel(ch int) []StateEvent {
	r := ay8910ChannelRegs[ch]
	mixer, _ := t.regs.load(7)
	toneEnabled := mixer&(1<<r.mixerBit) == 0
	vol, _ := t.regs.load(r.volReg)
	audible := toneEnabled && (vol&0x1F) != 0

	var events []StateEvent
	wasOn := t.ch[ch].Key == KeyOn
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

func (t *AY8910Tracker) computeTone(ch int) ToneInfo {
	r := ay8910ChannelRegs[ch]
	fine, _ := t.regs.load(r.fine)
	coarse, _ := t.regs.load(r.coarse)
	period := (coarse&0x0F)<<8 | fine

	info := ToneInfo{Raw: period}
	if period == 0 || t.clockHz == 0 {
		return info
	}
	hz := float64(t.clockHz) / (16 * float64(period))
	info.FreqHz = freq(hz)
	return info
}
