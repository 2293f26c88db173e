package chip

// PokeyTracker reconstructs channel state for the POKEY chip's four
// audio channels. Frequency derivation uses the simplified model: a
// base clock selected by AUDCTL's 15kHz/64kHz mode bit, divided by
// 2*(AUDF+1). Real hardware also supports joining channel pairs into
// 16-bit counters and independent per-pair clock bases; that detail is
// out of scope here, so frequency accuracy on channels using those
// modes is only approximate.
type PokeyTracker struct {
	clockHz uint32
	regs    *arrayStorage
	ch      [4]ChannelState
}

// Register layout: AUDF0,AUDC0,AUDF1,AUDC1,AUDF2,AUDC2,AUDF3,AUDC3,AUDCTL
var pokeyAudf = [4]uint16{0, 2, 4, 6}
var pokeyAudc = [4]uint16{1, 3, 5, 7}

const pokeyAudctlReg = 8

func NewPokeyTracker(clockHz uint32) *PokeyTracker {
	return &PokeyTracker{clockHz: clockHz, regs: newArrayStorage(9)}
}

func (t *PokeyTracker) ChannelCount() int { return 4 }

func (t *PokeyTracker) Reset() {
	t.regs.clear()
	t.ch = [4]ChannelState{}
}

func (t *PokeyTracker) ReadRegister(register uint16) (uint16, bool) {
	return t.regs.load(register)
}

func (t *PokeyTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	t.regs.store(register, value)

	if register == pokeyAudctlReg {
		var events []StateEvent
		for ch := range t.ch {
			events = append(events, t.refresh(ch)...)
		}
		return events
	}
	for ch, r := range pokeyAudf {
		if register == r {
			return t.refresh(ch)
		}
	}
	for ch, r := range pokeyAudc {
		if register == r {
			return t.refresh(ch)
		}
	}
	return nil
}

func (t *PokeyTracker) refresh(ch int) []StateEvent {
	audc, _ := t.regs.load(pokeyAudc[ch])
	volume := audc & 0x0F
	audible := volume != 0
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
		prev := t.ch[ch].Tone
		freqChanged := (tone.FreqHz == nil) != (prev.FreqHz == nil) ||
			(tone.FreqHz != nil && *tone.FreqHz != *prev.FreqHz)
		if tone.Raw != prev.Raw || freqChanged {
			t.ch[ch].Tone = tone
			events = append(events, StateEvent{Kind: EventToneChange, Channel: ch, Tone: tone})
		}
	}
	return events
}

func (t *PokeyTracker) computeTone(ch int) ToneInfo {
	audf, _ := t.regs.load(pokeyAudf[ch])
	info := ToneInfo{Raw: audf}
	if t.clockHz == 0 {
		return info
	}
	audctl, _ := t.regs.load(pokeyAudctlReg)
	base := float64(t.clockHz) / 28.0
	if audctl&0x01 != 0 {
		base = float64(t.clockHz) / 114.0
	}
	hz := base / (2 * (float64(audf) + 1))
	info.FreqHz = freq(hz)
	return info
}
