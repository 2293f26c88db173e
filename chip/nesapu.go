package chip

// NESAPUTracker reconstructs channel state for the NES APU's five
// channels: two pulse, one triangle, one noise, and DMC (DMC is
// tracked only for key state; it has no tone concept here).
type NESAPUTracker struct {
	clockHz uint32
	regs    *arrayStorage
	ch      [5]ChannelState
}

const nesStatusReg = 0x15

var nesChannelTimerLo = [2]uint16{0x02, 0x06}
var nesChannelTimerHi = [2]uint16{0x03, 0x07}
var nesVolReg = [2]uint16{0x00, 0x04}

const (
	nesTriTimerLo = 0x08
	nesTriTimerHi = 0x09
)

func NewNESAPUTracker(clockHz uint32) *NESAPUTracker {
	return &NESAPUTracker{clockHz: clockHz, regs: newArrayStorage(0x16)}
}

func (t *NESAPUTracker) ChannelCount() int { return 5 }

func (t *NESAPUTracker) Reset() {
	t.regs.clear()
	t.ch = [5]ChannelState{}
}

func (t *NESAPUTracker) ReadRegister(register uint16) (uint16, bool) {
	return t.regs.load(register)
}

func (t *NESAPUTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	t.regs.store(register, value)

	var events []StateEvent
	switch {
	case register == nesStatusReg:
		for ch := 0; ch < 5; ch++ {
			events = append(events, t.refresh(ch)...)
		}
	case register == nesChannelTimerLo[0], register == nesChannelTimerHi[0], register == nesVolReg[0]:
		events = append(events, t.refresh(0)...)
	case register == nesChannelTimerLo[1], register == nesChannelTimerHi[1], register == nesVolReg[1]:
		events = append(events, t.refresh(1)...)
	case register == nesTriTimerLo, register == nesTriTimerHi:
		events = append(events, t.refresh(2)...)
	case register >= 0x0C && register <= 0x0F:
		events = append(events, t.refresh(3)...)
	case register >= 0x10 && register <= 0x13:
		events = append(events, t.refresh(4)...)
	}
	return events
}

func (t *NESAPUTracker) statusBit(ch int) bool {
	status, _ := t.regs.load(nesStatusReg)
	return status&(1<<uint(ch)) != 0
}

func (t *NESAPUTracker) refresh(ch int) []StateEvent {
	enabled := t.statusBit(ch)
	tone := t.computeTone(ch)

	var events []StateEvent
	wasOn := t.ch[ch].Key == KeyOn
	if enabled && !wasOn {
		t.ch[ch] = ChannelState{Key: KeyOn, Tone: tone}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch, Tone: tone})
	} else if !enabled && wasOn {
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	} else if enabled && wasOn && tone.Raw != t.ch[ch].Tone.Raw {
		t.ch[ch].Tone = tone
		events = append(events, StateEvent{Kind: EventToneChange, Channel: ch, Tone: tone})
	}
	return events
}

func (t *NESAPUTracker) computeTone(ch int) ToneInfo {
	var lo, hi uint16
	switch {
	case ch < 2:
		lo, _ = t.regs.load(nesChannelTimerLo[ch])
		hi, _ = t.regs.load(nesChannelTimerHi[ch])
	case ch == 2:
		lo, _ = t.regs.load(nesTriTimerLo)
		hi, _ = t.regs.load(nesTriTimerHi)
	default:
		return ToneInfo{}
	}
	timer := (uint16(hi&0x07) << 8) | lo
	info := ToneInfo{Raw: timer}
	info.FreqHz = freq(111860.78 / (float64(timer) + 1))
	return info
}
