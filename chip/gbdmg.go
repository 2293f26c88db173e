package chip

// GameBoyDMGTracker reconstructs channel state for the Game Boy's four
// APU channels: two pulse channels, one wave channel, and one noise
// channel, addressed at the same relative register offsets as real
// hardware (0x00 = NR10 through 0x16 = NR52).
type GameBoyDMGTracker struct {
	clockHz uint32
	regs    *arrayStorage
	ch      [4]ChannelState
}

const (
	gbNR10 = 0x00
	gbNR12 = 0x02
	gbNR13 = 0x03
	gbNR14 = 0x04
	gbNR22 = 0x07
	gbNR23 = 0x08
	gbNR24 = 0x09
	gbNR30 = 0x0A
	gbNR33 = 0x0D
	gbNR34 = 0x0E
	gbNR42 = 0x11
	gbNR44 = 0x13
)

func NewGameBoyDMGTracker(clockHz uint32) *GameBoyDMGTracker {
	return &GameBoyDMGTracker{clockHz: clockHz, regs: newArrayStorage(0x17)}
}

func (t *GameBoyDMGTracker) ChannelCount() int { return 4 }

func (t *GameBoyDMGTracker) Reset() {
	t.regs.clear()
	t.ch = [4]ChannelState{}
}

func (t *GameBoyDMGTracker) ReadRegister(register uint16) (uint16, bool) {
	return t.regs.load(register)
}

func (t *GameBoyDMGTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	t.regs.store(register, value)
	switch register {
	case gbNR12, gbNR13:
		return t.refreshPulse(0, gbNR12, gbNR13, gbNR14, false)
	case gbNR14:
		return t.refreshPulse(0, gbNR12, gbNR13, gbNR14, value&0x80 != 0)
	case gbNR22, gbNR23:
		return t.refreshPulse(1, gbNR22, gbNR23, gbNR24, false)
	case gbNR24:
		return t.refreshPulse(1, gbNR22, gbNR23, gbNR24, value&0x80 != 0)
	case gbNR30, gbNR33:
		return t.refreshWave(false)
	case gbNR34:
		return t.refreshWave(value&0x80 != 0)
	case gbNR42:
		return nil
	case gbNR44:
		return t.refreshNoise(value&0x80 != 0)
	}
	return nil
}

func (t *GameBoyDMGTracker) dacEnabled(volEnvReg uint16) bool {
	v, _ := t.regs.load(volEnvReg)
	return v&0xF8 != 0
}

func (t *GameBoyDMGTracker) refreshPulse(ch int, volReg, freqLoReg, freqHiReg uint16, triggered bool) []StateEvent {
	dac := t.dacEnabled(volReg)
	tone := t.pulseTone(freqLoReg, freqHiReg)

	var events []StateEvent
	wasOn := t.ch[ch].Key == KeyOn
	switch {
	case triggered && dac:
		t.ch[ch] = ChannelState{Key: KeyOn, Tone: tone}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch, Tone: tone})
	case triggered && !dac && wasOn:
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	case !dac && wasOn:
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	case dac && wasOn && tone.Raw != t.ch[ch].Tone.Raw:
		t.ch[ch].Tone = tone
		events = append(events, StateEvent{Kind: EventToneChange, Channel: ch, Tone: tone})
	}
	return events
}

func (t *GameBoyDMGTracker) pulseTone(loReg, hiReg uint16) ToneInfo {
	lo, _ := t.regs.load(loReg)
	hi, _ := t.regs.load(hiReg)
	timer := (uint16(hi&0x07) << 8) | lo
	info := ToneInfo{Raw: timer}
	if timer >= 2048 {
		return info
	}
	info.FreqHz = freq(131072.0 / float64(2048-timer))
	return info
}

func (t *GameBoyDMGTracker) refreshWave(triggered bool) []StateEvent {
	nr30, _ := t.regs.load(gbNR30)
	dac := nr30&0x80 != 0
	tone := t.pulseTone(gbNR33, gbNR34)

	const ch = 2
	var events []StateEvent
	wasOn := t.ch[ch].Key == KeyOn
	switch {
	case triggered && dac:
		t.ch[ch] = ChannelState{Key: KeyOn, Tone: tone}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch, Tone: tone})
	case triggered && !dac && wasOn:
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	case !dac && wasOn:
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	case dac && wasOn && tone.Raw != t.ch[ch].Tone.Raw:
		t.ch[ch].Tone = tone
		events = append(events, StateEvent{Kind: EventToneChange, Channel: ch, Tone: tone})
	}
	return events
}

func (t *GameBoyDMGTracker) refreshNoise(triggered bool) []StateEvent {
	const ch = 3
	dac := t.dacEnabled(gbNR42)
	wasOn := t.ch[ch].Key == KeyOn
	var events []StateEvent
	switch {
	case triggered && dac:
		t.ch[ch] = ChannelState{Key: KeyOn}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch})
	case triggered && !dac && wasOn:
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	}
	return events
}
