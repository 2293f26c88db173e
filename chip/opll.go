package chip

// OPLLTracker reconstructs channel state for the YM2413's nine melody
// channels. (Its optional rhythm mode repurposes channels 6-8 as drum
// voices with fixed patches; this tracker treats all nine uniformly as
// melody channels, since the log commands carry no extra information
// to distinguish the modes beyond the registers modeled here.)
type OPLLTracker struct {
	clockHz uint32
	regs    *sparseStorage
	ch      [9]ChannelState
}

func NewOPLLTracker(clockHz uint32) *OPLLTracker {
	return &OPLLTracker{clockHz: clockHz, regs: newSparseStorage()}
}

func (t *OPLLTracker) ChannelCount() int { return 9 }

func (t *OPLLTracker) Reset() {
	t.regs.clear()
	t.ch = [9]ChannelState{}
}

func (t *OPLLTracker) ReadRegister(register uint16) (uint16, bool) {
	return t.regs.load(register)
}

func (t *OPLLTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	t.regs.store(register, value)
	addr := uint8(register)
	switch {
	case addr >= 0x10 && addr <= 0x18:
		return t.refresh(int(addr - 0x10))
	case addr >= 0x20 && addr <= 0x28:
		return t.refresh(int(addr - 0x20))
	}
	return nil
}

func (t *OPLLTracker) refresh(ch int) []StateEvent {
	if ch >= 9 {
		return nil
	}
	ctrl, _ := t.regs.load(uint16(0x20 + ch))
	keyOn := ctrl&0x10 != 0
	tone := t.computeTone(ch, uint8(ctrl))

	var events []StateEvent
	wasOn := t.ch[ch].Key == KeyOn
	if keyOn && !wasOn {
		t.ch[ch] = ChannelState{Key: KeyOn, Tone: tone}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch, Tone: tone})
	} else if !keyOn && wasOn {
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	} else if keyOn && wasOn && tone.Raw != t.ch[ch].Tone.Raw {
		t.ch[ch].Tone = tone
		events = append(events, StateEvent{Kind: EventToneChange, Channel: ch, Tone: tone})
	}
	return events
}

func (t *OPLLTracker) computeTone(ch int, ctrl uint8) ToneInfo {
	lo, _ := t.regs.load(uint16(0x10 + ch))
	fnum := (uint16(ctrl&0x01) << 8) | lo
	block := (ctrl >> 1) & 0x07

	info := ToneInfo{Raw: fnum, Block: block}
	if fnum == 0 || t.clockHz == 0 {
		return info
	}
	divisor := 144.0 * float64(uint32(1)<<(19-block))
	info.FreqHz = freq(float64(fnum) * float64(t.clockHz) / divisor)
	return info
}
