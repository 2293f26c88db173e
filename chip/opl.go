package chip

// OPLConfig parametrizes OPLTracker for the specific member of the
// Yamaha OPL family being tracked.
type OPLConfig struct {
	Ports    int  // 1 for YM3526/YM3812/Y8950, 2 for YMF262 (OPL3)
	Support4Op bool // YMF262 only: channels 0-2 of each port can pair into 4-op voices
}

func DefaultOPLConfig(ports int, support4Op bool) OPLConfig {
	return OPLConfig{Ports: ports, Support4Op: support4Op}
}

const oplChannelsPerPort = 9

// OPLTracker reconstructs channel state for the OPL family (YM3526,
// YM3812, Y8950, YMF262/OPL3). Callers pack the register address as
// uint16(port)<<8 | addr.
type OPLTracker struct {
	cfg     OPLConfig
	clockHz uint32
	regs    *sparseStorage
	ch      []ChannelState
}

func NewOPLTracker(clockHz uint32, cfg OPLConfig) *OPLTracker {
	return &OPLTracker{
		cfg:     cfg,
		clockHz: clockHz,
		regs:    newSparseStorage(),
		ch:      make([]ChannelState, cfg.Ports*oplChannelsPerPort),
	}
}

func (t *OPLTracker) ChannelCount() int { return len(t.ch) }

func (t *OPLTracker) Reset() {
	t.regs.clear()
	t.ch = make([]ChannelState, len(t.ch))
}

func (t *OPLTracker) ReadRegister(register uint16) (uint16, bool) {
	return t.regs.load(register)
}

func (t *OPLTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	t.regs.store(register, value)
	port := int(register >> 8)
	addr := uint8(register)

	switch {
	case addr >= 0xA0 && addr <= 0xA8:
		slot := int(addr - 0xA0)
		return t.refresh(port*oplChannelsPerPort+slot, false)
	case addr >= 0xB0 && addr <= 0xB8:
		slot := int(addr - 0xB0)
		return t.refresh(port*oplChannelsPerPort+slot, true)
	}
	return nil
}

func (t *OPLTracker) refresh(ch int, fromKeyReg bool) []StateEvent {
	if ch >= len(t.ch) {
		return nil
	}
	port := ch / oplChannelsPerPort
	slot := ch % oplChannelsPerPort
	keyReg, _ := t.regs.load(uint16(port)<<8 | uint16(0xB0+slot))
	keyOn := keyReg&0x20 != 0
	tone := t.computeTone(port, slot, uint8(keyReg))

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
	_ = fromKeyReg
	return events
}

func (t *OPLTracker) computeTone(port, slot int, keyReg uint8) ToneInfo {
	lo, _ := t.regs.load(uint16(port)<<8 | uint16(0xA0+slot))
	fnum := (uint16(keyReg&0x03) << 8) | lo
	block := (keyReg >> 2) & 0x07

	info := ToneInfo{Raw: fnum, Block: block}
	if fnum == 0 || t.clockHz == 0 {
		return info
	}
	divisor := 72.0 * float64(uint32(1)<<(20-block))
	if t.cfg.Support4Op && slot < 3 {
		divisor /= 2
	}
	info.FreqHz = freq(float64(fnum) * float64(t.clockHz) / divisor)
	return info
}
