package chip

// OPNConfig parametrizes OPNTracker for the specific member of the
// Yamaha OPN family it is tracking: YM2203 has a single port of three
// FM channels, YM2608/YM2610/YM2612 add a second port for three more.
type OPNConfig struct {
	Ports           int
	ChannelsPerPort int
	Prescaler       float64
}

func DefaultOPNConfig(ports int) OPNConfig {
	return OPNConfig{Ports: ports, ChannelsPerPort: 3, Prescaler: 6}
}

// OPNTracker reconstructs channel state for the OPN family (YM2203,
// YM2608, YM2610/YM2610B, YM2612). Callers pack the register address
// written to as uint16(port)<<8 | addr, matching the two on-wire
// ports the format's command opcodes address directly.
type OPNTracker struct {
	cfg     OPNConfig
	clockHz uint32
	regs    *sparseStorage
	ch      []ChannelState
}

func NewOPNTracker(clockHz uint32, cfg OPNConfig) *OPNTracker {
	return &OPNTracker{
		cfg:     cfg,
		clockHz: clockHz,
		regs:    newSparseStorage(),
		ch:      make([]ChannelState, cfg.Ports*cfg.ChannelsPerPort),
	}
}

func (t *OPNTracker) ChannelCount() int { return len(t.ch) }

func (t *OPNTracker) Reset() {
	t.regs.clear()
	t.ch = make([]ChannelState, len(t.ch))
}

func (t *OPNTracker) ReadRegister(register uint16) (uint16, bool) {
	return t.regs.load(register)
}

func (t *OPNTracker) OnRegisterWrite(register uint16, value uint16) []StateEvent {
	t.regs.store(register, value)
	port := uint8(register >> 8)
	addr := uint8(register)

	switch {
	case addr == 0x28:
		return t.onKeyOn(uint8(value))
	case addr >= 0xA0 && addr <= 0xA2:
		slot := int(addr - 0xA0)
		return t.refresh(int(port)*t.cfg.ChannelsPerPort + slot)
	case addr >= 0xA4 && addr <= 0xA6:
		slot := int(addr - 0xA4)
		return t.refresh(int(port)*t.cfg.ChannelsPerPort + slot)
	}
	return nil
}

func (t *OPNTracker) onKeyOn(value uint8) []StateEvent {
	slot := int(value & 0x03)
	if slot >= t.cfg.ChannelsPerPort {
		return nil
	}
	part := int((value >> 2) & 0x01)
	ch := part*t.cfg.ChannelsPerPort + slot
	if ch >= len(t.ch) {
		return nil
	}
	opBits := (value >> 4) & 0x0F
	keyOn := opBits != 0

	var events []StateEvent
	wasOn := t.ch[ch].Key == KeyOn
	if keyOn && !wasOn {
		tone := t.computeTone(part, slot)
		t.ch[ch] = ChannelState{Key: KeyOn, Tone: tone}
		events = append(events, StateEvent{Kind: EventKeyOn, Channel: ch, Tone: tone})
	} else if !keyOn && wasOn {
		t.ch[ch].Key = KeyOff
		events = append(events, StateEvent{Kind: EventKeyOff, Channel: ch})
	}
	return events
}

func (t *OPNTracker) refresh(ch int) []StateEvent {
	if ch >= len(t.ch) || t.ch[ch].Key != KeyOn {
		return nil
	}
	part := ch / t.cfg.ChannelsPerPort
	slot := ch % t.cfg.ChannelsPerPort
	tone := t.computeTone(part, slot)
	if tone.Raw == t.ch[ch].Tone.Raw && tone.Block == t.ch[ch].Tone.Block {
		return nil
	}
	t.ch[ch].Tone = tone
	return []StateEvent{{Kind: EventToneChange, Channel: ch, Tone: tone}}
}

func (t *OPNTracker) computeTone(port, slot int) ToneInfo {
	loReg := uint16(port)<<8 | uint16(0xA0+slot)
	hiReg := uint16(port)<<8 | uint16(0xA4+slot)
	lo, _ := t.regs.load(loReg)
	hi, _ := t.regs.load(hiReg)

	fnum := (hi&0x07)<<8 | lo
	block := uint8((hi >> 3) & 0x07)
	info := ToneInfo{Raw: fnum, Block: block}
	if fnum == 0 || t.clockHz == 0 {
		return info
	}
	divisor := t.cfg.Prescaler * float64(uint32(1)<<(20-block))
	info.FreqHz = freq(float64(fnum) * float64(t.clockHz) / divisor)
	return info
}
