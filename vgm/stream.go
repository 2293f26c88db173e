package vgm

import "github.com/intuitionamiga/soundlog/chip"

// WriteEvent is delivered to a registered callback for every chip
// write the stream replays: the write itself, the sample count it
// occurred at, and any state events a registered tracker derived from
// it.
type WriteEvent struct {
	Chip     ChipKind
	Instance Instance
	Command  Command
	Sample   uint64
	Events   []chip.StateEvent
}

// WriteCallback receives one WriteEvent per matching command as
// CallbackStream.Run replays the document.
type WriteCallback func(WriteEvent)

type trackerKey struct {
	chip     ChipKind
	instance Instance
}

// CallbackStream replays a Document's command stream in order,
// maintaining a running sample count and dispatching chip writes to
// whichever callbacks and state trackers the caller has registered.
// It never mutates the underlying Document.
type CallbackStream struct {
	doc       *Document
	callbacks map[ChipKind][]WriteCallback
	trackers  map[trackerKey]chip.Tracker
	sample    uint64
}

// NewCallbackStream prepares a stream over doc. Call OnWrite and
// TrackState to register interest before calling Run.
func NewCallbackStream(doc *Document) *CallbackStream {
	return &CallbackStream{
		doc:       doc,
		callbacks: make(map[ChipKind][]WriteCallback),
		trackers:  make(map[trackerKey]chip.Tracker),
	}
}

// OnWrite registers cb to be called for every write command targeting
// kind, regardless of instance.
func (s *CallbackStream) OnWrite(kind ChipKind, cb WriteCallback) {
	s.callbacks[kind] = append(s.callbacks[kind], cb)
}

// TrackState attaches a chip state tracker to a specific (kind,
// instance) pair. Writes to that pair are fed through t, and the
// resulting StateEvents are included in the WriteEvent delivered to
// any callback registered for kind.
func (s *CallbackStream) TrackState(kind ChipKind, instance Instance, t chip.Tracker) {
	s.trackers[trackerKey{kind, instance}] = t
}

// Tracker returns the tracker registered for (kind, instance), if any,
// so callers can inspect accumulated channel state after Run.
func (s *CallbackStream) Tracker(kind ChipKind, instance Instance) (chip.Tracker, bool) {
	t, ok := s.trackers[trackerKey{kind, instance}]
	return t, ok
}

// Run replays every command in the document in order. Wait commands
// advance the sample counter; chip write commands are dispatched to
// trackers and callbacks before the counter advances past them.
func (s *CallbackStream) Run() {
	for _, cmd := range s.doc.Commands {
		s.dispatch(cmd)
		s.sample += uint64(waitAmount(cmd))
	}
}

func waitAmount(cmd Command) int {
	switch c := cmd.(type) {
	case WaitSamples:
		return int(c.Samples)
	case WaitNTSC:
		return 735
	case WaitPAL:
		return 882
	case WaitShort:
		return int(c.N) + 1
	case DACStreamWrite:
		return int(c.N)
	}
	return 0
}

func (s *CallbackStream) dispatch(cmd Command) {
	kind, instance, register, value, ok := decomposeWrite(cmd)
	if !ok {
		return
	}

	var events []chip.StateEvent
	if t, ok := s.trackers[trackerKey{kind, instance}]; ok {
		events = t.OnRegisterWrite(register, value)
	}

	if len(s.callbacks[kind]) == 0 {
		return
	}
	we := WriteEvent{Chip: kind, Instance: instance, Command: cmd, Sample: s.sample, Events: events}
	for _, cb := range s.callbacks[kind] {
		cb(we)
	}
}

// decomposeWrite extracts the (chip, instance, register, value) tuple
// a chip.Tracker expects from any of the write-shaped commands. The
// packing convention (register = port<<8|addr for register/port
// writes, register = offset for offset writes, register = 0 for the
// PSG's stateful latch protocol) matches what each tracker in package
// chip expects to receive.
func decomposeWrite(cmd Command) (kind ChipKind, instance Instance, register uint16, value uint16, ok bool) {
	switch c := cmd.(type) {
	case RegisterWrite:
		return c.Chip, c.Instance, uint16(c.Port)<<8 | uint16(c.Register), uint16(c.Value), true
	case PortRegisterWrite:
		return c.Chip, c.Instance, uint16(c.Port)<<8 | uint16(c.Register), uint16(c.Value), true
	case OffsetWrite:
		return c.Chip, c.Instance, c.Offset, uint16(c.Value), true
	case PSGWrite:
		return ChipSN76489, c.Instance, 0, uint16(c.Value), true
	}
	return 0, 0, 0, 0, false
}
