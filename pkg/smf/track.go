package smf

// Track is a cursor over the undecoded body of one MTrk chunk. It owns the
// body bytes, its decode position, the cumulative tick counter and the running
// status of the MIDI stream. A separately growable scratch buffer holds the
// payload of the current meta or sysex message; it is reused across events and
// never shrunk.
//
// Once Retire is called the body buffer is released and the cursor is
// permanently inactive.
type Track struct {
	data []byte
	long []byte

	offset  int
	tick    uint64
	status  byte
	message uint32
	longLen int
}

const initialLongCapacity = 256

// NewTrack wraps body in a cursor and consumes the first delta-time so that
// Tick reports the time of the first event before any decoding happens.
func NewTrack(body []byte) *Track {
	t := &Track{
		data: body,
		long: make([]byte, initialLongCapacity),
	}
	t.readDelta()
	return t
}

// Active reports whether the cursor still owns its body buffer.
func (t *Track) Active() bool {
	return t.data != nil
}

// Tick returns the absolute tick of the next undelivered event.
func (t *Track) Tick() uint64 {
	return t.tick
}

// Message returns the last decoded event packed as
// status | data0<<8 | data1<<16.
func (t *Track) Message() uint32 {
	return t.message
}

// Status returns the status byte of the last decoded event, channel included.
func (t *Track) Status() byte {
	return byte(t.message)
}

// Data0 returns the first data byte of the last decoded event. For meta
// events it is the meta-type byte.
func (t *Track) Data0() byte {
	return byte(t.message >> 8)
}

// Data1 returns the second data byte of the last decoded event.
func (t *Track) Data1() byte {
	return byte(t.message >> 16)
}

// LongData returns the payload of the last decoded meta or sysex event. The
// slice aliases the scratch buffer and is only valid until the next ReadEvent.
func (t *Track) LongData() []byte {
	return t.long[:t.longLen]
}

// Clone returns an independent cursor positioned at the beginning of the same
// track body. The receiver's position is not affected by the clone.
func (t *Track) Clone() *Track {
	if t.data == nil {
		return &Track{}
	}
	return NewTrack(t.data)
}

// Retire releases the body buffer and permanently deactivates the cursor.
func (t *Track) Retire() {
	t.data = nil
}

func (t *Track) readDelta() {
	var delta uint32
	delta, t.offset = ReadVarint(t.data, t.offset)
	t.tick += uint64(delta)
}

func (t *Track) remaining() int {
	return len(t.data) - t.offset
}

// ReadEvent decodes the event at the cursor and consumes the delta-time of
// the event after it, so that Tick advances to the next event's time. The
// status byte is taken from the stream when its top bit is set, otherwise the
// previous running status is reused without consuming a byte.
//
// ReadEvent retires the cursor and reports false when the body is exhausted
// or too short for the event it announces.
func (t *Track) ReadEvent() bool {
	if !t.Active() || t.remaining() == 0 {
		t.Retire()
		return false
	}

	if b := t.data[t.offset]; b&0x80 != 0 {
		t.offset++
		t.status = b
	}
	t.message = uint32(t.status)
	t.longLen = 0

	switch {
	case t.status < StatusProgramChange, t.status >= StatusPitchBend && t.status < StatusSysEx:
		// note off/on, poly pressure, controller, pitch bend
		if t.remaining() < 2 {
			t.Retire()
			return false
		}
		t.message |= uint32(t.data[t.offset])<<8 | uint32(t.data[t.offset+1])<<16
		t.offset += 2

	case t.status < StatusPitchBend:
		// program change, channel pressure
		if t.remaining() < 1 {
			t.Retire()
			return false
		}
		t.message |= uint32(t.data[t.offset]) << 8
		t.offset++

	case t.status == StatusMeta, t.status == StatusSysEx, t.status == StatusSysExEnd:
		if t.status == StatusMeta {
			if t.remaining() < 1 {
				t.Retire()
				return false
			}
			t.message |= uint32(t.data[t.offset]) << 8
			t.offset++
		}

		var length uint32
		length, t.offset = ReadVarint(t.data, t.offset)
		if int(length) > t.remaining() {
			t.Retire()
			return false
		}
		t.longLen = int(length)
		if t.longLen > len(t.long) {
			t.long = make([]byte, t.longLen)
		}
		copy(t.long, t.data[t.offset:t.offset+t.longLen])
		t.offset += t.longLen

	default:
		// 0xF1..0xF6, 0xF8..0xFE have no place in a track body; drop the
		// rest of the track rather than desynchronize on it.
		t.Retire()
		return false
	}

	t.readDelta()
	return true
}
