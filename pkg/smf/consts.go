package smf

// Channel message status bytes (high nibble; low nibble is the channel).
const (
	StatusNoteOff         = 0x80
	StatusNoteOn          = 0x90
	StatusPolyPressure    = 0xA0
	StatusController      = 0xB0
	StatusProgramChange   = 0xC0
	StatusChannelPressure = 0xD0
	StatusPitchBend       = 0xE0

	StatusSysEx    = 0xF0
	StatusSysExEnd = 0xF7
	StatusMeta     = 0xFF
)

// Meta-event types (the byte following a 0xFF status).
const (
	MetaSequenceNumber = 0x00
	MetaText           = 0x01
	MetaCopyright      = 0x02
	MetaTrackName      = 0x03
	MetaInstrument     = 0x04
	MetaLyric          = 0x05
	MetaMarker         = 0x06
	MetaCuePoint       = 0x07
	MetaEndOfTrack     = 0x2F
	MetaTempo          = 0x51
	MetaSMPTEOffset    = 0x54
	MetaTimeSignature  = 0x58
	MetaKeySignature   = 0x59
)

// DefaultTempo is the tempo assumed until a Set Tempo meta-event is seen,
// in microseconds per quarter note (120 BPM).
const DefaultTempo = 500000
