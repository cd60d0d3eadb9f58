package smf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}

	// ErrFmtNotSupported is a generic error reporting an unknown format.
	ErrFmtNotSupported = errors.New("format not supported")
	// ErrUnexpectedData is a generic error reporting that the parser encountered unexpected data.
	ErrUnexpectedData = errors.New("unexpected data content")
)

// File is a parsed Standard MIDI File: the header fields plus one cursor per
// accepted MTrk chunk. Foreign chunks are skipped, so len(Tracks) may be
// lower than DeclaredTracks.
type File struct {
	Format         uint16
	Division       uint16
	DeclaredTracks uint16
	Tracks         []*Track
}

// Option configures the parser.
type Option func(*config)

type config struct {
	log *zap.Logger
}

// WithLogger makes the parser report skipped chunks and truncated files.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// ReadFile parses the named Standard MIDI File.
func ReadFile(name string, opts ...Option) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, opts...)
}

// Read parses a Standard MIDI File from r. The header must declare a
// metrical time division; SMPTE division values are rejected.
func Read(r io.Reader, opts ...Option) (*File, error) {
	cfg := config{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	var code [4]byte
	if err := binary.Read(r, binary.BigEndian, &code); err != nil {
		return nil, err
	}
	if code != headerChunkID {
		return nil, fmt.Errorf("%w - %v", ErrFmtNotSupported, code)
	}

	var headerSize uint32
	if err := binary.Read(r, binary.BigEndian, &headerSize); err != nil {
		return nil, err
	}
	if headerSize != 6 {
		return nil, fmt.Errorf("%w - expected header size to be 6, was %d", ErrFmtNotSupported, headerSize)
	}

	f := new(File)
	for _, field := range []*uint16{&f.Format, &f.DeclaredTracks, &f.Division} {
		if err := binary.Read(r, binary.BigEndian, field); err != nil {
			return nil, err
		}
	}

	if f.Division&0x8000 != 0 {
		return nil, fmt.Errorf("%w - SMPTE time division 0x%04X", ErrFmtNotSupported, f.Division)
	}

	for i := uint16(0); i < f.DeclaredTracks; i++ {
		var id [4]byte
		if err := binary.Read(r, binary.BigEndian, &id); err != nil {
			// Fewer chunks than the header declared.
			cfg.log.Debug("file ends before declared track count",
				zap.Uint16("declared", f.DeclaredTracks),
				zap.Int("read", len(f.Tracks)))
			break
		}

		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, fmt.Errorf("%w - truncated chunk header", ErrUnexpectedData)
		}

		if id != trackChunkID {
			// Not a track. Skip the declared body length so the next chunk
			// header is read from the right position.
			cfg.log.Debug("skipping foreign chunk",
				zap.ByteString("id", id[:]),
				zap.Uint32("length", length))
			if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
				break
			}
			continue
		}

		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("%w - truncated track body", ErrUnexpectedData)
		}

		f.Tracks = append(f.Tracks, NewTrack(body))
	}

	return f, nil
}

// Duration estimates the playing time of the file by replaying every event of
// every track on fresh cursors, applying tempo changes as they occur. The
// file's own cursors are not consumed.
func (f *File) Duration() time.Duration {
	if f.Division == 0 {
		return 0
	}

	type tempoChange struct {
		tick  uint64
		tempo uint32 // microseconds per quarter note
	}

	var changes []tempoChange
	var endTick uint64

	for _, src := range f.Tracks {
		tr := src.Clone()
		for tr.Active() {
			tick := tr.Tick()
			if !tr.ReadEvent() {
				break
			}
			if tr.Status() == StatusMeta {
				switch tr.Data0() {
				case MetaTempo:
					if p := tr.LongData(); len(p) == 3 {
						tempo := uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
						changes = append(changes, tempoChange{tick: tick, tempo: tempo})
					}
				case MetaEndOfTrack:
					tr.Retire()
				}
			}
			if tick > endTick {
				endTick = tick
			}
		}
	}

	// Tracks interleave; order the tempo map globally.
	for i := 1; i < len(changes); i++ {
		for j := i; j > 0 && changes[j-1].tick > changes[j].tick; j-- {
			changes[j-1], changes[j] = changes[j], changes[j-1]
		}
	}

	var micros uint64
	tempo := uint32(DefaultTempo)
	var prevTick uint64
	for _, c := range changes {
		if c.tick > endTick {
			break
		}
		micros += (c.tick - prevTick) * uint64(tempo) / uint64(f.Division)
		prevTick = c.tick
		tempo = c.tempo
	}
	micros += (endTick - prevTick) * uint64(tempo) / uint64(f.Division)

	return time.Duration(micros) * time.Microsecond
}
