package smf

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	gsmf "gitlab.com/gomidi/midi/v2/smf"
)

type chunk struct {
	id   string
	body []byte
}

func fileBytes(declared uint16, division uint16, chunks ...chunk) []byte {
	var buf bytes.Buffer

	buf.WriteString("MThd")
	binary.Write(&buf, binary.BigEndian, uint32(6))
	binary.Write(&buf, binary.BigEndian, uint16(1)) // format
	binary.Write(&buf, binary.BigEndian, declared)
	binary.Write(&buf, binary.BigEndian, division)

	for _, c := range chunks {
		buf.WriteString(c.id)
		binary.Write(&buf, binary.BigEndian, uint32(len(c.body)))
		buf.Write(c.body)
	}

	return buf.Bytes()
}

func TestReadSingleTrack(t *testing.T) {
	body := trackBody(delta(96), []byte{0x90, 60, 100}, delta(0), []byte{0xFF, MetaEndOfTrack, 0})
	data := fileBytes(1, 480, chunk{"MTrk", body})

	f, err := Read(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, uint16(1), f.Format)
	assert.Equal(t, uint16(480), f.Division)
	assert.Equal(t, uint16(1), f.DeclaredTracks)
	require.Len(t, f.Tracks, 1)

	// the first delta-time is consumed at load
	assert.Equal(t, uint64(96), f.Tracks[0].Tick())
}

func TestReadRejectsBadMagic(t *testing.T) {
	data := fileBytes(0, 480)
	copy(data, "RIFF")

	_, err := Read(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrFmtNotSupported)
}

func TestReadRejectsBadHeaderLength(t *testing.T) {
	data := fileBytes(0, 480)
	binary.BigEndian.PutUint32(data[4:8], 8)

	_, err := Read(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrFmtNotSupported)
}

func TestReadRejectsSMPTEDivision(t *testing.T) {
	data := fileBytes(0, 0xE250) // -30 frames/sec, 80 ticks per frame

	_, err := Read(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrFmtNotSupported)
}

func TestReadSkipsForeignChunks(t *testing.T) {
	first := trackBody(delta(0), []byte{0x90, 60, 100})
	second := trackBody(delta(7), []byte{0x91, 62, 80})
	data := fileBytes(3, 480,
		chunk{"MTrk", first},
		chunk{"XFhd", []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		chunk{"MTrk", second},
	)

	f, err := Read(bytes.NewReader(data))
	require.NoError(t, err)

	// the foreign chunk's body was skipped, so the track after it parses
	require.Len(t, f.Tracks, 2)
	assert.Equal(t, uint16(3), f.DeclaredTracks)
	assert.Equal(t, uint64(7), f.Tracks[1].Tick())
}

func TestReadFewerChunksThanDeclared(t *testing.T) {
	data := fileBytes(4, 480, chunk{"MTrk", trackBody(delta(0), []byte{0x90, 60, 100})})

	f, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, f.Tracks, 1)
	assert.Equal(t, uint16(4), f.DeclaredTracks)
}

func TestReadTruncatedTrackBody(t *testing.T) {
	data := fileBytes(1, 480, chunk{"MTrk", trackBody(delta(0), []byte{0x90, 60, 100})})
	data = data[:len(data)-2]

	_, err := Read(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrUnexpectedData)
}

func TestDuration(t *testing.T) {
	body := trackBody(
		delta(0), []byte{0xFF, MetaTempo, 3, 0x0F, 0x42, 0x40}, // one second per quarter note
		delta(480), []byte{0x90, 60, 100},
		delta(0), []byte{0xFF, MetaEndOfTrack, 0},
	)
	data := fileBytes(1, 480, chunk{"MTrk", body})

	f, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, time.Second, f.Duration())

	// the estimate walks clones, the file's own cursors stay unconsumed
	require.True(t, f.Tracks[0].Active())
	assert.Equal(t, uint64(0), f.Tracks[0].Tick())
}

func TestReadFileGeneratedFixture(t *testing.T) {
	name := filepath.Join(t.TempDir(), "fixture.mid")

	sm := gsmf.New()
	sm.TimeFormat = gsmf.MetricTicks(480)

	var tempo gsmf.Track
	tempo.Add(0, gsmf.MetaTempo(120))
	tempo.Close(0)
	require.NoError(t, sm.Add(tempo))

	var notes gsmf.Track
	notes.Add(0, midi.NoteOn(0, 60, 100))
	notes.Add(480, midi.NoteOff(0, 60))
	notes.Add(0, midi.NoteOn(0, 64, 90))
	notes.Add(480, midi.NoteOff(0, 64))
	notes.Close(0)
	require.NoError(t, sm.Add(notes))

	require.NoError(t, sm.WriteFile(name))

	f, err := ReadFile(name)
	require.NoError(t, err)

	assert.Equal(t, uint16(480), f.Division)
	require.Len(t, f.Tracks, 2)

	// two quarter notes at 120 BPM
	assert.Equal(t, time.Second, f.Duration())

	var got []byte
	tr := f.Tracks[1].Clone()
	for tr.Active() {
		if !tr.ReadEvent() {
			break
		}
		if tr.Status()&0xF0 == StatusNoteOn && tr.Data1() > 0 {
			got = append(got, tr.Data0())
		}
	}
	assert.Equal(t, []byte{60, 64}, got)
}
