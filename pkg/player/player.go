// Package player schedules the event streams of a parsed Standard MIDI File
// in real time. Note events are delivered through callbacks invoked on the
// scheduling goroutine in event order; timing drift against the wall clock is
// measured every iteration and bounded so that playback self-heals after a
// stall instead of replaying a backlog faster than real time.
package player

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/ar065/midiplayer/pkg/smf"
)

// NoteOnFunc is called for every note-on event with a non-zero velocity.
type NoteOnFunc func(channel, note, velocity uint8)

// NoteOffFunc is called for note-off events, including note-on events with
// velocity zero.
type NoteOffFunc func(channel, note uint8)

// NotesPerSecondFunc receives the decoded note-on rate once per second on the
// sampler goroutine.
type NotesPerSecondFunc func(count uint64)

// maxDrift bounds the scheduling backlog carried between iterations, in
// 100-nanosecond units (10ms). A longer stall is forgotten rather than
// replayed as a catch-up burst.
const maxDrift = 100000

// Player plays Standard MIDI Files. A Player holds no per-run state;
// concurrent Play calls on the same Player are independent sessions.
type Player struct {
	log *zap.Logger
	nps NotesPerSecondFunc
	clk clock
}

// Option configures a Player.
type Option func(*Player)

// WithLogger routes decode anomalies and scheduling events to log.
func WithLogger(log *zap.Logger) Option {
	return func(p *Player) {
		p.log = log
	}
}

// WithNotesPerSecond enables the once-per-second event-rate report.
func WithNotesPerSecond(fn NotesPerSecondFunc) Option {
	return func(p *Player) {
		p.nps = fn
	}
}

// New returns a Player. Without options it plays silently into its callbacks
// and logs nothing.
func New(opts ...Option) *Player {
	p := &Player{
		log: zap.NewNop(),
		clk: realClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play parses the named file and blocks until every track has been played to
// its end, ctx is cancelled, or the file fails to load. A load failure leaves
// nothing running and invokes no callbacks.
func (p *Player) Play(ctx context.Context, name string, onNoteOn NoteOnFunc, onNoteOff NoteOffFunc) error {
	f, err := smf.ReadFile(name, smf.WithLogger(p.log))
	if err != nil {
		return err
	}
	return p.PlayFile(ctx, f, onNoteOn, onNoteOff)
}

// PlayFile plays an already-parsed file. The file's track cursors are
// consumed: every body buffer is released by the time PlayFile returns,
// whether playback completed or was cancelled.
func (p *Player) PlayFile(ctx context.Context, f *smf.File, onNoteOn NoteOnFunc, onNoteOff NoteOffFunc) error {
	s := &session{
		log:       p.log,
		clk:       p.clk,
		tracks:    f.Tracks,
		tempo:     newTempoState(f.Division),
		sampler:   newSampler(p.nps),
		onNoteOn:  onNoteOn,
		onNoteOff: onNoteOff,
	}
	return s.play(ctx)
}

// Play parses and plays the named file with a default Player, blocking until
// playback completes or the file fails to load.
func Play(name string, onNoteOn NoteOnFunc, onNoteOff NoteOffFunc, opts ...Option) error {
	return New(opts...).Play(context.Background(), name, onNoteOn, onNoteOff)
}

// session is the state of one playback run. It lives entirely on the
// scheduling goroutine; only the sampler counter is shared.
type session struct {
	log     *zap.Logger
	clk     clock
	tracks  []*smf.Track
	tempo   *tempoState
	sampler *sampler

	onNoteOn  NoteOnFunc
	onNoteOff NoteOffFunc

	tick      uint64
	drift     int64
	scheduled int64
	lastTime  int64
}

func (s *session) play(ctx context.Context) error {
	s.sampler.start()
	defer s.sampler.stop()
	defer s.releaseTracks()

	s.lastTime = s.clk.now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Process every track whose next event is due at the current tick.
		// Simultaneous events across tracks fire in the same pass, in track
		// index order.
		active := false
		minDelta := uint64(math.MaxUint64)
		for _, tr := range s.tracks {
			if !tr.Active() {
				continue
			}
			for tr.Active() && tr.Tick() <= s.tick {
				if !tr.ReadEvent() {
					break
				}
				s.dispatch(tr)
			}
			if tr.Active() {
				active = true
				if d := tr.Tick() - s.tick; d < minDelta {
					minDelta = d
				}
			}
		}

		if !active {
			return nil
		}

		s.tick += minDelta
		s.wait(minDelta)
	}
}

func (s *session) dispatch(tr *smf.Track) {
	status := tr.Status()

	switch {
	case status&0xF0 == smf.StatusNoteOn:
		s.sampler.count.Add(1)
		if velocity := tr.Data1(); velocity > 0 {
			if s.onNoteOn != nil {
				s.onNoteOn(status&0x0F, tr.Data0(), velocity)
			}
		} else if s.onNoteOff != nil {
			// Velocity zero is the conventional note-off encoding.
			s.onNoteOff(status&0x0F, tr.Data0())
		}

	case status&0xF0 == smf.StatusNoteOff:
		if s.onNoteOff != nil {
			s.onNoteOff(status&0x0F, tr.Data0())
		}

	case status == smf.StatusMeta:
		s.handleMeta(tr)

	case status == smf.StatusSysEx, status == smf.StatusSysExEnd:
		s.log.Debug("sysex message skipped", zap.Int("length", len(tr.LongData())))
	}
}

// handleMeta interprets the two meta-events the scheduler cares about. All
// other meta-types were already consumed by the decoder and are ignored.
func (s *session) handleMeta(tr *smf.Track) {
	switch tr.Data0() {
	case smf.MetaTempo:
		payload := tr.LongData()
		if len(payload) < 3 {
			s.log.Debug("malformed tempo event", zap.Int("length", len(payload)))
			return
		}
		tempo := uint64(payload[0])<<16 | uint64(payload[1])<<8 | uint64(payload[2])
		s.tempo.set(tempo)

	case smf.MetaEndOfTrack:
		tr.Retire()
	}
}

// wait converts the tick delta to 100ns units at the current tempo and sleeps
// for that long, less any accumulated backlog. The backlog is the signed
// difference between scheduled and actually elapsed time, measured each
// iteration; when it swallows the whole sleep it is clamped to maxDrift so a
// long stall does not trigger a runaway catch-up.
func (s *session) wait(deltaTick uint64) {
	now := s.clk.now()
	elapsed := now - s.lastTime
	s.lastTime = now

	s.drift += elapsed - s.scheduled
	s.scheduled = int64(float64(deltaTick) * s.tempo.multiplier)

	residual := s.scheduled
	if s.drift > 0 {
		residual -= s.drift
	}

	if residual <= 0 {
		if s.drift > maxDrift {
			s.drift = maxDrift
		}
		return
	}

	s.clk.sleep(residual)
}

func (s *session) releaseTracks() {
	for _, tr := range s.tracks {
		tr.Retire()
	}
}
