package main

import (
	"time"

	"github.com/ar065/midiplayer/pkg/smf"
)

type fileStats struct {
	name string
	err  error

	declaredTracks int
	validTracks    int
	division       uint16
	notes          uint64
	tempoChanges   int
	duration       time.Duration

	// note-on counts by quarter-note position within the bar (1/4 .. 4/4)
	beats [4]uint64
}

func scanFile(name string) *fileStats {
	st := &fileStats{name: name}

	f, err := smf.ReadFile(name, smf.WithLogger(scanLog))
	if err != nil {
		st.err = err
		return st
	}

	st.declaredTracks = int(f.DeclaredTracks)
	st.validTracks = len(f.Tracks)
	st.division = f.Division
	st.duration = f.Duration()

	for _, src := range f.Tracks {
		tr := src.Clone()
		for tr.Active() {
			tick := tr.Tick()
			if !tr.ReadEvent() {
				break
			}

			switch {
			case tr.Status()&0xF0 == smf.StatusNoteOn && tr.Data1() > 0:
				st.notes++
				st.beats[quarterPosition(tick, uint64(f.Division))]++

			case tr.Status() == smf.StatusMeta:
				switch tr.Data0() {
				case smf.MetaTempo:
					st.tempoChanges++
				case smf.MetaEndOfTrack:
					tr.Retire()
				}
			}
		}
	}

	return st
}

type tickRange struct {
	cnt int

	lowerBound uint64
	upperBound uint64
}

func newTickRange(lowerBound uint64, upperBound uint64) *tickRange {
	return &tickRange{
		lowerBound: lowerBound,
		upperBound: upperBound,
	}
}

func (r *tickRange) stepBy(n int) {
	r.cnt += n
	step := r.upperBound - r.lowerBound

	r.upperBound += step * uint64(n)
	r.lowerBound += step * uint64(n)
}

func (r *tickRange) contains(tick uint64) bool {
	return tick >= r.lowerBound && tick < r.upperBound
}

func (r *tickRange) position() int {
	return r.cnt % 4
}

// quarterPosition returns which quarter of a 4/4 bar the tick falls into.
func quarterPosition(absTick uint64, ticksPerQuarter uint64) int {
	if ticksPerQuarter == 0 {
		return 0
	}

	r := newTickRange(0, ticksPerQuarter)
	for !r.contains(absTick) {
		if absTick > ticksPerQuarter {
			r.stepBy(int(absTick / ticksPerQuarter))
		} else {
			r.stepBy(1)
		}
	}

	return r.position()
}
