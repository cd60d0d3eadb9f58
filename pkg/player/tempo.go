package player

import "github.com/ar065/midiplayer/pkg/smf"

// tempoState holds the tempo shared by every track of a session: microseconds
// per quarter note, and the derived multiplier converting one tick to
// 100-nanosecond units. The multiplier never drops below 1 so a degenerate
// tempo value cannot stall playback.
type tempoState struct {
	tempo      uint64
	division   uint16
	multiplier float64
}

func newTempoState(division uint16) *tempoState {
	if division == 0 {
		division = 1
	}
	ts := &tempoState{tempo: smf.DefaultTempo, division: division}
	ts.recompute()
	return ts
}

func (ts *tempoState) set(tempo uint64) {
	ts.tempo = tempo
	ts.recompute()
}

func (ts *tempoState) recompute() {
	m := float64(ts.tempo*10) / float64(ts.division)
	if m < 1 {
		m = 1
	}
	ts.multiplier = m
}
