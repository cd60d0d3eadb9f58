// smfgen writes small deterministic MIDI files for trying out the player
// without hunting for real ones: a two-voice scale with a tempo track,
// optionally with a mid-file tempo change.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var (
	outFlag   = flag.String("o", "demo.mid", "Output midi file")
	bpmFlag   = flag.Float64("bpm", 120, "Tempo in beats per minute")
	ticksFlag = flag.Int("ticks", 480, "Ticks per quarter note")
	barsFlag  = flag.Int("bars", 8, "Number of bars to generate")
	rushFlag  = flag.Bool("rush", false, "Double the tempo halfway through")
)

var scale = []uint8{60, 62, 64, 65, 67, 69, 71, 72}

func tempoTrack(quarter uint32) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(*bpmFlag))
	if *rushFlag {
		half := uint32(*barsFlag/2) * 4 * quarter
		tr.Add(half, smf.MetaTempo(*bpmFlag*2))
	}
	tr.Close(0)
	return tr
}

// voiceTrack walks the scale up and down in eighth notes. interval shifts the
// whole voice, so two tracks a third apart exercise simultaneous events on
// separate channels.
func voiceTrack(channel uint8, interval uint8, quarter uint32) smf.Track {
	var tr smf.Track

	eighth := quarter / 2
	var delta uint32
	for bar := 0; bar < *barsFlag; bar++ {
		for i := 0; i < len(scale); i++ {
			step := i
			if bar%2 == 1 {
				step = len(scale) - 1 - i
			}
			key := scale[step] + interval
			tr.Add(delta, midi.NoteOn(channel, key, 100))
			tr.Add(eighth, midi.NoteOff(channel, key))
			delta = 0
		}
	}

	tr.Close(0)
	return tr
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s \n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	quarter := uint32(*ticksFlag)

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(*ticksFlag)

	tracks := []smf.Track{
		tempoTrack(quarter),
		voiceTrack(0, 0, quarter),
		voiceTrack(1, 4, quarter),
	}
	for _, tr := range tracks {
		if err := sm.Add(tr); err != nil {
			log.Fatal(err)
		}
	}

	if err := sm.WriteFile(*outFlag); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("wrote %s: %d tracks, %d bars at %g BPM\n", *outFlag, len(tracks), *barsFlag, *bpmFlag)
}
