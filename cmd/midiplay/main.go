package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ar065/midiplayer/pkg/eventqueue"
	"github.com/ar065/midiplayer/pkg/player"
)

var (
	verboseFlag = flag.Bool("v", false, "Log every decoded note event")
	rateFlag    = flag.Bool("rate", true, "Print the decoded notes per second")
	queueFlag   = flag.Int("queue", 1<<16, "Capacity of the note event queue")
)

// consumer drains the event queue on its own goroutine, standing in for the
// renderer. The playback goroutine only ever pushes; when the queue is full
// the event is counted as dropped instead of stalling the scheduler.
type consumer struct {
	queue *eventqueue.Queue
	done  chan struct{}

	notesOn  uint64
	notesOff uint64
}

func (c *consumer) run(playDone <-chan struct{}) {
	defer close(c.done)

	for {
		ev, ok := c.queue.Pop()
		if !ok {
			select {
			case <-playDone:
				c.drain()
				return
			case <-time.After(time.Millisecond):
				continue
			}
		}
		c.consume(ev)
	}
}

func (c *consumer) drain() {
	for {
		ev, ok := c.queue.Pop()
		if !ok {
			return
		}
		c.consume(ev)
	}
}

func (c *consumer) consume(ev eventqueue.Event) {
	if ev.NoteOn {
		c.notesOn++
	} else {
		c.notesOff++
	}
	playerLog.Debug("note",
		zap.Bool("on", ev.NoteOn),
		zap.Uint8("channel", ev.Channel),
		zap.Uint8("note", ev.Note),
		zap.Uint8("velocity", ev.Velocity),
		zap.Duration("at", ev.Timestamp))
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <midi_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *verboseFlag {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
		defer l.Sync()
		enableDebugLogging(l)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := eventqueue.New(*queueFlag)
	start := time.Now()

	var dropped uint64
	onNoteOn := func(channel, note, velocity uint8) {
		ok := queue.Push(eventqueue.Event{
			Channel:   channel,
			Note:      note,
			Velocity:  velocity,
			NoteOn:    true,
			Timestamp: time.Since(start),
		})
		if !ok {
			dropped++
		}
	}
	onNoteOff := func(channel, note uint8) {
		ok := queue.Push(eventqueue.Event{
			Channel:   channel,
			Note:      note,
			Timestamp: time.Since(start),
		})
		if !ok {
			dropped++
		}
	}

	opts := []player.Option{player.WithLogger(playerLog)}
	if *rateFlag {
		opts = append(opts, player.WithNotesPerSecond(func(count uint64) {
			fmt.Printf("Notes per second: %d\n", count)
		}))
	}

	c := &consumer{queue: queue, done: make(chan struct{})}
	playDone := make(chan struct{})
	go c.run(playDone)

	err := player.New(opts...).Play(ctx, flag.Arg(0), onNoteOn, onNoteOff)
	close(playDone)
	<-c.done

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}

	fmt.Printf("played %d note-on / %d note-off events in %s (%d dropped)\n",
		c.notesOn, c.notesOff, time.Since(start).Round(time.Millisecond), dropped)
}
