package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const maxGoroutines = 10

var (
	listFlag    = flag.String("l", "", "The path to a list of midi files,\nfind . -type f -name \"*.mid\" > midi_list.txt")
	maxFlag     = flag.Int("p", maxGoroutines, "Number of files processed in parallel, must be > 0")
	verboseFlag = flag.Bool("v", false, "Verbose decode logging")
)

func readList(file *os.File) <-chan string {
	out := make(chan string)

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)

	go func() {
		for scanner.Scan() {
			out <- scanner.Text()
		}
		close(out)
	}()

	return out
}

func fromArgs(args []string) <-chan string {
	out := make(chan string)

	go func() {
		for _, arg := range args {
			out <- arg
		}
		close(out)
	}()

	return out
}

func scanWorker(ctx context.Context, paths <-chan string, cntRoutines int) (<-chan *fileStats, <-chan struct{}) {
	out := make(chan *fileStats)
	done := make(chan struct{}, 1)

	go func() {
		var wg sync.WaitGroup
		goroutines := make(chan struct{}, cntRoutines)

	loop:
		for path := range paths {
			select {
			case goroutines <- struct{}{}:
			case <-ctx.Done():
				scanLog.Debug("scanWorker context done")
				break loop
			}
			wg.Add(1)
			go func(path string) {
				defer wg.Done()

				select {
				case out <- scanFile(path):
				case <-ctx.Done():
					scanLog.Debug("scanFile context done", zap.String("path", path))
				}
				<-goroutines
			}(path)
		}

		wg.Wait()
		close(goroutines)
		close(out)

		done <- struct{}{}
		close(done)
	}()

	return out, done
}

func printStats(st *fileStats) {
	fmt.Printf("%s:\n", st.name)
	fmt.Printf("  tracks: %d valid of %d declared, division: %d ticks/quarter\n",
		st.validTracks, st.declaredTracks, st.division)
	fmt.Printf("  notes: %d, tempo changes: %d, duration: %s\n",
		st.notes, st.tempoChanges, st.duration.Round(10*time.Millisecond))
	fmt.Printf("  notes per beat: 1/4: %d, 2/4: %d, 3/4: %d, 4/4: %d\n",
		st.beats[0], st.beats[1], st.beats[2], st.beats[3])
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [midi files...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *maxFlag <= 0 {
		flag.Usage()
		return
	}

	if *verboseFlag {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
		defer l.Sync()
		enableDebugLogging(l)
	}

	var paths <-chan string
	switch {
	case *listFlag != "":
		f, err := os.Open(*listFlag)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		paths = readList(f)
	case flag.NArg() > 0:
		paths = fromArgs(flag.Args())
	default:
		flag.Usage()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	results, done := scanWorker(ctx, paths, *maxFlag)

	failures := 0
	for st := range results {
		if st.err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "%s: %v\n", st.name, st.err)
			continue
		}
		printStats(st)
	}

	cancel()
	<-done // wait scanWorker closed

	if failures > 0 {
		os.Exit(1)
	}
}
