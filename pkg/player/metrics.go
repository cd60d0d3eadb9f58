package player

import (
	"sync"
	"sync/atomic"
	"time"
)

// sampler reports the number of note-on events decoded since the previous
// report, once per second, on its own goroutine. The counter is atomic: the
// scheduler increments it while the sampler swaps it back to zero.
type sampler struct {
	count atomic.Uint64

	fn   NotesPerSecondFunc
	done chan struct{}
	wg   sync.WaitGroup
}

func newSampler(fn NotesPerSecondFunc) *sampler {
	return &sampler{fn: fn, done: make(chan struct{})}
}

func (s *sampler) start() {
	if s.fn == nil {
		return
	}
	s.wg.Add(1)
	go s.run()
}

func (s *sampler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.fn(s.count.Swap(0))
		case <-s.done:
			return
		}
	}
}

// stop terminates the sampler goroutine and waits for it to exit.
func (s *sampler) stop() {
	close(s.done)
	s.wg.Wait()
}
