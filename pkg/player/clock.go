package player

import "time"

// The scheduler accounts time in 100-nanosecond units, the resolution the
// tick→time multiplier is expressed in.
type clock interface {
	now() int64
	sleep(units int64)
}

type realClock struct{}

func (realClock) now() int64 {
	return time.Now().UnixNano() / 100
}

func (realClock) sleep(units int64) {
	time.Sleep(time.Duration(units) * 100 * time.Nanosecond)
}
