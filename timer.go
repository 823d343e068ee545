package tchip8

import "time"

const (
	TimerFrequency = 60
	TimerPeriod    = time.Second / TimerFrequency
)

// TickAccumulator turns elapsed wall time into whole 60 Hz timer ticks,
// carrying the remainder over to the next call.
type TickAccumulator struct {
	acc time.Duration
}

// Add accumulates elapsed and returns the number of ticks that are due
func (a *TickAccumulator) Add(elapsed time.Duration) int {
	if elapsed > 0 {
		a.acc += elapsed
	}

	ticks := int(a.acc / TimerPeriod)
	a.acc -= time.Duration(ticks) * TimerPeriod

	return ticks
}

func (a *TickAccumulator) Reset() {
	a.acc = 0
}
