package core

import "time"

// DefaultTickSpeed is the number of generations per second used when the
// configured multiplier is not positive.
const DefaultTickSpeed = 2

// TickPeriod converts a tick-speed multiplier into the interval between
// generations (one second divided by the multiplier).
func TickPeriod(multiplier int) time.Duration {
	if multiplier <= 0 {
		multiplier = DefaultTickSpeed
	}
	return time.Second / time.Duration(multiplier)
}
