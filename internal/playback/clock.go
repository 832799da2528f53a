// Package playback drives frame advancement at a configurable tick rate,
// independent of per-frame rendering cost.
package playback

import (
	"sync"
	"time"
)

// DefaultRate is the nominal pressure-sampling rate of the sensor carpet.
const DefaultRate = 64.0

// Clock emits ticks at approximately the configured rate while playing.
// Rate changes take effect at the next scheduling decision. When the tick
// consumer falls behind schedule the reference deadline is reset instead of
// emitting a burst of catch-up ticks.
type Clock struct {
	mu      sync.Mutex
	rate    float64
	playing bool
	started bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	onTick func()
	onRate func(hz float64)
}

// NewClock creates a clock ticking at rate Hz. onTick is invoked from the
// clock's goroutine once per period while playing. Rates <= 0 fall back to
// DefaultRate.
func NewClock(rate float64, onTick func()) *Clock {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Clock{
		rate:   rate,
		onTick: onTick,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// OnRateReport registers a callback receiving the measured tick rate,
// reported roughly once per second for diagnostics.
func (c *Clock) OnRateReport(fn func(hz float64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRate = fn
}

// Start launches the tick loop in paused state. No-op if already started.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped {
		return
	}
	c.started = true
	go c.run()
}

// Stop exits the tick loop and waits for it. Safe to call repeatedly.
func (c *Clock) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.playing = false
	started := c.started
	c.mu.Unlock()

	close(c.stopCh)
	if started {
		<-c.doneCh
	}
}

// Play enables or disables tick emission. The loop keeps running either way;
// pausing merely withholds ticks.
func (c *Clock) Play(p bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = p
}

// IsPlaying reports whether ticks are currently being emitted.
func (c *Clock) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// SetRate updates the target rate. The next period uses the new rate
// immediately. Rates <= 0 are ignored.
func (c *Clock) SetRate(hz float64) {
	if hz <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = hz
}

// Rate returns the current target rate in Hz.
func (c *Clock) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// run recomputes the period every iteration so SetRate applies without delay,
// and schedules against an absolute deadline for drift-free pacing.
func (c *Clock) run() {
	defer close(c.doneCh)

	next := time.Now()
	lastReport := next
	ticks := 0

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.mu.Lock()
		period := time.Duration(float64(time.Second) / c.rate)
		playing := c.playing
		onTick := c.onTick
		onRate := c.onRate
		c.mu.Unlock()

		if playing && onTick != nil {
			onTick()
			ticks++
		}

		next = next.Add(period)
		if sleep := time.Until(next); sleep > 0 {
			select {
			case <-c.stopCh:
				return
			case <-time.After(sleep):
			}
		} else {
			// Behind schedule: reset the deadline rather than bursting
			// catch-up ticks.
			next = time.Now()
		}

		if elapsed := time.Since(lastReport); elapsed >= time.Second {
			if onRate != nil {
				onRate(float64(ticks) / elapsed.Seconds())
			}
			lastReport = time.Now()
			ticks = 0
		}
	}
}
