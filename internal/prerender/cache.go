// Package prerender fills a bounded frame cache ahead of the playback cursor
// so that playback is never blocked by per-frame rendering cost.
package prerender

import (
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// DefaultCapacity is the number of frames kept around the requested index.
const DefaultCapacity = 8

// fillIdleWait bounds how long the background loop sleeps between fill
// passes, and therefore also bounds shutdown latency.
const fillIdleWait = 20 * time.Millisecond

// RenderFunc renders the composite frame for one index. It is called from the
// cache's background goroutine without any lock held.
type RenderFunc func(index int) (gocv.Mat, error)

// Cache is a bounded, indexed cache of pre-rendered frames filled by a single
// background goroutine. Request and Get are safe to call from other
// goroutines and never block on a render.
//
// The lifecycle is a single Stopped -> Running -> Stopped cycle; a stopped
// cache stays stopped and a new one must be constructed to render again.
type Cache struct {
	capacity   int
	render     RenderFunc
	frameCount func() int

	mu        sync.Mutex
	entries   map[int]gocv.Mat
	target    int
	hasTarget bool

	started bool
	stopped bool
	stopCh  chan struct{}
	wakeCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a cache holding up to capacity frames. frameCount reports the
// total number of renderable frames; render produces one frame. Capacities
// below 1 are raised to 1.
func New(capacity int, frameCount func() int, render RenderFunc) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity:   capacity,
		render:     render,
		frameCount: frameCount,
		entries:    make(map[int]gocv.Mat),
		stopCh:     make(chan struct{}),
		wakeCh:     make(chan struct{}, 1),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the background fill loop. Calling Start on a running or
// stopped cache is a no-op.
func (c *Cache) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.stopped {
		return
	}
	c.started = true
	go c.fillLoop()
}

// Stop signals the fill loop to exit and blocks until it has. After Stop
// returns no further cache mutation occurs and every Get misses. Stop is safe
// to call repeatedly and on a never-started cache.
func (c *Cache) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	started := c.started
	c.mu.Unlock()

	close(c.stopCh)
	if started {
		<-c.doneCh
	}

	c.mu.Lock()
	for idx, frame := range c.entries {
		frame.Close()
		delete(c.entries, idx)
	}
	c.mu.Unlock()
}

// Request records the desired center index for the next fill pass. Only the
// most recent request matters; repeated requests for the same index are cheap
// no-ops for the background loop.
func (c *Cache) Request(index int) {
	c.mu.Lock()
	c.target = index
	c.hasTarget = true
	c.mu.Unlock()

	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
}

// Get returns a copy of the cached frame for index, or a miss. It never
// blocks waiting for a render. The returned Mat is owned by the caller, who
// must close it; the fill loop evicting the underlying entry afterwards
// cannot invalidate it. The copy is taken under the lock, so it can never
// race an eviction's Close.
func (c *Cache) Get(index int) (gocv.Mat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame, ok := c.entries[index]
	if !ok {
		return gocv.Mat{}, false
	}
	return frame.Clone(), true
}

// Len returns the number of cached frames.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// window computes the desired index range [start, end) for a fill pass. The
// window is biased ahead of the target: upcoming frames matter more than
// frames just played.
func (c *Cache) window(target, total int) (int, int) {
	start := target - c.capacity/4
	if start < 0 {
		start = 0
	}
	end := start + c.capacity
	if end > total {
		end = total
	}
	return start, end
}

// fillLoop renders missing frames inside the desired window and evicts frames
// outside it, repeating until stopped. Renders run without the lock so
// concurrent Gets are never stalled behind a render.
func (c *Cache) fillLoop() {
	defer close(c.doneCh)

	for {
		select {
		case <-c.stopCh:
			return
		case <-c.wakeCh:
		case <-time.After(fillIdleWait):
		}

		c.mu.Lock()
		hasTarget := c.hasTarget
		target := c.target
		c.mu.Unlock()
		if !hasTarget {
			continue
		}

		total := c.frameCount()
		if total <= 0 {
			continue
		}
		start, end := c.window(target, total)

		for i := start; i < end; i++ {
			select {
			case <-c.stopCh:
				return
			default:
			}

			c.mu.Lock()
			_, present := c.entries[i]
			c.mu.Unlock()
			if present {
				continue
			}

			frame, err := c.render(i)
			if err != nil {
				// A single bad index is skipped, never fatal to the loop.
				log.Printf("prerender: frame %d render failed: %v", i, err)
				continue
			}

			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				frame.Close()
				return
			}
			c.entries[i] = frame
			c.mu.Unlock()
		}

		c.mu.Lock()
		for idx, frame := range c.entries {
			if idx < start || idx >= end {
				frame.Close()
				delete(c.entries, idx)
			}
		}
		c.mu.Unlock()
	}
}
