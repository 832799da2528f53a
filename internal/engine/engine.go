// Package engine orchestrates the heatmap rendering pipeline: dataset
// sequences in, pre-rendered composite frames out, paced by a playback clock
// that runs independently of the consumer's video clock.
package engine

import (
	"errors"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/gaitlab/plantarview/internal/heatmap"
	"github.com/gaitlab/plantarview/internal/playback"
	"github.com/gaitlab/plantarview/internal/prerender"
)

// ErrNoData is returned when a render is attempted before SetData.
var ErrNoData = errors.New("no dataset loaded")

// Config holds the engine configuration.
type Config struct {
	Heatmap heatmap.Config

	// CacheCapacity is the pre-render window size in frames.
	// Zero selects prerender.DefaultCapacity.
	CacheCapacity int
}

// FrameFunc receives a newly current composite frame. The receiver owns the
// Mat and must close it.
type FrameFunc func(index int, frame gocv.Mat)

// Status is a snapshot of the playback state.
type Status struct {
	Position     int     `json:"position"`
	FrameCount   int     `json:"frameCount"`
	Playing      bool    `json:"playing"`
	TargetRate   float64 `json:"targetRate"`
	AchievedRate float64 `json:"achievedRate"`
}

// Engine drives playback over a loaded pressure dataset. All control-surface
// methods are safe to call from any goroutine.
type Engine struct {
	cfg   Config
	clock *playback.Clock

	mu       sync.RWMutex
	comp     *heatmap.Compositor
	leftSeq  [][]int
	rightSeq [][]int
	position int
	cache    *prerender.Cache
	onFrame  FrameFunc
	achieved float64
	started  bool
}

// New creates an engine with the given configuration. Data must be loaded
// with SetData before frames can be rendered.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Heatmap.Validate(); err != nil {
		return nil, err
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = prerender.DefaultCapacity
	}

	e := &Engine{cfg: cfg}
	e.clock = playback.NewClock(cfg.Heatmap.TargetRate, e.tick)
	e.clock.OnRateReport(func(hz float64) {
		e.mu.Lock()
		e.achieved = hz
		e.mu.Unlock()
	})
	return e, nil
}

// OnFrame registers the frame delivery callback.
func (e *Engine) OnFrame(fn FrameFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFrame = fn
}

// SetData loads sensor layouts and pressure sequences for a new session,
// precomputing both kernel banks and resetting playback to frame zero. Any
// previous pre-render cache is shut down and replaced.
func (e *Engine) SetData(leftLayout, rightLayout heatmap.Layout, leftSeq, rightSeq [][]int) error {
	comp, err := heatmap.NewCompositor(e.cfg.Heatmap, leftLayout, rightLayout)
	if err != nil {
		return err
	}

	e.mu.Lock()
	oldCache := e.cache
	oldComp := e.comp
	e.comp = comp
	e.leftSeq = leftSeq
	e.rightSeq = rightSeq
	e.position = 0
	e.cache = prerender.New(e.cfg.CacheCapacity, e.FrameCount, e.renderAt)
	cache := e.cache
	started := e.started
	e.mu.Unlock()

	if oldCache != nil {
		oldCache.Stop()
	}
	if oldComp != nil {
		// renderAt holds the read lock for the duration of a render, so
		// taking the write lock waits out any frame still being built
		// against the old compositor before its legend is released.
		e.mu.Lock()
		oldComp.Close()
		e.mu.Unlock()
	}
	if started {
		cache.Start()
		cache.Request(0)
	}

	log.Printf("engine: loaded dataset with %d left / %d right sensors, %d frames",
		len(leftLayout), len(rightLayout), e.FrameCount())
	return nil
}

// Start launches the playback clock and the pre-render loop, initially
// paused. No-op if already started.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	cache := e.cache
	e.mu.Unlock()

	e.clock.Start()
	if cache != nil {
		cache.Start()
		cache.Request(0)
	}
	log.Println("engine: playback pipeline started")
}

// Stop shuts down the clock and the pre-render loop. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.clock.Stop()

	e.mu.RLock()
	cache := e.cache
	e.mu.RUnlock()
	if cache != nil {
		cache.Stop()
	}
	log.Println("engine: playback pipeline stopped")
}

// Resume starts emitting playback ticks.
func (e *Engine) Resume() {
	e.clock.Play(true)
}

// Pause withholds playback ticks without stopping the pipeline.
func (e *Engine) Pause() {
	e.clock.Play(false)
}

// IsPlaying reports whether playback is advancing.
func (e *Engine) IsPlaying() bool {
	return e.clock.IsPlaying()
}

// SetRate updates the playback tick rate in Hz.
func (e *Engine) SetRate(hz float64) {
	e.clock.SetRate(hz)
}

// Seek jumps to the given frame index, clamped to the loaded sequence, and
// immediately retargets the pre-render window. If the frame is already cached
// it is delivered without waiting for the next tick.
func (e *Engine) Seek(index int) {
	n := e.FrameCount()
	if n == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > n-1 {
		index = n - 1
	}

	e.mu.Lock()
	e.position = index
	cache := e.cache
	onFrame := e.onFrame
	e.mu.Unlock()

	if cache == nil {
		return
	}
	cache.Request(index)
	if frame, ok := cache.Get(index); ok && onFrame != nil {
		onFrame(index, frame)
	}
}

// SyncToVideo maps a video frame position onto the pressure sequence
// proportionally and seeks there. The two recordings cover the same walk, so
// relative progress is the alignment.
func (e *Engine) SyncToVideo(videoIndex, videoTotal int) {
	n := e.FrameCount()
	if videoTotal <= 0 || n == 0 {
		return
	}
	e.Seek(videoIndex * n / videoTotal)
}

// Position returns the current playback frame index.
func (e *Engine) Position() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position
}

// FrameCount returns the length of the longer pressure sequence.
func (e *Engine) FrameCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := len(e.leftSeq)
	if len(e.rightSeq) > n {
		n = len(e.rightSeq)
	}
	return n
}

// Stat returns a snapshot of the playback state.
func (e *Engine) Stat() Status {
	e.mu.RLock()
	achieved := e.achieved
	position := e.position
	e.mu.RUnlock()

	return Status{
		Position:     position,
		FrameCount:   e.FrameCount(),
		Playing:      e.clock.IsPlaying(),
		TargetRate:   e.clock.Rate(),
		AchievedRate: achieved,
	}
}

// CurrentFrame renders or fetches the composite for the current position.
// Unlike the tick path this may render synchronously on a cache miss; it is
// the pull surface for the preview stream. The caller owns the returned Mat.
func (e *Engine) CurrentFrame() (gocv.Mat, error) {
	e.mu.RLock()
	position := e.position
	cache := e.cache
	e.mu.RUnlock()

	if cache != nil {
		if frame, ok := cache.Get(position); ok {
			return frame, nil
		}
	}
	return e.renderAt(position)
}

// tick advances playback by one frame, clamping at the sequence end, then
// retargets the cache and delivers the frame if it is already rendered. A
// cache miss leaves the display unchanged; the miss is the degraded state,
// never a stall.
func (e *Engine) tick() {
	n := e.FrameCount()
	if n == 0 {
		return
	}

	e.mu.Lock()
	if e.position < n-1 {
		e.position++
	}
	position := e.position
	cache := e.cache
	onFrame := e.onFrame
	e.mu.Unlock()

	if cache == nil {
		return
	}
	cache.Request(position)
	if frame, ok := cache.Get(position); ok && onFrame != nil {
		onFrame(position, frame)
	}
}

// frameAt returns the pressure frame for index, wrapping the shorter of the
// two sequences so both sides keep animating for the full session length.
func frameAt(seq [][]int, index int) []int {
	if len(seq) == 0 {
		return nil
	}
	return seq[index%len(seq)]
}

// renderAt builds the composite for one frame index, reconstructing the COP
// trail that playback would have accumulated over the preceding frames. The
// trail is a function of the index alone, so pre-rendering out of order or in
// parallel produces the same pixels as sequential playback.
func (e *Engine) renderAt(index int) (gocv.Mat, error) {
	// The read lock is held across the whole render so SetData cannot close
	// the compositor out from under an in-flight frame.
	e.mu.RLock()
	defer e.mu.RUnlock()

	comp := e.comp
	leftSeq := e.leftSeq
	rightSeq := e.rightSeq
	trailLen := e.cfg.Heatmap.TrailLength

	if comp == nil {
		return gocv.Mat{}, ErrNoData
	}

	leftTrail := heatmap.NewTrailBuffer(trailLen)
	rightTrail := heatmap.NewTrailBuffer(trailLen)
	for j := index - trailLen + 1; j < index; j++ {
		if j < 0 {
			continue
		}
		leftCOP, rightCOP := comp.ComputeCOPs(frameAt(leftSeq, j), frameAt(rightSeq, j))
		leftTrail.Push(leftCOP)
		rightTrail.Push(rightCOP)
	}

	return comp.BuildFrame(frameAt(leftSeq, index), frameAt(rightSeq, index), leftTrail, rightTrail), nil
}
