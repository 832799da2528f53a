package video

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockSource is an in-memory Source implementation for testing.
type MockSource struct {
	mu     sync.Mutex
	frames []gocv.Mat
	pos    int
	open   bool
}

// NewMockSource creates a MockSource that plays the given frames. The mock
// takes ownership of the Mats; Close releases them.
func NewMockSource(frames []gocv.Mat) *MockSource {
	return &MockSource{frames: frames}
}

// Open marks the source as open.
func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	return nil
}

// Close releases all frames.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.frames {
		m.frames[i].Close()
	}
	m.frames = nil
	m.open = false
	return nil
}

// CurrentFrame returns a copy of the next frame, looping at the end.
func (m *MockSource) CurrentFrame() (gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return gocv.Mat{}, ErrNotOpen
	}
	if len(m.frames) == 0 {
		return gocv.Mat{}, ErrNotOpen
	}

	frame := m.frames[m.pos%len(m.frames)].Clone()
	m.pos++
	return frame, nil
}

// Seek repositions playback to the given frame index.
func (m *MockSource) Seek(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return ErrNotOpen
	}
	if index < 0 {
		index = 0
	}
	m.pos = index
	return nil
}

// Position returns the index of the next frame to be read.
func (m *MockSource) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// FrameCount returns the number of frames the mock plays before looping.
func (m *MockSource) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// IsOpen returns true if the source is currently open.
func (m *MockSource) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
