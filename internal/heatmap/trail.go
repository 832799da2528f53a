package heatmap

import "image"

// TrailBuffer is a fixed-capacity FIFO of recent COP points, oldest first.
// It is owned by a single rendering sequence and is not safe for concurrent
// use; parallel renders must each reconstruct their own trail.
type TrailBuffer struct {
	capacity int
	points   []image.Point
}

// NewTrailBuffer creates a trail that keeps the most recent capacity points.
// Capacities below 1 are raised to 1.
func NewTrailBuffer(capacity int) *TrailBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &TrailBuffer{
		capacity: capacity,
		points:   make([]image.Point, 0, capacity),
	}
}

// Push appends a point, dropping the oldest when the buffer is full.
func (t *TrailBuffer) Push(p image.Point) {
	if len(t.points) == t.capacity {
		copy(t.points, t.points[1:])
		t.points = t.points[:t.capacity-1]
	}
	t.points = append(t.points, p)
}

// Points returns a copy of the buffered points, oldest first.
func (t *TrailBuffer) Points() []image.Point {
	out := make([]image.Point, len(t.points))
	copy(out, t.points)
	return out
}

// Len returns the number of buffered points.
func (t *TrailBuffer) Len() int {
	return len(t.points)
}

// Capacity returns the configured maximum length.
func (t *TrailBuffer) Capacity() int {
	return t.capacity
}

// Clear drops all buffered points, e.g. on playback reset or sequence reload.
func (t *TrailBuffer) Clear() {
	t.points = t.points[:0]
}

// Clone returns an independent copy of the trail.
func (t *TrailBuffer) Clone() *TrailBuffer {
	c := NewTrailBuffer(t.capacity)
	c.points = append(c.points, t.points...)
	return c
}
