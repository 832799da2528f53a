// Package video provides playback of the session video recorded alongside a
// pressure capture, using GoCV (OpenCV).
package video

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNotOpen is returned when trying to read from a source that is not open.
var ErrNotOpen = errors.New("video source is not open")

// Source defines the interface for session video implementations.
type Source interface {
	Open() error
	Close() error
	CurrentFrame() (gocv.Mat, error)
	Seek(index int) error
	Position() int
	FrameCount() int
	IsOpen() bool
}

// fileSource plays a video file using GoCV.
type fileSource struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	open    bool
}

// NewFileSource creates a Source for the given video file.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

// Open opens the video file for reading.
func (s *fileSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(s.path)
	if err != nil {
		return err
	}

	s.capture = capture
	s.open = true
	return nil
}

// Close closes the video file and releases resources.
func (s *fileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.capture == nil {
		s.open = false
		return nil
	}

	err := s.capture.Close()
	s.capture = nil
	s.open = false
	return err
}

// CurrentFrame reads the next frame, rewinding to the start when the file is
// exhausted. The caller is responsible for closing the returned Mat.
func (s *fileSource) CurrentFrame() (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.capture == nil {
		return gocv.Mat{}, ErrNotOpen
	}

	mat := gocv.NewMat()
	if ok := s.capture.Read(&mat); !ok || mat.Empty() {
		// End of file: loop back to the first frame.
		s.capture.Set(gocv.VideoCapturePosFrames, 0)
		if ok := s.capture.Read(&mat); !ok {
			mat.Close()
			return gocv.Mat{}, errors.New("failed to read video frame")
		}
	}

	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, errors.New("video frame is empty")
	}

	return mat, nil
}

// Seek repositions playback to the given frame index.
func (s *fileSource) Seek(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.capture == nil {
		return ErrNotOpen
	}
	if index < 0 {
		index = 0
	}

	s.capture.Set(gocv.VideoCapturePosFrames, float64(index))
	return nil
}

// Position returns the index of the next frame to be read.
func (s *fileSource) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.capture == nil {
		return 0
	}
	return int(s.capture.Get(gocv.VideoCapturePosFrames))
}

// FrameCount returns the total number of frames in the file.
func (s *fileSource) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.capture == nil {
		return 0
	}
	return int(s.capture.Get(gocv.VideoCaptureFrameCount))
}

// IsOpen returns true if the source is currently open.
func (s *fileSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
