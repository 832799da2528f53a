// Package heatmap renders plantar-pressure heatmap frames from sparse
// per-sensor readings using precomputed interpolation kernels.
package heatmap

import (
	"errors"
	"fmt"
)

// Default rendering parameters. The physical range and colorbar ticks are
// fixed by the sensor hardware (12-bit pressure cells).
const (
	DefaultOutputWidth  = 175
	DefaultOutputHeight = 520
	DefaultGridWidth    = 20
	DefaultGridHeight   = 69
	DefaultRadius       = 70.0
	DefaultSmoothness   = 2.0
	DefaultMargin       = 50
	DefaultLegendWidth  = 80
	DefaultTrailLength  = 10
	DefaultTargetRate   = 64.0

	// MaxPressure is the upper bound of the sensor hardware range.
	MaxPressure = 4095
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid heatmap config")

// Config holds the immutable rendering configuration for one session.
type Config struct {
	// OutputWidth and OutputHeight are the per-side heatmap dimensions in pixels.
	OutputWidth  int
	OutputHeight int

	// GridWidth and GridHeight are the interpolation grid dimensions in cells.
	GridWidth  int
	GridHeight int

	// Radius is the kernel falloff radius in output pixels. Must be > 0.
	Radius float64

	// Smoothness is the kernel falloff exponent. Must be >= 0.
	Smoothness float64

	// Margin is the whitespace in pixels between composited elements.
	Margin int

	// LegendWidth is the nominal width of the colorbar legend in pixels.
	LegendWidth int

	// TrailLength is the number of recent COP points kept per side.
	TrailLength int

	// TargetRate is the playback tick rate in Hz.
	TargetRate float64
}

// DefaultConfig returns the configuration matching the reference sensor carpet.
func DefaultConfig() Config {
	return Config{
		OutputWidth:  DefaultOutputWidth,
		OutputHeight: DefaultOutputHeight,
		GridWidth:    DefaultGridWidth,
		GridHeight:   DefaultGridHeight,
		Radius:       DefaultRadius,
		Smoothness:   DefaultSmoothness,
		Margin:       DefaultMargin,
		LegendWidth:  DefaultLegendWidth,
		TrailLength:  DefaultTrailLength,
		TargetRate:   DefaultTargetRate,
	}
}

// Validate checks the configuration and returns an error describing the first
// invalid field. Invalid configuration is a construction-time failure, never
// silently defaulted.
func (c Config) Validate() error {
	if c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		return fmt.Errorf("%w: output dimensions %dx%d", ErrInvalidConfig, c.OutputWidth, c.OutputHeight)
	}
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return fmt.Errorf("%w: grid dimensions %dx%d", ErrInvalidConfig, c.GridWidth, c.GridHeight)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius %v must be > 0", ErrInvalidConfig, c.Radius)
	}
	if c.Smoothness < 0 {
		return fmt.Errorf("%w: smoothness %v must be >= 0", ErrInvalidConfig, c.Smoothness)
	}
	if c.Margin < 0 {
		return fmt.Errorf("%w: margin %d must be >= 0", ErrInvalidConfig, c.Margin)
	}
	if c.LegendWidth <= 0 {
		return fmt.Errorf("%w: legend width %d must be > 0", ErrInvalidConfig, c.LegendWidth)
	}
	if c.TrailLength <= 0 {
		return fmt.Errorf("%w: trail length %d must be > 0", ErrInvalidConfig, c.TrailLength)
	}
	if c.TargetRate <= 0 {
		return fmt.Errorf("%w: target rate %v must be > 0", ErrInvalidConfig, c.TargetRate)
	}
	return nil
}
