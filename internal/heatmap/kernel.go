package heatmap

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a sensor position in output pixel space.
type Point struct {
	X float64
	Y float64
}

// Layout is an ordered sequence of sensor positions, fixed for the lifetime
// of a recording session.
type Layout []Point

// KernelBank holds the precomputed falloff weights from every sensor to every
// interpolation grid cell. Once built it is immutable and safe to share
// read-only across concurrent renders.
type KernelBank struct {
	weights *mat.Dense // sensors x cells, nil when the layout is empty
	sensors int
	cells   int
}

// BuildKernelBank precomputes one Gaussian-like kernel row per sensor.
//
// Grid cell centers evenly tile the output rectangle, so cell (cx, cy) sits at
// ((cx+0.5)/gridW*outputW, (cy+0.5)/gridH*outputH). Each weight is
// exp(-smoothness * dist² / radius²), giving values in [0, 1] for
// smoothness >= 0 and radius > 0.
func BuildKernelBank(layout Layout, cfg Config) (*KernelBank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cells := cfg.GridWidth * cfg.GridHeight
	bank := &KernelBank{
		sensors: len(layout),
		cells:   cells,
	}
	if len(layout) == 0 {
		return bank, nil
	}

	// Cell center coordinates in output pixel space.
	cx := make([]float64, cfg.GridWidth)
	for i := range cx {
		cx[i] = (float64(i) + 0.5) / float64(cfg.GridWidth) * float64(cfg.OutputWidth)
	}
	cy := make([]float64, cfg.GridHeight)
	for i := range cy {
		cy[i] = (float64(i) + 0.5) / float64(cfg.GridHeight) * float64(cfg.OutputHeight)
	}

	radius2 := cfg.Radius * cfg.Radius
	data := make([]float64, len(layout)*cells)
	for s, p := range layout {
		row := data[s*cells : (s+1)*cells]
		for gy := 0; gy < cfg.GridHeight; gy++ {
			for gx := 0; gx < cfg.GridWidth; gx++ {
				dx := cx[gx] - p.X
				dy := cy[gy] - p.Y
				dist2 := dx*dx + dy*dy
				row[gy*cfg.GridWidth+gx] = math.Exp(-cfg.Smoothness * dist2 / radius2)
			}
		}
	}

	bank.weights = mat.NewDense(len(layout), cells, data)
	return bank, nil
}

// Sensors returns the number of kernel rows (one per sensor).
func (k *KernelBank) Sensors() int {
	return k.sensors
}

// Cells returns the number of grid cells each kernel row covers.
func (k *KernelBank) Cells() int {
	return k.cells
}

// Weight returns the precomputed weight from sensor s to grid cell c.
func (k *KernelBank) Weight(s, c int) float64 {
	return k.weights.At(s, c)
}

// Project multiplies a pressure frame through the kernel bank, producing one
// interpolated intensity per grid cell.
//
// The frame is padded with zeros or truncated so its length matches the sensor
// count; upstream sensor counts are configuration-driven and occasionally
// inconsistent between recordings, so a mismatch is never an error. Returns
// nil when the bank has no sensors.
func (k *KernelBank) Project(pressures []int) []float64 {
	if k == nil || k.sensors == 0 {
		return nil
	}

	row := make([]float64, k.sensors)
	for i := 0; i < k.sensors && i < len(pressures); i++ {
		row[i] = float64(pressures[i])
	}

	var z mat.Dense
	z.Mul(mat.NewDense(1, k.sensors, row), k.weights)

	out := make([]float64, k.cells)
	mat.Row(out, 0, &z)
	return out
}
