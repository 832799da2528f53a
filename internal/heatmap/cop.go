package heatmap

import (
	"image"
	"math"
)

// COPSentinel is returned by ComputeCOP when there is no meaningful pressure:
// an empty layout or a frame whose total pressure is zero. The compositor
// skips markers at the sentinel.
var COPSentinel = image.Pt(0, 0)

// ComputeCOP returns the pressure-weighted centroid of the sensor positions
// for one frame, rounded to the nearest pixel. The frame is aligned to the
// layout length by zero-padding or truncation, matching RenderGrid.
func ComputeCOP(pressures []int, layout Layout) image.Point {
	if len(layout) == 0 {
		return COPSentinel
	}

	var sum, sx, sy float64
	for i, p := range layout {
		var w float64
		if i < len(pressures) {
			w = float64(pressures[i])
		}
		sum += w
		sx += p.X * w
		sy += p.Y * w
	}
	if sum <= 0 {
		return COPSentinel
	}

	return image.Pt(int(math.Round(sx/sum)), int(math.Round(sy/sum)))
}
