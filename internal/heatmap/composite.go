package heatmap

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Marker drawing constants. The trail and COP share one fixed color family.
const (
	sensorMarkerRadius = 6
	copMarkerRadius    = 8
	trailMinRadius     = 2
	trailMaxRadius     = 8
)

var (
	markerFill    = color.RGBA{R: 255, G: 255, B: 255}
	markerOutline = color.RGBA{R: 0, G: 0, B: 0}
	trailColor    = color.RGBA{R: 255, G: 105, B: 203} // pink
)

// Compositor assembles per-side heatmaps, sensor markers, COP trails and the
// colorbar legend into one frame. The kernel banks and the legend are built
// once at construction and shared read-only by every BuildFrame call.
type Compositor struct {
	cfg         Config
	leftLayout  Layout
	rightLayout Layout
	leftBank    *KernelBank
	rightBank   *KernelBank
	legend      gocv.Mat
}

// NewCompositor validates the configuration and precomputes both kernel banks
// and the legend. Close releases the legend when the compositor is replaced.
func NewCompositor(cfg Config, leftLayout, rightLayout Layout) (*Compositor, error) {
	leftBank, err := BuildKernelBank(leftLayout, cfg)
	if err != nil {
		return nil, err
	}
	rightBank, err := BuildKernelBank(rightLayout, cfg)
	if err != nil {
		return nil, err
	}
	return &Compositor{
		cfg:         cfg,
		leftLayout:  leftLayout,
		rightLayout: rightLayout,
		leftBank:    leftBank,
		rightBank:   rightBank,
		legend:      Colorbar(cfg.OutputHeight, cfg.LegendWidth),
	}, nil
}

// Close releases the precomputed legend. The compositor must not be used
// after Close.
func (c *Compositor) Close() {
	c.legend.Close()
}

// Config returns the compositor's rendering configuration.
func (c *Compositor) Config() Config {
	return c.cfg
}

// LeftBank returns the precomputed kernel bank for the left side.
func (c *Compositor) LeftBank() *KernelBank {
	return c.leftBank
}

// RightBank returns the precomputed kernel bank for the right side.
func (c *Compositor) RightBank() *KernelBank {
	return c.rightBank
}

// ComputeCOPs returns the per-side centers of pressure for one frame pair.
func (c *Compositor) ComputeCOPs(leftFrame, rightFrame []int) (image.Point, image.Point) {
	return ComputeCOP(leftFrame, c.leftLayout), ComputeCOP(rightFrame, c.rightLayout)
}

// BuildFrame renders the composite for one frame pair. The current COP of
// each side is appended to its trail before drawing, so threading the same
// trails through sequential calls reproduces playback history. The caller
// owns the returned Mat.
//
// Layout, left to right: margin, left image, margin, right image, margin,
// legend. All elements are vertically centered in the content band, whose
// height is the taller of the heatmap and the legend. Malformed per-frame
// data degrades to blank images and skipped markers; composition never fails.
func (c *Compositor) BuildFrame(leftFrame, rightFrame []int, leftTrail, rightTrail *TrailBuffer) gocv.Mat {
	leftImg := RenderGrid(leftFrame, c.leftBank, c.cfg)
	defer leftImg.Close()
	rightImg := RenderGrid(rightFrame, c.rightBank, c.cfg)
	defer rightImg.Close()

	leftCOP, rightCOP := c.ComputeCOPs(leftFrame, rightFrame)
	if leftTrail != nil {
		leftTrail.Push(leftCOP)
	}
	if rightTrail != nil {
		rightTrail.Push(rightCOP)
	}

	legend := c.legend

	w, h, margin := c.cfg.OutputWidth, c.cfg.OutputHeight, c.cfg.Margin
	contentH := h
	if legend.Rows() > contentH {
		contentH = legend.Rows()
	}
	finalH := contentH + margin*2
	finalW := w*2 + margin*3 + legend.Cols()

	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), finalH, finalW, gocv.MatTypeCV8UC3)

	imgY := margin + (contentH-h)/2
	legendY := margin + (contentH-legend.Rows())/2
	leftX := margin
	rightX := leftX + w + margin
	legendX := rightX + w + margin

	placeImage(&out, leftImg, leftX, imgY)
	placeImage(&out, rightImg, rightX, imgY)
	placeImage(&out, legend, legendX, legendY)

	drawSensorMarkers(&out, c.leftLayout, leftX, imgY)
	drawSensorMarkers(&out, c.rightLayout, rightX, imgY)

	if leftTrail != nil {
		drawTrail(&out, leftTrail.Points(), leftX, imgY)
	}
	if rightTrail != nil {
		drawTrail(&out, rightTrail.Points(), rightX, imgY)
	}

	// Current COP markers go on top of everything else.
	if leftCOP != COPSentinel {
		gocv.Circle(&out, leftCOP.Add(image.Pt(leftX, imgY)), copMarkerRadius, trailColor, -1)
	}
	if rightCOP != COPSentinel {
		gocv.Circle(&out, rightCOP.Add(image.Pt(rightX, imgY)), copMarkerRadius, trailColor, -1)
	}

	return out
}

// placeImage copies src into dst with its top-left corner at (x, y).
func placeImage(dst *gocv.Mat, src gocv.Mat, x, y int) {
	region := dst.Region(image.Rect(x, y, x+src.Cols(), y+src.Rows()))
	src.CopyTo(&region)
	region.Close()
}

// drawSensorMarkers draws a small white circle with a dark outline at every
// sensor position, offset into the side's image region.
func drawSensorMarkers(img *gocv.Mat, layout Layout, offsetX, offsetY int) {
	for _, p := range layout {
		center := image.Pt(offsetX+int(p.X+0.5), offsetY+int(p.Y+0.5))
		gocv.Circle(img, center, sensorMarkerRadius, markerFill, -1)
		gocv.Circle(img, center, sensorMarkerRadius, markerOutline, 1)
	}
}

// drawTrail draws buffered COP points oldest to newest with linearly growing
// radius, so the newest point is the largest. Sentinel points are skipped.
func drawTrail(img *gocv.Mat, points []image.Point, offsetX, offsetY int) {
	n := len(points)
	if n == 0 {
		return
	}
	for i, pt := range points {
		if pt == COPSentinel {
			continue
		}
		radius := trailMinRadius + int(float64(i+1)/float64(n)*float64(trailMaxRadius-trailMinRadius))
		gocv.Circle(img, pt.Add(image.Pt(offsetX, offsetY)), radius, trailColor, -1)
	}
}
