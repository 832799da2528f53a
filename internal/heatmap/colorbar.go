package heatmap

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"gocv.io/x/gocv"
)

// Colorbar legend layout constants. The tick values are fixed by the sensor
// hardware range, every 500 units up to 4095.
const (
	colorbarTickStep  = 500
	colorbarStripeMin = 8
	colorbarStripeMax = 12
	colorbarPadLeft   = 3
	colorbarPadRight  = 6
	colorbarPadTop    = 6
	colorbarPadBottom = 4
)

// Colorbar renders the vertical legend: a Jet gradient stripe with the highest
// pressure at the top, tick marks, and numeric labels to the right. The
// returned image is slightly taller than height to make room for padding; the
// compositor centers it vertically. The caller owns the returned Mat.
func Colorbar(height, width int) gocv.Mat {
	// Grayscale gradient column, flipped so the top shows high values.
	grad := make([]byte, height)
	for i := range grad {
		grad[i] = byte(math.Round(float64(height-1-i) / float64(height-1) * 255))
	}
	col, err := gocv.NewMatFromBytes(height, 1, gocv.MatTypeCV8UC1, grad)
	if err != nil {
		return gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	}
	defer col.Close()

	stripeW := width - 8
	if stripeW < colorbarStripeMin {
		stripeW = colorbarStripeMin
	} else if stripeW > colorbarStripeMax {
		stripeW = colorbarStripeMax
	}

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(col, &colored, gocv.ColormapJet)

	stripe := gocv.NewMat()
	defer stripe.Close()
	gocv.Resize(colored, &stripe, image.Pt(stripeW, height), 0, 0, gocv.InterpolationLinear)

	labelAreaW := width - stripeW + colorbarPadRight
	outW := colorbarPadLeft + stripeW + labelAreaW
	outH := height + colorbarPadTop + colorbarPadBottom

	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), outH, outW, gocv.MatTypeCV8UC3)

	stripeRect := image.Rect(colorbarPadLeft, colorbarPadTop, colorbarPadLeft+stripeW, colorbarPadTop+height)
	region := out.Region(stripeRect)
	stripe.CopyTo(&region)
	region.Close()

	outline := color.RGBA{R: 120, G: 120, B: 120}
	gocv.Rectangle(&out, stripeRect, outline, 1)

	labelColor := color.RGBA{R: 80, G: 80, B: 80}
	tickX := colorbarPadLeft + stripeW
	for t := 0; t <= MaxPressure; t += colorbarTickStep {
		y := colorbarPadTop + int((1.0-float64(t)/MaxPressure)*float64(height-1))
		gocv.Line(&out, image.Pt(tickX, y), image.Pt(tickX+4, y), outline, 1)
		gocv.PutTextWithParams(&out, strconv.Itoa(t), image.Pt(tickX+6, y+4),
			gocv.FontHersheySimplex, 0.34, labelColor, 1, gocv.LineAA, false)
	}

	return out
}
