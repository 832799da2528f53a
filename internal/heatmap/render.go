package heatmap

import (
	"image"

	"gocv.io/x/gocv"
)

// RenderGrid converts one pressure frame into a colorized heatmap image of the
// configured output size. The caller owns the returned Mat and must close it.
//
// Rendering steps:
// 1. Project the frame through the kernel bank (1 x sensors times sensors x cells)
// 2. Clamp intensities to the hardware range [0, 4095]
// 3. Rescale linearly to [0, 255] grayscale
// 4. Apply the Jet colormap
// 5. Resize bilinearly from grid resolution to output resolution
//
// An empty bank or an absent frame degrades to a solid black image rather than
// failing; the same inputs always produce the same pixels.
func RenderGrid(pressures []int, bank *KernelBank, cfg Config) gocv.Mat {
	if bank == nil || bank.Sensors() == 0 || pressures == nil {
		return blankImage(cfg)
	}

	intensities := bank.Project(pressures)
	if intensities == nil {
		return blankImage(cfg)
	}

	gray := make([]byte, len(intensities))
	for i, z := range intensities {
		if z < 0 {
			z = 0
		} else if z > MaxPressure {
			z = MaxPressure
		}
		gray[i] = byte(z * (255.0 / MaxPressure))
	}

	grayMat, err := gocv.NewMatFromBytes(cfg.GridHeight, cfg.GridWidth, gocv.MatTypeCV8UC1, gray)
	if err != nil {
		return blankImage(cfg)
	}
	defer grayMat.Close()

	color := gocv.NewMat()
	defer color.Close()
	gocv.ApplyColorMap(grayMat, &color, gocv.ColormapJet)

	resized := gocv.NewMat()
	gocv.Resize(color, &resized, image.Pt(cfg.OutputWidth, cfg.OutputHeight), 0, 0, gocv.InterpolationLinear)
	return resized
}

// blankImage returns a zeroed BGR image of the configured output size.
func blankImage(cfg Config) gocv.Mat {
	return gocv.NewMatWithSize(cfg.OutputHeight, cfg.OutputWidth, gocv.MatTypeCV8UC3)
}
