package number

import (
	"image"

	"cardscan/internal/imgutil"

	"gocv.io/x/gocv"
)

// roiStrategy names one slice of the upscaled crop to search. Number
// placement varies by card template era, so several slices are tried in
// descending order of likelihood.
type roiStrategy struct {
	name string
	rect func(w, h int) image.Rectangle
}

var roiStrategies = []roiStrategy{
	// Most common: number at the very bottom of the crop.
	{"bottom_third", func(w, h int) image.Rectangle { return image.Rect(0, h*67/100, w, h) }},
	// Wider search if the bottom third misses.
	{"bottom_half", func(w, h int) image.Rectangle { return image.Rect(0, h/2, w, h) }},
	{"full", func(w, h int) image.Rectangle { return image.Rect(0, 0, w, h) }},
	// Rare: scans where icons crowd the bottom edge.
	{"top_left", func(w, h int) image.Rectangle { return image.Rect(0, 0, w*80/100, h*70/100) }},
}

// thresholdPercentiles are the brightness percentiles tried as binarization
// cutoffs, ordered by likelihood. Low percentiles suit dark ink on light
// card stock; higher ones handle textured and holographic backgrounds.
// Otsu runs as a final bimodal fallback after all of these.
var thresholdPercentiles = []float64{5, 3, 10, 15}

// prepareCrop converts a number crop to a contrast-stretched, heavily
// upscaled grayscale Mat. Source glyphs are often under 15px tall; the
// template matcher needs them much larger. The caller owns the Mat.
func prepareCrop(crop image.Image) (gocv.Mat, error) {
	gray, err := imgutil.ToGrayMat(crop)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer gray.Close()

	stretched := gocv.NewMat()
	gocv.Normalize(gray, &stretched, 0, 255, gocv.NormMinMax)
	defer stretched.Close()

	scaled := gocv.NewMat()
	gocv.Resize(stretched, &scaled, image.Point{}, cropUpscale, cropUpscale, gocv.InterpolationCubic)
	return scaled, nil
}

// binarizePercentile thresholds a grayscale ROI at the given brightness
// percentile, marking pixels at or below the cutoff as ink (255).
func binarizePercentile(roi gocv.Mat, pct float64) gocv.Mat {
	t := percentileValue(roi, pct)
	bw := gocv.NewMat()
	gocv.Threshold(roi, &bw, float32(t), 255, gocv.ThresholdBinaryInv)
	cleanBinary(&bw)
	return bw
}

// binarizeOtsu thresholds a grayscale ROI with Otsu's method, inverted so
// dark ink becomes foreground.
func binarizeOtsu(roi gocv.Mat) gocv.Mat {
	bw := gocv.NewMat()
	gocv.Threshold(roi, &bw, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	cleanBinary(&bw)
	return bw
}

// cleanBinary removes noise specks and fills small holes in glyph strokes.
func cleanBinary(bw *gocv.Mat) {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()
	gocv.MorphologyEx(*bw, bw, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(*bw, bw, gocv.MorphClose, kernel)
}

// percentileValue returns the intensity at the given percentile of a
// grayscale Mat's histogram. ROI views are not continuous in memory, so
// they are cloned before reading the raw buffer; ToBytes on a view would
// return a window of the parent Mat instead of the ROI's own pixels.
func percentileValue(m gocv.Mat, pct float64) uint8 {
	if !m.IsContinuous() {
		c := m.Clone()
		defer c.Close()
		return percentileOf(c.ToBytes(), pct)
	}
	return percentileOf(m.ToBytes(), pct)
}

func percentileOf(data []byte, pct float64) uint8 {
	if len(data) == 0 {
		return 0
	}

	var hist [256]int
	for _, v := range data {
		hist[v]++
	}

	target := int(pct / 100 * float64(len(data)))
	cum := 0
	for v := 0; v < 256; v++ {
		cum += hist[v]
		if cum > target {
			return uint8(v)
		}
	}
	return 255
}
