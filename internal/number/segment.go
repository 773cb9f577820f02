package number

import (
	"image"
	"image/color"
	"sort"

	xdraw "golang.org/x/image/draw"

	"gocv.io/x/gocv"
)

// binImage is a binary ink mask (1 = ink) held Go-side for the pixel-level
// segmentation passes.
type binImage struct {
	w, h int
	pix  []uint8
}

func (b binImage) at(x, y int) uint8 {
	return b.pix[y*b.w+x]
}

// box is a component bounding box in binImage coordinates.
type box struct {
	x, y, w, h int
}

// Component area limits at the working upscale. Components under
// speckleMinArea are erased from the mask; components under boxMinArea are
// never boxed as glyph candidates.
const (
	speckleMinArea = 25
	boxMinArea     = 30
)

// inkExtentPad widens the ink extent on every side so glyphs at the crop
// boundary are not judged against a bounding box they themselves define.
// Crops with fewer ink pixels than minInkForExtent keep their full
// dimensions; there is too little ink to anchor a crop.
const (
	inkExtentPad    = 20
	minInkForExtent = 50
)

// glyph is one segmented character bitmap with its horizontal position in
// the source crop.
type glyph struct {
	bits []uint8
	x    int
}

// segmentGlyphs extracts a left-to-right ordered sequence of normalized
// glyph bitmaps from a cleaned binary Mat.
func segmentGlyphs(bw gocv.Mat) []glyph {
	mask, boxes := components(bw)
	if len(boxes) == 0 {
		return nil
	}

	// Auto-crop bounds around surviving ink: discards background icons or
	// borders the naive crop boundary included. Only the cropped dimensions
	// matter; boxes keep their original coordinates.
	cropW, cropH := inkExtent(mask)
	if cropW == 0 || cropH == 0 {
		return nil
	}

	// Merge fragments of a single stroke before size filtering.
	boxes = mergeCloseBoxes(boxes)

	// Filter to plausible glyph-sized boxes relative to the ink extent.
	filtered := boxes[:0]
	for _, b := range boxes {
		if b.h < 10 || float64(b.h) > float64(cropH)*0.9 {
			continue
		}
		if b.w < 8 || float64(b.w) > float64(cropW)*0.95 {
			continue
		}
		filtered = append(filtered, b)
	}

	// Split boxes much wider than tall: digits merged during binarization.
	var split []box
	for _, b := range filtered {
		if float64(b.w) > float64(b.h)*2.2 {
			split = append(split, splitWideBox(mask, b)...)
		} else {
			split = append(split, b)
		}
	}

	sort.Slice(split, func(i, j int) bool { return split[i].x < split[j].x })

	var glyphs []glyph
	for _, b := range split {
		if b.w < 8 {
			continue
		}
		glyphs = append(glyphs, glyph{bits: normalizeGlyph(mask, b), x: b.x})
	}
	return glyphs
}

// components labels 4-connected components, erases speckles from the mask,
// and returns candidate bounding boxes.
func components(bw gocv.Mat) (binImage, []box) {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStatsWithParams(bw, &labels, &stats, &centroids,
		4, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	w := bw.Cols()
	h := bw.Rows()

	// Stats columns: left, top, width, height, area. Label 0 is background.
	const (
		statLeft = iota
		statTop
		statWidth
		statHeight
		statArea
	)

	keepPix := make([]bool, n)
	var boxes []box
	for i := 1; i < n; i++ {
		area := int(stats.GetIntAt(i, statArea))
		if area < speckleMinArea {
			continue
		}
		keepPix[i] = true

		if area < boxMinArea {
			continue
		}
		b := box{
			x: int(stats.GetIntAt(i, statLeft)),
			y: int(stats.GetIntAt(i, statTop)),
			w: int(stats.GetIntAt(i, statWidth)),
			h: int(stats.GetIntAt(i, statHeight)),
		}
		// Huge background blobs are not glyphs.
		if float64(b.w) > float64(w)*0.9 && float64(b.h) > float64(h)*0.9 {
			continue
		}
		// Long thin bars (border lines, HUD strips) are not digits.
		if float64(b.w) > float64(w)*0.45 && float64(b.h) < float64(h)*0.20 {
			continue
		}
		boxes = append(boxes, b)
	}

	mask := binImage{w: w, h: h, pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			label := int(labels.GetIntAt(y, x))
			if label > 0 && keepPix[label] {
				mask.pix[y*w+x] = 1
			}
		}
	}

	return mask, boxes
}

// inkExtent returns the width and height of the bounding box around all
// remaining ink, widened by inkExtentPad and clamped to the mask. Masks with
// no ink report zero; masks with too little ink report their full size.
func inkExtent(mask binImage) (int, int) {
	minX, minY := mask.w, mask.h
	maxX, maxY := -1, -1
	ink := 0
	for y := 0; y < mask.h; y++ {
		for x := 0; x < mask.w; x++ {
			if mask.at(x, y) == 0 {
				continue
			}
			ink++
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return 0, 0
	}
	if ink < minInkForExtent {
		return mask.w, mask.h
	}
	minX = max(0, minX-inkExtentPad)
	minY = max(0, minY-inkExtentPad)
	maxX = min(mask.w-1, maxX+inkExtentPad)
	maxY = min(mask.h-1, maxY+inkExtentPad)
	return maxX - minX + 1, maxY - minY + 1
}

// mergeCloseBoxes joins boxes that nearly touch horizontally and overlap
// vertically: fragments of a single stroke. Conservative, so neighboring
// characters stay separate.
func mergeCloseBoxes(boxes []box) []box {
	if len(boxes) == 0 {
		return nil
	}

	sort.Slice(boxes, func(i, j int) bool { return boxes[i].x < boxes[j].x })

	out := make([]box, 0, len(boxes))
	cur := boxes[0]
	for _, b := range boxes[1:] {
		gap := b.x - (cur.x + cur.w)
		if gap <= 15 && verticalOverlap(cur, b) > 0.4 {
			minX := min(cur.x, b.x)
			minY := min(cur.y, b.y)
			maxX := max(cur.x+cur.w, b.x+b.w)
			maxY := max(cur.y+cur.h, b.y+b.h)
			cur = box{x: minX, y: minY, w: maxX - minX, h: maxY - minY}
		} else {
			out = append(out, cur)
			cur = b
		}
	}
	return append(out, cur)
}

// verticalOverlap returns the overlap of two boxes' vertical spans as a
// fraction of the shorter span.
func verticalOverlap(a, b box) float64 {
	inter := min(a.y+a.h, b.y+b.h) - max(a.y, b.y)
	if inter < 0 {
		inter = 0
	}
	denom := min(a.h, b.h)
	if denom < 1 {
		denom = 1
	}
	return float64(inter) / float64(denom)
}

// splitWideBox cuts a wide box at low-ink columns found by a vertical ink
// projection, recovering digits that merged during binarization.
func splitWideBox(mask binImage, b box) []box {
	proj := make([]int, b.w)
	for x := 0; x < b.w; x++ {
		for y := 0; y < b.h; y++ {
			proj[x] += int(mask.at(b.x+x, b.y+y))
		}
	}

	gapThresh := max(1, b.h*3/100)
	minGap := max(2, b.w*15/1000)
	minSeg := max(8, b.w*3/100)

	var segments [][2]int
	start := 0
	i := 0
	for i < len(proj) {
		if proj[i] <= gapThresh {
			j := i
			for j < len(proj) && proj[j] <= gapThresh {
				j++
			}
			if j-i >= minGap {
				if i-start >= minSeg {
					segments = append(segments, [2]int{start, i})
				}
				start = j
			}
			i = j
		} else {
			i++
		}
	}
	if len(proj)-start >= minSeg {
		segments = append(segments, [2]int{start, len(proj)})
	}

	if len(segments) <= 1 {
		return []box{b}
	}

	var out []box
	for _, seg := range segments {
		// Tighten each segment around its ink.
		minX, minY := b.w, b.h
		maxX, maxY := -1, -1
		ink := 0
		for x := seg[0]; x < seg[1]; x++ {
			for y := 0; y < b.h; y++ {
				if mask.at(b.x+x, b.y+y) == 0 {
					continue
				}
				ink++
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
		if ink < 10 {
			continue
		}
		out = append(out, box{x: b.x + minX, y: b.y + minY, w: maxX - minX + 1, h: maxY - minY + 1})
	}

	if len(out) == 0 {
		return []box{b}
	}
	return out
}

// normalizeGlyph extracts a boxed component and fits it onto the fixed glyph
// canvas shared with the template table.
func normalizeGlyph(mask binImage, b box) []uint8 {
	bits := make([]uint8, b.w*b.h)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			if mask.at(b.x+x, b.y+y) == 1 {
				bits[y*b.w+x] = 1
			}
		}
	}
	return fitToCanvas(bits, b.w, b.h)
}

// fitToCanvas places a tight ink bitmap onto the fixed glyph canvas: padding
// proportional to the bitmap on each side, then a nearest-neighbor resample.
// Live glyphs and font templates both pass through here, so their canvases
// are directly comparable whatever size the ink was captured at.
func fitToCanvas(bits []uint8, w, h int) []uint8 {
	padX := max(2, w*8/100)
	padY := max(2, h*8/100)
	canvas := image.NewGray(image.Rect(0, 0, w+padX*2, h+padY*2))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if bits[y*w+x] == 1 {
				canvas.SetGray(x+padX, y+padY, color.Gray{Y: 255})
			}
		}
	}

	scaled := image.NewGray(image.Rect(0, 0, glyphWidth, glyphHeight))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)

	out := make([]uint8, glyphWidth*glyphHeight)
	for i, v := range scaled.Pix {
		if v > 0 {
			out[i] = 1
		}
	}
	return out
}
