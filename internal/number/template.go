package number

import (
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// templateChars are the only characters a collector number can contain.
const templateChars = "0123456789/"

// templateSizes are the font sizes rendered per family, covering scaling
// variation between card print sizes after the fixed crop upscale.
var templateSizes = []float64{44, 48, 52}

// templateFonts are the embedded font families rendered into the table.
// Card number prints are geometric sans faces; the Go font family spans
// regular, bold, condensed-ish (medium), mono and oblique shapes without
// touching the filesystem, which keeps the table identical on every host.
var templateFonts = [][]byte{
	goregular.TTF,
	gobold.TTF,
	gomedium.TTF,
	gomono.TTF,
	goitalic.TTF,
}

var (
	templateOnce  sync.Once
	templateTable map[byte][][]uint8
)

// templates returns the process-wide font-template table, building it on
// first use. The table is never mutated after construction, so readers need
// no locking.
func templates() map[byte][][]uint8 {
	templateOnce.Do(func() {
		templateTable = buildTemplates()
	})
	return templateTable
}

func buildTemplates() map[byte][][]uint8 {
	table := make(map[byte][][]uint8, len(templateChars))

	for _, ttf := range templateFonts {
		fnt, err := opentype.Parse(ttf)
		if err != nil {
			continue
		}
		for _, size := range templateSizes {
			face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
				Size:    size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				continue
			}
			ascent := face.Metrics().Ascent.Ceil()
			for i := 0; i < len(templateChars); i++ {
				ch := templateChars[i]
				table[ch] = append(table[ch], renderTemplate(face, ch, ascent))
			}
			face.Close()
		}
	}

	return table
}

// renderTemplate draws one character onto a staging canvas, crops it to the
// ink bounding box and normalizes the result to the shared glyph canvas.
// Cropping first puts templates through the exact normalization live glyphs
// receive, so match scores do not depend on where the face places its ink or
// on the render size.
func renderTemplate(face font.Face, ch byte, ascent int) []uint8 {
	canvas := image.NewGray(image.Rect(0, 0, 60, 80))
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(5, ascent),
	}
	d.DrawString(string(rune(ch)))

	w, h := canvas.Rect.Dx(), canvas.Rect.Dy()
	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.GrayAt(x, y).Y > 64 {
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
	}
	if maxX < 0 {
		return make([]uint8, glyphWidth*glyphHeight)
	}

	bw, bh := maxX-minX+1, maxY-minY+1
	bits := make([]uint8, bw*bh)
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			if canvas.GrayAt(minX+x, minY+y).Y > 64 {
				bits[y*bw+x] = 1
			}
		}
	}
	return fitToCanvas(bits, bw, bh)
}

// matchGlyph classifies a normalized glyph bitmap against every template
// variant by normalized Hamming similarity (fraction of matching pixels).
// Scores below the soft floor are rejected; scores between the soft and
// hard floors are accepted with a penalty so marginal matches can still
// complete a pattern without inflating its confidence.
func matchGlyph(g []uint8) (byte, float64, bool) {
	var bestCh byte
	bestScore := -1.0

	// Iterate characters in declared order so a tied score always resolves
	// to the same character on every call.
	table := templates()
	for i := 0; i < len(templateChars); i++ {
		for _, t := range table[templateChars[i]] {
			same := 0
			for i := range t {
				if g[i] == t[i] {
					same++
				}
			}
			score := float64(same) / float64(len(t))
			if score > bestScore {
				bestScore = score
				bestCh = templateChars[i]
			}
		}
	}

	if bestScore < matchFloorSoft {
		return 0, 0, false
	}
	if bestScore < matchFloorHard {
		return bestCh, bestScore * softMatchPenalty, true
	}
	return bestCh, bestScore, true
}
