package number

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"regexp"

	"cardscan/internal/imgutil"

	"github.com/disintegration/gift"
	"github.com/otiai10/gosseract/v2"
)

// Vintage-era cards print the number small in the bottom-right corner,
// often at a slight skew from the era's sheet cutting. The sweep tries a
// range of counter-rotations before reading.
var (
	vintageAngles = []float64{0, -3, 3, -6, 6, -9, 9, -12, 12}

	// Sub-crop origins within the corner band, as fractions of the band.
	// Progressively tighter framings around the expected number position.
	vintageOffsets = [][2]float64{
		{0, 0},
		{0.20, 0.15},
		{0.30, 0.25},
		{0.35, 0.30},
	}

	vintagePSMs = []gosseract.PageSegMode{
		gosseract.PSM_SINGLE_LINE,
		gosseract.PSM_SINGLE_WORD,
		gosseract.PSM_RAW_LINE,
	}

	// Wider than numberPattern: four-digit reads are kept so the year
	// penalty can reject them instead of them reparsing as truncated
	// three-digit numbers.
	vintagePattern = regexp.MustCompile(`(\d{1,4})\s*/\s*(\d{1,4})`)
)

// VintageStrategy sweeps rotations and sub-crops of the bottom-right
// corner, reading each variant with OCR and keeping the best-scoring
// plausible result. Last resort: it runs only when the per-region
// strategies all come up empty.
type VintageStrategy struct {
	Engine ocrReader
}

// ocrReader is the slice of the OCR engine the sweep needs.
type ocrReader interface {
	ReadDigitsImage(img image.Image, psm gosseract.PageSegMode) (string, error)
}

func (VintageStrategy) Name() string { return "vintage" }

// Recognize takes the full rectified card image, not a region crop.
func (s VintageStrategy) Recognize(card image.Image) (*ParsedNumber, error) {
	if s.Engine == nil {
		return nil, nil
	}

	band := imgutil.CropFraction(card, 0.55, 0.82, 1.0, 1.0)

	var best *ParsedNumber
	bestScore := math.Inf(-1)

	for _, off := range vintageOffsets {
		crop := imgutil.CropFraction(band, off[0], off[1], 1.0, 1.0)
		if crop.Bounds().Dx() < 8 || crop.Bounds().Dy() < 8 {
			continue
		}

		for _, angle := range vintageAngles {
			num, total, found := s.readVariant(s.prepare(crop, angle))
			if !found {
				continue
			}

			score := vintageScore(num, total, angle)
			if score > bestScore {
				bestScore = score
				best = &ParsedNumber{
					Number:     fmt.Sprintf("%d/%d", num, total),
					Confidence: vintageConfidence(score),
				}
			}
		}
	}

	if best == nil || bestScore <= 0 {
		return nil, nil
	}
	return best, nil
}

// prepare rotates, enhances and binarizes one sweep variant into dark text
// on a light background.
func (s VintageStrategy) prepare(crop image.Image, angle float64) *image.Gray {
	b := crop.Bounds()
	g := gift.New(
		gift.Rotate(float32(angle), color.White, gift.CubicInterpolation),
		gift.Grayscale(),
		gift.Resize(b.Dx()*8, 0, gift.LanczosResampling),
		gift.Contrast(60),
		gift.UnsharpMask(1.0, 1.5, 0),
	)
	gray := image.NewGray(g.Bounds(b))
	g.Draw(gray, crop)

	t := percentileOf(gray.Pix, 35)
	bw := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		if v > t {
			bw.Pix[i] = 255
		}
	}
	return bw
}

func (s VintageStrategy) readVariant(bw *image.Gray) (int, int, bool) {
	for _, psm := range vintagePSMs {
		text, err := s.Engine.ReadDigitsImage(bw, psm)
		if err != nil || text == "" {
			continue
		}
		m := vintagePattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		num := atoiSafe(m[1])
		total := atoiSafe(m[2])
		// The sweep is the least trusted path, so it is held to the same
		// bounds as every other result. This also rejects year reads
		// outright; the score penalty below is a second line of defense.
		if !plausible(num, total) {
			continue
		}
		return num, total, true
	}
	return 0, 0, false
}

// vintageScore rates one sweep reading. Copyright years are the dominant
// false positive on vintage cards, so anything in a year range is heavily
// penalized, as is needing a large counter-rotation.
func vintageScore(num, total int, angle float64) float64 {
	score := 0.0
	if total >= 20 && total <= maxSetTotal {
		score += 2.0
	}
	if total >= 50 {
		score += 1.0
	}
	if num > 0 {
		score += 0.5
	}
	if num > total+secretRareMargin {
		score -= 5.0
	}
	if isYear(num) || isYear(total) {
		score -= 5.0
	}
	score -= math.Abs(angle) * 0.05
	return score
}

func isYear(n int) bool {
	return n >= 1900 && n <= 2099
}

func vintageConfidence(score float64) float64 {
	c := 0.5 + score/5
	if c < 0.5 {
		c = 0.5
	}
	if c > 0.9 {
		c = 0.9
	}
	return c
}
