package number

import (
	"fmt"
	"image"
	"strings"

	"cardscan/internal/imgutil"
	"cardscan/internal/ocr"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Strategy recognizes a collector number in a region crop. A nil result
// with a nil error means the strategy found nothing plausible.
type Strategy interface {
	Name() string
	Recognize(crop image.Image) (*ParsedNumber, error)
}

// TemplateStrategy is the deterministic primary recognizer: binarize the
// crop at several thresholds, segment connected components into glyphs,
// and classify each against the pre-rendered font templates. No external
// engine, so results are identical across runs and hosts.
type TemplateStrategy struct{}

func (TemplateStrategy) Name() string { return "template" }

func (TemplateStrategy) Recognize(crop image.Image) (*ParsedNumber, error) {
	scaled, err := prepareCrop(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare crop: %w", err)
	}
	defer scaled.Close()

	var best *ParsedNumber
	consider := func(p *ParsedNumber) {
		if p != nil && (best == nil || p.Confidence > best.Confidence) {
			best = p
		}
	}

	w := scaled.Cols()
	h := scaled.Rows()
	for _, strat := range roiStrategies {
		rect := strat.rect(w, h)
		if rect.Dx() < glyphWidth || rect.Dy() < glyphHeight {
			continue
		}
		roi := scaled.Region(rect)

		for _, pct := range thresholdPercentiles {
			bw := binarizePercentile(roi, pct)
			consider(matchBinary(bw))
			bw.Close()
			if best != nil && best.Confidence >= earlyExitConfidence {
				break
			}
		}
		if best == nil || best.Confidence < earlyExitConfidence {
			bw := binarizeOtsu(roi)
			consider(matchBinary(bw))
			bw.Close()
		}
		roi.Close()

		if best != nil && best.Confidence >= earlyExitConfidence {
			break
		}
	}

	return best, nil
}

// matchBinary runs one binarized ROI through segmentation, glyph matching
// and window assembly.
func matchBinary(bw gocv.Mat) *ParsedNumber {
	glyphs := segmentGlyphs(bw)
	if len(glyphs) < minGlyphsForMatch {
		return nil
	}

	matches := make([]CharacterMatch, 0, len(glyphs))
	for _, g := range glyphs {
		ch, conf, ok := matchGlyph(g.bits)
		if !ok {
			continue
		}
		matches = append(matches, CharacterMatch{Ch: ch, Confidence: conf, X: g.x})
	}
	return findBestNumberWindow(matches)
}

// ocrPSMs are the page segmentation modes tried per region, from assuming
// a uniform text block down to raw-line mode for degraded prints.
var ocrPSMs = []gosseract.PageSegMode{
	gosseract.PSM_SINGLE_BLOCK,
	gosseract.PSM_SINGLE_LINE,
	gosseract.PSM_RAW_LINE,
}

// OCRStrategy reads a region with Tesseract under a digit whitelist. Less
// trusted than the template matcher but reads fonts the templates miss.
type OCRStrategy struct {
	Engine *ocr.Engine
}

func (OCRStrategy) Name() string { return "ocr" }

func (s OCRStrategy) Recognize(crop image.Image) (*ParsedNumber, error) {
	if s.Engine == nil {
		return nil, nil
	}

	mat, err := imgutil.ToMat(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to convert crop: %w", err)
	}
	defer mat.Close()

	prepped := ocr.PreprocessRegion(mat)
	defer prepped.Close()

	for _, psm := range ocrPSMs {
		text, err := s.Engine.ReadDigits(prepped, psm)
		if err != nil {
			continue
		}
		if p := ParseOCRText(text); p != nil {
			return p, nil
		}
	}
	return nil, nil
}

// ParseOCRText extracts a plausible collector number from raw OCR output.
// The confusable letters I and l are folded to 1 first; this normalization
// applies only to engine output, never to template matches.
func ParseOCRText(text string) *ParsedNumber {
	text = strings.NewReplacer("I", "1", "l", "1").Replace(text)

	m := numberPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	num := atoiSafe(m[1])
	total := atoiSafe(m[2])
	if !plausible(num, total) {
		return nil
	}

	conf := 0.80
	if total >= 150 {
		conf += 0.15
	}
	return &ParsedNumber{
		Number:     fmt.Sprintf("%d/%d", num, total),
		Confidence: clamp01(conf),
	}
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
