package number

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"cardscan/internal/imgutil"
	"cardscan/internal/ocr"
)

// Region is one fractional crop of the rectified card searched for the
// collector number.
type Region struct {
	Label  string  `json:"label"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// regions are searched in order. Tight crops isolate the number from
// surrounding footer text; wide crops recover prints outside the usual
// position. Bottom-right first: that is where modern templates put it.
var regions = []Region{
	{Label: "bottom_right:tight", Left: 0.72, Top: 0.93, Right: 0.98, Bottom: 1.0},
	{Label: "bottom_right:wide", Left: 0.60, Top: 0.88, Right: 0.99, Bottom: 1.0},
	{Label: "bottom_left:tight", Left: 0.02, Top: 0.93, Right: 0.30, Bottom: 1.0},
	{Label: "bottom_left:wide", Left: 0.01, Top: 0.88, Right: 0.42, Bottom: 1.0},
}

// Attempt records one region/method reading for diagnostics, whether or
// not it produced a plausible number.
type Attempt struct {
	Region     string  `json:"region"`
	Method     string  `json:"method"`
	Value      string  `json:"value,omitempty"`
	Confidence float64 `json:"confidence"`
	Valid      bool    `json:"valid"`
}

// Extractor reads the collector number from a rectified card image. The
// zero value works without OCR; NewExtractor wires in a Tesseract engine
// for the OCR and vintage fallbacks.
type Extractor struct {
	engine *ocr.Engine
}

// NewExtractor creates an extractor with an OCR engine for the fallback
// methods. If engine creation fails, extraction still works on the
// template matcher alone.
func NewExtractor() *Extractor {
	engine, err := ocr.NewEngine()
	if err != nil {
		return &Extractor{}
	}
	return &Extractor{engine: engine}
}

// Close releases the OCR engine, if any.
func (e *Extractor) Close() error {
	if e.engine != nil {
		return e.engine.Close()
	}
	return nil
}

// Extract searches the known number regions of a rectified card. Per
// region the template matcher and OCR both run and their answers are
// arbitrated; the best region result wins. The vintage rotation sweep
// runs only if every region comes up empty. Returns nil when nothing
// plausible was found, along with every attempt made.
func (e *Extractor) Extract(card image.Image) (*ParsedNumber, []Attempt) {
	var (
		attempts []Attempt
		best     *ParsedNumber
	)

	tmpl := TemplateStrategy{}
	ocrStrat := OCRStrategy{Engine: e.engine}

	for _, r := range regions {
		crop := imgutil.CropFraction(card, r.Left, r.Top, r.Right, r.Bottom)
		if crop.Bounds().Dx() < 8 || crop.Bounds().Dy() < 8 {
			continue
		}

		fromTemplate, err := tmpl.Recognize(crop)
		if err == nil {
			attempts = append(attempts, attempt(r.Label, tmpl.Name(), fromTemplate))
		}

		fromOCR, err := ocrStrat.Recognize(crop)
		if err == nil && e.engine != nil {
			attempts = append(attempts, attempt(r.Label, ocrStrat.Name(), fromOCR))
		}

		picked := arbitrate(fromTemplate, fromOCR)
		if picked != nil && (best == nil || picked.Confidence > best.Confidence) {
			best = picked
		}

		if best != nil && best.Confidence >= earlyExitConfidence {
			return best, attempts
		}
	}

	if best != nil {
		return best, attempts
	}

	if e.engine != nil {
		vintage := VintageStrategy{Engine: e.engine}
		if fromVintage, err := vintage.Recognize(card); err == nil && fromVintage != nil {
			attempts = append(attempts, attempt("bottom_right:vintage", vintage.Name(), fromVintage))
			return fromVintage, attempts
		}
	}

	return nil, attempts
}

// arbitrate picks between the template and OCR readings of one region.
// The template matcher is the trusted method; OCR overrides it only when
// its answer is clearly more typical of a real collector number.
func arbitrate(fromTemplate, fromOCR *ParsedNumber) *ParsedNumber {
	if fromTemplate == nil {
		return fromOCR
	}
	if fromOCR == nil || fromOCR.Number == fromTemplate.Number {
		return fromTemplate
	}
	if parsedPlausibility(fromOCR) > parsedPlausibility(fromTemplate)+0.1 {
		return fromOCR
	}
	return fromTemplate
}

func parsedPlausibility(p *ParsedNumber) float64 {
	num, total, ok := splitNumber(p.Number)
	if !ok {
		return 0
	}
	return plausibilityScore(num, total)
}

// splitNumber parses a canonical "N/M" string back into its parts.
func splitNumber(s string) (int, int, bool) {
	left, right, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, false
	}
	num, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, false
	}
	total, err := strconv.Atoi(right)
	if err != nil {
		return 0, 0, false
	}
	return num, total, true
}

func attempt(region, method string, p *ParsedNumber) Attempt {
	a := Attempt{Region: region, Method: method}
	if p != nil {
		a.Value = p.Number
		a.Confidence = p.Confidence
		a.Valid = true
	}
	return a
}

// String implements fmt.Stringer for log lines.
func (a Attempt) String() string {
	if !a.Valid {
		return fmt.Sprintf("%s/%s: no result", a.Region, a.Method)
	}
	return fmt.Sprintf("%s/%s: %s (%.2f)", a.Region, a.Method, a.Value, a.Confidence)
}
