// Package number reads the collector "number/total" print from a card
// image. The primary path is a deterministic font-template recognizer:
// binarize the crop, segment glyphs by connected components, and classify
// each glyph against pre-rendered digit templates. OCR and a vintage
// rotation-sweep run as lower-trust fallback strategies. Every path prefers
// returning nothing over returning an implausible number.
package number

import "regexp"

// ParsedNumber is the final recognized collector number.
type ParsedNumber struct {
	Number     string  `json:"number"` // "N/M", leading zeros stripped
	Confidence float64 `json:"confidence"`
}

// CharacterMatch is one recognized glyph with its match confidence and
// horizontal position for left-to-right ordering.
type CharacterMatch struct {
	Ch         byte
	Confidence float64
	X          int
}

// numberPattern matches a collector number anywhere in OCR output.
var numberPattern = regexp.MustCompile(`(\d{1,3})\s*/\s*(\d{1,3})`)

// Recognizer tunables. Grouped here so they stay independently adjustable;
// all values are empirical.
const (
	// Glyph canvas every live glyph and template is normalized to.
	glyphWidth  = 40
	glyphHeight = 56

	// Upscale factor for number crops; source glyphs are often under 15px.
	cropUpscale = 12

	// Template match floors. Below soft: reject. Between soft and hard:
	// accept with a confidence penalty. At or above hard: accept fully.
	matchFloorSoft    = 0.60
	matchFloorHard    = 0.65
	softMatchPenalty  = 0.85
	minGlyphsForMatch = 3 // shortest valid pattern is "N/M"

	// Plausibility bounds for the assembled number.
	minSetTotal      = 10
	maxSetTotal      = 500
	secretRareMargin = 150

	// Stop trying further regions/thresholds once a parse reaches this.
	earlyExitConfidence = 0.85
)

// plausible reports whether num/total could be a real collector number.
func plausible(num, total int) bool {
	if num <= 0 || total <= 0 {
		return false
	}
	if total < minSetTotal || total > maxSetTotal {
		return false
	}
	if num > total+secretRareMargin {
		return false
	}
	return true
}

// plausibilityScore rates how typical a valid number is, in [0,1]. Used to
// arbitrate between the template and OCR methods when both produce a
// plausible answer.
func plausibilityScore(num, total int) float64 {
	if !plausible(num, total) {
		return 0
	}

	score := 0.5 // base score for a valid pattern

	// Common set sizes: most sets total 100-250 cards.
	switch {
	case total >= 100 && total <= 250:
		score += 0.35
	case (total >= 50 && total < 100) || (total > 250 && total <= 350):
		score += 0.25
	case total >= 20 && total < 50:
		score += 0.15
	case total < 20 || total > 400:
		score -= 0.2
	}

	// Secret rares exceed the base total by rarity-dependent margins.
	switch {
	case num <= total:
		score += 0.1
	case num <= total+30:
		score += 0.15
	case num <= total+80:
		score += 0.10
	case num <= total+secretRareMargin:
		score += 0.05
	default:
		score -= 0.15
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
