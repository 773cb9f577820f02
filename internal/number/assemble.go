package number

import (
	"fmt"
	"strconv"
	"strings"
)

// findBestNumberWindow searches an ordered character sequence for the best
// "N/M" pattern. Segmentation over-produces: background artifacts survive
// as extra matched characters on either side of the real number, so every
// window of 3 to 8 characters is parsed and the plausible parse with the
// highest confidence wins.
func findBestNumberWindow(matches []CharacterMatch) *ParsedNumber {
	if len(matches) < minGlyphsForMatch {
		return nil
	}

	var best *ParsedNumber
	for start := 0; start < len(matches); start++ {
		maxEnd := start + 8
		if maxEnd > len(matches) {
			maxEnd = len(matches)
		}
		for end := start + minGlyphsForMatch; end <= maxEnd; end++ {
			window := matches[start:end]
			num, total, ok := extractNumberPattern(window)
			if !ok {
				continue
			}
			conf := numberConfidence(num, total, window)
			if best == nil || conf > best.Confidence {
				best = &ParsedNumber{
					Number:     fmt.Sprintf("%d/%d", num, total),
					Confidence: conf,
				}
			}
		}
	}
	return best
}

// extractNumberPattern parses a character window as "digits / digits".
// Exactly one separator, one to three digits on each side, and the result
// must be plausible.
func extractNumberPattern(window []CharacterMatch) (int, int, bool) {
	var sb strings.Builder
	for _, m := range window {
		sb.WriteByte(m.Ch)
	}
	s := sb.String()

	slash := strings.IndexByte(s, '/')
	if slash <= 0 || slash == len(s)-1 {
		return 0, 0, false
	}
	left := s[:slash]
	right := s[slash+1:]
	if strings.ContainsRune(right, '/') {
		return 0, 0, false
	}
	if len(left) > 3 || len(right) > 3 {
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
	if !plausible(num, total) {
		return 0, 0, false
	}
	return num, total, true
}

// numberConfidence combines mean glyph match quality with pattern
// plausibility adjustments.
func numberConfidence(num, total int, window []CharacterMatch) float64 {
	sum := 0.0
	for _, m := range window {
		sum += m.Confidence
	}
	conf := sum / float64(len(window))

	switch {
	case total >= 50 && total <= 300:
		conf += 0.1
	case (total >= 20 && total < 50) || (total > 300 && total <= 400):
		conf += 0.05
	}

	switch {
	case num <= total:
		conf += 0.05
	case num <= total+50:
		conf += 0.02
	case num > total+100:
		conf -= 0.1
	}

	if total < 20 {
		conf -= 0.15
	}

	return clamp01(conf)
}
