// Package ocr provides Tesseract-based recognition restricted to the
// collector-number alphabet. It backs the per-region OCR method and the
// vintage rotation-sweep fallback; the primary recognizer is the
// deterministic template matcher in internal/number.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// DigitChars is the character set for collector-number OCR. Nothing else
// appears in a "N/M" print, and the whitelist keeps Tesseract from
// hallucinating letters out of set-code glyphs.
const DigitChars = "0123456789/"

// Engine wraps a Tesseract client configured for small numeric text.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates a new OCR engine.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Disable dictionary-based word correction - "182/165" isn't an English
	// word and must not be "corrected" into one.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")
	_ = client.SetVariable("language_model_penalty_non_freq_dict_word", "0")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// ReadDigits performs digit-whitelisted OCR on a Mat at the given page
// segmentation mode.
func (e *Engine) ReadDigits(img gocv.Mat, psm gosseract.PageSegMode) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	return e.readDigitsPNG(buf.GetBytes(), psm)
}

// ReadDigitsImage performs digit-whitelisted OCR on a Go image.
func (e *Engine) ReadDigitsImage(img image.Image, psm gosseract.PageSegMode) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return e.readDigitsPNG(buf.Bytes(), psm)
}

func (e *Engine) readDigitsPNG(data []byte, psm gosseract.PageSegMode) (string, error) {
	if err := e.client.SetPageSegMode(psm); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetWhitelist(DigitChars); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	text = strings.Join(strings.Fields(text), " ")
	return text, nil
}

// PreprocessRegion prepares a number-region crop for OCR: upscale small
// crops, equalize local contrast, binarize with Otsu, and flip to dark
// text on light background if needed.
func PreprocessRegion(region gocv.Mat) gocv.Mat {
	h, w := region.Rows(), region.Cols()

	// Upscale small crops for better OCR (target ~150px minimum dimension)
	var scaled gocv.Mat
	if minDim := min(h, w); minDim < 150 && minDim > 0 {
		scale := 150.0 / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(region, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = region.Clone()
	}

	var gray gocv.Mat
	if scaled.Channels() == 1 {
		gray = scaled.Clone()
	} else {
		gray = gocv.NewMat()
		gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	}
	scaled.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{8, 8})
	defer clahe.Close()

	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	enhanced.Close()

	// Tesseract expects dark text on light background.
	whiteCount := gocv.CountNonZero(binary)
	totalPixels := binary.Rows() * binary.Cols()
	if totalPixels > 0 && float64(whiteCount)/float64(totalPixels) < 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()

	return result
}
