// Command cardscan rectifies a trading-card photo and reads its collector
// number.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"cardscan/internal/imgutil"
	"cardscan/internal/number"
	"cardscan/internal/warp"

	"github.com/disintegration/imaging"
)

// report is the machine-readable scan result.
type report struct {
	Input     string               `json:"input"`
	Rectified bool                 `json:"rectified"`
	Reason    string               `json:"reason"`
	Detection *warp.Detection      `json:"detection,omitempty"`
	Failure   *warp.Failure        `json:"failure,omitempty"`
	Number    *number.ParsedNumber `json:"number,omitempty"`
	Attempts  []number.Attempt     `json:"attempts,omitempty"`
}

func main() {
	imagePath := flag.String("image", "", "Path to card photo (PNG or JPEG)")
	outPath := flag.String("out", "", "Optional path to save the rectified card image")
	asJSON := flag.Bool("json", false, "Print the full result as JSON")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: cardscan -image <path> [-out rectified.png] [-json]")
		os.Exit(1)
	}

	// imaging.Open applies EXIF orientation, which phone photos carry.
	img, err := imaging.Open(*imagePath, imaging.AutoOrientation(true))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}

	src, err := imgutil.ToMat(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to convert image: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	params := warp.DefaultParams()
	canonical := warp.RectifyBestEffort(src, params)
	defer canonical.Close()

	card, err := imgutil.ToImage(canonical.Image)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to convert canonical image: %v\n", err)
		os.Exit(1)
	}

	if *outPath != "" {
		if err := imaging.Save(card, *outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save rectified image: %v\n", err)
			os.Exit(1)
		}
	}

	extractor := number.NewExtractor()
	defer extractor.Close()

	parsed, attempts := extractor.Extract(card)

	rep := report{
		Input:     *imagePath,
		Rectified: canonical.Rectified,
		Reason:    canonical.Reason,
		Detection: canonical.Detection,
		Failure:   canonical.Failure,
		Number:    parsed,
		Attempts:  attempts,
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	bounds := img.Bounds()
	fmt.Printf("Loaded image: %dx%d pixels\n", bounds.Dx(), bounds.Dy())
	if canonical.Rectified {
		d := canonical.Detection
		fmt.Printf("Card found: %s via %s (gate %s, score %.3f, aspect %.3f)\n",
			d.Method, d.Pipeline, d.GateMode, d.Score, d.Aspect)
	} else {
		fmt.Printf("Card not found (%s), scanning the full frame\n", canonical.Reason)
	}

	for _, a := range attempts {
		fmt.Printf("  %s\n", a)
	}

	if parsed == nil {
		fmt.Println("No collector number found")
		os.Exit(2)
	}
	fmt.Printf("Number: %s (confidence %.2f)\n", parsed.Number, parsed.Confidence)
}
