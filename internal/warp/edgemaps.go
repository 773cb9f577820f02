package warp

import (
	"image"

	"gocv.io/x/gocv"
)

// edgeMap is one binary or edge representation of the input, labeled by the
// preprocessing pipeline that produced it.
type edgeMap struct {
	name string
	mat  gocv.Mat
}

// generateEdgeMaps runs the input grayscale image through several independent
// preprocessing pipelines. Each pipeline degrades differently (glare defeats
// plain Canny, shadows defeat Otsu), so candidates are pooled across all of
// them. Every map is morphologically closed to bridge broken contours.
// The caller owns the returned Mats and must call closeEdgeMaps.
func generateEdgeMaps(gray gocv.Mat) []edgeMap {
	maps := make([]edgeMap, 0, 6)

	// Pipeline 1: blur + Canny
	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{5, 5}, 0, 0, gocv.BorderDefault)
	edges1 := gocv.NewMat()
	gocv.Canny(blurred, &edges1, 50, 150)
	blurred.Close()
	maps = append(maps, edgeMap{name: "blur_canny", mat: edges1})

	// Pipeline 2: CLAHE + Canny (local contrast equalization for glare/shadow)
	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{8, 8})
	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	clahe.Close()
	claheBlur := gocv.NewMat()
	gocv.GaussianBlur(enhanced, &claheBlur, image.Point{5, 5}, 0, 0, gocv.BorderDefault)
	enhanced.Close()
	edges2 := gocv.NewMat()
	gocv.Canny(claheBlur, &edges2, 50, 150)
	claheBlur.Close()
	maps = append(maps, edgeMap{name: "clahe_canny", mat: edges2})

	// Pipeline 3: adaptive threshold (varying lighting)
	adaptive := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &adaptive, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, 11, 2)
	maps = append(maps, edgeMap{name: "adaptive_thresh", mat: adaptive})

	// Pipeline 4: Otsu threshold (bimodal images)
	otsu := gocv.NewMat()
	gocv.Threshold(gray, &otsu, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	maps = append(maps, edgeMap{name: "otsu_thresh", mat: otsu})

	// Pipeline 5: heavy blur + wider Canny thresholds (sensor noise)
	heavyBlur := gocv.NewMat()
	gocv.GaussianBlur(gray, &heavyBlur, image.Point{9, 9}, 0, 0, gocv.BorderDefault)
	edges5 := gocv.NewMat()
	gocv.Canny(heavyBlur, &edges5, 30, 100)
	heavyBlur.Close()
	maps = append(maps, edgeMap{name: "heavy_blur_canny", mat: edges5})

	// Pipeline 6: bilateral filter + Canny (edge-preserving blur)
	bilateral := gocv.NewMat()
	gocv.BilateralFilter(gray, &bilateral, 9, 75, 75)
	edges6 := gocv.NewMat()
	gocv.Canny(bilateral, &edges6, 50, 150)
	bilateral.Close()
	maps = append(maps, edgeMap{name: "bilateral_canny", mat: edges6})

	// Close fragmented edges so contour extraction sees whole card outlines.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{5, 5})
	defer kernel.Close()
	for i := range maps {
		gocv.MorphologyEx(maps[i].mat, &maps[i].mat, gocv.MorphClose, kernel)
	}

	return maps
}

func closeEdgeMaps(maps []edgeMap) {
	for i := range maps {
		maps[i].mat.Close()
	}
}
