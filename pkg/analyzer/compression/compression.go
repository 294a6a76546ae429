// Package compression analyzes lossy-compression artifacts. A genuine
// single-save JPEG has consistent quantization and no periodic grid
// artifacts; edited-and-resaved images show double compression, and a
// PNG converted from a JPEG retains block-grid ghosting that betrays
// its origin.
package compression

import (
	"fmt"
	"math"

	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

const (
	// doubleCompressionRatio is the boundary/interior difference ratio
	// above which double compression is flagged as detected.
	doubleCompressionRatio = 1.3

	// mildRatio marks artifacts worth reporting but below detection.
	mildRatio = 1.15

	// pngArtifactRatio flags JPEG block ghosting inside a PNG.
	pngArtifactRatio = 1.25
)

type Analyzer struct{}

func New() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Name() string { return "compression" }

// Analyze runs the four independent sub-checks. Sub-checks that do not
// apply to the source format are skipped, never failed.
func (a *Analyzer) Analyze(img *imageio.DecodedImage) (*models.AnalyzerReport, error) {
	report := models.NewAnalyzerReport()
	report.Details["format"] = img.Format

	if img.Format == "jpeg" {
		a.checkQuantizationTables(img, report)
		a.checkDoubleCompression(img, report)
		a.estimateQuality(img, report)
	}

	if img.Format == "png" {
		a.checkJPEGGhosting(img, report)
	}

	return report.Finalize("No compression anomalies detected"), nil
}

// checkQuantizationTables parses the DQT segments from the raw stream
// and flags unusually coarse quantization.
func (a *Analyzer) checkQuantizationTables(img *imageio.DecodedImage, report *models.AnalyzerReport) {
	tables := ExtractQuantizationTables(img.Raw)
	report.Details["quantization_tables_found"] = len(tables)

	for i := range tables {
		t := &tables[i]
		report.Details[fmt.Sprintf("qtable_%d_max", t.ID)] = t.Max()
		report.Details[fmt.Sprintf("qtable_%d_mean", t.ID)] = round1(t.Mean())

		if t.Max() > 100 {
			report.AddFlag(fmt.Sprintf("High quantization values in table %d — heavy compression applied", t.ID), 10)
		}
	}
}

// checkDoubleCompression compares gray-value differences at 8px block
// boundaries against interior differences. Recompression after editing
// leaves periodic artifacts at the original block grid, raising the
// boundary/interior ratio.
func (a *Analyzer) checkDoubleCompression(img *imageio.DecodedImage, report *models.AnalyzerReport) {
	gray := imageio.Grayscale(img.Img)
	h := len(gray)
	if h == 0 {
		return
	}
	w := len(gray[0])

	var boundarySum, interiorSum float64
	var boundaryN, interiorN int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			d := math.Abs(gray[y][x] - gray[y][x-1])
			if x%8 == 0 {
				boundarySum += d
				boundaryN++
			} else {
				interiorSum += d
				interiorN++
			}
		}
	}

	result := map[string]interface{}{
		"detected":   false,
		"confidence": 0,
		"details":    "",
	}
	defer func() { report.Details["double_compression"] = result }()

	if boundaryN == 0 || interiorN == 0 {
		return
	}
	boundaryMean := boundarySum / float64(boundaryN)
	interiorMean := interiorSum / float64(interiorN)

	ratio := 1.0
	if interiorMean > 0 {
		ratio = boundaryMean / interiorMean
	}
	result["boundary_interior_ratio"] = round3(ratio)

	if ratio > doubleCompressionRatio {
		detail := fmt.Sprintf("Block boundary artifacts detected (ratio: %.2f) — indicates double JPEG compression", ratio)
		result["detected"] = true
		result["confidence"] = min(100, int((ratio-1.0)*100))
		result["details"] = detail
		report.AddFlag(detail, 35)
	} else if ratio > mildRatio {
		detail := fmt.Sprintf("Mild block boundary artifacts (ratio: %.2f)", ratio)
		result["confidence"] = int((ratio - 1.0) * 60)
		result["details"] = detail
		report.AddFlag(detail, 15)
	}
}

// checkJPEGGhosting looks for JPEG block artifacts inside a PNG, the
// signature of a JPEG re-saved as PNG to hide its editing history.
// Rows are sampled at a stride to bound the cost on tall images.
func (a *Analyzer) checkJPEGGhosting(img *imageio.DecodedImage, report *models.AnalyzerReport) {
	gray := imageio.Grayscale(img.Img)
	h := len(gray)
	if h == 0 {
		return
	}
	w := len(gray[0])
	if h <= 16 || w <= 16 {
		return
	}

	step := max(1, h/100)

	var boundarySum, interiorSum float64
	var boundaryN, interiorN int
	for y := 1; y < h-1; y += step {
		for x := 1; x < w-1; x++ {
			d := math.Abs(gray[y][x] - gray[y][x-1])
			switch x % 8 {
			case 0:
				boundarySum += d
				boundaryN++
			case 4: // quarter-offset interior reference
				interiorSum += d
				interiorN++
			}
		}
	}

	if boundaryN == 0 || interiorN == 0 {
		return
	}
	ratio := (boundarySum / float64(boundaryN)) / math.Max(interiorSum/float64(interiorN), 0.01)
	report.Details["png_jpeg_artifact_ratio"] = round3(ratio)

	if ratio > pngArtifactRatio {
		report.AddFlag(fmt.Sprintf("PNG contains JPEG-like block artifacts (ratio: %.2f) — image was likely saved as JPEG then converted to PNG to hide editing", ratio), 30)
	}
}

// estimateQuality re-encodes the image at stepped qualities and picks
// the one whose output size is closest to the original file. A low
// estimate means the image has been through heavy or repeated saves.
func (a *Analyzer) estimateQuality(img *imageio.DecodedImage, report *models.AnalyzerReport) {
	src := imageio.ToNRGBA(img.Img)

	bestQuality := 0
	bestDelta := int64(math.MaxInt64)
	for q := 50; q < 100; q += 5 {
		data, err := imageio.EncodeJPEG(src, q)
		if err != nil {
			continue
		}
		delta := img.FileSize - int64(len(data))
		if delta < 0 {
			delta = -delta
		}
		if delta < bestDelta {
			bestDelta = delta
			bestQuality = q
		}
	}

	if bestQuality == 0 {
		return
	}
	report.Details["estimated_quality"] = bestQuality

	if bestQuality < 70 {
		report.AddFlag(fmt.Sprintf("Low estimated JPEG quality (%d) — multiple re-saves may have occurred", bestQuality), 15)
	}
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
