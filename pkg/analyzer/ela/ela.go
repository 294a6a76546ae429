// Package ela performs Error Level Analysis: the image is re-encoded at
// a known JPEG quality and diffed against the original. Regions whose
// compression history differs from the rest of the image stand out in
// the difference map, exposing splices and overlays.
package ela

import (
	"fmt"
	"image"
	"math"

	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

const (
	// Quality is the JPEG quality for the re-save comparison.
	Quality = 90

	// blockSize matches the JPEG compression grid.
	blockSize = 8
)

type Analyzer struct{}

func New() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Name() string { return "ela" }

func (a *Analyzer) Analyze(img *imageio.DecodedImage) (*models.AnalyzerReport, error) {
	report := models.NewAnalyzerReport()

	original := imageio.ToNRGBA(img.Img)
	width, height := original.Rect.Dx(), original.Rect.Dy()

	resaved, err := roundTrip(original)
	if err != nil {
		return nil, err
	}

	// Per-channel absolute difference over R, G, B.
	diff := make([]float64, 0, width*height*3)
	maxDiff := 0.0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			po := original.PixOffset(x, y)
			pr := resaved.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				d := math.Abs(float64(original.Pix[po+c]) - float64(resaved.Pix[pr+c]))
				diff = append(diff, d)
				if d > maxDiff {
					maxDiff = d
				}
			}
		}
	}

	// Normalize to the full dynamic range for the visualization.
	divisor := maxDiff
	if divisor == 0 {
		divisor = 1
	}
	scale := 255.0 / divisor

	meanDiff, stdDiff := meanStd(diff)
	report.Details["mean_error_level"] = round2(meanDiff)
	report.Details["std_error_level"] = round2(stdDiff)
	report.Details["max_error_level"] = round2(maxDiff)
	report.Details["scale_factor"] = round2(scale)

	// Block-level variance exposes regions whose error levels are
	// inconsistent with the rest of the image.
	blockMeans := collectBlockMeans(diff, width, height)
	if len(blockMeans) > 0 {
		blockMean, blockStd := meanStd(blockMeans)
		report.Details["block_mean"] = round2(blockMean)
		report.Details["block_std"] = round2(blockStd)

		switch {
		case blockStd > 12:
			report.AddFlag(fmt.Sprintf("Very high block-level variance (%.1f) — strong indicator of image splicing", blockStd), 45)
		case blockStd > 7:
			report.AddFlag(fmt.Sprintf("Elevated block-level variance (%.1f) — possible region manipulation", blockStd), 25)
		case blockStd > 4:
			report.AddFlag(fmt.Sprintf("Slightly elevated block variance (%.1f) — minor inconsistencies", blockStd), 10)
		}

		threshold := blockMean + 3*blockStd
		if blockStd == 0 {
			threshold = blockMean + 10
		}
		outliers := 0
		for _, m := range blockMeans {
			if m > threshold {
				outliers++
			}
		}
		outlierRatio := float64(outliers) / float64(len(blockMeans))
		report.Details["outlier_blocks"] = outliers
		report.Details["outlier_ratio"] = round4(outlierRatio)

		if outlierRatio > 0.05 {
			report.AddFlag(fmt.Sprintf("Significant number of outlier blocks (%.1f%%) — localized editing detected", outlierRatio*100), 30)
		} else if outlierRatio > 0.02 {
			report.AddFlag(fmt.Sprintf("Some outlier blocks detected (%.1f%%)", outlierRatio*100), 15)
		}
	}

	// A lossless source should re-encode with near-zero error.
	if img.Format == "png" && meanDiff > 5 {
		report.AddFlag("PNG image shows elevated ELA levels — may have been converted from edited JPEG", 20)
	}

	// Sharp localized differences suggest pasted content or added text.
	if maxDiff > 200 && stdDiff > 15 {
		report.AddFlag("Extreme pixel differences detected — possible content overlay or text addition", 20)
	}

	if uri, err := imageio.PNGDataURI(renderDiff(diff, width, height, scale)); err == nil {
		report.ELAImage = uri
	}

	return report.Finalize("ELA shows consistent error levels — no manipulation detected"), nil
}

// roundTrip re-encodes the raster at the fixed ELA quality and decodes
// the result.
func roundTrip(src *image.NRGBA) (*image.NRGBA, error) {
	data, err := imageio.EncodeJPEG(src, Quality)
	if err != nil {
		return nil, err
	}
	img, err := imageio.DecodeJPEG(data)
	if err != nil {
		return nil, err
	}
	return imageio.ToNRGBA(img), nil
}

// collectBlockMeans partitions the difference map into 8x8 blocks and
// returns each block's mean difference across the three channels.
func collectBlockMeans(diff []float64, width, height int) []float64 {
	var means []float64
	for y := 0; y < height-blockSize; y += blockSize {
		for x := 0; x < width-blockSize; x += blockSize {
			sum := 0.0
			for by := y; by < y+blockSize; by++ {
				rowOff := by * width * 3
				for bx := x; bx < x+blockSize; bx++ {
					p := rowOff + bx*3
					sum += diff[p] + diff[p+1] + diff[p+2]
				}
			}
			means = append(means, sum/float64(blockSize*blockSize*3))
		}
	}
	return means
}

// renderDiff amplifies the difference map into a viewable image.
func renderDiff(diff []float64, width, height int, scale float64) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src := (y*width + x) * 3
			dst := out.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := diff[src+c] * scale
				if v > 255 {
					v = 255
				}
				out.Pix[dst+c] = uint8(v)
			}
			out.Pix[dst+3] = 255
		}
	}
	return out
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return mean, math.Sqrt(variance)
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
