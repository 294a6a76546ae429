// Package noise measures noise-profile consistency across image
// regions. Genuine screenshots carry uniform capture and compression
// noise; spliced regions bring their own noise profile with them, and
// fully synthetic renders are often suspiciously clean.
package noise

import (
	"fmt"
	"math"

	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

// gridDivisions splits the image into an 8x8 grid of regions.
const gridDivisions = 8

type Analyzer struct{}

func New() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Name() string { return "noise" }

func (a *Analyzer) Analyze(img *imageio.DecodedImage) (*models.AnalyzerReport, error) {
	report := models.NewAnalyzerReport()

	gray := imageio.Grayscale(img.Img)
	height := len(gray)
	if height == 0 {
		return nil, fmt.Errorf("empty raster")
	}
	width := len(gray[0])

	globalNoise := estimateNoise(gray, 0, height, 0, width)

	cellH := height / gridDivisions
	cellW := width / gridDivisions

	regional := make([]float64, 0, gridDivisions*gridDivisions)
	noiseMap := make([][]float64, 0, gridDivisions)

	for row := 0; row < gridDivisions; row++ {
		mapRow := make([]float64, 0, gridDivisions)
		for col := 0; col < gridDivisions; col++ {
			y1 := row * cellH
			y2 := y1 + cellH
			if row == gridDivisions-1 {
				y2 = height // last row absorbs remainder pixels
			}
			x1 := col * cellW
			x2 := x1 + cellW
			if col == gridDivisions-1 {
				x2 = width
			}

			n := estimateNoise(gray, y1, y2, x1, x2)
			regional = append(regional, n)
			mapRow = append(mapRow, round2(n))
		}
		noiseMap = append(noiseMap, mapRow)
	}

	noiseMean, noiseStd := meanStd(regional)
	noiseRange := maxOf(regional) - minOf(regional)

	// Coefficient of variation: normalized inconsistency measure.
	cv := 0.0
	if noiseMean > 0 {
		cv = noiseStd / noiseMean * 100
	}

	report.Details["global_noise"] = round2(globalNoise)
	report.Details["regional_mean"] = round2(noiseMean)
	report.Details["regional_std"] = round2(noiseStd)
	report.Details["regional_range"] = round2(noiseRange)
	report.Details["coefficient_of_variation"] = round2(cv)
	report.Details["noise_map"] = noiseMap

	outliers, extremeOutliers := 0, 0
	if noiseStd > 0 {
		for _, n := range regional {
			z := math.Abs((n - noiseMean) / noiseStd)
			if z > 2.5 {
				outliers++
			}
			if z > 3.5 {
				extremeOutliers++
			}
		}
	}
	report.Details["outlier_regions"] = outliers
	report.Details["extreme_outlier_regions"] = extremeOutliers

	switch {
	case cv > 60:
		report.AddFlag(fmt.Sprintf("Extreme noise inconsistency (CV=%.1f%%) — very likely spliced from multiple sources", cv), 50)
	case cv > 40:
		report.AddFlag(fmt.Sprintf("High noise inconsistency (CV=%.1f%%) — regions have different noise profiles", cv), 35)
	case cv > 25:
		report.AddFlag(fmt.Sprintf("Moderate noise inconsistency (CV=%.1f%%) — some regions differ", cv), 20)
	case cv > 15:
		report.AddFlag(fmt.Sprintf("Slight noise variation (CV=%.1f%%) — mostly consistent", cv), 8)
	}

	if extremeOutliers >= 3 {
		report.AddFlag(fmt.Sprintf("%d regions have extreme noise differences — strong splicing indicator", extremeOutliers), 25)
	} else if outliers >= 4 {
		report.AddFlag(fmt.Sprintf("%d regions show abnormal noise levels", outliers), 15)
	}

	// Real captures are never perfectly uniform across every region.
	if noiseMean > 0 && cv < 3 && globalNoise > 5 {
		report.AddFlag("Suspiciously uniform noise — may be a computer-generated or synthetic image", 20)
	}

	// Near-zero noise everywhere suggests a rendered mockup rather than
	// a real capture.
	if globalNoise < 1.5 && noiseMean < 2 {
		report.AddFlag("Extremely low noise — could be a rendered/generated mockup rather than real screenshot", 15)
	}

	return report.Finalize("Noise analysis shows consistent patterns — no splicing indicators"), nil
}

// estimateNoise estimates the noise level of a region as the standard
// deviation of its discrete Laplacian response (4-neighbor kernel).
// Regions smaller than 3x3 have no interior and estimate to zero.
func estimateNoise(gray [][]float64, y1, y2, x1, x2 int) float64 {
	h, w := y2-y1, x2-x1
	if h < 3 || w < 3 {
		return 0
	}

	response := make([]float64, 0, (h-2)*(w-2))
	for y := y1 + 1; y < y2-1; y++ {
		for x := x1 + 1; x < x2-1; x++ {
			lap := 4*gray[y][x] - gray[y-1][x] - gray[y+1][x] - gray[y][x-1] - gray[y][x+1]
			response = append(response, lap)
		}
	}

	_, std := meanStd(response)
	return std
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

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
