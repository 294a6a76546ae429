// Package metadata inspects container metadata (EXIF tags, PNG text
// chunks, declared resolution and color mode) for signals that an
// image is a camera photo, an edited export, or a synthetic render
// rather than a genuine screenshot.
package metadata

import (
	"fmt"
	"strings"

	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

type Analyzer struct{}

func New() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Name() string { return "metadata" }

// Analyze applies the metadata rules. Every rule is independently
// additive; the report score is clamped to 100.
func (a *Analyzer) Analyze(img *imageio.DecodedImage) (*models.AnalyzerReport, error) {
	report := models.NewAnalyzerReport()
	report.Details["format"] = img.Format
	report.Details["mode"] = img.Mode
	report.Details["size"] = []int{img.Width, img.Height}
	report.Details["file_size_bytes"] = img.FileSize
	report.Details["exif"] = img.EXIF

	if !screenshotFormats[img.Format] {
		report.AddFlag(fmt.Sprintf("Unusual format for a screenshot: %s", img.Format), 15)
	}

	if len(img.EXIF) > 0 {
		a.checkEXIF(img, report)
	} else if img.Format == "jpeg" {
		report.AddFlag("JPEG with no EXIF data — metadata may have been stripped", 10)
	}

	if !isCommonResolution(img.Width, img.Height) {
		report.AddFlag(fmt.Sprintf("Non-standard resolution (%dx%d) — may be cropped or fabricated", img.Width, img.Height), 10)
	}

	// A well-formed PNG screenshot carries real detail; a tiny file for
	// its pixel count points at synthetic content.
	bytesPerPixel := float64(img.FileSize) / float64(max(img.Width*img.Height, 1))
	if img.Format == "png" && bytesPerPixel < 0.1 {
		report.AddFlag("Extremely low file size for PNG — possible synthetic/generated image", 15)
	}

	switch img.Mode {
	case "palette":
		report.AddFlag("Palette/indexed color mode — uncommon for genuine screenshots", 10)
	case "gray":
		report.AddFlag("Grayscale image — unusual for a screenshot", 5)
	}

	if img.DPI[0] != 0 || img.DPI[1] != 0 {
		report.Details["dpi"] = []float64{img.DPI[0], img.DPI[1]}
		if img.DPI[0] != img.DPI[1] {
			report.AddFlag(fmt.Sprintf("Asymmetric DPI (%.0fx%.0f) — sign of manipulation", img.DPI[0], img.DPI[1]), 15)
		}
	}

	if img.Format == "png" && len(img.Text) > 0 {
		report.Details["png_text_chunks"] = img.Text
		for key, val := range img.Text {
			lower := strings.ToLower(val)
			for _, suspect := range suspiciousSoftware {
				if strings.Contains(lower, suspect) {
					report.AddFlag(fmt.Sprintf("PNG text chunk %q references suspicious software: %s", key, val), 25)
					break
				}
			}
		}
	}

	return report.Finalize("No metadata anomalies detected"), nil
}

func (a *Analyzer) checkEXIF(img *imageio.DecodedImage, report *models.AnalyzerReport) {
	exif := img.EXIF

	// Screenshots typically carry minimal or no EXIF data.
	if len(exif) > 10 {
		report.AddFlag(fmt.Sprintf("Unusually rich EXIF data (%d tags) — typical of camera photos, not screenshots", len(exif)), 20)
	}

	for key := range exif {
		if strings.Contains(strings.ToLower(key), "gps") {
			report.AddFlag("Contains GPS/location data — not expected in screenshots", 25)
			break
		}
	}

	for key := range exif {
		lower := strings.ToLower(key)
		if lower == "model" || lower == "make" || lower == "lensmodel" {
			report.AddFlag("Contains camera hardware metadata — this is a photo, not a screenshot", 30)
			break
		}
	}

	software := strings.ToLower(exif["Software"])
	for _, suspect := range suspiciousSoftware {
		if strings.Contains(software, suspect) {
			report.AddFlag(fmt.Sprintf("Created/edited with suspicious software: %s", exif["Software"]), 35)
			break
		}
	}

	original, hasOriginal := exif["DateTimeOriginal"]
	modified, hasModified := exif["DateTime"]
	if hasOriginal && hasModified && original != modified {
		report.AddFlag("Original and modification timestamps differ — image was edited", 20)
	}
}

// isCommonResolution reports whether the dimensions match a known
// device resolution exactly or within the tolerance window, in either
// orientation.
func isCommonResolution(width, height int) bool {
	for _, r := range commonResolutions {
		if (width == r.w && height == r.h) || (width == r.h && height == r.w) {
			return true
		}
	}
	for _, r := range commonResolutions {
		if (abs(width-r.w) <= widthTolerance && abs(height-r.h) <= heightTolerance) ||
			(abs(width-r.h) <= widthTolerance && abs(height-r.w) <= heightTolerance) {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
