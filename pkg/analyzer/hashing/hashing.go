// Package hashing fingerprints the image content. The hashes exist
// primarily for duplicate and similarity lookups, but a fingerprint
// with almost no variation is itself evidence of non-photographic
// content such as a solid fill or gradient.
package hashing

import (
	"screencheck/pkg/fingerprint"
	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

// lowComplexityChars is the distinct-hex-character count at or below
// which a hash is considered low complexity.
const lowComplexityChars = 3

type Analyzer struct{}

func New() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Name() string { return "hash" }

func (a *Analyzer) Analyze(img *imageio.DecodedImage) (*models.AnalyzerReport, error) {
	report := models.NewAnalyzerReport()

	ahash := fingerprint.AverageHash(img.Img)
	dhash := fingerprint.DifferenceHash(img.Img)

	report.Details["md5"] = fingerprint.FileChecksum(img.Raw)
	report.Details["phash"] = ahash
	report.Details["dhash"] = dhash
	report.Details["hash_bits"] = fingerprint.HashBits

	uniqueA := fingerprint.DistinctHexChars(ahash)
	uniqueD := fingerprint.DistinctHexChars(dhash)
	report.Details["phash_unique_chars"] = uniqueA
	report.Details["dhash_unique_chars"] = uniqueD

	if uniqueA <= lowComplexityChars {
		report.AddFlag("Perceptual hash has very low complexity — possibly a solid/gradient image, not a real screenshot", 20)
	}
	if uniqueD <= lowComplexityChars {
		report.AddFlag("Difference hash has very low complexity — image lacks typical screenshot detail", 15)
	}

	return report.Finalize("Hash analysis nominal — image fingerprints generated successfully"), nil
}
