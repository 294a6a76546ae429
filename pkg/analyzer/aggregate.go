package analyzer

import (
	"math"

	"screencheck/pkg/models"
)

// Per-analyzer weights. ELA carries the most weight as the strongest
// manipulation signal. The weights are deliberately strict: missing
// analyzers lower the achievable total instead of renormalizing, so a
// partial run biases toward lower scores.
var analyzerWeights = map[string]float64{
	"metadata":    0.20,
	"ela":         0.35,
	"noise":       0.25,
	"hash":        0.05,
	"compression": 0.15,
}

// weightOrder fixes the iteration order so breakdown construction is
// deterministic.
var weightOrder = []string{"metadata", "ela", "noise", "hash", "compression"}

// Verdict bands, inclusive lower bounds on the final score.
const (
	fakeThreshold       = 60
	suspiciousThreshold = 35
	uncertainThreshold  = 15
)

// Aggregate combines the analyzer reports into one weighted verdict.
// It tolerates any subset of analyzers being present and never fails.
func Aggregate(results map[string]*models.AnalyzerReport) *models.OverallReport {
	total := 0.0
	breakdown := make(map[string]models.ScoreBreakdown, len(results))

	for _, name := range weightOrder {
		report, ok := results[name]
		if !ok || report == nil {
			continue
		}
		weight := analyzerWeights[name]
		raw := float64(report.Score)
		weighted := raw * weight
		total += weighted
		breakdown[name] = models.ScoreBreakdown{
			RawScore:      round1(raw),
			Weight:        weight,
			WeightedScore: round1(weighted),
		}
	}

	final := math.Min(100, math.Max(0, round1(total)))

	overall := &models.OverallReport{
		Score:     final,
		Breakdown: breakdown,
	}

	switch {
	case final >= fakeThreshold:
		overall.Verdict = "FAKE"
		overall.Confidence = "High"
		overall.Message = "This screenshot shows strong signs of manipulation or forgery."
	case final >= suspiciousThreshold:
		overall.Verdict = "SUSPICIOUS"
		overall.Confidence = "Medium"
		overall.Message = "This screenshot has notable anomalies. It may have been altered."
	case final >= uncertainThreshold:
		overall.Verdict = "UNCERTAIN"
		overall.Confidence = "Low"
		overall.Message = "Minor anomalies detected. The screenshot may be authentic but has some irregularities."
	default:
		overall.Verdict = "AUTHENTIC"
		overall.Confidence = "High"
		overall.Message = "This screenshot appears to be genuine with no significant signs of tampering."
	}

	return overall
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
