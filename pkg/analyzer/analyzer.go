// Package analyzer defines the analyzer contract, runs the analyzer
// suite over a decoded image, and aggregates the per-analyzer reports
// into one overall verdict.
package analyzer

import (
	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

// Analyzer inspects a decoded image for one class of manipulation
// evidence. Implementations are pure functions of their input: they
// share no state with each other and may run in any order.
type Analyzer interface {
	// Name returns the analyzer's key in reports and weight tables.
	Name() string

	// Analyze inspects the image and returns a report. Internal
	// failures are returned as errors; the runner degrades them to a
	// neutral report so the aggregator always receives a well-formed
	// input.
	Analyze(img *imageio.DecodedImage) (*models.AnalyzerReport, error)
}
