package analyzer

import (
	"fmt"
	"sync"

	"screencheck/pkg/analyzer/compression"
	"screencheck/pkg/analyzer/ela"
	"screencheck/pkg/analyzer/hashing"
	"screencheck/pkg/analyzer/metadata"
	"screencheck/pkg/analyzer/noise"
	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

// DefaultAnalyzers returns the full analyzer suite.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		metadata.New(),
		ela.New(),
		noise.New(),
		compression.New(),
		hashing.New(),
	}
}

// RunAll fans the analyzers out to parallel workers and joins their
// reports. A failing analyzer is degraded to a neutral report; the
// others are unaffected.
func RunAll(img *imageio.DecodedImage, analyzers []Analyzer) map[string]*models.AnalyzerReport {
	results := make(map[string]*models.AnalyzerReport, len(analyzers))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, a := range analyzers {
		wg.Add(1)
		go func(a Analyzer) {
			defer wg.Done()
			report := safeAnalyze(a, img)
			mu.Lock()
			results[a.Name()] = report
			mu.Unlock()
		}(a)
	}
	wg.Wait()

	return results
}

// AnalyzeFile decodes the file, runs the full suite, and aggregates the
// verdict. Only a decode failure is fatal; it is returned as a
// *imageio.DecodeError.
func AnalyzeFile(path string) (*models.Report, *imageio.DecodedImage, error) {
	img, err := imageio.DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}

	reports := RunAll(img, DefaultAnalyzers())
	report := &models.Report{
		Status:    "success",
		Overall:   Aggregate(reports),
		Analyzers: reports,
	}
	return report, img, nil
}

func safeAnalyze(a Analyzer, img *imageio.DecodedImage) (report *models.AnalyzerReport) {
	defer func() {
		if r := recover(); r != nil {
			report = models.NeutralReport(fmt.Sprintf("%s analysis failed: %v", a.Name(), r))
		}
	}()

	rep, err := a.Analyze(img)
	if err != nil {
		return models.NeutralReport(fmt.Sprintf("%s analysis failed: %v", a.Name(), err))
	}
	return rep
}
