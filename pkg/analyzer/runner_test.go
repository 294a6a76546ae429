package analyzer

import (
	"errors"
	"image"
	"testing"

	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

type stubAnalyzer struct {
	name   string
	score  int
	fail   error
	panics bool
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(_ *imageio.DecodedImage) (*models.AnalyzerReport, error) {
	if s.panics {
		panic("boom")
	}
	if s.fail != nil {
		return nil, s.fail
	}
	return report(s.score), nil
}

func testImage() *imageio.DecodedImage {
	return &imageio.DecodedImage{
		Width:  8,
		Height: 8,
		Format: "png",
		Img:    image.NewNRGBA(image.Rect(0, 0, 8, 8)),
	}
}

func TestRunAll_JoinsAllReports(t *testing.T) {
	analyzers := []Analyzer{
		&stubAnalyzer{name: "a", score: 10},
		&stubAnalyzer{name: "b", score: 20},
		&stubAnalyzer{name: "c", score: 30},
	}

	results := RunAll(testImage(), analyzers)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results["b"].Score != 20 {
		t.Errorf("b score = %d, want 20", results["b"].Score)
	}
}

func TestRunAll_ErrorDegradesToNeutral(t *testing.T) {
	analyzers := []Analyzer{
		&stubAnalyzer{name: "good", score: 5},
		&stubAnalyzer{name: "bad", fail: errors.New("no such luck")},
	}

	results := RunAll(testImage(), analyzers)

	bad := results["bad"]
	if bad == nil {
		t.Fatal("failing analyzer produced no report")
	}
	if bad.Score != 50 {
		t.Errorf("neutral score = %d, want 50", bad.Score)
	}
	if len(bad.Flags) != 1 {
		t.Errorf("neutral report has %d flags, want 1", len(bad.Flags))
	}
	if results["good"].Score != 5 {
		t.Errorf("good analyzer affected by failing one: score = %d", results["good"].Score)
	}
}

func TestRunAll_PanicDegradesToNeutral(t *testing.T) {
	analyzers := []Analyzer{
		&stubAnalyzer{name: "panicky", panics: true},
		&stubAnalyzer{name: "steady", score: 42},
	}

	results := RunAll(testImage(), analyzers)

	if results["panicky"].Score != 50 {
		t.Errorf("panicking analyzer score = %d, want 50", results["panicky"].Score)
	}
	if results["steady"].Score != 42 {
		t.Errorf("steady analyzer score = %d, want 42", results["steady"].Score)
	}
}

func TestDefaultAnalyzers_Names(t *testing.T) {
	want := map[string]bool{
		"metadata": true, "ela": true, "noise": true,
		"compression": true, "hash": true,
	}

	analyzers := DefaultAnalyzers()
	if len(analyzers) != len(want) {
		t.Fatalf("got %d analyzers, want %d", len(analyzers), len(want))
	}
	for _, a := range analyzers {
		if !want[a.Name()] {
			t.Errorf("unexpected analyzer %q", a.Name())
		}
	}
}
