package models

// AnalyzerReport contains the findings of a single analyzer run.
type AnalyzerReport struct {
	Score    int                    `json:"score"` // 0-100 where 100 means definitely manipulated
	Flags    []string               `json:"flags"`
	Details  map[string]interface{} `json:"details"`
	ELAImage string                 `json:"ela_image,omitempty"` // data URI, only set by the ELA analyzer
}

// NewAnalyzerReport creates an empty report with an allocated details map.
func NewAnalyzerReport() *AnalyzerReport {
	return &AnalyzerReport{
		Flags:   make([]string, 0),
		Details: make(map[string]interface{}),
	}
}

// AddFlag records a piece of evidence and adds its score contribution.
func (r *AnalyzerReport) AddFlag(description string, points int) {
	r.Flags = append(r.Flags, description)
	r.Score += points
}

// Finalize clamps the score into [0,100] and guarantees a non-empty
// flag list by inserting fallback when nothing triggered.
func (r *AnalyzerReport) Finalize(fallback string) *AnalyzerReport {
	if r.Score > 100 {
		r.Score = 100
	}
	if r.Score < 0 {
		r.Score = 0
	}
	if len(r.Flags) == 0 {
		r.Flags = append(r.Flags, fallback)
	}
	return r
}

// NeutralReport is returned when an analyzer fails internally. The
// aggregator still receives a well-formed input with a middle-of-the-road
// score rather than having the whole request abort.
func NeutralReport(reason string) *AnalyzerReport {
	return &AnalyzerReport{
		Score:   50,
		Flags:   []string{reason},
		Details: map[string]interface{}{},
	}
}

// ScoreBreakdown records one analyzer's contribution to the overall score.
type ScoreBreakdown struct {
	RawScore      float64 `json:"raw_score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
}

// OverallReport is the aggregated verdict across all analyzers.
type OverallReport struct {
	Score      float64                   `json:"score"`
	Verdict    string                    `json:"verdict"` // AUTHENTIC, UNCERTAIN, SUSPICIOUS, FAKE
	Confidence string                    `json:"confidence"`
	Message    string                    `json:"message"`
	Breakdown  map[string]ScoreBreakdown `json:"breakdown"`
}

// NearDuplicate describes a previously analyzed image that is visually
// near-identical to the current one.
type NearDuplicate struct {
	Filename string  `json:"filename"`
	Score    float64 `json:"score"` // duplo similarity, lower means more similar
}

// Report is the full analysis envelope returned to callers.
type Report struct {
	Status        string                     `json:"status"`
	Filename      string                     `json:"filename"`
	Overall       *OverallReport             `json:"overall"`
	Analyzers     map[string]*AnalyzerReport `json:"analyzers"`
	NearDuplicate *NearDuplicate             `json:"near_duplicate,omitempty"`
}
