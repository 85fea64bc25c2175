package formatter

import (
	"encoding/json"
	"time"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	Endpoint  string           `json:"endpoint"`
	StartedAt time.Time        `json:"started_at"`
	Summary   *SummaryOutput   `json:"summary"`
	Results   []*OutcomeOutput `json:"results"`
}

// SummaryOutput counts outcomes by classification
type SummaryOutput struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Failed   int `json:"failed"`
}

// OutcomeOutput is one analyzed image
type OutcomeOutput struct {
	File              string  `json:"file"`
	Path              string  `json:"path,omitempty"`
	MimeType          string  `json:"mime_type,omitempty"`
	Size              int     `json:"size"`
	Prediction        string  `json:"prediction,omitempty"`
	Label             string  `json:"label,omitempty"`
	Confidence        float64 `json:"confidence,omitempty"`
	ConfidencePercent int     `json:"confidence_percent,omitempty"`
	DurationMS        int64   `json:"duration_ms"`
	Report            string  `json:"report,omitempty"`
	Error             string  `json:"error,omitempty"`
}

func (f *jsonFormatter) Format(batch *Batch) ([]byte, error) {
	positive, negative, failed := batch.Counts()

	output := &JSONOutput{
		Endpoint:  batch.Endpoint,
		StartedAt: batch.StartedAt,
		Summary: &SummaryOutput{
			Total:    len(batch.Outcomes),
			Positive: positive,
			Negative: negative,
			Failed:   failed,
		},
		Results: createOutcomeOutputs(batch.Outcomes),
	}

	return json.MarshalIndent(output, "", "  ")
}

func createOutcomeOutputs(outcomes []*Outcome) []*OutcomeOutput {
	outputs := make([]*OutcomeOutput, 0, len(outcomes))

	for _, o := range outcomes {
		out := &OutcomeOutput{
			File:       o.Name,
			Path:       o.Path,
			MimeType:   o.MimeType,
			Size:       o.Size,
			DurationMS: o.Duration.Milliseconds(),
			Report:     o.ReportPath,
		}
		if o.Failed() {
			out.Error = o.ErrorMessage()
		} else {
			out.Prediction = o.Result.Prediction
			out.Label = o.Result.Label.String()
			out.Confidence = o.Result.Confidence
			out.ConfidencePercent = o.Result.Percent()
		}
		outputs = append(outputs, out)
	}

	return outputs
}
