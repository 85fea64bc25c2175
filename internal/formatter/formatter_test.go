package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/LungScan/internal/predict"
)

type userError struct{}

func (userError) Error() string       { return "analysis failed: type=service: Invalid image format" }
func (userError) UserMessage() string { return "Analysis failed: Invalid image format" }

func sampleBatch() *Batch {
	return &Batch{
		Endpoint:  "http://localhost:8000/predict/",
		StartedAt: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		Outcomes: []*Outcome{
			{
				Name:     "sick.png",
				MimeType: "image/png",
				Size:     2048,
				Result:   &predict.Result{Label: predict.LabelPositive, Prediction: predict.PositivePrediction, Confidence: 0.87},
				Duration: 120 * time.Millisecond,
			},
			{
				Name:       "fine.jpg",
				MimeType:   "image/jpeg",
				Size:       100,
				Result:     &predict.Result{Label: predict.LabelNegative, Prediction: predict.NegativePrediction, Confidence: 0.93},
				ReportPath: "reports/pneumonia-report-1.txt",
			},
			{
				Name: "broken.png",
				Err:  userError{},
			},
		},
	}
}

func TestBatchCounts(t *testing.T) {
	positive, negative, failed := sampleBatch().Counts()
	if positive != 1 || negative != 1 || failed != 1 {
		t.Errorf("Counts() = %d, %d, %d; want 1, 1, 1", positive, negative, failed)
	}
}

func TestOutcomeErrorMessage(t *testing.T) {
	o := &Outcome{Err: userError{}}
	if got := o.ErrorMessage(); got != "Analysis failed: Invalid image format" {
		t.Errorf("Expected user message, got %q", got)
	}

	o = &Outcome{Err: errors.New("plain")}
	if got := o.ErrorMessage(); got != "plain" {
		t.Errorf("Expected plain error text, got %q", got)
	}

	if (&Outcome{}).ErrorMessage() != "" {
		t.Error("Expected empty message without error")
	}
}

func TestTerminalFormatter(t *testing.T) {
	out, err := NewTerminal(false, false).Format(sampleBatch())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"Chest X-Ray Analysis",
		"[POS] sick.png",
		"[NEG] fine.jpg",
		"Pneumonia Detected",
		"87%",
		"2.0 KiB",
		"reports/pneumonia-report-1.txt",
		"Analysis failed: Invalid image format",
		"Pneumonia detected",
		"educational purposes only",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q\n%s", want, text)
		}
	}
}

func TestTerminalFormatterSingleImageHasNoSummary(t *testing.T) {
	batch := sampleBatch()
	batch.Outcomes = batch.Outcomes[:1]

	out, _ := NewTerminal(false, false).Format(batch)
	if strings.Contains(string(out), "Summary") {
		t.Error("Expected no summary for a single image")
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSON().Format(sampleBatch())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded JSONOutput
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded.Summary.Total != 3 || decoded.Summary.Failed != 1 {
		t.Errorf("Unexpected summary %+v", decoded.Summary)
	}
	if len(decoded.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(decoded.Results))
	}
	first := decoded.Results[0]
	if first.Label != "positive" || first.ConfidencePercent != 87 || first.DurationMS != 120 {
		t.Errorf("Unexpected first result %+v", first)
	}
	if decoded.Results[2].Error == "" || decoded.Results[2].Prediction != "" {
		t.Errorf("Expected failed result, got %+v", decoded.Results[2])
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdown().Format(sampleBatch())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	md := string(out)

	for _, want := range []string{
		"# Chest X-Ray Analysis",
		"| sick.png | Pneumonia Detected | 87% |",
		"| broken.png | - | - | Analysis failed: Invalid image format |",
		"3 image(s): 1 pneumonia detected, 1 normal, 1 failed",
		"## Recommendations",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestCSVFormatter(t *testing.T) {
	out, err := NewCSV().Format(sampleBatch())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("Invalid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d", len(records))
	}
	if records[1][3] != predict.PositivePrediction || records[1][5] != "87%" {
		t.Errorf("Unexpected row %v", records[1])
	}
	if records[3][8] != "Analysis failed: Invalid image format" {
		t.Errorf("Unexpected error column %q", records[3][8])
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "text", "json", "markdown", "md", "csv"} {
		if _, err := New(name, false, false); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}
	if _, err := New("xml", false, false); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		1 << 20: "1.0 MiB",
	}
	for n, want := range tests {
		if got := formatSize(n); got != want {
			t.Errorf("formatSize(%d) = %s, want %s", n, got, want)
		}
	}
}
