package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yildizm/LungScan/internal/predict"
)

// Format selects the report encoding
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name; empty means text
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s (use text, markdown or json)", name)
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

const (
	// Header opens every report
	Header = "PNEUMONIA DETECTION REPORT"

	// Disclaimer closes every report
	Disclaimer = "This report is generated by an AI model for educational purposes only. \n" +
		"Always consult with qualified healthcare professionals for medical diagnosis and treatment."

	positiveRecommendation = "The AI model has detected signs consistent with pneumonia. " +
		"Please consult with a healthcare professional immediately for proper medical evaluation and treatment."
	negativeRecommendation = "The AI model indicates the chest X-ray appears normal with no obvious signs of pneumonia. " +
		"However, always follow up with your healthcare provider for comprehensive medical assessment."

	defaultTimestampFormat = "2006-01-02 15:04:05"
)

// Recommendation returns the fixed advice for a label
func Recommendation(label predict.Label) string {
	if label == predict.LabelPositive {
		return positiveRecommendation
	}
	return negativeRecommendation
}

// Data is everything a report needs
type Data struct {
	ID              string
	GeneratedAt     time.Time
	TimestampFormat string
	InputName       string
	Result          predict.Result
}

// NewData stamps a report with a fresh ID
func NewData(inputName string, result predict.Result, now time.Time, timestampFormat string) *Data {
	return &Data{
		ID:              uuid.NewString(),
		GeneratedAt:     now,
		TimestampFormat: timestampFormat,
		InputName:       inputName,
		Result:          result,
	}
}

func (d *Data) timestamp() string {
	layout := d.TimestampFormat
	if layout == "" {
		layout = defaultTimestampFormat
	}
	return d.GeneratedAt.Format(layout)
}

// ConfidenceText renders the confidence as shown on screen, e.g. "87%"
func (d *Data) ConfidenceText() string {
	return fmt.Sprintf("%d%%", d.Result.Percent())
}

// FileName returns the download name, keyed by generation time in milliseconds
func FileName(format Format, generatedAt time.Time) string {
	return fmt.Sprintf("pneumonia-report-%d%s", generatedAt.UnixMilli(), format.Extension())
}

// Render encodes the report in the given format
func Render(format Format, d *Data) ([]byte, error) {
	switch format {
	case FormatText, "":
		return renderText(d), nil
	case FormatMarkdown:
		return renderMarkdown(d), nil
	case FormatJSON:
		return renderJSON(d)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func renderText(d *Data) []byte {
	var b bytes.Buffer
	b.WriteString(Header + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", d.timestamp())
	fmt.Fprintf(&b, "File: %s\n\n", d.InputName)
	b.WriteString("ANALYSIS RESULTS:\n")
	fmt.Fprintf(&b, "Prediction: %s\n", d.Result.Prediction)
	fmt.Fprintf(&b, "Confidence: %s\n\n", d.ConfidenceText())
	b.WriteString("RECOMMENDATION:\n")
	b.WriteString(Recommendation(d.Result.Label) + "\n\n")
	b.WriteString("DISCLAIMER:\n")
	b.WriteString(Disclaimer)
	return b.Bytes()
}

func renderMarkdown(d *Data) []byte {
	var b bytes.Buffer
	b.WriteString("# Pneumonia Detection Report\n\n")
	fmt.Fprintf(&b, "- **Report ID:** %s\n", d.ID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", d.timestamp())
	fmt.Fprintf(&b, "- **File:** `%s`\n\n", d.InputName)
	b.WriteString("## Analysis Results\n\n")
	b.WriteString("| Prediction | Confidence |\n")
	b.WriteString("|------------|------------|\n")
	fmt.Fprintf(&b, "| %s | %s |\n\n", d.Result.Prediction, d.ConfidenceText())
	b.WriteString("## Recommendation\n\n")
	b.WriteString(Recommendation(d.Result.Label) + "\n\n")
	b.WriteString("## Disclaimer\n\n")
	b.WriteString("> " + strings.ReplaceAll(Disclaimer, " \n", "\n> ") + "\n")
	return b.Bytes()
}

// jsonReport is the JSON report layout
type jsonReport struct {
	ID                string    `json:"id"`
	GeneratedAt       time.Time `json:"generated_at"`
	File              string    `json:"file"`
	Prediction        string    `json:"prediction"`
	Label             string    `json:"label"`
	Confidence        float64   `json:"confidence"`
	ConfidencePercent int       `json:"confidence_percent"`
	Recommendation    string    `json:"recommendation"`
	Disclaimer        string    `json:"disclaimer"`
}

func renderJSON(d *Data) ([]byte, error) {
	out := jsonReport{
		ID:                d.ID,
		GeneratedAt:       d.GeneratedAt,
		File:              d.InputName,
		Prediction:        d.Result.Prediction,
		Label:             d.Result.Label.String(),
		Confidence:        d.Result.Confidence,
		ConfidencePercent: d.Result.Percent(),
		Recommendation:    Recommendation(d.Result.Label),
		Disclaimer:        strings.ReplaceAll(Disclaimer, " \n", " "),
	}
	return json.MarshalIndent(out, "", "  ")
}
