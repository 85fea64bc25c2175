package formatter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/LungScan/internal/predict"
)

// Formatter renders the outcome of a headless run
type Formatter interface {
	Format(batch *Batch) ([]byte, error)
}

// Outcome is the result of analyzing one image
type Outcome struct {
	Path       string
	Name       string
	MimeType   string
	Size       int
	Result     *predict.Result
	Err        error
	Duration   time.Duration
	ReportPath string
}

// Failed reports whether the analysis did not produce a result
func (o *Outcome) Failed() bool {
	return o.Err != nil || o.Result == nil
}

// ErrorMessage returns the text shown for a failed outcome
func (o *Outcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	var um interface{ UserMessage() string }
	if errors.As(o.Err, &um) {
		return um.UserMessage()
	}
	return o.Err.Error()
}

// Batch is a headless run over one or more images
type Batch struct {
	Endpoint  string
	StartedAt time.Time
	Outcomes  []*Outcome
}

// Counts tallies positive, negative and failed outcomes
func (b *Batch) Counts() (positive, negative, failed int) {
	for _, o := range b.Outcomes {
		switch {
		case o.Failed():
			failed++
		case o.Result.Label == predict.LabelPositive:
			positive++
		default:
			negative++
		}
	}
	return positive, negative, failed
}

// New returns the formatter for an output format name
func New(format string, color, emoji bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text", "terminal":
		return NewTerminal(color, emoji), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use text, json, markdown or csv)", format)
	}
}
