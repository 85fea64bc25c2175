package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// csvFormatter formats one row per analyzed image
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(batch *Batch) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{
		"File",
		"MIME Type",
		"Size",
		"Prediction",
		"Label",
		"Confidence",
		"Duration (ms)",
		"Report",
		"Error",
	}

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range batch.Outcomes {
		record := []string{
			o.Name,
			o.MimeType,
			fmt.Sprintf("%d", o.Size),
			"",
			"",
			"",
			fmt.Sprintf("%d", o.Duration.Milliseconds()),
			o.ReportPath,
			singleLine(o.ErrorMessage()),
		}
		if !o.Failed() {
			record[3] = o.Result.Prediction
			record[4] = o.Result.Label.String()
			record[5] = fmt.Sprintf("%d%%", o.Result.Percent())
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}
