package predict

// PositivePrediction is the label the service returns for a positive finding
const PositivePrediction = "Pneumonia Detected"

// NegativePrediction is the label the service returns for a clear image
const NegativePrediction = "Normal Lung"

// Label is the domain classification of a prediction
type Label int

const (
	LabelNegative Label = iota
	LabelPositive
)

// String returns the label name
func (l Label) String() string {
	if l == LabelPositive {
		return "positive"
	}
	return "negative"
}

// ClassifyPrediction maps the service's prediction string to a Label.
// Only the exact positive string counts as positive.
func ClassifyPrediction(prediction string) Label {
	if prediction == PositivePrediction {
		return LabelPositive
	}
	return LabelNegative
}

// Result is a successful classification
type Result struct {
	Label      Label   `json:"label"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"` // in [0,1]
}

// Percent returns the confidence as a rounded integer percentage
func (r *Result) Percent() int {
	return ConfidencePercent(r.Confidence)
}

// ConfidencePercent rounds a [0,1] confidence to an integer percentage, half away from zero
func ConfidencePercent(confidence float64) int {
	return int(confidence*100 + 0.5)
}

// response is the JSON body returned by POST /predict/
type response struct {
	Prediction string   `json:"prediction"`
	Confidence *float64 `json:"confidence"`
	Error      string   `json:"error,omitempty"`
}
