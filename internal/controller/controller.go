package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yildizm/LungScan/internal/config"
	"github.com/yildizm/LungScan/internal/input"
	"github.com/yildizm/LungScan/internal/logger"
	"github.com/yildizm/LungScan/internal/monitor"
	"github.com/yildizm/LungScan/internal/predict"
	"github.com/yildizm/LungScan/internal/report"
)

// Phase is the current screen of the scan workflow
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreviewing
	PhaseLoading
	PhaseResultShown
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePreviewing:
		return "previewing"
	case PhaseLoading:
		return "loading"
	case PhaseResultShown:
		return "result"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Predictor exchanges image bytes for a classification
type Predictor interface {
	Predict(ctx context.Context, name, mimeType string, data []byte) (*predict.Result, error)
}

// Controller owns the selected image and the analysis result and moves
// between phases. It is safe for use from multiple goroutines.
type Controller struct {
	mu sync.Mutex

	phase  Phase
	input  *input.Selected
	result *predict.Result
	notice *Error

	allowed   *input.AllowList
	predictor Predictor
	log       *logger.Logger
	now       func() time.Time
	session   *monitor.Session

	reportFormat    report.Format
	timestampFormat string

	// generation is bumped by every transition into Loading and by Reset
	generation uint64
	cancel     context.CancelFunc
}

// Option configures a Controller
type Option func(*Controller)

// WithAllowedTypes replaces the accepted MIME types
func WithAllowedTypes(types []string) Option {
	return func(c *Controller) {
		c.allowed = input.NewAllowList(types)
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log.WithComponent("controller")
		}
	}
}

// WithClock overrides the time source used for reports
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithSession records every finished analysis and export in s
func WithSession(s *monitor.Session) Option {
	return func(c *Controller) {
		c.session = s
	}
}

// WithReport sets the export format and the timestamp layout written into reports
func WithReport(format report.Format, timestampFormat string) Option {
	return func(c *Controller) {
		c.reportFormat = format
		c.timestampFormat = timestampFormat
	}
}

// New creates a controller in the idle phase
func New(predictor Predictor, opts ...Option) *Controller {
	c := &Controller{
		phase:        PhaseIdle,
		allowed:      input.NewAllowList(config.DefaultAllowedTypes),
		predictor:    predictor,
		log:          logger.Discard(),
		now:          time.Now,
		reportFormat: report.FormatText,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot is a consistent copy of the controller state for rendering
type Snapshot struct {
	Phase   Phase
	Input   *input.Selected
	Result  *predict.Result
	Notice  *Error
	Allowed string
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Phase:   c.phase,
		Input:   c.input,
		Notice:  c.notice,
		Allowed: c.allowed.Describe(),
	}
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}
	return s
}

// Phase returns the current phase
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Input returns the selected image, or nil
func (c *Controller) Input() *input.Selected {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Result returns the last analysis result, or nil
func (c *Controller) Result() *predict.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil
	}
	r := *c.result
	return &r
}

// Notice returns the pending user-visible error, or nil
func (c *Controller) Notice() *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// DismissNotice clears the pending notice
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = nil
}

// ReportError surfaces an error from outside the state machine, such as an unreadable file
func (c *Controller) ReportError(kind ErrorKind, message string, cause error) *Error {
	e := &Error{Kind: kind, Message: message, Cause: cause}
	c.mu.Lock()
	c.notice = e
	c.mu.Unlock()
	c.log.Warn("%s", e.Error())
	return e
}

// SelectInput validates and stores an image. Accepted in idle and previewing;
// a rejected image leaves the current phase and selection untouched.
func (c *Controller) SelectInput(in *input.Selected) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseIdle && c.phase != PhasePreviewing {
		return ErrPhaseLocked
	}
	if in == nil {
		return c.fail(noInputSelected())
	}
	if !c.allowed.Allows(in.MimeType) {
		return c.fail(invalidInputType(in.MimeType, c.allowed.Describe()))
	}

	c.input = in
	c.result = nil
	c.notice = nil
	c.phase = PhasePreviewing
	c.log.InfoWithFields("input selected", []logger.Field{
		logger.F("name", in.Name),
		logger.F("mime", in.MimeType),
		logger.Bytes(in.Size()),
	})
	return nil
}

// Request is one in-flight analysis
type Request struct {
	ctx        context.Context
	generation uint64
	predictor  Predictor
	started    time.Time
	Input      *input.Selected
}

// Run calls the prediction service. It does not touch controller state and may
// be called from any goroutine.
func (r *Request) Run() (*predict.Result, error) {
	return r.predictor.Predict(r.ctx, r.Input.Name, r.Input.MimeType, r.Input.Data)
}

// BeginAnalysis moves from previewing to loading and returns the request to run.
// With nothing selected it records the error and stays put.
func (c *Controller) BeginAnalysis(ctx context.Context) (*Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseIdle:
		return nil, c.fail(noInputSelected())
	case PhasePreviewing:
	default:
		return nil, ErrPhaseLocked
	}
	if c.input == nil {
		return nil, c.fail(noInputSelected())
	}

	ctx, cancel := context.WithCancel(ctx)
	c.generation++
	c.cancel = cancel
	c.notice = nil
	c.phase = PhaseLoading

	c.log.Debug("analysis %d started for %s", c.generation, c.input.Name)
	return &Request{
		ctx:        ctx,
		generation: c.generation,
		predictor:  c.predictor,
		started:    c.now(),
		Input:      c.input,
	}, nil
}

// CompleteAnalysis applies the outcome of a request. Success shows the result;
// failure returns to previewing with the selection kept and the error surfaced.
func (c *Controller) CompleteAnalysis(req *Request, res *predict.Result, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req == nil || req.generation != c.generation || c.phase != PhaseLoading {
		return ErrStaleCompletion
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if err == nil && res == nil {
		err = predict.NewError(predict.ErrTypeService, "empty prediction")
	}
	took := c.now().Sub(req.started)
	if err != nil {
		c.phase = PhasePreviewing
		c.record(monitor.OutcomeFailed, took)
		return c.fail(analysisFailed(err))
	}

	r := *res
	c.result = &r
	c.phase = PhaseResultShown
	if r.Label == predict.LabelPositive {
		c.record(monitor.OutcomePositive, took)
	} else {
		c.record(monitor.OutcomeNegative, took)
	}
	c.log.InfoWithFields("analysis complete", []logger.Field{
		logger.F("prediction", r.Prediction),
		logger.F("confidence", fmt.Sprintf("%d%%", r.Percent())),
		logger.Duration(took),
	})
	return nil
}

// RunAnalysis begins an analysis, waits for it and applies the outcome
func (c *Controller) RunAnalysis(ctx context.Context) error {
	req, err := c.BeginAnalysis(ctx)
	if err != nil {
		return err
	}
	res, runErr := req.Run()
	return c.CompleteAnalysis(req, res, runErr)
}

// Reset returns to idle from any phase, dropping the selection and result and
// cancelling any analysis in flight.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.input = nil
	c.result = nil
	c.notice = nil
	c.phase = PhaseIdle
	c.log.Debug("reset")
}

// ReportData builds the report for the current result, or nil outside the result phase
func (c *Controller) ReportData() *report.Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reportDataLocked()
}

func (c *Controller) reportDataLocked() *report.Data {
	if c.phase != PhaseResultShown || c.input == nil || c.result == nil {
		return nil
	}
	return report.NewData(c.input.Name, *c.result, c.now(), c.timestampFormat)
}

// ExportReport renders the current result and hands it to saver. Outside the
// result phase it does nothing and returns an empty path. The phase never changes.
func (c *Controller) ExportReport(saver report.Saver) (string, error) {
	c.mu.Lock()
	data := c.reportDataLocked()
	format := c.reportFormat
	c.mu.Unlock()

	if data == nil {
		return "", nil
	}

	content, err := report.Render(format, data)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	path, err := saver.Save(report.FileName(format, data.GeneratedAt), content)
	if err != nil {
		return "", fmt.Errorf("failed to export report: %w", err)
	}

	if c.session != nil {
		c.session.RecordExport()
	}
	c.log.InfoWithFields("report exported", []logger.Field{logger.F("path", path), logger.F("id", data.ID)})
	return path, nil
}

func (c *Controller) record(outcome monitor.Outcome, took time.Duration) {
	if c.session != nil {
		c.session.RecordAnalysis(outcome, took)
	}
}

// fail records e as the pending notice and returns it. Callers hold mu.
func (c *Controller) fail(e *Error) *Error {
	c.notice = e
	c.log.Warn("%s", e.Error())
	return e
}
