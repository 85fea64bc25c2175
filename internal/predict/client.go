package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/yildizm/LungScan/internal/config"
	"github.com/yildizm/LungScan/internal/logger"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 1 << 20

// Config holds prediction client configuration
type Config struct {
	// PredictURL is the absolute upload endpoint, e.g. http://host:8000/predict/
	PredictURL string

	// HealthURL is the absolute probe endpoint, e.g. http://host:8000/docs
	HealthURL string

	// Timeout bounds a single prediction request
	Timeout time.Duration

	// ProbeTimeout bounds the startup health probe
	ProbeTimeout time.Duration
}

// DefaultConfig returns a client configuration for a local service
func DefaultConfig() *Config {
	return FromAppConfig(config.DefaultConfig())
}

// FromAppConfig builds client configuration from the application config
func FromAppConfig(cfg *config.Config) *Config {
	return &Config{
		PredictURL:   cfg.PredictURL(),
		HealthURL:    cfg.HealthURL(),
		Timeout:      cfg.Service.Timeout,
		ProbeTimeout: cfg.Service.ProbeTimeout,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.PredictURL == "" {
		return fmt.Errorf("predict URL is required")
	}
	if c.HealthURL == "" {
		return fmt.Errorf("health URL is required")
	}
	if c.Timeout < 0 || c.ProbeTimeout < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	return nil
}

// Client talks to the remote prediction service
type Client struct {
	config *Config
	client *http.Client
	log    *logger.Logger
}

// NewClient creates a prediction client
func NewClient(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		config: cfg,
		client: &http.Client{},
		log:    log.WithComponent("predict"),
	}, nil
}

// Predict uploads one image and returns its classification.
// No retries: a failed attempt is returned as-is.
func (c *Client) Predict(ctx context.Context, name, mimeType string, data []byte) (*Result, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	body, contentType, err := encodeUpload(name, mimeType, data)
	if err != nil {
		return nil, NewErrorWithCause(ErrTypeRequest, "failed to encode upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.PredictURL, body)
	if err != nil {
		return nil, NewErrorWithCause(ErrTypeRequest, "failed to create request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.log.DebugWithFields("uploading image", []logger.Field{
		logger.F("file", name),
		logger.F("mime", mimeType),
		logger.Bytes(len(data)),
	})

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewErrorWithCause(ErrTypeNetwork, "prediction request timed out", err)
		}
		return nil, NewErrorWithCause(ErrTypeNetwork, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewErrorWithCause(ErrTypeNetwork, "failed to read response", err)
	}

	c.log.DebugWithFields("prediction response", []logger.Field{
		logger.F("status", resp.StatusCode),
		logger.Duration(time.Since(start)),
	})

	return decodeResponse(resp.StatusCode, raw)
}

// Probe sends a HEAD request to the health endpoint
func (c *Client) Probe(ctx context.Context) error {
	if c.config.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ProbeTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.config.HealthURL, http.NoBody)
	if err != nil {
		return NewErrorWithCause(ErrTypeRequest, "failed to create health check request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return NewErrorWithCause(ErrTypeNetwork, "API not accessible", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewStatusError(resp.StatusCode)
	}

	return nil
}

// Endpoint returns the configured prediction URL
func (c *Client) Endpoint() string {
	return c.config.PredictURL
}

// encodeUpload builds a multipart body carrying the image under field "file"
func encodeUpload(name, mimeType string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// decodeResponse turns a status and body into a Result or an *Error.
// An error field wins over the status code. StatusCode is only set on errors
// for non-2xx responses.
func decodeResponse(status int, raw []byte) (*Result, error) {
	var body response
	decodeErr := json.Unmarshal(raw, &body)
	ok := status >= 200 && status <= 299

	if decodeErr == nil && body.Error != "" {
		e := &Error{Type: ErrTypeService, Message: body.Error}
		if !ok {
			e.StatusCode = status
		}
		return nil, e
	}

	if !ok {
		return nil, NewStatusError(status)
	}

	if decodeErr != nil {
		return nil, NewErrorWithCause(ErrTypeService, "malformed response", decodeErr)
	}

	if body.Prediction == "" {
		return nil, NewError(ErrTypeService, "malformed response: missing prediction")
	}
	if body.Confidence == nil {
		return nil, NewError(ErrTypeService, "malformed response: missing confidence")
	}
	if *body.Confidence < 0 || *body.Confidence > 1 {
		return nil, NewError(ErrTypeService, fmt.Sprintf("malformed response: confidence %v outside [0,1]", *body.Confidence))
	}

	return &Result{
		Label:      ClassifyPrediction(body.Prediction),
		Prediction: body.Prediction,
		Confidence: *body.Confidence,
	}, nil
}
