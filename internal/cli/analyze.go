package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/yildizm/LungScan/internal/config"
	"github.com/yildizm/LungScan/internal/controller"
	"github.com/yildizm/LungScan/internal/emoji"
	"github.com/yildizm/LungScan/internal/formatter"
	"github.com/yildizm/LungScan/internal/input"
	"github.com/yildizm/LungScan/internal/logger"
	"github.com/yildizm/LungScan/internal/monitor"
	"github.com/yildizm/LungScan/internal/predict"
	"github.com/yildizm/LungScan/internal/report"
	"golang.org/x/time/rate"
)

var (
	analyzeOutput       string
	analyzeOutputFile   string
	analyzeReport       bool
	analyzeReportFormat string
	analyzeReportDir    string
	analyzeTimeout      time.Duration
	analyzeRateLimit    float64
)

// ErrImagesFailed is returned when at least one image could not be classified
var ErrImagesFailed = errors.New("one or more images failed")

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Classify images without the interactive screen",
		Long: `Send one or more chest X-ray images to the prediction service and print
the results. Each image goes through the same checks as the scan screen.

Examples:
  lungscan analyze chest.png
  lungscan analyze --output json scans/*.jpg
  lungscan analyze --report --report-format markdown chest.png
  lungscan analyze --rate-limit 2 --output csv --output-file results.csv scans/*`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "text", "output format (text, json, markdown, csv)")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().BoolVarP(&analyzeReport, "report", "r", false, "export a report for every classified image")
	cmd.Flags().StringVar(&analyzeReportFormat, "report-format", "", "report format (text, markdown, json; default from config)")
	cmd.Flags().StringVar(&analyzeReportDir, "report-dir", "", "directory for exported reports (default from config)")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 30*time.Second, "per-image prediction timeout")
	cmd.Flags().Float64Var(&analyzeRateLimit, "rate-limit", 0, "maximum uploads per second, 0 = unlimited")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := *GetGlobalConfig()

	// Explicit flags win over config
	if cmd.Flags().Changed("timeout") {
		cfg.Service.Timeout = analyzeTimeout
	}
	if cmd.Flags().Changed("rate-limit") {
		if analyzeRateLimit < 0 {
			return fmt.Errorf("rate-limit must be non-negative")
		}
		cfg.Service.RateLimit = analyzeRateLimit
	}
	if analyzeReportFormat != "" {
		cfg.Report.Format = analyzeReportFormat
	}
	if analyzeReportDir != "" {
		cfg.Report.OutputDir = analyzeReportDir
	}

	out, err := formatter.New(analyzeOutput, colorEnabled(&cfg) && analyzeOutputFile == "", !emoji.IsEmojiDisabled())
	if err != nil {
		return err
	}
	if _, err := report.ParseFormat(cfg.Report.Format); err != nil {
		return err
	}

	log := newLogger("analyze")
	client, err := predict.NewClient(predict.FromAppConfig(&cfg), log)
	if err != nil {
		return fmt.Errorf("failed to create prediction client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &batchAnalyzer{
		predictor: client,
		cfg:       &cfg,
		log:       log,
		limiter:   newLimiter(cfg.Service.RateLimit),
	}
	if analyzeReport {
		a.saver = report.NewDirSaver(config.ExpandPath(cfg.Report.OutputDir))
	}
	if showProgress(cmd.ErrOrStderr()) {
		a.progress = newProgress(cmd.ErrOrStderr())
	}

	batch := a.run(ctx, args)
	batch.Endpoint = client.Endpoint()

	data, err := out.Format(batch)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), data); err != nil {
		return err
	}

	if _, _, failed := batch.Counts(); failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrImagesFailed, failed, len(batch.Outcomes))
	}
	return nil
}

// batchAnalyzer classifies images one at a time, each through its own controller
type batchAnalyzer struct {
	predictor controller.Predictor
	cfg       *config.Config
	log       *logger.Logger
	saver     report.Saver
	limiter   *rate.Limiter
	progress  *spinner.Spinner
	session   *monitor.Session
	now       func() time.Time
}

func (a *batchAnalyzer) run(ctx context.Context, paths []string) *formatter.Batch {
	batch := &formatter.Batch{StartedAt: time.Now()}
	if a.session == nil {
		a.session = monitor.NewSession()
	}

	if a.progress != nil {
		a.progress.Start()
		defer a.progress.Stop()
	}

	for i, path := range paths {
		if a.progress != nil {
			a.progress.Lock()
			a.progress.Suffix = fmt.Sprintf(" Analyzing %s (%d/%d)", filepath.Base(path), i+1, len(paths))
			a.progress.Unlock()
		}

		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				batch.Outcomes = append(batch.Outcomes, &formatter.Outcome{Path: path, Name: filepath.Base(path), Err: err})
				continue
			}
		}
		batch.Outcomes = append(batch.Outcomes, a.analyze(ctx, path))
	}

	a.log.Info("batch complete: %s", a.session.Summary())
	return batch
}

// analyze runs one image through select, analyze and optional export
func (a *batchAnalyzer) analyze(ctx context.Context, path string) *formatter.Outcome {
	outcome := &formatter.Outcome{Path: path, Name: filepath.Base(path)}
	start := time.Now()
	defer func() { outcome.Duration = time.Since(start) }()

	img, err := input.Load(config.ExpandPath(path), a.cfg.Service.MaxUploadBytes)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.MimeType = img.MimeType
	outcome.Size = img.Size()

	opts := []controller.Option{controller.WithSession(a.session)}
	if a.now != nil {
		opts = append(opts, controller.WithClock(a.now))
	}
	ctrl, err := newController(a.predictor, a.cfg, a.log, opts...)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	if err := ctrl.SelectInput(img); err != nil {
		outcome.Err = err
		return outcome
	}
	if err := ctrl.RunAnalysis(ctx); err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Result = ctrl.Result()

	if a.saver != nil {
		reportPath, err := ctrl.ExportReport(a.saver)
		if err != nil {
			outcome.Err = err
			return outcome
		}
		outcome.ReportPath = reportPath
	}

	a.log.DebugWithFields("image analyzed", []logger.Field{
		logger.F("name", outcome.Name),
		logger.F("prediction", outcome.Result.Prediction),
		logger.Duration(time.Since(start)),
	})
	return outcome
}

// newLimiter returns nil for an unlimited rate
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func showProgress(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd()) && !isVerbose()
}

func newProgress(w io.Writer) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " Analyzing..."
	return s
}

func writeOutput(stdout, stderr io.Writer, data []byte) error {
	if analyzeOutputFile == "" {
		_, err := stdout.Write(data)
		return err
	}
	// #nosec G304 - the user chose this file
	if err := os.WriteFile(config.ExpandPath(analyzeOutputFile), data, 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(stderr, "%s Output saved to %s\n", emoji.GetEmoji("success"), analyzeOutputFile)
	return nil
}
