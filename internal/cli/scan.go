package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yildizm/LungScan/internal/config"
	"github.com/yildizm/LungScan/internal/controller"
	"github.com/yildizm/LungScan/internal/input"
	"github.com/yildizm/LungScan/internal/logger"
	"github.com/yildizm/LungScan/internal/monitor"
	"github.com/yildizm/LungScan/internal/predict"
	"github.com/yildizm/LungScan/internal/report"
	"github.com/yildizm/LungScan/internal/ui"
)

var (
	scanWatchDir string
	scanNoProbe  bool
	scanLogFile  string
)

func newScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [image]",
		Short: "Open the interactive scan screen",
		Long: `Open the interactive scan screen: choose a chest X-ray, preview it,
send it for analysis and export a report of the result.

An image given on the command line is selected on startup. With --watch,
images dropped into the directory are selected as they arrive.

Examples:
  lungscan scan
  lungscan scan ~/xrays/patient-042.png
  lungscan scan --watch ~/Downloads`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringVarP(&scanWatchDir, "watch", "w", "", "drop folder to watch for new images (default from config)")
	cmd.Flags().BoolVar(&scanNoProbe, "no-probe", false, "skip the prediction service check on startup")
	cmd.Flags().StringVar(&scanLogFile, "log-file", "", "write logs to this file while the screen is open")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := newLogger("scan")

	// The screen owns the terminal, so logs go to a file or nowhere
	closeLog, err := redirectLogs(log, scanLogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := predict.NewClient(predict.FromAppConfig(cfg), log)
	if err != nil {
		return fmt.Errorf("failed to create prediction client: %w", err)
	}
	session := monitor.NewSession()
	ctrl, err := newController(client, cfg, log, controller.WithSession(session))
	if err != nil {
		return err
	}

	opts := ui.Options{
		Controller:     ctrl,
		Saver:          report.NewDirSaver(config.ExpandPath(cfg.Report.OutputDir)),
		Endpoint:       client.Endpoint(),
		MaxUploadBytes: cfg.Service.MaxUploadBytes,
		ProbeTimeout:   cfg.Service.ProbeTimeout,
		Session:        session,
		Log:            log,
	}
	if !scanNoProbe {
		opts.Prober = client
	}
	if len(args) == 1 {
		opts.InitialPath = config.ExpandPath(args[0])
	}

	watchDir := cfg.Input.WatchDir
	if cmd.Flags().Changed("watch") {
		watchDir = scanWatchDir
	}
	if watchDir != "" {
		watcher, err := input.NewWatcher(config.ExpandPath(watchDir), 0, log)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", watchDir, err)
		}
		defer func() { _ = watcher.Close() }()
		opts.Watcher = watcher
	}

	err = ui.Run(opts)
	log.Info("session ended: %s", session.Summary())
	return err
}

// newController builds a controller configured from the application config
func newController(p controller.Predictor, cfg *config.Config, log *logger.Logger, opts ...controller.Option) (*controller.Controller, error) {
	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return nil, err
	}
	base := []controller.Option{
		controller.WithAllowedTypes(cfg.Input.AllowedTypes),
		controller.WithLogger(log),
		controller.WithReport(format, cfg.Report.TimestampFormat),
	}
	return controller.New(p, append(base, opts...)...), nil
}

func redirectLogs(log *logger.Logger, path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	// #nosec G304 - the user chose this file
	f, err := os.OpenFile(config.ExpandPath(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return func() { _ = f.Close() }, nil
}
