package cli

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yildizm/LungScan/internal/config"
	"github.com/yildizm/LungScan/internal/emoji"
	"github.com/yildizm/LungScan/internal/logger"
	"github.com/yildizm/LungScan/internal/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	noEmoji bool
	baseURL string

	globalConfigMu sync.RWMutex
	globalConfig   *config.Config

	// terminal detection result before any flag touched color.NoColor
	autoColor = !color.NoColor
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lungscan",
		Short: "Chest X-ray pneumonia screening from the terminal",
		Long: `LungScan sends chest X-ray images to a pneumonia prediction service and
shows the classification with its confidence.

Run "lungscan scan" for the interactive screen, or "lungscan analyze" to
classify images from scripts and pipelines.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// config subcommands load and report on their own
			if isConfigCommand(cmd) || cmd.Name() == "version" {
				emoji.SetEmojiDisabled(noEmoji)
				color.NoColor = color.NoColor || noColor
				return nil
			}

			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			applyFlagOverrides(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			applyOutputSettings(cmd, cfg)
			setGlobalConfig(cfg)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "prediction service base URL (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newHealthCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// applyFlagOverrides gives explicit flags priority over every config source
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if baseURL != "" {
		cfg.Service.BaseURL = baseURL
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.ColorMode = "never"
	}
	if noEmoji {
		cfg.Output.Emoji = false
	}
	// Auto-disable emojis on Windows if not explicitly set
	if runtime.GOOS == "windows" && !cmd.Flags().Changed("no-emoji") {
		cfg.Output.Emoji = false
	}
}

// applyOutputSettings pushes color, emoji and theme choices into the shared packages
func applyOutputSettings(cmd *cobra.Command, cfg *config.Config) {
	emoji.SetEmojiDisabled(!cfg.Output.Emoji)

	disabled := !colorEnabled(cfg)
	ui.SetColorDisabled(disabled)
	color.NoColor = disabled

	if cfg.Output.Theme != "" && !ui.SetThemeByName(cfg.Output.Theme) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: unknown theme %q (available: %s), using default\n",
			cfg.Output.Theme, strings.Join(ui.GetAvailableThemes(), ", "))
	}
}

// colorEnabled resolves the color mode. In auto mode the terminal detection
// done by fatih/color at startup decides.
func colorEnabled(cfg *config.Config) bool {
	switch cfg.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return autoColor
	}
}

func setGlobalConfig(cfg *config.Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig returns the configuration loaded for the running command,
// or the defaults when none was loaded
func GetGlobalConfig() *config.Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "LungScan %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Global helpers
func isVerbose() bool {
	return verbose || GetGlobalConfig().Output.Verbose
}

func newLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}
