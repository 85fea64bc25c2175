package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yildizm/LungScan/internal/emoji"
	"github.com/yildizm/LungScan/internal/predict"
)

var healthTimeout time.Duration

func newHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the prediction service is reachable",
		Long: `Send a HEAD request to the prediction service health endpoint and report
whether it answered. Exits non-zero when the service cannot be reached.

Examples:
  lungscan health
  lungscan health --base-url http://scanner.local:8000`,
		Args: cobra.NoArgs,
		RunE: runHealth,
	}

	cmd.Flags().DurationVar(&healthTimeout, "timeout", 0, "probe timeout (default from config)")

	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	clientCfg := predict.FromAppConfig(cfg)
	if healthTimeout > 0 {
		clientCfg.ProbeTimeout = healthTimeout
	}
	client, err := predict.NewClient(clientCfg, newLogger("health"))
	if err != nil {
		return fmt.Errorf("failed to create prediction client: %w", err)
	}

	out := cmd.OutOrStdout()
	start := time.Now()
	err = client.Probe(context.Background())
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		fail := color.New(color.FgRed, color.Bold)
		_, _ = fail.Fprintf(out, "%s FAIL ", emoji.GetEmoji("unavailable"))
		fmt.Fprintf(out, "%s (%v)\n", clientCfg.HealthURL, err)
		return fmt.Errorf("prediction service unreachable: %w", err)
	}

	ok := color.New(color.FgGreen, color.Bold)
	_, _ = ok.Fprintf(out, "%s OK ", emoji.GetEmoji("health"))
	fmt.Fprintf(out, "%s responded in %s\n", clientCfg.HealthURL, elapsed)
	return nil
}
