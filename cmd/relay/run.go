package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"opensign-hq/relay/pkg/cli"
	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay with the specified configuration.

The server listens on the configured address and forwards everything under
the proxy mount path to the Parse Server backend.

Examples:
  # Start with default config
  relay run

  # Start with custom config
  relay run --config /etc/relay/config.yaml

  # Override listen address
  relay run --listen 0.0.0.0:8080

  # Validate config without starting server
  relay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", "failed to load config", err)
	}
	cfg := config.GetConfig()
	if cfg == nil {
		return cli.NewConfigError("", "configuration not initialized", nil)
	}

	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", "invalid flag override", err)
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error(), err)
	}
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(cmd, cfg)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	runErr := a.run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Proxy.ShutdownTimeout)
	defer cancel()
	if err := a.close(closeCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}

	if runErr != nil {
		return cli.NewCommandError("run", runErr)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OpenSign Relay v%s\n", Version)
	fmt.Fprintf(out, "✓ Configuration loaded (%s)\n", cfgFile)
	fmt.Fprintf(out, "✓ Upstream %s, candidates %v\n", cfg.Upstream.BaseURL, cfg.Upstream.CandidatePrefixes)
	fmt.Fprintf(out, "✓ Listening on %s%s/*\n", cfg.Proxy.ListenAddress, cfg.Proxy.MountPath)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Proxy.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	if cfg.Journal.Enabled {
		fmt.Fprintf(out, "✓ Journal enabled (%s)\n", cfg.Journal.Backend)
	}

	slog.Debug("credential configuration",
		"master_key_configured", cfg.Upstream.MasterKey != "",
		"service_account_configured", cfg.Upstream.Username != "" && cfg.Upstream.Password != "",
		"dev_master_key_fallback", cfg.Auth.DevMasterKeyFallback,
	)
}
