package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opensign-hq/relay/pkg/cli"
	"opensign-hq/relay/pkg/config"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "OpenSign relay - same-origin proxy for the Parse Server backend",
	Long: `Relay forwards the OpenSign web app's API calls to its Parse Server backend.

The backend mount path is discovered per call from an ordered list of
candidate prefixes. Credentials are chosen per operation (caller session,
service-account session or master key), and the large payloads of document
signing are shaped and retried.

Configuration is read from a YAML file, if present, and RELAY_* environment
variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path (optional)")
}

// loadConfig reads configuration for one-shot commands and resolves
// secret references once. The run command goes through config.Initialize
// instead so the rest of the process can reach it with config.GetConfig.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", "failed to load config", err)
	}

	m, files, err := newSecretManager(&cfg.Secrets)
	if err != nil {
		return nil, cli.NewConfigError("secrets.dir", err.Error(), err)
	}
	if files != nil {
		defer files.Close()
	}
	sc, err := resolveServiceCredentials(ctx, m, cfg.Upstream)
	if err != nil {
		return nil, cli.NewConfigError("", "failed to resolve secrets", err)
	}
	applyServiceCredentials(cfg, sc)
	return cfg, nil
}
