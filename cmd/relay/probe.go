package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"opensign-hq/relay/pkg/auth"
	"opensign-hq/relay/pkg/cli"
	"opensign-hq/relay/pkg/upstream"
)

var probeFlags struct {
	format     string
	privileged bool
}

var probeCmd = &cobra.Command{
	Use:   "probe [path]",
	Short: "Find which candidate mount prefix answers as the API",
	Long: `Send a GET for path through every candidate mount prefix in order and
print how each candidate was classified. The search stops at the first
candidate that answers as the API, exactly as proxied calls do.

Examples:
  # Probe the Parse health endpoint
  relay probe health

  # Probe with the master key attached
  relay probe classes/_User --privileged

  # Machine-readable output
  relay probe health --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVarP(&probeFlags.format, "format", "f", "text", "output format (text, json, csv)")
	probeCmd.Flags().BoolVar(&probeFlags.privileged, "privileged", false, "attach service credentials as for a privileged call")
}

func runProbe(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(probeFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error(), err)
	}

	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	path := "health"
	if len(args) == 1 {
		path = strings.TrimPrefix(args[0], "/")
	}

	client := upstream.NewClient(cfg)
	defer client.Close()

	class := auth.Ordinary
	if probeFlags.privileged {
		class = auth.Privileged
	}
	resolver := auth.NewResolver(cfg, auth.NewSessionCache(cfg.Auth.SessionTTL), client.Login, nil)
	res := resolver.Resolve(cmd.Context(), class, auth.Credentials{})

	outcome := client.Forward(cmd.Context(), &upstream.OutboundRequest{
		Method: http.MethodGet,
		Path:   path,
		Header: res.Header,
		Regime: upstream.RegimeJSON,
	})

	report := newProbeReport(path, res.Source, outcome)
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return cli.NewCommandError("probe", err)
	}

	if outcome.Kind == upstream.OutcomeExhausted {
		return cli.NewCommandError("probe", outcome.Err)
	}
	return nil
}

// probeReport is the output of the probe command.
type probeReport struct {
	Path             string         `json:"path"`
	Outcome          string         `json:"outcome"`
	AnsweringURL     string         `json:"answering_url,omitempty"`
	Status           int            `json:"status,omitempty"`
	CredentialSource string         `json:"credential_source"`
	Attempts         []probeAttempt `json:"attempts"`
}

type probeAttempt struct {
	URL            string `json:"url"`
	Status         int    `json:"status"`
	Classification string `json:"classification"`
	Tries          int    `json:"tries"`
	Error          string `json:"error,omitempty"`
}

func newProbeReport(path string, source auth.Source, o *upstream.Outcome) *probeReport {
	r := &probeReport{
		Path:             path,
		Outcome:          o.Kind.String(),
		AnsweringURL:     o.URL,
		Status:           o.Status,
		CredentialSource: string(source),
		Attempts:         make([]probeAttempt, 0, len(o.Attempts)),
	}
	for _, a := range o.Attempts {
		pa := probeAttempt{
			URL:            a.URL,
			Status:         a.Status,
			Classification: a.Classification.String(),
			Tries:          a.Tries,
		}
		if a.Err != nil {
			pa.Error = a.Err.Error()
		}
		r.Attempts = append(r.Attempts, pa)
	}
	return r
}

func (r *probeReport) Header() []string {
	return []string{"URL", "STATUS", "CLASSIFICATION", "TRIES", "ERROR"}
}

func (r *probeReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		status := "-"
		if a.Status != 0 {
			status = strconv.Itoa(a.Status)
		}
		rows = append(rows, []string{a.URL, status, a.Classification, strconv.Itoa(a.Tries), a.Error})
	}
	return rows
}
