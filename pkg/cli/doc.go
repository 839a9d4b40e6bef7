/*
Package cli provides helpers shared by the relay's commands.

Errors:

ConfigError and CommandError wrap failures returned from cobra RunE
functions. ExitCode maps them to the process exit status, so scripts can
tell a bad configuration (2) from a runtime failure (1).

Output:

Commands that print tables (probe, journal recent) implement Table and
pick a formatter from the --format flag:

	format, err := cli.ParseOutputFormat(flagFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, result)

Signals:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
	// ctx is cancelled on SIGINT or SIGTERM
*/
package cli
