package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loykin/jiggler/internal/controller"
	"github.com/loykin/jiggler/internal/statedir"
	"github.com/loykin/jiggler/internal/timespec"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// Exit codes distinguish the failure classes scripts care about.
const (
	exitFailure      = 1
	exitInvalidInput = 2
	exitAlreadyRun   = 3
	exitNotRunning   = 4
	exitStale        = 5
	exitStateDir     = 6
)

func exitCodeFor(err error) int {
	var already *controller.AlreadyRunningError
	var notRunning *controller.NotRunningError
	var stale *controller.StaleInstanceError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, timespec.ErrInvalidFormat):
		return exitInvalidInput
	case errors.As(err, &already):
		return exitAlreadyRun
	case errors.As(err, &notRunning):
		return exitNotRunning
	case errors.As(err, &stale):
		return exitStale
	case errors.Is(err, statedir.ErrUnavailable):
		return exitStateDir
	default:
		return exitFailure
	}
}

// buildRoot creates the root command with all subcommands attached.
func buildRoot() *cobra.Command {
	startFlags := &StartFlags{}
	runFlags := &RunFlags{}
	stopFlags := &StopFlags{}
	statusFlags := &StatusFlags{}

	jigglerCommand := command{}

	root := &cobra.Command{
		Use:   "jiggler",
		Short: "Keep the system awake by nudging the mouse pointer",
		Long: `Jiggler moves the mouse pointer by a small amount at a fixed interval
to prevent idle detection, screen locking, and presence timeouts.

Examples:
  jiggler start --interval=30s --amplitude=1
  jiggler start --duration=2h --pattern=random
  jiggler status
  jiggler stop`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		createStartCommand(jigglerCommand, startFlags),
		createStopCommand(jigglerCommand, stopFlags),
		createStatusCommand(jigglerCommand, statusFlags),
		createRunCommand(jigglerCommand, runFlags),
	)

	return root
}

// addSessionFlags registers the flags shared by start and run.
func addSessionFlags(cmd *cobra.Command, f *SessionFlags) {
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "path to TOML config file (optional)")
	cmd.Flags().StringVar(&f.Interval, "interval", "", "time between movements, e.g. 30s, 500ms, 2m (default 60s)")
	cmd.Flags().IntVar(&f.Amplitude, "amplitude", -1, "movement size in pixels; 0 keeps the session alive without moving (default 1)")
	cmd.Flags().StringVar(&f.Duration, "duration", "", "stop automatically after this long, e.g. 2h (default unlimited)")
	cmd.Flags().StringVar(&f.Pattern, "pattern", "", "movement pattern: square or random (default square)")
	cmd.Flags().StringVar(&f.StateDir, "state-dir", "", "state directory (default platform-specific)")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "run the session without touching the pointer")
}

// createStartCommand creates the start subcommand
func createStartCommand(jigglerCommand command, startFlags *StartFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start jiggling in the background",
		Long: `Start a background jiggle session. The command returns immediately;
the session keeps running after the terminal closes.

Examples:
  jiggler start
  jiggler start --interval=30s --amplitude=2
  jiggler start --duration=8h --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return jigglerCommand.Start(*startFlags)
		},
	}
	addSessionFlags(cmd, &startFlags.SessionFlags)
	cmd.Flags().BoolVar(&startFlags.Force, "force", false, "take over from a running instance by asking it to stop first")
	return cmd
}

// createStopCommand creates the stop subcommand
func createStopCommand(jigglerCommand command, stopFlags *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask the background session to stop",
		Long: `Ask the running background session to stop. The request is
asynchronous: the session notices the request within one interval and
cleans up after itself.

Examples:
  jiggler stop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return jigglerCommand.Stop(*stopFlags)
		},
	}
	cmd.Flags().StringVar(&stopFlags.ConfigPath, "config", "", "path to TOML config file (optional)")
	cmd.Flags().StringVar(&stopFlags.StateDir, "state-dir", "", "state directory (default platform-specific)")
	return cmd
}

// createStatusCommand creates the status subcommand
func createStatusCommand(jigglerCommand command, statusFlags *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is running",
		Long: `Show the state of the background session: idle, running, or
stopping. Stale records left by crashed sessions are cleaned up.

Examples:
  jiggler status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return jigglerCommand.Status(*statusFlags)
		},
	}
	cmd.Flags().StringVar(&statusFlags.ConfigPath, "config", "", "path to TOML config file (optional)")
	cmd.Flags().StringVar(&statusFlags.StateDir, "state-dir", "", "state directory (default platform-specific)")
	return cmd
}

// createRunCommand creates the run subcommand
func createRunCommand(jigglerCommand command, runFlags *RunFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the jiggle loop in the foreground",
		Long: `Run the jiggle loop in the current process. This is what start
launches in the background; running it directly is useful for testing
and for supervising the session with an external process manager.

Examples:
  jiggler run --interval=30s
  jiggler run --duration=10m --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return jigglerCommand.Run(*runFlags)
		},
	}
	addSessionFlags(cmd, &runFlags.SessionFlags)
	cmd.Flags().StringVar(&runFlags.HistoryDSN, "history-dsn", "", "record session events to this sink (sqlite path, postgres://, clickhouse://, opensearch://)")
	cmd.Flags().StringVar(&runFlags.MetricsListen, "metrics-listen", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9310")
	cmd.Flags().BoolVar(&runFlags.Verbose, "verbose", false, "log to the terminal instead of the state directory log file")
	return cmd
}
