// Command cc-hooks is the hook orchestrator: a short-lived process invoked
// once per lifecycle event, reading one JSON event from stdin and exiting
// 0 or 2 depending on what the selected hooks decide.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cchooks/internal/event"
	"cchooks/internal/orchestrator"
)

func main() {
	os.Exit(run())
}

// run builds the root command and enlists the Shutdown Coordinator (C11)
// around the whole invocation: a terminate/interrupt signal or a fatal
// panic both still leave every spawned child reaped before the process
// exits, via orchestrator.Run's deferred Supervisor.Cleanup.
func run() (exitCode int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "cc-hooks: fatal: %v\n", r)
			exitCode = orchestrator.ExitInternal
		}
	}()

	var code int
	cmd := newRootCmd(ctx, &code)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return orchestrator.ExitInternal
	}
	return code
}

func newRootCmd(ctx context.Context, code *int) *cobra.Command {
	root := &cobra.Command{
		Use:           "cc-hooks",
		Short:         "Lifecycle hook orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(ctx, code))
	return root
}

func newRunCmd(ctx context.Context, code *int) *cobra.Command {
	var (
		configPath string
		debug      bool
		mockEvent  string
		mockData   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured hooks for one lifecycle event",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := orchestrator.Options{
				Stdin:      os.Stdin,
				Stdout:     os.Stdout,
				Stderr:     os.Stderr,
				ConfigPath: configPath,
				Debug:      debug,
			}

			if mockEvent != "" {
				ev, err := synthesizeEvent(mockEvent, mockData)
				if err != nil {
					return err
				}
				opts.MockEvent = &ev
			}

			*code = orchestrator.Run(ctx, opts)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a hooks configuration file, replacing the default search")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable verbose side-channel diagnostics on stderr")
	cmd.Flags().StringVar(&mockEvent, "event", "", "test-only: synthesize an event of this kind instead of reading stdin")
	cmd.Flags().StringVar(&mockData, "mock-data", "", "test-only: JSON file merged into the synthesized --event payload")

	return cmd
}

// synthesizeEvent builds a minimal valid Event of the named kind, then
// overlays any fields supplied in mockData's JSON file. This exists solely
// for the test-only --event/--mock-data path in spec.md §6.
func synthesizeEvent(kind, mockDataPath string) (event.Event, error) {
	ev := event.Event{
		EventKind: event.Kind(kind),
		SessionID: "mock-session",
		CWD:       mustGetwd(),
	}

	if mockDataPath == "" {
		return ev, nil
	}

	data, err := os.ReadFile(mockDataPath)
	if err != nil {
		return event.Event{}, fmt.Errorf("reading --mock-data %s: %w", mockDataPath, err)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return event.Event{}, fmt.Errorf("parsing --mock-data %s: %w", mockDataPath, err)
	}
	return ev, nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
