// Package cmd implements the hltas-record Cobra command tree.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hltas-record/hltas-record/internal/config"
	"github.com/hltas-record/hltas-record/internal/console"
	"github.com/hltas-record/hltas-record/internal/engine"
	"github.com/hltas-record/hltas-record/internal/recorder"
	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "hltas-record",
	Short: "Record engine input into HLTAS scripts",
	Long: `hltas-record - Record engine input into HLTAS scripts

Turns the stream of user commands and physics frames seen by the engine
into a frame-accurate HLTAS script that reproduces the same inputs.

Recording is controlled with the console commands
  bxt_tas_recording_start <filename.hltas>
  bxt_tas_recording_stop

Examples:
  # Replay a captured engine trace and record it
  hltas-record record --output run.hltas trace.jsonl

  # Type console commands and trace events interactively
  hltas-record console

  # Check recorded scripts
  hltas-record validate run.hltas`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits
	rootCmd.SetVersionTemplate(fmt.Sprintf("hltas-record version {{.Version}} (commit: %s, built: %s)\n", Commit, Date))
}

// newPrinter returns a console printer for w, with color only on terminals.
func newPrinter(w io.Writer) *console.Printer {
	if f, ok := w.(*os.File); ok {
		return console.NewPrinter(f)
	}
	return &console.Printer{W: w, Color: console.ColorOff}
}

// newRecorder loads the configuration and wires a machine and its console,
// both printing to out.
func newRecorder(configPath string, out io.Writer) (*recorder.Machine, *console.Console, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	m := recorder.NewMachine(cfg, engine.AllCapabilities(), newPrinter(out))
	if recorder.IsTraceEnabled(os.Getenv(recorder.TraceEnvVar)) {
		m.Trace = out
	}

	return m, console.New(m, out), nil
}
