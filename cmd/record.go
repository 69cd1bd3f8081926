package cmd

import (
	"fmt"

	"github.com/hltas-record/hltas-record/internal/recorder"
	"github.com/hltas-record/hltas-record/internal/trace"
	"github.com/spf13/cobra"
)

var (
	recordOutputPath string
	recordConfigPath string
)

var recordCmd = &cobra.Command{
	Use:   "record [flags] <trace.jsonl>",
	Short: "Replay an engine trace through the recorder",
	Long: `Record replays a JSONL engine trace through the recorder, exactly as the
engine would deliver the events: input polls, physics frame starts and ends,
user commands and console lines.

Console lines in the trace (bxt_tas_recording_start, bxt_tas_recording_stop)
control recording. With --output, recording starts before the first event
and stops after the last one if it is still running.

Console messages are written to stderr. Set HLTAS_RECORD_TRACE=1 to also
print session and frame events.

Examples:
  # Trace contains its own start/stop console lines
  hltas-record record trace.jsonl

  # Record the whole trace into run.hltas
  hltas-record record --output run.hltas trace.jsonl

  # Use custom cvar names
  hltas-record record --config recorder.yaml --output run.hltas trace.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	recordCmd.Flags().StringVarP(&recordOutputPath, "output", "o", "", "record the whole trace into this script")
	recordCmd.Flags().StringVarP(&recordConfigPath, "config", "c", "", "recorder config YAML file")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	events, err := trace.ReadFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	m, c, err := newRecorder(recordConfigPath, out)
	if err != nil {
		return err
	}

	if recordOutputPath != "" {
		m.Start(recordOutputPath)
	}

	if err := trace.Play(events, m, c.Execute); err != nil {
		return fmt.Errorf("failed to replay trace: %w", err)
	}

	if recordOutputPath != "" && m.State() == recorder.Recording {
		m.Stop()
	}

	return nil
}
