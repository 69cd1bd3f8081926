package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/hltas-record/hltas-record/internal/recorder"
	"github.com/hltas-record/hltas-record/internal/trace"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const consolePrompt = "] "

var (
	consoleConfigPath string
	consoleSavePath   string
)

var consoleCmd = &cobra.Command{
	Use:   "console [flags]",
	Short: "Run console lines and trace events from stdin",
	Long: `Console reads lines from stdin and dispatches them to the recorder.

Lines starting with '{' are JSONL trace events (see 'record'); every other
line is a console line, for example:

  bxt_tas_recording_start run.hltas
  bxt_tas_recording_stop

A recording still running at end of input is stopped and written.
The prompt is only shown when stdin is a terminal.

With --save-trace, every accepted line is appended to a JSONL trace that
'record' can replay later.

Examples:
  hltas-record console
  hltas-record console --save-trace session.jsonl
  cat trace.jsonl | hltas-record console`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	consoleCmd.Flags().StringVarP(&consoleConfigPath, "config", "c", "", "recorder config YAML file")
	consoleCmd.Flags().StringVar(&consoleSavePath, "save-trace", "", "append accepted lines to this JSONL trace")
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, _ []string) error {
	out := cmd.ErrOrStderr()
	m, c, err := newRecorder(consoleConfigPath, out)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	prompt := func() {
		if interactive {
			_, _ = io.WriteString(out, consolePrompt)
		}
	}

	scanner := bufio.NewScanner(in)
	lineNum := 0
	prompt()
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())

		if len(line) > 0 {
			if err := dispatchLine(line, m, c.Execute); err != nil {
				fmt.Fprintf(out, "line %d: %v\n", lineNum, err)
			}
		}
		prompt()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if m.State() == recorder.Recording {
		m.Stop()
	}
	return nil
}

// dispatchLine runs one input line: a JSONL event or a console line.
func dispatchLine(line []byte, target trace.Target, run trace.ConsoleFunc) error {
	var ev trace.Event
	if line[0] == '{' {
		var err error
		if ev, err = trace.ParseLine(line); err != nil {
			return err
		}
	} else {
		ev = trace.Console(string(line))
	}

	if err := trace.Dispatch(ev, target, run); err != nil {
		return err
	}

	if consoleSavePath != "" {
		if err := trace.AppendFile(consoleSavePath, []trace.Event{ev}); err != nil {
			return err
		}
	}
	return nil
}
