// Package console dispatches console command lines to the recorder.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/hltas-record/hltas-record/internal/recorder"
	"github.com/spf13/cobra"
)

// Console command names.
const (
	StartCommand = "bxt_tas_recording_start"
	StopCommand  = "bxt_tas_recording_stop"
)

// Console runs console lines against a recording machine.
type Console struct {
	machine *recorder.Machine
	out     io.Writer
	root    *cobra.Command
	names   []string
}

// New returns a console printing usage and unknown command messages to out.
func New(machine *recorder.Machine, out io.Writer) *Console {
	c := &Console{machine: machine, out: out}

	c.root = &cobra.Command{
		Use:           "console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.root.CompletionOptions.DisableDefaultCmd = true
	c.root.SetOut(out)
	c.root.SetErr(out)

	c.root.AddCommand(
		&cobra.Command{
			Use:                StartCommand + " <filename.hltas>",
			Short:              "Starts recording gameplay into a HLTAS script.",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) != 1 {
					c.usage(cmd)
					return nil
				}
				c.machine.Start(args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:                StopCommand,
			Short:              "Stops gameplay recording.",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) != 0 {
					c.usage(cmd)
					return nil
				}
				c.machine.Stop()
				return nil
			},
		},
	)

	for _, cmd := range c.root.Commands() {
		c.names = append(c.names, cmd.Name())
	}

	return c
}

func (c *Console) usage(cmd *cobra.Command) {
	fmt.Fprintf(c.out, "Usage: %s\n %s\n", cmd.Use, cmd.Short)
}

// Commands returns the names of the console commands.
func (c *Console) Commands() []string {
	return append([]string(nil), c.names...)
}

// Execute runs one console line. Several commands may be separated by ';'.
func (c *Console) Execute(line string) error {
	for _, part := range splitCommands(line) {
		if err := c.execute(part); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) execute(line string) error {
	args := Tokenize(line)
	if len(args) == 0 {
		return nil
	}

	known := false
	for _, name := range c.names {
		if name == args[0] {
			known = true
			break
		}
	}
	if !known {
		fmt.Fprintf(c.out, "Unknown command: %s\n", args[0])
		return nil
	}

	c.root.SetArgs(args)
	if err := c.root.Execute(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

// splitCommands splits on ';' outside of quotes.
func splitCommands(line string) []string {
	var parts []string
	inQuotes := false
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ';':
			if !inQuotes {
				parts = append(parts, line[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, line[start:])
}

// Tokenize splits a console line into arguments. Double quotes group
// whitespace into one argument and a "//" outside quotes starts a comment.
func Tokenize(line string) []string {
	var args []string
	var cur strings.Builder
	inQuotes := false
	inArg := false

	flush := func() {
		if inArg {
			args = append(args, cur.String())
			cur.Reset()
			inArg = false
		}
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes {
				// an empty quoted string is still an argument
				inArg = true
				flush()
			} else {
				flush()
			}
			inQuotes = !inQuotes
		case inQuotes:
			cur.WriteByte(ch)
			inArg = true
		case ch == '/' && i+1 < len(line) && line[i+1] == '/':
			flush()
			return args
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			flush()
		default:
			cur.WriteByte(ch)
			inArg = true
		}
	}
	flush()

	return args
}
