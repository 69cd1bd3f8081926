package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorMode controls ANSI color in console messages.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

// ColorEnvVar forces color on or off.
const ColorEnvVar = "HLTAS_RECORD_COLOR"

// ResolveColor determines whether to emit ANSI color codes for f.
// Priority: HLTAS_RECORD_COLOR env > NO_COLOR env > auto-detect TTY.
func ResolveColor(f *os.File) ColorMode {
	if v := os.Getenv(ColorEnvVar); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return ColorOn
		case "0", "false", "no", "off":
			return ColorOff
		}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return ColorOff
	}
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return ColorOn
	}
	return ColorOff
}

func red(s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[31m" + s + "\033[0m"
	}
	return s
}

// Printer writes console messages, one per line. It implements
// recorder.Notifier.
type Printer struct {
	W     io.Writer
	Color ColorMode
}

// NewPrinter returns a printer for f with color resolved from the
// environment.
func NewPrinter(f *os.File) *Printer {
	return &Printer{W: f, Color: ResolveColor(f)}
}

// Info prints msg as is.
func (p *Printer) Info(msg string) {
	_, _ = fmt.Fprintln(p.W, msg)
}

// Error prints msg in red when color is on.
func (p *Printer) Error(msg string) {
	_, _ = fmt.Fprintln(p.W, red(msg, p.Color))
}
