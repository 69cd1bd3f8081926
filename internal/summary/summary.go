// Package summary describes recorded scripts for the validate command and
// recording traces (text, JSON).
package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/hltas-record/hltas-record/internal/hltas"
	"github.com/zeebo/xxh3"
)

// Summary describes one script.
type Summary struct {
	File       string  `json:"file"`
	Properties int     `json:"properties"`
	FrameBulks int     `json:"frame_bulks"`
	Frames     uint64  `json:"frames"`
	Pending    int     `json:"pending"`
	TotalTime  float64 `json:"total_time"`
	Commands   int     `json:"commands"`
	Digest     string  `json:"digest,omitempty"`
}

// Build summarizes s. Scripts with pending frame bulks get no digest since
// they cannot be serialized.
func Build(file string, s *hltas.Script) *Summary {
	sum := &Summary{File: file}
	if s.Properties != nil {
		sum.Properties = s.Properties.Len()
	}

	for _, fb := range s.FrameBulks() {
		sum.FrameBulks++
		sum.Frames += uint64(fb.Count)
		if fb.ConsoleCommand != "" {
			sum.Commands++
		}

		seconds, err := fb.Seconds()
		if err != nil {
			sum.Pending++
			continue
		}
		sum.TotalTime += seconds * float64(fb.Count)
	}

	if text, err := hltas.Format(s); err == nil {
		sum.Digest = Digest(text)
	}

	return sum
}

// Digest returns the xxh3 hash of a serialized script as 16 hex digits.
func Digest(text string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(text))
}

// FormatText writes a human-readable summary.
func FormatText(w io.Writer, sum *Summary) {
	_, _ = fmt.Fprintf(w, "%s: %d frame bulk(s), %d frame(s), %ss",
		sum.File, sum.FrameBulks, sum.Frames, strconv.FormatFloat(sum.TotalTime, 'f', -1, 64))
	if sum.Commands > 0 {
		_, _ = fmt.Fprintf(w, ", %d with commands", sum.Commands)
	}
	if sum.Pending > 0 {
		_, _ = fmt.Fprintf(w, ", %d pending", sum.Pending)
	}
	if sum.Digest != "" {
		_, _ = fmt.Fprintf(w, " [%s]", sum.Digest)
	}
	_, _ = fmt.Fprintln(w)
}

// FormatJSON writes the summary as compact JSON.
func FormatJSON(w io.Writer, sum *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(sum)
}
