package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hltas-record/hltas-record/internal/hltas"
	"github.com/hltas-record/hltas-record/internal/summary"
	"github.com/spf13/cobra"
)

// ValidationResult represents the validation outcome for a single script.
type ValidationResult struct {
	File    string           `json:"file"`
	Valid   bool             `json:"valid"`
	Errors  []string         `json:"errors"`
	Summary *summary.Summary `json:"summary,omitempty"`
}

var validateFormatFlag string

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate HLTAS scripts and summarize them",
	Long: `Validate one or more HLTAS scripts without running them.

Checks the version header, the property lines and every frame bulk
(key fields, frame time, yaw/pitch, frame count, console command).
Valid scripts are summarized: frame bulks, frames, total time and a
content digest that is stable across identical recordings.

Exit code 0 if all files are valid, 1 if any file has errors.

Formats:
  text   Human-readable output to stderr (default)
  json   Structured JSON to stdout

Examples:
  hltas-record validate run.hltas
  hltas-record validate a.hltas b.hltas
  hltas-record validate --format json run.hltas`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	validateCmd.Flags().StringVar(&validateFormatFlag, "format", "text",
		"Output format: text, json")
	rootCmd.AddCommand(validateCmd)
}

// runValidate validates each file independently and outputs results in the
// chosen format.
func runValidate(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(validateFormatFlag)
	switch format {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("invalid format %q: valid values are text, json", validateFormatFlag)
	}

	var results []ValidationResult
	hasErrors := false

	for _, path := range args {
		result := validateFile(path)
		results = append(results, result)
		if !result.Valid {
			hasErrors = true
		}
	}

	switch format {
	case "text":
		formatValidateText(cmd.ErrOrStderr(), results)
	case "json":
		if err := formatValidateJSON(cmd.OutOrStdout(), results); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	}

	if hasErrors {
		os.Exit(1)
	}

	return nil
}

// validateFile parses a single script and returns a ValidationResult.
func validateFile(path string) ValidationResult {
	script, err := hltas.ParseFile(path)
	if err != nil {
		return ValidationResult{
			File:   path,
			Valid:  false,
			Errors: []string{err.Error()},
		}
	}

	if err := script.Validate(); err != nil {
		return ValidationResult{
			File:   path,
			Valid:  false,
			Errors: []string{err.Error()},
		}
	}

	return ValidationResult{
		File:    path,
		Valid:   true,
		Errors:  []string{},
		Summary: summary.Build(path, script),
	}
}

// formatValidateText writes human-readable validation results to w.
func formatValidateText(w io.Writer, results []ValidationResult) {
	validCount := 0
	for _, r := range results {
		if r.Valid {
			validCount++
			fmt.Fprint(w, "✓ ")
			summary.FormatText(w, r.Summary)
		} else {
			fmt.Fprintf(w, "✗ %s:\n", r.File)
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
	}

	if len(results) > 1 {
		fmt.Fprintf(w, "\nResult: %d/%d files valid\n", validCount, len(results))
	}
}

// formatValidateJSON writes JSON-encoded validation results to w.
func formatValidateJSON(w io.Writer, results []ValidationResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
