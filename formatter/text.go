package formatter

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// TextOptions controls the human-readable renderer.
type TextOptions struct {
	// NoColor disables ANSI colors regardless of terminal detection.
	NoColor bool
	// Quiet suppresses everything but the summary line.
	Quiet bool
	// Verbose additionally prints related locations and fix suggestions.
	Verbose bool
}

// Text writes findings one per line with a colored severity prefix, followed
// by a summary. Findings arrive already sorted by the engine.
func Text(w io.Writer, result interfaces.ValidationResult, opts TextOptions) error {
	paint := painter(opts.NoColor)

	if !opts.Quiet {
		for _, finding := range result.Findings {
			if _, err := fmt.Fprintf(w, "%s %s %s %s\n",
				locationLabel(finding),
				paint(finding.Severity),
				finding.Code,
				finding.Message); err != nil {
				return err
			}
			if opts.Verbose {
				for _, related := range finding.Related {
					if _, err := fmt.Fprintf(w, "    related: %s:%d:%d %s\n",
						related.File, related.Line, related.Column, related.Message); err != nil {
						return err
					}
				}
				if finding.Suggestion != "" {
					if _, err := fmt.Fprintf(w, "    suggestion: %s\n", finding.Suggestion); err != nil {
						return err
					}
				}
			}
		}
		if len(result.Findings) > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}

	status := "passed"
	if result.Cancelled {
		status = "cancelled"
	} else if !result.Passed {
		status = "failed"
	}

	_, err := fmt.Fprintf(w, "%s: %d files, %d errors, %d warnings, %d info\n",
		status,
		result.FileCount,
		result.Errors(),
		result.Warnings(),
		result.Tally[interfaces.SeverityInfo])
	return err
}

func locationLabel(finding interfaces.Finding) string {
	if finding.Location == nil {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", finding.Location.File, finding.Location.Line, finding.Location.Column)
}

func painter(noColor bool) func(interfaces.Severity) string {
	if noColor {
		return func(severity interfaces.Severity) string {
			return string(severity)
		}
	}

	errorPaint := color.New(color.FgRed, color.Bold).SprintFunc()
	warnPaint := color.New(color.FgYellow).SprintFunc()
	infoPaint := color.New(color.FgCyan).SprintFunc()

	return func(severity interfaces.Severity) string {
		switch severity {
		case interfaces.SeverityError:
			return errorPaint(string(severity))
		case interfaces.SeverityWarning:
			return warnPaint(string(severity))
		default:
			return infoPaint(string(severity))
		}
	}
}
