package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cdmledger/internal/lint"
)

// LintResult is the JSON payload of a lint run.
type LintResult struct {
	Path    string        `json:"path"`
	Clean   bool          `json:"clean"`
	Finding *lint.Finding `json:"finding,omitempty"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <record-file>",
		Short: "Heuristic PII and signal-language lint of one record",
		Long: `Lint a single CDM record file.

Re-checks outcome link presence and self-supersession, then rejects object
keys that look like personal data and text that reads like trading or
action language. Runs independently of validate.`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runLint(cmd *cobra.Command, rootOpts *RootOptions, path string) error {
	formatter := newFormatter(cmd, rootOpts)

	data, err := os.ReadFile(path)
	if err != nil {
		return formatter.Usage(ErrCodeUnreadable, fmt.Sprintf("reading %s: %v", path, err))
	}

	finding, err := lint.Check(data)
	if err != nil {
		return formatter.Usage(ErrCodeUnreadable, fmt.Sprintf("%s: %v", path, err))
	}
	if finding != nil {
		formatter.VerboseLog("%s: rule %s", path, finding.Rule)
		_ = formatter.Error("", ErrCodeLintFinding, finding.Message, LintResult{Path: path, Finding: finding})
		return NewExitError(ExitFailure, finding.Message)
	}

	return formatter.Success("OK: CDM record passes basic PII and signal-drift lint", LintResult{Path: path, Clean: true})
}
