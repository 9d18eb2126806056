package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // optional YAML config file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cdmcheck CLI.
//
// The root command also accepts a records folder directly, so
// `cdmcheck <records-dir>` is the same as `cdmcheck validate <records-dir>`.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	validateOpts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "cdmcheck <records-dir>",
		Short: "cdmcheck - CDM ledger consistency checker",
		Long: `Validate the structural and referential integrity of a folder of CDM
decision/outcome records: unique ids, outcome-to-decision links, partition
isolation, and acyclic supersession.`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				fmt.Fprintf(cmd.ErrOrStderr(), "invalid format %q: must be one of %v\n", opts.Format, ValidFormats)
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q", opts.Format))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, validateOpts, args[0])
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	addValidateFlags(cmd, validateOpts)

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintf(c.ErrOrStderr(), "Error: %v\nUsage: %s\n", err, c.UseLine())
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewLintCommand(opts))

	return cmd
}

// exactArgs is cobra.ExactArgs with a usage message and exit code 2.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Usage: %s\n", cmd.UseLine())
			return WrapExitError(ExitCommandError, ErrCodeUsage+": usage", err)
		}
		return nil
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
