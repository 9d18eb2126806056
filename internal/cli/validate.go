package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/cdmledger/internal/config"
	"github.com/roach88/cdmledger/internal/digest"
	"github.com/roach88/cdmledger/internal/ledger"
	"github.com/roach88/cdmledger/internal/record"
	"github.com/roach88/cdmledger/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Strict     bool
	CollectAll bool
	Schema     string
	Workers    int
}

// ValidationResult is the JSON payload of a validate run.
type ValidationResult struct {
	Valid   bool            `json:"valid"`
	Records int             `json:"records"`
	Digest  string          `json:"digest,omitempty"`
	Skipped []record.Skip   `json:"skipped,omitempty"`
	Errors  []*ledger.Error `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <records-dir>",
		Short: "Check ledger consistency of a folder of CDM records",
		Long: `Load every *.json record under a folder and check cross-record invariants.

Files that do not parse, or that declare another model_version, are not
records and are skipped (use --strict to fail on them). The first violation
aborts the run unless --all is given.

Exit codes: 0 valid, 1 violation found, 2 usage error.`,
		Args:          exactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, opts, args[0])
		},
	}

	addValidateFlags(cmd, opts)
	return cmd
}

func addValidateFlags(cmd *cobra.Command, opts *ValidateOptions) {
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on files that are skipped as non-records")
	cmd.Flags().BoolVar(&opts.CollectAll, "all", false, "report every violation instead of stopping at the first")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema every record must satisfy")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel file loaders (0 = GOMAXPROCS)")
}

// resolveConfig layers changed flags over the config file over defaults.
func resolveConfig(cmd *cobra.Command, rootOpts *RootOptions, opts *ValidateOptions) (config.Config, error) {
	cfg := config.Default()
	if rootOpts.ConfigPath != "" {
		loaded, err := config.Load(rootOpts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = opts.Strict
	}
	if flags.Changed("all") {
		cfg.CollectAll = opts.CollectAll
	}
	if flags.Changed("schema") {
		cfg.Schema = opts.Schema
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	return cfg, cfg.Validate()
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		TraceID:   uuid.NewString(),
	}
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, opts *ValidateOptions, dir string) error {
	formatter := newFormatter(cmd, rootOpts)
	formatter.VerboseLog("Run %s", formatter.TraceID)

	cfg, err := resolveConfig(cmd, rootOpts, opts)
	if err != nil {
		return formatter.Usage(ErrCodeConfig, err.Error())
	}

	var recordSchema ledger.RecordSchema
	if cfg.Schema != "" {
		s, err := schema.Load(cfg.Schema)
		if err != nil {
			return formatter.Usage(ErrCodeSchema, err.Error())
		}
		formatter.VerboseLog("Using schema %s", s.Name())
		recordSchema = s
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	loaded, err := record.Load(ctx, dir, record.LoadOptions{
		ModelVersion: cfg.ModelVersion,
		Workers:      cfg.Workers,
	})
	if errors.Is(err, record.ErrNotFolder) {
		return formatter.Usage(ErrCodeNotFolder, err.Error())
	}
	if err != nil {
		return formatter.Usage(ErrCodeScanFailed, err.Error())
	}

	formatter.VerboseLog("Found %d JSON file(s) in %s: %d record(s), %d skipped",
		loaded.FileCount, dir, len(loaded.Records), len(loaded.Skipped))
	for _, skip := range loaded.Skipped {
		formatter.VerboseLog("Skipped %s: %s", skip.Path, skip.Reason)
	}

	if len(loaded.Records) == 0 {
		return formatter.Usage(ErrCodeNoRecords, fmt.Sprintf("no CDM v%s records found", cfg.ModelVersion))
	}

	mode := ledger.ModeFailFast
	if cfg.CollectAll {
		mode = ledger.ModeCollectAll
	}
	result := ledger.Check(loaded.Records, ledger.Options{
		Mode:         mode,
		ModelVersion: cfg.ModelVersion,
		Strict:       cfg.Strict,
		Skipped:      loaded.Skipped,
		Schema:       recordSchema,
	})
	if !result.OK() {
		return outputViolations(formatter, result, loaded.Skipped)
	}

	ledgerDigest, err := digest.Ledger(loaded.Records)
	if err != nil {
		_ = formatter.Error("", ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "digest failed", err)
	}
	formatter.VerboseLog("Ledger digest %s", ledgerDigest)

	return formatter.Success(
		fmt.Sprintf("OK: validated %d CDM records with no linkage/supersession violations", result.Records),
		ValidationResult{
			Valid:   true,
			Records: result.Records,
			Digest:  ledgerDigest,
			Skipped: loaded.Skipped,
		},
	)
}

// outputViolations writes every violation and returns exit code 1.
func outputViolations(formatter *OutputFormatter, result *ledger.Result, skipped []record.Skip) error {
	if formatter.Format == "json" {
		first := result.Errors[0]
		if err := formatter.Error(string(first.Kind), first.Code, first.Error(), ValidationResult{
			Valid:   false,
			Records: result.Records,
			Skipped: skipped,
			Errors:  result.Errors,
		}); err != nil {
			return err
		}
	} else {
		for _, violation := range result.Errors {
			if err := formatter.Error(string(violation.Kind), violation.Code, violation.Error(), nil); err != nil {
				return err
			}
		}
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
