// Command cdmcheck validates a folder of CDM ledger records.
//
// Usage:
//
//	cdmcheck <records-dir>
//	cdmcheck validate [--strict] [--all] [--schema file.cue] <records-dir>
//	cdmcheck lint <record-file>
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/cdmledger/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	// ExitErrors have already been reported by the command.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
