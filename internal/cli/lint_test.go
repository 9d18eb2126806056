package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cdmledger/internal/lint"
)

func TestLint_Golden(t *testing.T) {
	tests := []struct {
		golden string
		file   string
		code   int
	}{
		{"lint_clean", "testdata/lint/clean.json", ExitSuccess},
		{"lint_pii", "testdata/lint/pii.json", ExitFailure},
		{"lint_signal", "testdata/lint/signal.json", ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			stdout, _, code := execute(t, "lint", tt.file)
			assert.Equal(t, tt.code, code)
			assertGolden(t, tt.golden, stdout)
		})
	}
}

func TestLint_NotARecord(t *testing.T) {
	stdout, _, code := execute(t, "lint", "testdata/lint/list.json")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "FAIL: UsageError: testdata/lint/list.json: parsing record")
}

func TestLint_MissingFile(t *testing.T) {
	stdout, _, code := execute(t, "lint", "testdata/lint/missing.json")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "reading testdata/lint/missing.json")
}

func TestLint_ArgumentCount(t *testing.T) {
	_, stderr, code := execute(t, "lint")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Usage:")
}

func TestLint_JSONFinding(t *testing.T) {
	stdout, _, code := execute(t, "--format", "json", "lint", "testdata/lint/pii.json")
	require.Equal(t, ExitFailure, code)

	var resp struct {
		Status string     `json:"status"`
		Data   LintResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeLintFinding, resp.Error.Code)
	require.NotNil(t, resp.Data.Finding)
	assert.Equal(t, lint.RulePIIKey, resp.Data.Finding.Rule)
	assert.Equal(t, "testdata/lint/pii.json", resp.Data.Path)
}
