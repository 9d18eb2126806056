package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cdmledger/internal/ledger"
)

const ledgersDir = "testdata/ledgers"

// execute runs the root command with args and returns stdout, stderr and the
// exit code main would use.
func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), GetExitCode(err)
}

func assertGolden(t *testing.T, name, output string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(output))
}

type validateResponse struct {
	Status  string           `json:"status"`
	Data    ValidationResult `json:"data"`
	Error   *CLIError        `json:"error"`
	TraceID string           `json:"trace_id"`
}

func TestValidate_Golden(t *testing.T) {
	tests := []struct {
		golden string
		args   []string
		code   int
	}{
		{"validate_valid", []string{"validate", ledgersDir + "/valid"}, ExitSuccess},
		{"validate_cycle", []string{"validate", ledgersDir + "/cycle"}, ExitFailure},
		{"validate_cross_partition", []string{"validate", ledgersDir + "/cross_partition"}, ExitFailure},
		{"validate_duplicate", []string{"validate", ledgersDir + "/duplicate"}, ExitFailure},
		{"validate_self_supersede", []string{"validate", ledgersDir + "/self_supersede"}, ExitFailure},
		{"validate_collect_all_fail_fast", []string{"validate", ledgersDir + "/collect_all"}, ExitFailure},
		{"validate_collect_all", []string{"validate", "--all", ledgersDir + "/collect_all"}, ExitFailure},
		{"validate_strict_lenient", []string{"validate", ledgersDir + "/strict"}, ExitSuccess},
		{"validate_strict", []string{"validate", "--strict", ledgersDir + "/strict"}, ExitFailure},
		{"validate_no_records", []string{"validate", ledgersDir + "/invalid_version"}, ExitCommandError},
		{
			"validate_config_version",
			[]string{"--config", "testdata/config/version.yaml", "validate", ledgersDir + "/invalid_version"},
			ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			stdout, _, code := execute(t, tt.args...)
			assert.Equal(t, tt.code, code)
			assertGolden(t, tt.golden, stdout)
		})
	}
}

func TestValidate_RootAcceptsFolder(t *testing.T) {
	stdout, _, code := execute(t, ledgersDir+"/valid")
	assert.Equal(t, ExitSuccess, code)
	assertGolden(t, "validate_valid", stdout)

	stdout, _, code = execute(t, "--all", ledgersDir+"/collect_all")
	assert.Equal(t, ExitFailure, code)
	assertGolden(t, "validate_collect_all", stdout)
}

func TestValidate_ArgumentCount(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"validate"},
		{"validate", "a", "b"},
		{ledgersDir + "/valid", ledgersDir + "/cycle"},
	} {
		_, stderr, code := execute(t, args...)
		assert.Equal(t, ExitCommandError, code, "args %v", args)
		assert.Contains(t, stderr, "Usage:")
	}
}

func TestValidate_NotAFolder(t *testing.T) {
	stdout, _, code := execute(t, "validate", ledgersDir+"/valid/a.json")
	assert.Equal(t, ExitCommandError, code)
	assert.Equal(t, "FAIL: UsageError: provided path is not a folder: testdata/ledgers/valid/a.json\n", stdout)

	stdout, _, code = execute(t, "validate", "/nonexistent/directory/path")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "provided path is not a folder")
}

func TestValidate_EmptyFolder(t *testing.T) {
	stdout, _, code := execute(t, "validate", t.TempDir())
	assert.Equal(t, ExitCommandError, code)
	assert.Equal(t, "FAIL: UsageError: no CDM v0.1 records found\n", stdout)
}

func TestValidate_UnknownFlag(t *testing.T) {
	_, stderr, code := execute(t, "validate", "--bogus", ledgersDir+"/valid")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "unknown flag")
}

func TestValidate_InvalidFormat(t *testing.T) {
	_, stderr, code := execute(t, "--format", "xml", "validate", ledgersDir+"/valid")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, `invalid format "xml"`)
}

func TestValidate_JSONSuccess(t *testing.T) {
	stdout, _, code := execute(t, "--format", "json", "validate", ledgersDir+"/valid")
	require.Equal(t, ExitSuccess, code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 4, resp.Data.Records)
	assert.Len(t, resp.Data.Digest, 64)
	require.Len(t, resp.Data.Skipped, 1)
	assert.Equal(t, filepath.Join(ledgersDir, "valid", "legacy.json"), resp.Data.Skipped[0].Path)
	assert.Nil(t, resp.Error)

	_, err := uuid.Parse(resp.TraceID)
	assert.NoError(t, err, "trace_id should be a run uuid")
}

func TestValidate_JSONDigestIsStable(t *testing.T) {
	first, _, _ := execute(t, "--format", "json", "validate", ledgersDir+"/valid")
	second, _, _ := execute(t, "--format", "json", "validate", "--workers", "1", ledgersDir+"/valid")

	var a, b validateResponse
	require.NoError(t, json.Unmarshal([]byte(first), &a))
	require.NoError(t, json.Unmarshal([]byte(second), &b))
	assert.Equal(t, a.Data.Digest, b.Data.Digest)
	assert.NotEqual(t, a.TraceID, b.TraceID)
}

func TestValidate_JSONViolation(t *testing.T) {
	stdout, _, code := execute(t, "--format", "json", "validate", ledgersDir+"/cycle")
	require.Equal(t, ExitFailure, code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ledger.ErrCodeSupersessionCycle, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, ledger.KindCycle, resp.Data.Errors[0].Kind)
	assert.Equal(t, []string{"A", "C", "B", "A"}, resp.Data.Errors[0].Path)
}

func TestValidate_JSONCollectAllViaConfig(t *testing.T) {
	stdout, _, code := execute(t, "--format", "json", "--config", "testdata/config/collect_all.yaml",
		"validate", ledgersDir+"/collect_all")
	require.Equal(t, ExitFailure, code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Len(t, resp.Data.Errors, 4)
}

func TestValidate_FlagOverridesConfig(t *testing.T) {
	stdout, _, code := execute(t, "--config", "testdata/config/collect_all.yaml",
		"validate", "--all=false", ledgersDir+"/collect_all")
	assert.Equal(t, ExitFailure, code)
	assertGolden(t, "validate_collect_all_fail_fast", stdout)
}

func TestValidate_BadConfig(t *testing.T) {
	stdout, _, code := execute(t, "--config", "testdata/config/bad.yaml", "validate", ledgersDir+"/valid")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "FAIL: UsageError:")
	assert.Contains(t, stdout, "colour")
}

func TestValidate_Schema(t *testing.T) {
	stdout, _, code := execute(t, "validate", "--schema", "testdata/schema/internal_only.cue", ledgersDir+"/valid")
	assert.Equal(t, ExitSuccess, code)
	assertGolden(t, "validate_valid", stdout)

	stdout, _, code = execute(t, "validate", "--schema", "testdata/schema/person_only.cue", ledgersDir+"/valid")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "FAIL: StructuralError: testdata/ledgers/valid/a.json: schema violation:")
}

func TestValidate_MissingSchema(t *testing.T) {
	stdout, _, code := execute(t, "validate", "--schema", "testdata/schema/missing.cue", ledgersDir+"/valid")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "reading schema")
}

func TestValidate_VerboseLogsToStderr(t *testing.T) {
	stdout, stderr, code := execute(t, "-v", "validate", ledgersDir+"/valid")
	assert.Equal(t, ExitSuccess, code)
	assertGolden(t, "validate_valid", stdout)
	assert.Contains(t, stderr, "Found 5 JSON file(s)")
	assert.Contains(t, stderr, "Skipped testdata/ledgers/valid/legacy.json: unsupported model_version \"0.0\"")
	assert.Contains(t, stderr, "Ledger digest ")
}

func TestValidate_RecordFilesAreUntouched(t *testing.T) {
	path := filepath.Join(ledgersDir, "cycle", "a.json")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, _, _ = execute(t, "validate", "--all", ledgersDir+"/cycle")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
