package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with the given arguments against a
// fresh command tree, capturing stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func initTestDatabase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "versions.db")
	schemaPath := writeSchemaFile(t, `
schemas:
  - name: employee
    scope: [company_id, employee_id]
    values: [name, title, salary]
`)
	out, err := runCLI(t, "--db", dbPath, "init", schemaPath)
	require.NoError(t, err)
	require.Contains(t, out, "employee")
	return dbPath
}

func TestInitCommand_RequiresDatabase(t *testing.T) {
	schemaPath := writeSchemaFile(t, "schemas:\n  - name: employee\n    scope: [employee_id]\n")
	_, err := runCLI(t, "init", schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInitCommand_BadSchemaFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "versions.db")
	schemaPath := writeSchemaFile(t, "schemas:\n  - name: employee\n    scope: [id]\n")
	_, err := runCLI(t, "--db", dbPath, "init", schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCommitAndHistory(t *testing.T) {
	dbPath := initTestDatabase(t)
	scope := `{"company_id":1,"employee_id":7}`

	out, err := runCLI(t, "--db", dbPath, "commit", "employee",
		"--attrs", `{"company_id":1,"employee_id":7,"title":"engineer"}`,
		"--from", "2", "--to", "8", "--at", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "employee")
	assert.Contains(t, out, "[2,8)")

	out, err = runCLI(t, "--db", dbPath, "history", "employee", "--scope", scope)
	require.NoError(t, err)
	assert.Contains(t, out, "[2,8)")
	assert.Contains(t, out, "[10,inf)")
}

func TestCommitCommand_ScopeOverlap(t *testing.T) {
	dbPath := initTestDatabase(t)

	_, err := runCLI(t, "--db", dbPath, "commit", "employee",
		"--attrs", `{"company_id":1,"employee_id":7,"title":"engineer"}`,
		"--from", "2", "--to", "8", "--at", "10")
	require.NoError(t, err)

	out, err := runCLI(t, "--db", dbPath, "commit", "employee",
		"--attrs", `{"company_id":1,"employee_id":7,"title":"manager"}`,
		"--from", "5", "--to", "12", "--at", "11")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "SCOPE_OVERLAP")
}

func TestCommitCommand_JSONOutput(t *testing.T) {
	dbPath := initTestDatabase(t)

	out, err := runCLI(t, "--db", dbPath, "--format", "json", "commit", "employee",
		"--attrs", `{"company_id":1,"employee_id":7,"title":"engineer"}`,
		"--from", "2", "--to", "8", "--at", "10")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []RecordView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "employee", resp.Data[0].Type)
	assert.Equal(t, "[2,8)", resp.Data[0].Valid)
	assert.True(t, resp.Data[0].Active)
}

func TestReviseCommand(t *testing.T) {
	dbPath := initTestDatabase(t)
	scope := `{"company_id":1,"employee_id":7}`

	_, err := runCLI(t, "--db", dbPath, "commit", "employee",
		"--attrs", `{"company_id":1,"employee_id":7,"title":"engineer"}`,
		"--from", "2", "--to", "8", "--at", "10")
	require.NoError(t, err)

	// Revise the middle of the span: the revision is clipped to [3,7)
	// and the [2,3) and [7,8) leftovers keep the old title.
	out, err := runCLI(t, "--db", dbPath, "revise", "employee",
		"--scope", scope, "--valid", "5",
		"--changes", `{"title":"manager","vt_begin":3,"vt_end":7}`,
		"--at", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "[2,3)")
	assert.Contains(t, out, "[3,7)")
	assert.Contains(t, out, "[7,8)")

	out, err = runCLI(t, "--db", dbPath, "history", "employee", "--scope", scope)
	require.NoError(t, err)
	assert.Contains(t, out, "[3,7)")
}

func TestReviseCommand_SelectorRequired(t *testing.T) {
	dbPath := initTestDatabase(t)

	_, err := runCLI(t, "--db", dbPath, "revise", "employee",
		"--scope", `{"company_id":1,"employee_id":7}`,
		"--changes", `{"title":"manager"}`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDeleteCommand_Split(t *testing.T) {
	dbPath := initTestDatabase(t)
	scope := `{"company_id":1,"employee_id":7}`

	_, err := runCLI(t, "--db", dbPath, "commit", "employee",
		"--attrs", `{"company_id":1,"employee_id":7,"title":"engineer"}`,
		"--from", "2", "--to", "8", "--at", "10")
	require.NoError(t, err)

	out, err := runCLI(t, "--db", dbPath, "delete", "employee",
		"--scope", scope, "3..7", "--at", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "[2,8)")

	// The deleted middle leaves two active fragments.
	out, err = runCLI(t, "--db", dbPath, "history", "employee", "--scope", scope)
	require.NoError(t, err)
	assert.Contains(t, out, "[2,3)")
	assert.Contains(t, out, "[7,8)")
	assert.NotContains(t, out, "[2,8)")
}

func TestDeleteCommand_EmptyScope(t *testing.T) {
	dbPath := initTestDatabase(t)

	out, err := runCLI(t, "--db", dbPath, "delete", "employee",
		"--scope", `{"company_id":9,"employee_id":9}`, "--at", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "(no versions)")
}

func TestGridCommand(t *testing.T) {
	dbPath := initTestDatabase(t)
	scope := `{"company_id":1,"employee_id":7}`

	_, err := runCLI(t, "--db", dbPath, "commit", "employee",
		"--attrs", `{"company_id":1,"employee_id":7,"title":"engineer"}`,
		"--from", "2", "--to", "8", "--at", "10")
	require.NoError(t, err)

	out, err := runCLI(t, "--db", dbPath, "grid", "employee", "--scope", scope)
	require.NoError(t, err)
	assert.Contains(t, out, `tt\vt`)
	assert.Contains(t, out, "a: valid=[2,8) tx=[10,inf)")
}

func TestHistoryCommand_TimeTravel(t *testing.T) {
	dbPath := initTestDatabase(t)
	scope := `{"company_id":1,"employee_id":7}`

	_, err := runCLI(t, "--db", dbPath, "commit", "employee",
		"--attrs", `{"company_id":1,"employee_id":7,"title":"engineer"}`,
		"--from", "2", "--to", "8", "--at", "10")
	require.NoError(t, err)
	_, err = runCLI(t, "--db", dbPath, "delete", "employee",
		"--scope", scope, "--at", "20")
	require.NoError(t, err)

	// As of tt=15 the version is still visible. The "--" keeps pflag from
	// reading the slice as shorthand flags.
	out, err := runCLI(t, "--db", dbPath, "history", "employee",
		"--scope", scope, "--", "-inf..inf", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "[2,8)")

	// As of now it is gone.
	out, err = runCLI(t, "--db", dbPath, "history", "employee", "--scope", scope)
	require.NoError(t, err)
	assert.Contains(t, out, "(no versions)")
}
