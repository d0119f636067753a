package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchemaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSchemas(t *testing.T) {
	path := writeSchemaFile(t, `
schemas:
  - name: employee
    scope: [company_id, employee_id]
    values: [name, title, salary]
  - name: shipment
    scope: [order_id]
    values: [status]
`)

	types, err := LoadSchemas(path)
	require.NoError(t, err)
	require.Len(t, types, 2)

	assert.Equal(t, "employee", types[0].Name)
	assert.Equal(t, []string{"company_id", "employee_id"}, types[0].ScopeKeys)
	assert.Equal(t, []string{"name", "title", "salary"}, types[0].ValueKeys)
	assert.Equal(t, "shipment", types[1].Name)
}

func TestLoadSchemas_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "empty document",
			content: "schemas: []\n",
			errText: "declares no entity types",
		},
		{
			name: "reserved column name",
			content: `
schemas:
  - name: employee
    scope: [vt_begin]
`,
			errText: "reserved",
		},
		{
			name: "missing scope keys",
			content: `
schemas:
  - name: employee
    values: [title]
`,
			errText: "scope key",
		},
		{
			name: "duplicate entity type",
			content: `
schemas:
  - name: employee
    scope: [employee_id]
  - name: employee
    scope: [employee_id]
`,
			errText: "twice",
		},
		{
			name:    "not yaml",
			content: "{{nope",
			errText: "parsing schema file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSchemaFile(t, tt.content)
			_, err := LoadSchemas(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoadSchemas_MissingFile(t *testing.T) {
	_, err := LoadSchemas(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
