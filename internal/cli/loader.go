package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gwright/bitemporal"
)

// SchemaFile is the on-disk YAML document declaring entity types.
//
//	schemas:
//	  - name: employee
//	    scope: [company_id, employee_id]
//	    values: [name, title, salary]
type SchemaFile struct {
	Schemas []*bitemporal.EntityType `yaml:"schemas"`
}

// LoadSchemas reads and validates an entity-type schema file.
func LoadSchemas(path string) ([]*bitemporal.EntityType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var file SchemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing schema file %s: %w", path, err)
	}
	if len(file.Schemas) == 0 {
		return nil, fmt.Errorf("schema file %s declares no entity types", path)
	}

	seen := make(map[string]bool, len(file.Schemas))
	for _, et := range file.Schemas {
		if err := et.Validate(); err != nil {
			return nil, fmt.Errorf("schema file %s: %w", path, err)
		}
		if seen[et.Name] {
			return nil, fmt.Errorf("schema file %s declares entity type %q twice", path, et.Name)
		}
		seen[et.Name] = true
	}
	return file.Schemas, nil
}
