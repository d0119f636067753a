package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gwright/bitemporal"
)

// tableName returns the version table for an entity type. Names are
// validated identifiers, so interpolation into DDL is safe.
func tableName(et *bitemporal.EntityType) string {
	return "bt_" + et.Name
}

// RegisterEntityType records the schema in the registry and creates the
// entity's version table and scope index. Registering the same schema
// twice is a no-op; a conflicting schema for an existing name fails.
func (s *Store) RegisterEntityType(ctx context.Context, et *bitemporal.EntityType) error {
	if err := et.Validate(); err != nil {
		return err
	}
	scopeJSON, err := json.Marshal(et.ScopeKeys)
	if err != nil {
		return fmt.Errorf("marshal scope keys: %w", err)
	}
	valueJSON, err := json.Marshal(et.ValueKeys)
	if err != nil {
		return fmt.Errorf("marshal value keys: %w", err)
	}

	return s.RunInTransaction(ctx, func(tx bitemporal.Tx) error {
		stx := tx.(*sql.Tx)

		existing, err := lookupTx(ctx, stx, et.Name)
		switch {
		case err == nil:
			if !sameKeys(existing.ScopeKeys, et.ScopeKeys) || !sameKeys(existing.ValueKeys, et.ValueKeys) {
				return fmt.Errorf("entity type %q already registered with a different schema", et.Name)
			}
			return nil
		case !errors.Is(err, errNotRegistered):
			return err
		}

		if _, err := stx.ExecContext(ctx, `
			INSERT INTO bt_entity_types (name, scope_keys, value_keys)
			VALUES (?, ?, ?)
		`, et.Name, string(scopeJSON), string(valueJSON)); err != nil {
			return fmt.Errorf("register entity type: %w", err)
		}

		if _, err := stx.ExecContext(ctx, versionTableDDL(et)); err != nil {
			return fmt.Errorf("create version table: %w", err)
		}
		if _, err := stx.ExecContext(ctx, scopeIndexDDL(et)); err != nil {
			return fmt.Errorf("create scope index: %w", err)
		}
		return nil
	})
}

// LookupEntityType returns a registered schema by name.
func (s *Store) LookupEntityType(ctx context.Context, name string) (*bitemporal.EntityType, error) {
	return lookupTx(ctx, s.db, name)
}

// ListEntityTypes returns every registered schema, ordered by name.
func (s *Store) ListEntityTypes(ctx context.Context) ([]*bitemporal.EntityType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, scope_keys, value_keys
		FROM bt_entity_types
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entity types: %w", err)
	}
	defer rows.Close()

	var out []*bitemporal.EntityType
	for rows.Next() {
		et, err := scanEntityType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, et)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity types: %w", err)
	}
	return out, nil
}

var errNotRegistered = errors.New("entity type not registered")

func lookupTx(ctx context.Context, h dbtx, name string) (*bitemporal.EntityType, error) {
	row := h.QueryRowContext(ctx, `
		SELECT name, scope_keys, value_keys
		FROM bt_entity_types
		WHERE name = ?
	`, name)
	et, err := scanEntityType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity type %q: %w", name, errNotRegistered)
	}
	return et, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntityType(row rowScanner) (*bitemporal.EntityType, error) {
	var name, scopeJSON, valueJSON string
	if err := row.Scan(&name, &scopeJSON, &valueJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan entity type: %w", err)
	}
	et := &bitemporal.EntityType{Name: name}
	if err := json.Unmarshal([]byte(scopeJSON), &et.ScopeKeys); err != nil {
		return nil, fmt.Errorf("unmarshal scope keys for %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(valueJSON), &et.ValueKeys); err != nil {
		return nil, fmt.Errorf("unmarshal value keys for %q: %w", name, err)
	}
	return et, nil
}

func versionTableDDL(et *bitemporal.EntityType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", tableName(et))
	b.WriteString("    id TEXT PRIMARY KEY,\n")
	for _, col := range et.Columns() {
		fmt.Fprintf(&b, "    %s,\n", col)
	}
	b.WriteString("    vt_begin INTEGER NOT NULL,\n")
	b.WriteString("    vt_end   INTEGER NOT NULL,\n")
	b.WriteString("    tt_begin INTEGER NOT NULL,\n")
	b.WriteString("    tt_end   INTEGER NOT NULL\n")
	b.WriteString(")")
	return b.String()
}

func scopeIndexDDL(et *bitemporal.EntityType) string {
	cols := append(append([]string{}, et.ScopeKeys...), "tt_end")
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_scope_idx ON %s (%s)",
		tableName(et), tableName(et), strings.Join(cols, ", "))
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
