package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gwright/bitemporal"
	"github.com/gwright/bitemporal/store"
	"github.com/gwright/bitemporal/temporal"
)

// EmployeeType is the standard test schema: one employee per company,
// versioned title and salary.
func EmployeeType() *bitemporal.EntityType {
	return &bitemporal.EntityType{
		Name:      "employee",
		ScopeKeys: []string{"company_id", "employee_id"},
		ValueKeys: []string{"name", "title", "salary"},
	}
}

// OpenStore opens a throwaway SQLite store under t.TempDir and closes it
// when the test ends.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "bitemporal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewEngine builds an engine over a throwaway store with the employee
// schema registered and a manual clock pinned at start.
func NewEngine(t *testing.T, start int64) (*bitemporal.Engine, *ManualClock, *store.Store) {
	t.Helper()
	s := OpenStore(t)
	if err := s.RegisterEntityType(context.Background(), EmployeeType()); err != nil {
		t.Fatalf("RegisterEntityType() failed: %v", err)
	}
	clock := NewManualClock(temporal.Instant(start))
	return bitemporal.NewEngine(s, bitemporal.WithClock(clock)), clock, s
}
