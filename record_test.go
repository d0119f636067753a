package bitemporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwright/bitemporal/temporal"
)

func employeeType() *EntityType {
	return &EntityType{
		Name:      "employee",
		ScopeKeys: []string{"company_id", "employee_id"},
		ValueKeys: []string{"name", "title", "salary"},
	}
}

func TestEntityType_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, employeeType().Validate())
	})

	cases := []struct {
		desc string
		et   EntityType
	}{
		{"empty name", EntityType{ScopeKeys: []string{"k"}}},
		{"uppercase name", EntityType{Name: "Employee", ScopeKeys: []string{"k"}}},
		{"no scope keys", EntityType{Name: "employee"}},
		{"bad field name", EntityType{Name: "employee", ScopeKeys: []string{"company id"}}},
		{"duplicate field", EntityType{Name: "employee", ScopeKeys: []string{"k"}, ValueKeys: []string{"k"}}},
		{"reserved field", EntityType{Name: "employee", ScopeKeys: []string{"vt_begin"}}},
		{"reserved id", EntityType{Name: "employee", ScopeKeys: []string{"k"}, ValueKeys: []string{"id"}}},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.et.Validate()
			require.Error(t, err)
			assert.True(t, IsInvalidArguments(err))
		})
	}
}

func TestEntityType_Columns(t *testing.T) {
	et := employeeType()
	assert.Equal(t, []string{"company_id", "employee_id", "name", "title", "salary"}, et.Columns())
	assert.True(t, et.IsScopeKey("company_id"))
	assert.False(t, et.IsScopeKey("salary"))
	assert.True(t, et.IsValueKey("salary"))
	assert.False(t, et.IsValueKey("company_id"))
}

func TestRecord_Projections(t *testing.T) {
	rec := NewRecord(employeeType(), Attrs{
		"company_id":  "acme",
		"employee_id": int64(7),
		"name":        "Ada",
		"title":       "engineer",
		"salary":      int64(100),
	}, temporal.NewInterval(2, 8))

	assert.Equal(t, Attrs{"company_id": "acme", "employee_id": int64(7)}, rec.ScopeAttrs())
	assert.Equal(t, Attrs{"name": "Ada", "title": "engineer", "salary": int64(100)}, rec.ValueAttrs())
	assert.Equal(t, Attrs{
		ColVTBegin: temporal.Instant(2),
		ColVTEnd:   temporal.Instant(8),
		ColTTBegin: temporal.Instant(0),
		ColTTEnd:   temporal.Forever,
	}, rec.TemporalAttrs())

	assert.Equal(t, temporal.NewInterval(2, 8), rec.ValidInterval())
	assert.False(t, rec.IsPersisted())
	assert.True(t, rec.IsActive())
}

func TestRecord_SameSnapshot(t *testing.T) {
	base := NewRecord(employeeType(), Attrs{
		"company_id":  "acme",
		"employee_id": int64(7),
		"title":       "engineer",
	}, temporal.NewInterval(2, 8))

	t.Run("identical", func(t *testing.T) {
		other := base.derive(base.ValidInterval())
		assert.True(t, base.sameSnapshot(other))
	})

	t.Run("transaction time ignored", func(t *testing.T) {
		other := base.derive(base.ValidInterval())
		other.TTBegin = 50
		other.TTEnd = 90
		assert.True(t, base.sameSnapshot(other))
	})

	t.Run("different value attr", func(t *testing.T) {
		other := base.derive(base.ValidInterval())
		other.Attrs["title"] = "manager"
		assert.False(t, base.sameSnapshot(other))
	})

	t.Run("different valid time", func(t *testing.T) {
		other := base.derive(temporal.NewInterval(2, 9))
		assert.False(t, base.sameSnapshot(other))
	})

	t.Run("integer width ignored", func(t *testing.T) {
		for _, v := range []any{7, int8(7), int16(7), int32(7), uint(7), uint8(7), uint16(7), uint32(7), uint64(7)} {
			other := base.derive(base.ValidInterval())
			other.Attrs["employee_id"] = v
			assert.True(t, base.sameSnapshot(other), "%T", v)
		}
	})

	t.Run("unicode normalization", func(t *testing.T) {
		a := base.derive(base.ValidInterval())
		b := base.derive(base.ValidInterval())
		a.Attrs["title"] = "café"        // precomposed
		b.Attrs["title"] = "café"       // decomposed
		assert.True(t, a.sameSnapshot(b))
	})
}
