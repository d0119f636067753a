package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstant_SentinelOrdering(t *testing.T) {
	// Sentinels must sit in the same total order as finite instants.
	assert.True(t, NegativeForever < Instant(0))
	assert.True(t, Instant(0) < Forever)
	assert.True(t, NegativeForever < Forever)
	assert.True(t, Instant(-1_000_000) > NegativeForever)
	assert.True(t, Instant(1_000_000) < Forever)
}

func TestInstant_IsFinite(t *testing.T) {
	assert.False(t, Forever.IsFinite())
	assert.False(t, NegativeForever.IsFinite())
	assert.True(t, Instant(0).IsFinite())
	assert.True(t, Now().IsFinite())
}

func TestInstant_String(t *testing.T) {
	assert.Equal(t, "inf", Forever.String())
	assert.Equal(t, "-inf", NegativeForever.String())
	assert.Equal(t, "42", Instant(42).String())
	assert.Equal(t, "-7", Instant(-7).String())
}

func TestInstant_TimeRoundTrip(t *testing.T) {
	pinned := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	i := FromTime(pinned)
	assert.True(t, pinned.Equal(i.Time()))
}

func TestParseInstant(t *testing.T) {
	cases := []struct {
		in   string
		want Instant
	}{
		{"inf", Forever},
		{"+inf", Forever},
		{"forever", Forever},
		{"-inf", NegativeForever},
		{"-forever", NegativeForever},
		{"0", Instant(0)},
		{"42", Instant(42)},
		{"-17", Instant(-17)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseInstant(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("rfc3339", func(t *testing.T) {
		got, err := ParseInstant("2024-06-01T12:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, FromTime(time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)), got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseInstant("not-a-time")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid instant")
	})
}
