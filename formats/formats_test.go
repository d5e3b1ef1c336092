package formats_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/dataspec"
	"github.com/reoring/dataspec/formats"
)

func strSpec(t *testing.T, opts dataspec.StrOpts) dataspec.Spec {
	t.Helper()
	opts.Formats = formats.Registry()
	s, err := dataspec.Str(opts)
	require.NoError(t, err)
	return s
}

func TestRegistry_SameInstance(t *testing.T) {
	assert.Same(t, formats.Registry(), formats.Registry())
}

func TestUUIDFormat(t *testing.T) {
	s := strSpec(t, dataspec.StrOpts{Format: "uuid"})
	assert.True(t, s.IsValid("6af613b6-569c-5c22-9c37-2ed93f31d3af"))
	assert.False(t, s.IsValid("not-a-uuid"))
	assert.False(t, s.IsValid(42))
}

func TestUUIDFormat_Conform(t *testing.T) {
	s := strSpec(t, dataspec.StrOpts{ConformFormat: "uuid"})
	c := s.Conform("6af613b6-569c-5c22-9c37-2ed93f31d3af")
	require.True(t, c.Valid())
	u, ok := c.Value().(uuid.UUID)
	require.True(t, ok, "conformed value should be a uuid.UUID, got %T", c.Value())
	assert.Equal(t, "6af613b6-569c-5c22-9c37-2ed93f31d3af", u.String())
}

func TestEmailFormat(t *testing.T) {
	s := strSpec(t, dataspec.StrOpts{Format: "email"})
	assert.True(t, s.IsValid("dev@example.com"))
	assert.False(t, s.IsValid("no-at-sign"))
	assert.False(t, s.IsValid("Dev <dev@example.com>"), "display names are not bare addresses")
}

func TestISODateFormat(t *testing.T) {
	s := strSpec(t, dataspec.StrOpts{Format: "iso-date"})
	assert.True(t, s.IsValid("2020-02-29"))
	assert.False(t, s.IsValid("2020-2-9"))
	assert.False(t, s.IsValid("2021-02-29"))
}

func TestISODateFormat_Conform(t *testing.T) {
	s := strSpec(t, dataspec.StrOpts{ConformFormat: "iso-date"})
	c := s.Conform("2020-01-02")
	require.True(t, c.Valid())
	got, ok := c.Value().(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestISODatetimeFormat(t *testing.T) {
	s := strSpec(t, dataspec.StrOpts{Format: "iso-datetime"})
	assert.True(t, s.IsValid("2020-01-02T03:04:05Z"))
	assert.True(t, s.IsValid("2020-01-02T03:04:05+09:00"))
	assert.False(t, s.IsValid("2020-01-02 03:04:05"))
}

func TestISOTimeFormat(t *testing.T) {
	s := strSpec(t, dataspec.StrOpts{Format: "iso-time"})
	assert.True(t, s.IsValid("03:04:05"))
	assert.False(t, s.IsValid("3:04"))
	assert.False(t, s.IsValid("25:00:00"))
}

func TestInstall_PopulatesDefaultRegistry(t *testing.T) {
	formats.Install()
	s, err := dataspec.Str(dataspec.StrOpts{Format: "uuid"})
	require.NoError(t, err)
	assert.True(t, s.IsValid("6af613b6-569c-5c22-9c37-2ed93f31d3af"))
}
