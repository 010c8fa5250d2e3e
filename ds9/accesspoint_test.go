package ds9

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAccessPoint(t *testing.T) {
	point, ok := ParseAccessPoint("")
	require.True(t, ok)
	require.Equal(t, "ds9", point)

	point, ok = ParseAccessPoint("DS9:ds9 12345 12346")
	require.True(t, ok)
	require.Equal(t, "127.0.0.1:12345", point)

	point, ok = ParseAccessPoint("garbage")
	require.False(t, ok)
	require.Equal(t, "ds9", point)

	point, ok = ParseAccessPoint("DS9:ds9 nope nope")
	require.False(t, ok)
	require.Equal(t, "ds9", point)
}

func TestAccessPointReadsEnvironment(t *testing.T) {
	t.Setenv("XPA_PORT", "DS9:ds9 40001 40002")
	require.Equal(t, "127.0.0.1:40001", AccessPoint())

	t.Setenv("XPA_PORT", "")
	require.Equal(t, "ds9", AccessPoint())
}
