package tsfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompile_TranslatesDirectivesToGoLayout(t *testing.T) {
	f := Compile("%Y-%m-%d %H:%M:%S", 0)
	require.Equal(t, "2006-01-02 15:04:05", f.Layout)
	require.True(t, f.HasYear)
	require.False(t, f.HasTZ)
}

func TestCompile_DetectsTimezoneDirective(t *testing.T) {
	f := Compile("%b %e %H:%M:%S %z", 0)
	require.True(t, f.HasTZ)
	require.False(t, f.HasYear)
}

func TestCompile_LiteralPercentAndUnknownDirective(t *testing.T) {
	f := Compile("100%% done %q", 0)
	require.Equal(t, "100% done %q", f.Layout)
}

func TestParse_BackfillsMissingYear(t *testing.T) {
	f := Compile("%b %e %H:%M:%S", 0)
	got, err := f.Parse("Jan  2 15:04:05", 2023)
	require.NoError(t, err)
	require.Equal(t, 2023, got.Year())
	require.Equal(t, 2, got.Day())
}

func TestParse_UsesLocalOffsetWhenNoTZInFormat(t *testing.T) {
	f := Compile("%Y-%m-%d %H:%M:%S", 3600)
	got, err := f.Parse("2024-01-02 10:00:00", 2024)
	require.NoError(t, err)
	_, offset := got.Zone()
	require.Equal(t, 3600, offset)
}

func TestParse_ExplicitTimezoneOverridesFormat(t *testing.T) {
	f := Compile("%Y-%m-%d %H:%M:%S %z", 0)
	got, err := f.Parse("2024-01-02 10:00:00 -0500", 2024)
	require.NoError(t, err)
	_, offset := got.Zone()
	require.Equal(t, -5*3600, offset)
}

func TestParse_RejectsMismatchedValue(t *testing.T) {
	f := Compile("%Y-%m-%d", 0)
	_, err := f.Parse("not-a-date", 2024)
	require.Error(t, err)
}
