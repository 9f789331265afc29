package diag

import (
	"testing"

	"cfront/token"

	"github.com/stretchr/testify/require"
)

func TestEngineHasError(t *testing.T) {
	e := New()
	require.False(t, e.HasError())
	e.Report(UndeclaredIdentifier, token.Coordinates{Left: 1, Right: 1}, "x")
	require.True(t, e.HasError())
	require.Len(t, e.All(), 1)
	require.Contains(t, e.All()[0].Message(), "x")
}

func TestEngineReportSeverityOverride(t *testing.T) {
	e := New()
	e.ReportSeverity(Warning, UseWithDifferentTag, token.Coordinates{}, "S")
	require.False(t, e.HasError())
}

func TestLineIndexPosition(t *testing.T) {
	src := "aaa\nbbb\nccc"
	li := NewLineIndex(src)
	line, col := li.Position(0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)
	line, col = li.Position(4)
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)
	line, col = li.Position(9)
	require.Equal(t, 3, line)
	require.Equal(t, 2, col)
}
