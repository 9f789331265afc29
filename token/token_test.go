package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	tok := Create(LPAREN, Coordinates{Left: 3, Right: 3}, "(")
	require.Equal(t, LPAREN, tok.Code)
	require.Equal(t, LPAREN, tok.RawCode)
	require.Equal(t, "(", tok.Text)
}

func TestCreateLiteral(t *testing.T) {
	tok := CreateLiteral(INT_CONST, Value{Int: 42}, "42", Coordinates{Left: 5, Right: 5})
	require.Equal(t, int64(42), tok.Value.Int)
	require.Equal(t, "INT_CONST", tok.Code.String())
}

func TestJoin(t *testing.T) {
	a := Coordinates{Left: 1, Right: 3}
	b := Coordinates{Left: 2, Right: 7}
	require.Equal(t, Coordinates{Left: 1, Right: 7}, Join(a, b))
}

func TestIsTypeName(t *testing.T) {
	tok := Create(IDENTIFIER, Coordinates{}, "Foo")
	require.False(t, tok.IsTypeName())
	tok.Code = TYPE_NAME
	require.True(t, tok.IsTypeName())
}
