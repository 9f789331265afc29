package parser

import (
	"strings"
	"testing"
	"unicode"

	"cfront/ast"
	"cfront/diag"
	"cfront/token"
	"cfront/types"

	"github.com/stretchr/testify/require"
)

// tokenize is a minimal hand-rolled scanner for test fixtures only: the
// real lexer/preprocessor is out of scope (spec §1), so these tests drive
// the parser directly off a token slice built from a tiny, single-line-
// comment-free subset of C punctuation and keywords, enough to exercise
// the grammar rules under test.
func tokenize(src string) []token.Token {
	var toks []token.Token
	runes := []rune(src)
	i := 0
	push := func(code token.Code, text string) {
		n := len(toks)
		toks = append(toks, token.Create(code, token.Coordinates{Left: n, Right: n}, text))
	}
	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			text := string(runes[start:i])
			if kw, ok := token.Keywords[text]; ok {
				push(kw, text)
			} else {
				push(token.IDENTIFIER, text)
			}
		case unicode.IsDigit(c):
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			text := string(runes[start:i])
			n := len(toks)
			var v int64
			for _, d := range text {
				v = v*10 + int64(d-'0')
			}
			toks = append(toks, token.CreateLiteral(token.INT_CONST, token.Value{Int: v}, text, token.Coordinates{Left: n, Right: n}))
		default:
			two := ""
			if i+1 < len(runes) {
				two = string(runes[i : i+2])
			}
			switch two {
			case "==":
				push(token.EQ, two)
				i += 2
				continue
			case "...":
			}
			if strings.HasPrefix(string(runes[i:]), "...") {
				push(token.ELLIPSIS, "...")
				i += 3
				continue
			}
			single := map[rune]token.Code{
				'(': token.LPAREN, ')': token.RPAREN, '{': token.LBRACE, '}': token.RBRACE,
				'[': token.LBRACKET, ']': token.RBRACKET, ';': token.SEMI, ',': token.COMMA,
				'*': token.STAR, '=': token.ASSIGN, '+': token.PLUS, '-': token.MINUS,
				'/': token.SLASH, '<': token.LT, '>': token.GT, '.': token.DOT,
			}
			code, ok := single[c]
			if !ok {
				panic("tokenize: unsupported character " + string(c))
			}
			push(code, string(c))
			i++
		}
	}
	push(token.EOF, "")
	return toks
}

func parseSource(t *testing.T, src string) (*ast.File, *diag.Engine) {
	t.Helper()
	engine := diag.New()
	p := New(tokenize(src), engine)
	file := p.ParseFile("test.c")
	return file, engine
}

func TestParseSimpleVariableDeclaration(t *testing.T) {
	file, engine := parseSource(t, "int x;")
	require.False(t, engine.HasError())
	require.Len(t, file.Declarations, 1)
	decl, ok := file.Declarations[0].(*ast.ValueDeclaration)
	require.True(t, ok)
	require.Equal(t, "x", decl.Name)
	require.Equal(t, types.S4, decl.Type.Desc.ID)
}

func TestParsePointerToArrayVsArrayOfPointers(t *testing.T) {
	file, engine := parseSource(t, "int *a[3]; int (*b)[3];")
	require.False(t, engine.HasError())
	require.Len(t, file.Declarations, 2)

	a := file.Declarations[0].(*ast.ValueDeclaration)
	require.Equal(t, types.KindArray, a.Type.Kind)
	require.Equal(t, types.KindPointed, a.Type.Element.Kind)

	b := file.Declarations[1].(*ast.ValueDeclaration)
	require.Equal(t, types.KindPointed, b.Type.Kind)
	require.Equal(t, types.KindArray, b.Type.Pointee.Kind)
}

func TestParseFunctionPrototype(t *testing.T) {
	file, engine := parseSource(t, "int add(int a, int b);")
	require.False(t, engine.HasError())
	fn, ok := file.Declarations[0].(*ast.FunctionDeclaration)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Nil(t, fn.Body)
	require.Len(t, fn.Parameters, 2)
}

func TestParseFunctionDefinitionParametersVisibleInBody(t *testing.T) {
	file, engine := parseSource(t, "int add(int a, int b) { return a; }")
	require.False(t, engine.HasError())
	fn := file.Declarations[0].(*ast.FunctionDeclaration)
	require.NotNil(t, fn.Body)
	require.Len(t, fn.Parameters, 2)
	require.NotNil(t, fn.Parameters[0].Symbol)
	require.NotNil(t, fn.Parameters[1].Symbol)
}

func TestParsePrototypeThenDefinitionPromotesSameSymbol(t *testing.T) {
	file, engine := parseSource(t, "int add(int a, int b); int add(int a, int b) { return a; }")
	require.False(t, engine.HasError())
	require.Len(t, file.Declarations, 2)
	proto := file.Declarations[0].(*ast.FunctionDeclaration)
	def := file.Declarations[1].(*ast.FunctionDeclaration)
	require.Same(t, proto.Symbol, def.Symbol)
	require.NotNil(t, def.Body)
}

func TestParseDuplicateDefinitionReportsRedefinition(t *testing.T) {
	_, engine := parseSource(t, "int f(void) { return 0; } int f(void) { return 1; }")
	require.True(t, engine.HasError())
}

func TestParseVariableLengthArrayParameterReferencesEarlierParameter(t *testing.T) {
	file, engine := parseSource(t, "void fill(int n, int a[n]) { a[0] = n; }")
	require.False(t, engine.HasError())
	fn := file.Declarations[0].(*ast.FunctionDeclaration)
	require.Len(t, fn.Parameters, 2)
	require.Equal(t, types.KindVLA, fn.Parameters[1].Type.Kind)
}

func TestParseStructDeclaration(t *testing.T) {
	file, engine := parseSource(t, "struct point { int x; int y; }; struct point p;")
	require.False(t, engine.HasError())
	require.Len(t, file.Declarations, 1)
	decl, ok := file.Declarations[0].(*ast.ValueDeclaration)
	require.True(t, ok)
	require.Equal(t, "p", decl.Name)
}

func TestParseEnumDeclaration(t *testing.T) {
	file, engine := parseSource(t, "enum color { RED, GREEN, BLUE }; enum color c;")
	require.False(t, engine.HasError())
	require.Len(t, file.Declarations, 1)
}

func TestParseTypedefThenUseAsTypeName(t *testing.T) {
	file, engine := parseSource(t, "typedef int myint; myint x;")
	require.False(t, engine.HasError())
	require.Len(t, file.Declarations, 1)
	decl, ok := file.Declarations[0].(*ast.ValueDeclaration)
	require.True(t, ok)
	require.Equal(t, "x", decl.Name)
	require.Equal(t, types.S4, decl.Type.Desc.ID)
}

func TestParseIfElseStatement(t *testing.T) {
	file, engine := parseSource(t, "int f(void) { if (1) return 1; else return 0; }")
	require.False(t, engine.HasError())
	fn := file.Declarations[0].(*ast.FunctionDeclaration)
	require.Len(t, fn.Body.Statements, 1)
	_, ok := fn.Body.Statements[0].(*ast.If)
	require.True(t, ok)
}

func TestParseForLoopStatement(t *testing.T) {
	file, engine := parseSource(t, "int f(void) { int i; for (i = 0; i < 10; i = i + 1) i = i; }")
	require.False(t, engine.HasError())
	fn := file.Declarations[0].(*ast.FunctionDeclaration)
	require.Len(t, fn.Body.Statements, 2)
	_, ok := fn.Body.Statements[1].(*ast.Loop)
	require.True(t, ok)
}

func TestParseUndeclaredIdentifierReportsDiagnostic(t *testing.T) {
	_, engine := parseSource(t, "int f(void) { return y; }")
	require.True(t, engine.HasError())
}
