// Package diag implements the diagnostic engine (§4.2): structured
// error/warning collection keyed by source coordinates, plus the source
// location index used to render a byte offset as (line, column).
//
// This generalizes the teacher's per-phase named error types
// (parser.SyntaxError, interpreter.RuntimeError, compiler.SemanticError —
// each a struct with Line/Column/Message and an Error() string method)
// into the single fixed taxonomy §7 requires, while keeping the teacher's
// emoji-prefixed rendering convention.
package diag

import (
	"fmt"
	"strings"

	"cfront/token"

	"github.com/pkg/errors"
)

// Diagnostic is one recorded emission: a severity, a kind, the coordinates
// it was raised at, and the arguments used to render its message.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Coords   token.Coordinates
	Args     []any
}

var messageTemplates = map[Kind]string{
	UnexpectedToken:       "unexpected token %v",
	ExpectedToken:         "expected %v but found %v",
	ExpectedIdentifier:    "expected identifier",
	ExpectedSemicolon:     "expected ';'",
	DeclaresNothing:       "declaration declares nothing",
	IDAlreadySpecified:    "identifier %q already specified",
	UnknownTypeName:       "unknown type name %q",
	UndeclaredIdentifier:  "use of undeclared identifier %q",
	UseWithDifferentTag:   "%q used with a tag type that does not match its previous declaration",
	Redefinition:          "redefinition of %q",
	LabelRedefinition:     "redefinition of label %q",
	UndeclaredLabel:       "use of undeclared label %q",
	DuplicateCase:         "duplicate case value %v",
	MultipleDefault:       "multiple default labels in one switch",
	IncompatibleAssignment: "incompatible types assigning %v to %v",
	IncompatibleCast:       "cannot cast %v to %v",
}

// Message renders d's message from its kind's template and arguments,
// falling back to a generic rendering when no template is registered.
func (d Diagnostic) Message() string {
	if tmpl, ok := messageTemplates[d.Kind]; ok {
		return fmt.Sprintf(tmpl, d.Args...)
	}
	return fmt.Sprintf("%s: %v", d.Kind, d.Args)
}

func (d Diagnostic) String() string {
	icon := "⚠️"
	if d.Severity == Error {
		icon = "💥"
	}
	return fmt.Sprintf("%s %s at %s: %s", icon, d.Severity, d.Coords, d.Message())
}

// LineIndex maps a byte offset in the original source into (line, column),
// built once per translation unit by scanning the source text for
// newlines (§4.2 "line_starts[]").
type LineIndex struct {
	lineStarts []int
}

// NewLineIndex builds a LineIndex from source text.
func NewLineIndex(source string) *LineIndex {
	starts := []int{0}
	for i, r := range source {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{lineStarts: starts}
}

// Position returns the 1-based (line, column) for a byte offset.
func (li *LineIndex) Position(offset int) (line, column int) {
	lo, hi := 0, len(li.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - li.lineStarts[lo] + 1
}

// Engine collects diagnostics in encounter order for one translation unit
// (§4.2, §5 "append-only within one translation unit").
type Engine struct {
	entries []Diagnostic
}

// New creates an empty Engine.
func New() *Engine {
	return &Engine{}
}

// Report records a diagnostic at its kind's default severity.
func (e *Engine) Report(kind Kind, coords token.Coordinates, args ...any) {
	e.ReportSeverity(kind.Severity(), kind, coords, args...)
}

// ReportSeverity records a diagnostic at an explicitly chosen severity,
// used when a kind's default is overridden at the call site (e.g. a
// typedef redefinition with equal types is not reported at all; an
// almost-equal struct comparison may be downgraded to Warning).
func (e *Engine) ReportSeverity(sev Severity, kind Kind, coords token.Coordinates, args ...any) {
	e.entries = append(e.entries, Diagnostic{Severity: sev, Kind: kind, Coords: coords, Args: args})
}

// HasError reports whether any recorded diagnostic has Error severity.
func (e *Engine) HasError() bool {
	for _, d := range e.entries {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// All returns every recorded diagnostic in encounter order.
func (e *Engine) All() []Diagnostic {
	return e.entries
}

// Render formats every diagnostic, one per line. When li is non-nil and
// verbose is true, each line is followed by the offending source line
// (the verbose option in §6).
func (e *Engine) Render(source string, li *LineIndex, verbose bool) string {
	var b strings.Builder
	lines := strings.Split(source, "\n")
	for _, d := range e.entries {
		fmt.Fprintln(&b, d.String())
		if verbose && li != nil {
			line, _ := li.Position(d.Coords.Left)
			if line-1 >= 0 && line-1 < len(lines) {
				fmt.Fprintf(&b, "    | %s\n", lines[line-1])
			}
		}
	}
	return b.String()
}

// Internal panics unreachable-code assertions: these are reserved for
// internal invariant violations and terminate compilation (§7), unlike
// reported diagnostics which are recorded and survived.
func Internal(format string, args ...any) {
	panic(errors.Errorf("internal compiler error: "+format, args...))
}
