package sema

import (
	"cfront/ast"
	"cfront/diag"
	"cfront/token"
	"cfront/types"
)

// SwitchBuilder accumulates case/default labels while the parser walks
// a switch body, implementing §4.6 switch verification: case values
// must be unique and at most one default may appear. Finish returns the
// verified (cases, hasDefault) pair a *ast.Switch stores directly.
type SwitchBuilder struct {
	engine  *diag.Engine
	seen    map[int64]bool
	cases   []int64
	hasDefault bool
}

func NewSwitchBuilder(engine *diag.Engine) *SwitchBuilder {
	return &SwitchBuilder{engine: engine, seen: make(map[int64]bool)}
}

// AddCase records one `case value:` label's folded value.
func (b *SwitchBuilder) AddCase(coords token.Coordinates, value int64) {
	if b.seen[value] {
		b.engine.Report(diag.DuplicateCase, coords, value)
		return
	}
	b.seen[value] = true
	b.cases = append(b.cases, value)
}

// AddDefault records a `default:` label.
func (b *SwitchBuilder) AddDefault(coords token.Coordinates) {
	if b.hasDefault {
		b.engine.Report(diag.MultipleDefault, coords)
		return
	}
	b.hasDefault = true
}

// Finish returns the verified case set and default flag.
func (b *SwitchBuilder) Finish() ([]int64, bool) {
	return b.cases, b.hasDefault
}

// CheckSwitchArgument reports §4.6's "case values are integer constants"
// rule applied to the switch condition's own type.
func CheckSwitchArgument(engine *diag.Engine, coords token.Coordinates, conditionType *types.TypeRef) {
	if !types.IsIntegerType(conditionType) {
		engine.Report(diag.NonIntegerSwitchArgument, coords, conditionType)
	}
}

// LabelTracker implements §4.6 goto/label verification: defined labels
// accumulate as the parser walks a function body; used-but-undefined
// labels are recorded provisionally and reported only if they remain
// undefined at function end (forward gotos are legal in C).
type LabelTracker struct {
	defined map[string]bool
	used    map[string]token.Coordinates
}

func NewLabelTracker() *LabelTracker {
	return &LabelTracker{defined: make(map[string]bool), used: make(map[string]token.Coordinates)}
}

// DefineLabel records a named label's definition, reporting a
// redefinition if the name was already defined in this function.
func (t *LabelTracker) DefineLabel(engine *diag.Engine, coords token.Coordinates, name string) {
	if t.defined[name] {
		engine.Report(diag.LabelRedefinition, coords, name)
		return
	}
	t.defined[name] = true
}

// UseLabel records a `goto name` site; the diagnostic, if any, is
// deferred to Finish so a forward reference to a label defined later in
// the same function is not falsely reported.
func (t *LabelTracker) UseLabel(coords token.Coordinates, name string) {
	if !t.defined[name] {
		t.used[name] = coords
	}
}

// Finish reports every label that was used but never defined by
// function end (§4.6 "at function end any remaining used-but-undefined
// label is reported").
func (t *LabelTracker) Finish(engine *diag.Engine) {
	for name, coords := range t.used {
		if !t.defined[name] {
			engine.Report(diag.UndeclaredLabel, coords, name)
		}
	}
}

// CheckReturn implements §4.6's return-type check: an expression-bearing
// return inside a void function reports; a bare return inside a
// non-void function reports; otherwise the expression is cast to the
// declared return type. Returns the (possibly cast) return expression,
// nil for a bare return.
func CheckReturn(engine *diag.Engine, coords token.Coordinates, returnType *types.TypeRef, value ast.Expression) ast.Expression {
	isVoid := types.IsVoid(returnType)
	switch {
	case isVoid && value != nil:
		engine.Report(diag.IncompatibleAssignment, coords, returnType, value.ExprType())
		return nil
	case !isVoid && value == nil:
		engine.Report(diag.IncompatibleAssignment, coords, returnType, types.Value(types.Primitive(types.Void), 0))
		return nil
	case value == nil:
		return nil
	default:
		return castTo(coords, returnType, value)
	}
}
