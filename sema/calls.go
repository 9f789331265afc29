package sema

import (
	"cfront/ast"
	"cfront/diag"
	"cfront/token"
	"cfront/types"
)

// AdjustCallArguments implements §4.6's call-site adjustment: each
// argument is type-checked against the callee's declared parameter
// types and cast to the parameter type when not already equal. Excess
// arguments are permitted only for variadic callees, and each excess
// (variadic) argument receives the default argument promotions instead
// of a parameter cast.
func AdjustCallArguments(engine *diag.Engine, coords token.Coordinates, fnType *types.TypeRef, args []ast.Expression) []ast.Expression {
	if fnType == nil || fnType.Kind != types.KindFunction {
		return args
	}
	if len(args) < len(fnType.Params) {
		engine.Report(diag.IncompatibleCast, coords, len(fnType.Params), len(args))
		return args
	}
	if len(args) > len(fnType.Params) && !fnType.IsVariadic {
		engine.Report(diag.IncompatibleCast, coords, len(fnType.Params), len(args))
		return args
	}

	out := make([]ast.Expression, len(args))
	for i, arg := range args {
		if i < len(fnType.Params) {
			out[i] = castTo(arg.Coords(), fnType.Params[i], arg)
			continue
		}
		promoted := DefaultArgumentPromote(arg.ExprType())
		out[i] = castTo(arg.Coords(), promoted, arg)
	}
	return out
}
