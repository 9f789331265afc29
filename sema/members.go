package sema

import (
	"cfront/diag"
	"cfront/token"
	"cfront/types"
)

// ComputeMember implements §4.6 compute_member: looks up name in
// receiverType's member chain, descending transitively into anonymous
// nested aggregates (StructuralMember.Parent marks members spliced in
// from one). `.` requires receiverType to be a struct/union value;
// `->` requires a pointer to one, which the caller is expected to have
// already unwrapped before calling (receiverType here is always the
// struct/union value type being searched).
func ComputeMember(engine *diag.Engine, coords token.Coordinates, receiverType *types.TypeRef, name string) *types.StructuralMember {
	if receiverType == nil || receiverType.Kind != types.KindValue || receiverType.Desc.Definition == nil {
		engine.Report(diag.FieldDesignatorOnNonStruct, coords, name)
		return nil
	}
	if m := findMember(receiverType.Desc.Definition.Members, name); m != nil {
		return m
	}
	engine.Report(diag.FieldDesignatorOnNonStruct, coords, name)
	return nil
}

func findMember(head *types.StructuralMember, name string) *types.StructuralMember {
	for m := head; m != nil; m = m.Next {
		if m.Name == name {
			return m
		}
		if m.Name == "" && m.Type.Kind == types.KindValue && m.Type.Desc.Definition != nil {
			if found := findMember(m.Type.Desc.Definition.Members, name); found != nil {
				return found
			}
		}
	}
	return nil
}
