package render

import (
	"fmt"
	"io"
	"strings"

	"cfront/ir"
)

var opcodeMnemonics = map[ir.Opcode]string{
	ir.OpConst:      "CONST",
	ir.OpLoadLocal:  "LOAD_LOCAL",
	ir.OpStoreLocal: "STORE_LOCAL",
	ir.OpLoadMem:    "LOAD_MEM",
	ir.OpStoreMem:   "STORE_MEM",
	ir.OpAddr:       "ADDR",
	ir.OpUnary:      "UNARY",
	ir.OpBinary:     "BINARY",
	ir.OpCast:       "BITCAST",
	ir.OpCall:       "CALL",
	ir.OpBranch:     "BRANCH",
	ir.OpCBranch:    "CBRANCH",
	ir.OpTBranch:    "TBRANCH",
	ir.OpReturn:     "RETURN",
	ir.OpBad:        "BAD",
}

// DumpOperand renders op with the sigil matching its OperandKind (§6
// "operands rendered with sigils"): #n literal, %n vreg, @n local,
// BB#n block, [base+offset] memory, <name> symbolic reference.
func DumpOperand(w io.Writer, op ir.Operand) {
	switch op.Kind {
	case ir.OperandLitInt:
		fmt.Fprintf(w, "#%d", op.IntVal)
	case ir.OperandLitFloat:
		fmt.Fprintf(w, "#%g", op.FloatVal)
	case ir.OperandLitString:
		fmt.Fprintf(w, "#%q", op.StrVal)
	case ir.OperandVReg:
		fmt.Fprintf(w, "%%%d", op.VReg)
	case ir.OperandLocal:
		fmt.Fprintf(w, "@%d", op.Local)
	case ir.OperandBlock:
		fmt.Fprintf(w, "BB#%d", op.Block)
	case ir.OperandMemory:
		fmt.Fprint(w, "[")
		if op.Base != nil {
			DumpOperand(w, *op.Base)
		}
		fmt.Fprintf(w, "+%d]", op.Offset)
	case ir.OperandSymbol:
		fmt.Fprintf(w, "<%s>", op.Symbol)
	default:
		fmt.Fprint(w, "<none>")
	}
}

// DumpBlockHeader writes b's header line the way the original's
// dumpIrBlockHeader does: id/name, then predecessors, successors,
// strict dominator, dominance frontier and dominatees if present.
func DumpBlockHeader(w io.Writer, b *ir.BasicBlock) {
	fmt.Fprintf(w, "BB #%d, '%s'", b.ID, b.Name)
	if len(b.Predecessors) > 0 {
		fmt.Fprint(w, ", <-")
		for _, p := range b.Predecessors {
			fmt.Fprintf(w, " #%d", p)
		}
	}
	if len(b.Successors) > 0 {
		fmt.Fprint(w, ", ->")
		for _, s := range b.Successors {
			fmt.Fprintf(w, " #%d", s)
		}
	}
	if b.StrictDominator != b.ID {
		fmt.Fprintf(w, ", strict dom #%d", b.StrictDominator)
	}
	if len(b.Frontier) > 0 {
		fmt.Fprint(w, ", domination frontier [")
		for i, f := range b.Frontier {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "#%d", f)
		}
		fmt.Fprint(w, "]")
	}
	if len(b.Dominatees) > 0 {
		fmt.Fprint(w, ", dominatees [")
		for i, d := range b.Dominatees {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "#%d", d)
		}
		fmt.Fprint(w, "]")
	}
}

// instructionExtra renders the bracketed extra detail some opcodes
// carry before their operand lists (§6): a bitcast's src->dst type
// pair, or a switch table's case count and default target.
func instructionExtra(instr ir.Instruction) string {
	switch instr.Op {
	case ir.OpCast:
		var srcType, dstType string
		if len(instr.Args) > 0 && instr.Args[0].Type != nil {
			srcType = TypeString(instr.Args[0].Type)
		}
		if instr.Type != nil {
			dstType = TypeString(instr.Type)
		}
		return fmt.Sprintf("[%s->%s]", srcType, dstType)
	case ir.OpTBranch:
		var b strings.Builder
		fmt.Fprintf(&b, "[TABLE_SIZE = %d", len(instr.Cases))
		if len(instr.Targets) > 0 {
			fmt.Fprintf(&b, ", default = #%d", instr.Targets[0])
		}
		b.WriteByte(']')
		return b.String()
	default:
		return ""
	}
}

// DumpInstruction writes one mnemonic instruction the way
// dumpIrInstruction does: mnemonic, optional bracketed extra, the
// parenthesized use list, then " => " and the defined operand.
func DumpInstruction(w io.Writer, instr ir.Instruction) {
	fmt.Fprint(w, opcodeMnemonics[instr.Op])
	fmt.Fprint(w, " ")

	if extra := instructionExtra(instr); extra != "" {
		fmt.Fprint(w, extra)
		fmt.Fprint(w, " ")
	}

	uses := append([]ir.Operand(nil), instr.Args...)
	for _, t := range instr.Targets {
		uses = append(uses, ir.Operand{Kind: ir.OperandBlock, Block: t})
	}
	for _, c := range instr.Cases {
		uses = append(uses, ir.Operand{Kind: ir.OperandBlock, Block: c.Target})
	}
	if len(uses) > 0 {
		fmt.Fprint(w, "(")
		for i, a := range uses {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			DumpOperand(w, a)
		}
		fmt.Fprint(w, ")")
	}

	if instr.Result.IsValid() {
		fmt.Fprint(w, " => ")
		DumpOperand(w, instr.Result)
	}
}

// DumpBlock writes b's header, a blank phi-placeholder line (this
// front end never promotes locals to SSA phis, mirroring the
// original's always-empty dumpIrBlockPhis hook), then each
// instruction indented two spaces.
func DumpBlock(w io.Writer, b *ir.BasicBlock) {
	DumpBlockHeader(w, b)
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, "\n")
	for _, instr := range b.Instructions {
		fmt.Fprint(w, "  ")
		DumpInstruction(w, instr)
		fmt.Fprint(w, "\n")
	}
}

// DumpFunction writes fn's locals table, optional return operand, and
// every block, in the layout dumpIrFunction produces (§6 "IR textual
// dump").
func DumpFunction(w io.Writer, fn *ir.Function) {
	fmt.Fprintf(w, "Function '%s'\n", fn.Name)
	fmt.Fprint(w, "Locals:\n")
	for _, l := range fn.Locals {
		referenced := ' '
		if l.Referenced {
			referenced = '&'
		}
		kind := byte('l')
		if l.IsParam {
			kind = 'p'
		}
		fmt.Fprintf(w, "  %c%c:%s = ", referenced, kind, l.Name)
		DumpOperand(w, ir.Operand{Kind: ir.OperandLocal, Local: l.Index, Type: l.Type})
		fmt.Fprint(w, "\n")
	}

	for _, b := range fn.Blocks {
		DumpBlock(w, b)
		fmt.Fprint(w, "\n")
	}
}

// DumpFunctionList writes every function in funcs in turn, matching
// dumpIrFunctionList's per-function dump-plus-blank-line loop.
func DumpFunctionList(w io.Writer, funcs []*ir.Function) {
	for _, fn := range funcs {
		DumpFunction(w, fn)
		fmt.Fprint(w, "\n")
	}
}

// WriteDOT renders funcs as a "digraph CFG" with one subgraph cluster
// per function (§6 "CFG as a directed-graph file"): solid black edges
// for successors, bold green for the strict-dominator link, dashed
// blue for dominance-frontier membership.
func WriteDOT(w io.Writer, funcs []*ir.Function) {
	fmt.Fprint(w, "digraph CFG {\n")
	for i, fn := range funcs {
		fmt.Fprintf(w, "  subgraph cluster_%d {\n", i+1)
		writeDotForFunction(w, fn)
		fmt.Fprint(w, "  }\n")
	}
	fmt.Fprint(w, "}\n")
}

func writeDotForFunction(w io.Writer, fn *ir.Function) {
	name := sanitizeDotName(fn.Name)
	fmt.Fprintf(w, "    label = %q;\n", fn.Name)

	for _, b := range fn.Blocks {
		fmt.Fprintf(w, "    %s_%d [label=\"#%d", name, b.ID, b.ID)
		if b.Name != "" {
			fmt.Fprintf(w, " | %s", b.Name)
		}
		fmt.Fprint(w, "\"];\n")
	}

	for _, b := range fn.Blocks {
		for _, s := range b.Successors {
			fmt.Fprintf(w, "    %s_%d -> %s_%d [style = \"solid\", color=\"black\"];\n", name, b.ID, name, s)
		}
		if b.StrictDominator != b.ID {
			fmt.Fprintf(w, "    %s_%d -> %s_%d [style = \"bold\", color = \"green\"];\n", name, b.ID, name, b.StrictDominator)
		}
		for _, f := range b.Frontier {
			fmt.Fprintf(w, "    %s_%d -> %s_%d [style = \"dashed\", color = \"blue\"];\n", name, b.ID, name, f)
		}
	}
}

// sanitizeDotName keeps a function name usable as a DOT node-id
// prefix; this front end's identifiers are already C identifiers, so
// the only adjustment is substituting "_fn" for an empty name.
func sanitizeDotName(name string) string {
	if name == "" {
		return "_fn"
	}
	return name
}
