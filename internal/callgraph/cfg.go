package callgraph

import (
	"fmt"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"bincap/internal/disasm"
)

// BuildFuncCFG maps one function's recovered control flow onto lattice
// CFG types. Successor addresses are rewritten to block IDs; direct call
// sites are labeled through resolve, indirect ones by register.
func BuildFuncCFG(name string, cfg disasm.CFG, calls []disasm.Call, resolve func(uint64) string) *lattice.FuncCFG {
	idByStart := make(map[uint64]int, len(cfg.Blocks))
	for i, b := range cfg.Blocks {
		idByStart[b.Start] = i
	}
	callByPC := make(map[uint64]disasm.Call, len(calls))
	for _, c := range calls {
		callByPC[c.PC] = c
	}

	lcfg := &lattice.FuncCFG{Name: name}
	idx := 0
	for i, b := range cfg.Blocks {
		lb := &lattice.BasicBlock{
			ID:    i,
			Start: idx,
			End:   idx + len(b.Insts),
			Term:  b.Term,
		}
		for _, s := range b.Succs {
			if id, ok := idByStart[s.Addr]; ok {
				lb.Succs = append(lb.Succs, lattice.Successor{BlockID: id, Cond: s.Cond})
			}
		}
		for off, in := range b.Insts {
			c, ok := callByPC[in.Addr]
			if !ok {
				continue
			}
			var callee string
			switch {
			case c.Indirect:
				callee = fmt.Sprintf("X%d", c.Reg)
			case resolve != nil && resolve(c.Target) != "":
				callee = resolve(c.Target)
			default:
				callee = fmt.Sprintf("0x%x", c.Target)
			}
			lb.Calls = append(lb.Calls, lattice.CallSite{Offset: idx + off, Callee: callee})
		}
		idx += len(b.Insts)
		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}

// DOTCFG renders per-function control-flow graphs in Graphviz DOT format.
func DOTCFG(funcs []*lattice.FuncCFG, title string) string {
	return render.DOTCFG(&lattice.CFGGraph{Funcs: funcs}, title)
}
