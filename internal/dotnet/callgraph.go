package dotnet

import (
	"bincap/internal/addr"
	"bincap/internal/extract"
)

// buildCallEdges derives the caller/callee sets for every method in a
// single forward pass over all instruction streams.
//
// For each instruction whose opcode is a call (call, callvirt, jmp,
// newobj) the operand is read as a token address. If that token is a
// known method definition, the calling method's address is added to the
// callee's CallsTo set. The target is added to the caller's CallsFrom
// set unconditionally: calls to externally imported members are valid
// CallsFrom entries even though no definition exists for them, and no
// phantom callee handle is fabricated.
//
// The pass must run to completion for all methods before any method's
// features are extracted, because function-scope extraction reads both
// sets. Sets, not multisets: repeated call sites to the same callee
// contribute one membership.
func buildCallEdges(methods map[addr.Address]*extract.FunctionHandle) {
	for _, fh := range methods {
		body := fh.Inner.(*MethodBody)
		for _, insn := range body.Insns {
			if !insn.Op.IsCall() {
				continue
			}
			target := addr.Token(uint32(insn.Operand))

			if dest, ok := methods[target]; ok {
				dest.State.CallsTo[fh.Address] = struct{}{}
			}
			fh.State.CallsFrom[target] = struct{}{}
		}
	}
}
