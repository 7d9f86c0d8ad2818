package disasm

import "sort"

// BasicBlock is a run of instructions with a single entry point.
type BasicBlock struct {
	Start uint64 // address of the first instruction
	Insts []Inst
	Succs []Succ
	Term  bool // ends with RET or a branch out of the function
}

// Succ is one control-flow successor edge.
type Succ struct {
	Addr uint64 // successor block start address
	Cond string // "" = unconditional, "T" = taken, "F" = fallthrough
}

// SelfLoop reports whether the block branches back to its own start.
func (b *BasicBlock) SelfLoop() bool {
	for _, s := range b.Succs {
		if s.Addr == b.Start {
			return true
		}
	}
	return false
}

// CFG is a per-function control flow graph. Blocks are ordered by start
// address and partition the instruction stream: every instruction
// belongs to exactly one block.
type CFG struct {
	Blocks []BasicBlock
}

// BuildCFG constructs a control flow graph from a function's instruction
// stream:
//  1. Find block leaders: index 0, in-function branch targets, and
//     instructions following a terminator.
//  2. Partition instructions into blocks at the leaders.
//  3. Compute successor edges from each block's last instruction.
func BuildCFG(insts []Inst) CFG {
	if len(insts) == 0 {
		return CFG{}
	}

	funcStart := insts[0].Addr
	funcEnd := insts[len(insts)-1].Addr + 4

	addrToIdx := make(map[uint64]int, len(insts))
	for i, inst := range insts {
		addrToIdx[inst.Addr] = i
	}

	leaders := map[int]bool{0: true}
	for i, inst := range insts {
		br, ok := DecodeBranch(inst.Raw, inst.Addr)
		if !ok {
			continue
		}
		if i+1 < len(insts) {
			leaders[i+1] = true
		}
		if !br.Ret && br.Target >= funcStart && br.Target < funcEnd {
			if idx, ok := addrToIdx[br.Target]; ok {
				leaders[idx] = true
			}
		}
	}

	sorted := make([]int, 0, len(leaders))
	for idx := range leaders {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	blocks := make([]BasicBlock, len(sorted))
	blockStartAt := make(map[int]uint64, len(sorted)) // leader index -> block start addr
	for i, start := range sorted {
		end := len(insts)
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		blocks[i] = BasicBlock{
			Start: insts[start].Addr,
			Insts: insts[start:end],
		}
		blockStartAt[start] = insts[start].Addr
	}

	for i, start := range sorted {
		blk := &blocks[i]
		end := start + len(blk.Insts)
		last := blk.Insts[len(blk.Insts)-1]
		br, ok := DecodeBranch(last.Raw, last.Addr)

		if !ok {
			// Not a branch: fall through to the next block if any.
			if next, ok := blockStartAt[end]; ok {
				blk.Succs = append(blk.Succs, Succ{Addr: next})
			}
			continue
		}

		if br.Ret {
			blk.Term = true
			continue
		}

		inFunc := br.Target >= funcStart && br.Target < funcEnd
		if br.Cond {
			if inFunc {
				blk.Succs = append(blk.Succs, Succ{Addr: br.Target, Cond: "T"})
			}
			if next, ok := blockStartAt[end]; ok {
				blk.Succs = append(blk.Succs, Succ{Addr: next, Cond: "F"})
			}
			continue
		}

		if inFunc {
			blk.Succs = append(blk.Succs, Succ{Addr: br.Target})
		} else {
			// Unconditional branch out of the function.
			blk.Term = true
		}
	}

	return CFG{Blocks: blocks}
}

// HasLoop reports whether any edge branches backwards or to its own
// block, a cheap loop heuristic over the address-ordered blocks.
func (c CFG) HasLoop() bool {
	for _, b := range c.Blocks {
		for _, s := range b.Succs {
			if s.Addr <= b.Start {
				return true
			}
		}
	}
	return false
}
