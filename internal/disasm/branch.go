package disasm

// AArch64 branch detection from raw 32-bit encodings. These identify
// basic-block terminators and extract branch targets; BL/BLR are calls,
// not terminators, and are handled in calls.go.

// Branch describes a decoded branch instruction.
type Branch struct {
	Target uint64 // absolute target address; 0 for RET
	Cond   bool   // conditional branch, has a fallthrough edge
	Ret    bool
}

// DecodeBranch decodes a branch or return at the given PC.
// Returns ok=false if the instruction is neither.
func DecodeBranch(raw uint32, pc uint64) (Branch, bool) {
	// RET Xn: 1101011 0010 11111 0000 00 Rn 00000
	if raw&0xFFFFFC1F == 0xD65F0000 {
		return Branch{Ret: true}, true
	}

	rel := func(imm uint32, bits int, cond bool) (Branch, bool) {
		offset := int64(signExtend(imm, bits)) * 4
		return Branch{Target: uint64(int64(pc) + offset), Cond: cond}, true
	}

	switch {
	case raw&0xFC000000 == 0x14000000: // B: 000101 imm26
		return rel(raw&0x03FFFFFF, 26, false)
	case raw&0xFF000010 == 0x54000000: // B.cond: 01010100 imm19 0 cond
		return rel((raw>>5)&0x7FFFF, 19, true)
	case raw&0x7F000000 == 0x34000000: // CBZ: x 0110100 imm19 Rt
		return rel((raw>>5)&0x7FFFF, 19, true)
	case raw&0x7F000000 == 0x35000000: // CBNZ
		return rel((raw>>5)&0x7FFFF, 19, true)
	case raw&0x7F000000 == 0x36000000: // TBZ: b5 0110110 b40 imm14 Rt
		return rel((raw>>5)&0x3FFF, 14, true)
	case raw&0x7F000000 == 0x37000000: // TBNZ
		return rel((raw>>5)&0x3FFF, 14, true)
	}
	return Branch{}, false
}

// IsTerminator reports whether the instruction ends a basic block.
// Calls (BL/BLR) return to the next instruction and do not terminate.
func IsTerminator(raw uint32) bool {
	_, ok := DecodeBranch(raw, 0)
	return ok
}

// signExtend sign-extends a value of the given bit width.
func signExtend(val uint32, bits int) int32 {
	sign := uint32(1) << (bits - 1)
	mask := sign - 1
	if val&sign != 0 {
		return int32(val | ^mask)
	}
	return int32(val & mask)
}
