package disasm

// Call decoding and literal-operand helpers used by feature extraction.

// Call is one call site decoded from an instruction stream.
type Call struct {
	PC       uint64
	Target   uint64 // resolved for BL; 0 for BLR
	Indirect bool   // BLR: target held in a register
	Reg      int    // register number for BLR
}

// DecodeCall decodes BL and BLR instructions at the given PC.
func DecodeCall(raw uint32, pc uint64) (Call, bool) {
	// BL: 100101 imm26
	if raw&0xFC000000 == 0x94000000 {
		offset := int64(signExtend(raw&0x03FFFFFF, 26)) * 4
		return Call{PC: pc, Target: uint64(int64(pc) + offset)}, true
	}
	// BLR Xn: 1101011 0001 11111 0000 00 Rn 00000
	if raw&0xFFFFFC1F == 0xD63F0000 {
		return Call{PC: pc, Indirect: true, Reg: int((raw >> 5) & 0x1F)}, true
	}
	return Call{}, false
}

// Calls scans an instruction stream for call sites.
func Calls(insts []Inst) []Call {
	var out []Call
	for _, inst := range insts {
		if c, ok := DecodeCall(inst.Raw, inst.Addr); ok {
			out = append(out, c)
		}
	}
	return out
}

// DecodeADR decodes ADR Xd, <label>, returning the literal address it
// materializes. ADRP is not handled here: it yields a page address that
// only resolves with its paired ADD.
func DecodeADR(raw uint32, pc uint64) (target uint64, ok bool) {
	// ADR: op=0 immlo(2) 10000 immhi(19) Rd
	if raw&0x9F000000 != 0x10000000 {
		return 0, false
	}
	immlo := (raw >> 29) & 0x3
	immhi := (raw >> 5) & 0x7FFFF
	imm := signExtend(immhi<<2|immlo, 21)
	return uint64(int64(pc) + int64(imm)), true
}

// DecodeMOVZ decodes MOVZ Xd/Wd, #imm16 {, LSL #shift}, returning the
// immediate value it loads.
func DecodeMOVZ(raw uint32) (imm uint64, ok bool) {
	// MOVZ: sf 10 100101 hw(2) imm16 Rd
	if raw&0x7F800000 != 0x52800000 {
		return 0, false
	}
	hw := (raw >> 21) & 0x3
	imm16 := uint64((raw >> 5) & 0xFFFF)
	return imm16 << (16 * hw), true
}
