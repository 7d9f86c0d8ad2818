package dotnet

// Op identifies a CIL opcode. Values are the one- or two-byte encodings
// from ECMA-335 §VI.C.2 (two-byte opcodes carry the 0xFE prefix in the
// high byte).
type Op uint16

const (
	OpNop       Op = 0x00
	OpJmp       Op = 0x27
	OpCall      Op = 0x28
	OpCalli     Op = 0x29
	OpRet       Op = 0x2A
	OpCallvirt  Op = 0x6F
	OpNewobj    Op = 0x73
	OpLdstr     Op = 0x72
	OpLdcI4     Op = 0x20
	OpLdcI4S    Op = 0x1F
	OpLdcI8     Op = 0x21
	OpLdfld     Op = 0x7B
	OpLdsfld    Op = 0x7E
	OpStfld     Op = 0x7D
	OpStsfld    Op = 0x80
	OpLdftn     Op = 0xFE06
	OpLdvirtftn Op = 0xFE07
)

var opNames = map[Op]string{
	OpNop:       "nop",
	OpJmp:       "jmp",
	OpCall:      "call",
	OpCalli:     "calli",
	OpRet:       "ret",
	OpCallvirt:  "callvirt",
	OpNewobj:    "newobj",
	OpLdstr:     "ldstr",
	OpLdcI4:     "ldc.i4",
	OpLdcI4S:    "ldc.i4.s",
	OpLdcI8:     "ldc.i8",
	OpLdfld:     "ldfld",
	OpLdsfld:    "ldsfld",
	OpStfld:     "stfld",
	OpStsfld:    "stsfld",
	OpLdftn:     "ldftn",
	OpLdvirtftn: "ldvirtftn",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// IsCall reports whether the opcode transfers control to another method:
// direct call, virtual call, tail jump, or object construction. These are
// the opcodes the call-graph pass follows.
func (o Op) IsCall() bool {
	switch o {
	case OpCall, OpCallvirt, OpJmp, OpNewobj:
		return true
	}
	return false
}
