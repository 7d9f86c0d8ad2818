// Package addr defines the address model shared by every extraction scope.
//
// An address says where a feature was observed. Native code uses absolute
// virtual addresses; managed code uses metadata tokens, optionally with a
// byte offset into a method body. Features observed at sample scope carry
// no address at all.
//
// All variants are comparable and usable as map keys. Equality is
// structural: two addresses are equal iff they have the same variant and
// the same payload.
package addr

import "fmt"

// Address identifies where a feature was observed.
//
// The set of variants is closed: None, Absolute, Token and TokenOffset.
// Consumers are expected to switch exhaustively over these four types.
type Address interface {
	fmt.Stringer

	// rank orders variants for deterministic sorting: None < Absolute <
	// Token < TokenOffset.
	rank() int
}

// None is the sentinel for features with no meaningful location, such as
// the sample's format or target OS.
type None struct{}

func (None) String() string { return "global" }
func (None) rank() int      { return 0 }

// NoAddress is the shared no-location sentinel value.
var NoAddress = None{}

// Absolute is a base-relative virtual address in native code.
type Absolute uint64

func (a Absolute) String() string { return fmt.Sprintf("0x%x", uint64(a)) }
func (Absolute) rank() int        { return 1 }

// Token is a managed metadata token, identifying a row in one of the
// metadata tables (method, field, type, member reference).
type Token uint32

func (t Token) String() string { return fmt.Sprintf("token(0x%08x)", uint32(t)) }
func (Token) rank() int        { return 2 }

// TokenOffset is a byte offset within a managed method body, relative to
// the start of the method's instruction stream (after its header).
type TokenOffset struct {
	Token  Token
	Offset int64
}

func (t TokenOffset) String() string {
	return fmt.Sprintf("token(0x%08x)+0x%x", uint32(t.Token), t.Offset)
}
func (TokenOffset) rank() int { return 3 }

// Compare orders two addresses. Variants order as None < Absolute < Token
// < TokenOffset; within a variant the payload orders numerically, with
// TokenOffset ordered by token then offset.
func Compare(a, b Address) int {
	if ra, rb := a.rank(), b.rank(); ra != rb {
		return cmpInt(ra, rb)
	}
	switch x := a.(type) {
	case None:
		return 0
	case Absolute:
		return cmpU64(uint64(x), uint64(b.(Absolute)))
	case Token:
		return cmpU64(uint64(x), uint64(b.(Token)))
	case TokenOffset:
		y := b.(TokenOffset)
		if c := cmpU64(uint64(x.Token), uint64(y.Token)); c != 0 {
			return c
		}
		return cmpI64(x.Offset, y.Offset)
	default:
		panic(fmt.Sprintf("addr: unknown address variant %T", a))
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpU64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpI64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
