package types

import "fmt"

type ParamKind string

const (
	ParamVisible ParamKind = "visible"
	ParamPointer ParamKind = "pointer"
	ParamSlot    ParamKind = "slot"
)

// Param is one outbound value on the avatar channel. Only the field matching
// Kind is meaningful.
type Param struct {
	Kind  ParamKind
	Slot  int
	Bool  bool
	Int   int32
	Float float32
}

func Visible(v bool) Param {
	return Param{Kind: ParamVisible, Bool: v}
}

func Pointer(p int) Param {
	return Param{Kind: ParamPointer, Int: int32(p)}
}

func Slot(index int, v float32) Param {
	return Param{Kind: ParamSlot, Slot: index, Float: v}
}

func (p Param) String() string {
	switch p.Kind {
	case ParamVisible:
		return fmt.Sprintf("visible=%t", p.Bool)
	case ParamPointer:
		return fmt.Sprintf("pointer=%d", p.Int)
	case ParamSlot:
		return fmt.Sprintf("slot[%d]=%g", p.Slot, p.Float)
	default:
		return string(p.Kind)
	}
}
