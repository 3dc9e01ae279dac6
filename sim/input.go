package sim

// InputBits packs one tick's input sample into a bitfield, in the layout
// used for recording and netplay transmission.
type InputBits int32

const (
	IB_PU InputBits = 1 << iota
	IB_PD
	IB_PL
	IB_PR
	IB_A
	IB_B
	IB_C
	IB_X
	IB_Y
	IB_Z
	IB_S
	IB_anybutton = IB_A | IB_B | IB_C | IB_X | IB_Y | IB_Z | IB_S
)

// KeysToBits saves local inputs as input bits to send or record
func (ibit *InputBits) KeysToBits(U, D, L, R, a, b, c, x, y, z, s bool) {
	*ibit = InputBits(Btoi(U) |
		Btoi(D)<<1 |
		Btoi(L)<<2 |
		Btoi(R)<<3 |
		Btoi(a)<<4 |
		Btoi(b)<<5 |
		Btoi(c)<<6 |
		Btoi(x)<<7 |
		Btoi(y)<<8 |
		Btoi(z)<<9 |
		Btoi(s)<<10)
}

// Clean resolves contradictory directions with absolute priority: up beats
// down, forward beats back. Forward depends on facing.
func (ibit InputBits) Clean(facing float32) InputBits {
	if ibit&IB_PU != 0 && ibit&IB_PD != 0 {
		ibit &^= IB_PD
	}
	if ibit&IB_PL != 0 && ibit&IB_PR != 0 {
		if facing < 0 {
			ibit &^= IB_PR
		} else {
			ibit &^= IB_PL
		}
	}
	return ibit
}

// NoCancel is the FrameInput.Cancel value meaning no transition is requested.
const NoCancel int32 = -1

// FrameInput is the input sample for one tick. It retains no history; edge
// state (pressed/released) is derived from the previous sample by the host
// through MakeFrameInput. Any command buffering happens outside the core,
// which only sees the already-resolved cancel request.
type FrameInput struct {
	Held     InputBits
	Pressed  InputBits
	Released InputBits
	// Cancel is the move id the player's command resolved to this tick,
	// or NoCancel. Ids that name no move or no open window are ignored.
	Cancel int32
}

// MakeFrameInput derives a tick sample from the current and previous raw
// bitfields, applying SOCD cleaning to the current one.
func MakeFrameInput(cur, prev InputBits, facing float32, cancel int32) FrameInput {
	cur = cur.Clean(facing)
	return FrameInput{
		Held:     cur,
		Pressed:  cur &^ prev,
		Released: prev &^ cur,
		Cancel:   cancel,
	}
}
