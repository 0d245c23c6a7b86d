package adapter

import "fmt"

// Color is an 8-bit-per-channel colour. It is persisted as one packed
// ARGB integer rather than as four fields.
type Color struct {
	R, G, B, A uint8
}

// ARGB packs c as 0xAARRGGBB.
func (c Color) ARGB() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func ColorFromARGB(argb uint32) Color {
	return Color{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}
}

func (c Color) String() string {
	return fmt.Sprintf("#%08x", c.ARGB())
}
