package video

import "image/color"

// Color is a 16-bit 5:6:5 pixel value: 5 bits red, 6 bits green, 5 bits blue.
type Color uint16

const (
	Black   Color = 0x0000
	White   Color = 0xFFFF
	Red     Color = 0xF800
	Green   Color = 0x07E0
	Blue    Color = 0x001F
	Yellow  Color = 0xFFE0
	Cyan    Color = 0x07FF
	Magenta Color = 0xF81F
)

// RGB packs 8-bit channels into a 5:6:5 color, dropping the low bits.
func RGB(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// Channels expands the color back to 8-bit channels, replicating the high bits
// into the low bits so white stays 0xFF.
func (c Color) Channels() (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGBA implements color.Color. 5:6:5 pixels are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.Channels()
	r = uint32(r8)
	r |= r << 8
	g = uint32(g8)
	g |= g << 8
	b = uint32(b8)
	b |= b << 8
	return r, g, b, 0xFFFF
}

// Hi and Lo return the two bytes of the color in storage order.
func (c Color) Hi() byte { return byte(c >> 8) }
func (c Color) Lo() byte { return byte(c) }

// ColorModel converts any color to the 5:6:5 model. Alpha is ignored; callers
// that need transparency map translucent pixels to a key color first.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	if rgb, ok := c.(Color); ok {
		return rgb
	}
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
})
