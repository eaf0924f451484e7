package gui

import "image/color"

// Logical screen geometry. The display collaborator handles rotation and
// scaling; everything in this package addresses this coordinate space.
const (
	ScreenWidth  = 240
	ScreenHeight = 320
)

// Font is a text height in pixels.
type Font int

const (
	Font8  Font = 8
	Font12 Font = 12
	Font16 Font = 16
	Font20 Font = 20
	Font24 Font = 24
)

// Display is the draw-primitive surface the GUI renders to.
type Display interface {
	Clear(c color.RGBA)
	FillRect(x, y, w, h int, c color.RGBA)
	DrawRect(x, y, w, h int, c color.RGBA)
	DrawLine(x0, y0, x1, y1 int, c color.RGBA)
	DrawCircle(x, y, r int, c color.RGBA)
	DrawText(x, y int, text string, font Font, fg, bg color.RGBA)
}

// The GUI palette.
var (
	ColorWhite      = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	ColorBlack      = color.RGBA{0x00, 0x00, 0x00, 0xFF}
	ColorRed        = color.RGBA{0xFF, 0x00, 0x00, 0xFF}
	ColorLightRed   = color.RGBA{0xFF, 0x80, 0x80, 0xFF}
	ColorBlue       = color.RGBA{0x00, 0x00, 0xFF, 0xFF}
	ColorLightBlue  = color.RGBA{0x80, 0x80, 0xFF, 0xFF}
	ColorGreen      = color.RGBA{0x00, 0xFF, 0x00, 0xFF}
	ColorLightGreen = color.RGBA{0x80, 0xFF, 0x80, 0xFF}
	ColorLightGray  = color.RGBA{0xD3, 0xD3, 0xD3, 0xFF}
	ColorDarkGray   = color.RGBA{0x80, 0x80, 0x80, 0xFF}
	ColorLightCyan  = color.RGBA{0x80, 0xFF, 0xFF, 0xFF}
)
