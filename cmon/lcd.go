package main

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocmon/pkg/gui"
	"tinygo.org/x/drivers/touch"
)

// opKind tags one retained draw operation.
type opKind int

const (
	opFillRect opKind = iota
	opDrawRect
	opLine
	opCircle
	opText
)

// lcdOp is one draw call in logical screen coordinates. The renderer
// replays the list scaled to the widget size, painter's order.
type lcdOp struct {
	kind           opKind
	x0, y0, x1, y1 int
	radius         int
	text           string
	font           gui.Font
	col            color.RGBA
}

// LCDWidget is a Fyne widget that emulates the handheld's 240x320 panel.
// It implements gui.Display by retaining draw calls in a display list and
// converts taps into touch samples for the poll loop.
type LCDWidget struct {
	widget.BaseWidget

	mu      sync.RWMutex
	ops     []lcdOp
	pending *touch.Point
}

var _ gui.Display = (*LCDWidget)(nil)
var _ fyne.Tappable = (*LCDWidget)(nil)

// NewLCD creates the LCD widget with a blank white panel.
func NewLCD() *LCDWidget {
	l := &LCDWidget{}
	l.ExtendBaseWidget(l)
	l.Clear(gui.ColorWhite)
	return l
}

// Clear resets the panel to one solid color.
func (l *LCDWidget) Clear(c color.RGBA) {
	l.mu.Lock()
	l.ops = l.ops[:0]
	l.ops = append(l.ops, lcdOp{
		kind: opFillRect,
		x1:   gui.ScreenWidth, y1: gui.ScreenHeight,
		col: c,
	})
	l.mu.Unlock()
}

// FillRect draws a filled rectangle.
func (l *LCDWidget) FillRect(x, y, w, h int, c color.RGBA) {
	l.append(lcdOp{kind: opFillRect, x0: x, y0: y, x1: w, y1: h, col: c})
}

// DrawRect draws a rectangle outline.
func (l *LCDWidget) DrawRect(x, y, w, h int, c color.RGBA) {
	l.append(lcdOp{kind: opDrawRect, x0: x, y0: y, x1: w, y1: h, col: c})
}

// DrawLine draws a line between two points.
func (l *LCDWidget) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	l.append(lcdOp{kind: opLine, x0: x0, y0: y0, x1: x1, y1: y1, col: c})
}

// DrawCircle draws a circle outline around a center point.
func (l *LCDWidget) DrawCircle(x, y, r int, c color.RGBA) {
	l.append(lcdOp{kind: opCircle, x0: x, y0: y, radius: r, col: c})
}

// DrawText draws a text run. The background color is already on the panel
// from the fill underneath, only the foreground is painted.
func (l *LCDWidget) DrawText(x, y int, text string, font gui.Font, fg, bg color.RGBA) {
	l.append(lcdOp{kind: opText, x0: x, y0: y, text: text, font: font, col: fg})
}

// TODO: compact the display list when a fill fully occludes older ops;
// in continuous measuring the list grows until the next Clear.
func (l *LCDWidget) append(op lcdOp) {
	l.mu.Lock()
	l.ops = append(l.ops, op)
	l.mu.Unlock()
}

// Tapped latches one touch sample at the tap position.
func (l *LCDWidget) Tapped(ev *fyne.PointEvent) {
	scale, offX, offY := l.transform()
	if scale == 0 {
		return
	}

	p := touch.Point{
		X: int((ev.Position.X - offX) / scale),
		Y: int((ev.Position.Y - offY) / scale),
		Z: 100,
	}
	if p.X < 0 || p.X >= gui.ScreenWidth || p.Y < 0 || p.Y >= gui.ScreenHeight {
		return
	}

	l.mu.Lock()
	l.pending = &p
	l.mu.Unlock()
}

// Touch returns the pending touch sample once, then released samples.
// Consuming it on every poll turns each tap into one rising edge.
func (l *LCDWidget) Touch() touch.Point {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending != nil {
		p := *l.pending
		l.pending = nil
		return p
	}
	return touch.Point{}
}

// transform computes the logical-to-widget scale and letterbox offsets.
func (l *LCDWidget) transform() (scale, offX, offY float32) {
	size := l.Size()
	if size.Width == 0 || size.Height == 0 {
		return 0, 0, 0
	}

	sx := size.Width / gui.ScreenWidth
	sy := size.Height / gui.ScreenHeight
	scale = sx
	if sy < sx {
		scale = sy
	}
	offX = (size.Width - gui.ScreenWidth*scale) / 2
	offY = (size.Height - gui.ScreenHeight*scale) / 2
	return scale, offX, offY
}

// CreateRenderer creates the widget renderer.
func (l *LCDWidget) CreateRenderer() fyne.WidgetRenderer {
	back := canvas.NewRectangle(color.RGBA{0x20, 0x20, 0x20, 0xFF})
	return &lcdRenderer{
		lcd:     l,
		back:    back,
		objects: []fyne.CanvasObject{back},
	}
}

// lcdRenderer replays the display list as canvas objects.
type lcdRenderer struct {
	lcd  *LCDWidget
	back *canvas.Rectangle

	objects  []fyne.CanvasObject
	lastSize fyne.Size
}

func (r *lcdRenderer) MinSize() fyne.Size {
	return fyne.NewSize(gui.ScreenWidth, gui.ScreenHeight)
}

func (r *lcdRenderer) Layout(size fyne.Size) {
	r.back.Resize(size)
	if r.lastSize != size {
		r.lastSize = size
		r.lcd.BaseWidget.Refresh()
	}
}

func (r *lcdRenderer) Refresh() {
	r.lcd.mu.RLock()
	ops := make([]lcdOp, len(r.lcd.ops))
	copy(ops, r.lcd.ops)
	r.lcd.mu.RUnlock()

	scale, offX, offY := r.lcd.transform()
	if scale == 0 {
		return
	}

	px := func(v int) float32 { return float32(v) * scale }
	at := func(x, y int) fyne.Position {
		return fyne.NewPos(px(x)+offX, px(y)+offY)
	}

	r.objects = r.objects[:0]
	r.objects = append(r.objects, r.back)

	for _, op := range ops {
		switch op.kind {
		case opFillRect:
			rect := canvas.NewRectangle(op.col)
			rect.Move(at(op.x0, op.y0))
			rect.Resize(fyne.NewSize(px(op.x1), px(op.y1)))
			r.objects = append(r.objects, rect)

		case opDrawRect:
			rect := canvas.NewRectangle(color.RGBA{})
			rect.StrokeColor = op.col
			rect.StrokeWidth = scale
			rect.Move(at(op.x0, op.y0))
			rect.Resize(fyne.NewSize(px(op.x1), px(op.y1)))
			r.objects = append(r.objects, rect)

		case opLine:
			line := canvas.NewLine(op.col)
			line.StrokeWidth = scale
			line.Position1 = at(op.x0, op.y0)
			line.Position2 = at(op.x1, op.y1)
			r.objects = append(r.objects, line)

		case opCircle:
			circle := canvas.NewCircle(color.RGBA{})
			circle.StrokeColor = op.col
			circle.StrokeWidth = scale
			circle.Move(at(op.x0-op.radius, op.y0-op.radius))
			circle.Resize(fyne.NewSize(px(2*op.radius), px(2*op.radius)))
			r.objects = append(r.objects, circle)

		case opText:
			text := canvas.NewText(op.text, op.col)
			text.TextSize = px(int(op.font))
			text.TextStyle = fyne.TextStyle{Monospace: true}
			text.Move(at(op.x0, op.y0))
			r.objects = append(r.objects, text)
		}
	}

	canvas.Refresh(r.lcd)
}

func (r *lcdRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *lcdRenderer) Destroy() {}
