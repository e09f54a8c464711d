package main

import (
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/temidaradev/esset/v2"
)

var (
	colorBackground = color.RGBA{30, 35, 41, 255}
	colorPanel      = color.RGBA{43, 49, 57, 255}
	colorBorder     = color.RGBA{54, 60, 69, 255}
	colorText       = color.RGBA{234, 236, 239, 255}
	colorMuted      = color.RGBA{132, 142, 156, 255}
	colorAccent     = color.RGBA{240, 185, 11, 255}
	colorAccentText = color.RGBA{30, 35, 41, 255}
	colorUp         = color.RGBA{14, 203, 129, 255}
	colorDown       = color.RGBA{246, 70, 93, 255}
	colorError      = color.RGBA{255, 77, 77, 255}
)

const doubleClickWindow = 400 * time.Millisecond

// pointer is the mouse state sampled once per Update.
type pointer struct {
	pt           image.Point
	pressed      bool
	justPressed  bool
	rightPressed bool
	wheel        float64
}

func readPointer() pointer {
	x, y := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	return pointer{
		pt:           image.Pt(x, y),
		pressed:      ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		justPressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		rightPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight),
		wheel:        wy,
	}
}

func (p pointer) clickedIn(r image.Rectangle) bool {
	return p.justPressed && p.pt.In(r)
}

func drawText(dst *ebiten.Image, s string, x, y float64, face text.Face, clr color.RGBA) {
	esset.DrawText(dst, s, 0, x, y, face, clr)
}

// drawTextRight draws s so that it ends at right.
func drawTextRight(dst *ebiten.Image, s string, right, y float64, face text.Face, clr color.RGBA) {
	w, _ := text.Measure(s, face, 0)
	drawText(dst, s, right-w, y, face, clr)
}

func fillRect(dst *ebiten.Image, r image.Rectangle, clr color.Color) {
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), clr, false)
}

func strokeRect(dst *ebiten.Image, r image.Rectangle, clr color.Color) {
	vector.StrokeRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), 1, clr, false)
}

// fitText trims s with an ellipsis until it is no wider than w.
func fitText(s string, w float64, face text.Face) string {
	if tw, _ := text.Measure(s, face, 0); tw <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		c := string(r) + "..."
		if tw, _ := text.Measure(c, face, 0); tw <= w {
			return c
		}
	}
	return ""
}

type button struct {
	rect    image.Rectangle
	label   string
	primary bool
}

func (b *button) clicked(p pointer) bool { return p.clickedIn(b.rect) }

func (b *button) draw(dst *ebiten.Image, face text.Face, p pointer) {
	bg, fg := color.RGBA(colorPanel), colorText
	if b.primary {
		bg, fg = colorAccent, colorAccentText
	}
	if p.pt.In(b.rect) {
		bg = lighten(bg)
	}
	fillRect(dst, b.rect, bg)
	w, h := text.Measure(b.label, face, 0)
	x := float64(b.rect.Min.X) + (float64(b.rect.Dx())-w)/2
	y := float64(b.rect.Min.Y) + (float64(b.rect.Dy())-h)/2
	drawText(dst, b.label, x, y, face, fg)
}

func lighten(c color.RGBA) color.RGBA {
	up := func(v uint8) uint8 { return uint8(min(int(v)+24, 255)) }
	return color.RGBA{up(c.R), up(c.G), up(c.B), c.A}
}

// textInput is a single-line field. Only the focused field receives keys.
type textInput struct {
	rect        image.Rectangle
	text        string
	placeholder string
	focused     bool
	maxLen      int
}

// update returns true when the text changed.
func (t *textInput) update(p pointer) bool {
	if p.justPressed {
		t.focused = p.pt.In(t.rect)
	}
	if !t.focused {
		return false
	}
	before := t.text
	for _, r := range ebiten.AppendInputChars(nil) {
		if t.maxLen > 0 && len([]rune(t.text)) >= t.maxLen {
			break
		}
		t.text += string(r)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) || repeating(ebiten.KeyBackspace) {
		if r := []rune(t.text); len(r) > 0 {
			t.text = string(r[:len(r)-1])
		}
	}
	return t.text != before
}

func (t *textInput) submitted() bool {
	return t.focused && (inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter))
}

func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d >= 30 && d%4 == 0
}

func (t *textInput) draw(dst *ebiten.Image, face text.Face) {
	fillRect(dst, t.rect, colorPanel)
	border := color.RGBA(colorBorder)
	if t.focused {
		border = colorAccent
	}
	strokeRect(dst, t.rect, border)

	pad := float64(t.rect.Dy()) / 4
	_, h := text.Measure("Hg", face, 0)
	y := float64(t.rect.Min.Y) + (float64(t.rect.Dy())-h)/2
	s, clr := t.text, colorText
	if s == "" && !t.focused {
		s, clr = t.placeholder, colorMuted
	}
	if t.focused && time.Now().UnixMilli()/500%2 == 0 {
		s += "|"
	}
	drawText(dst, fitText(s, float64(t.rect.Dx())-2*pad, face), float64(t.rect.Min.X)+pad, y, face, clr)
}

// slider holds an integer between lo and hi.
type slider struct {
	rect     image.Rectangle
	lo, hi   int
	value    int
	dragging bool
}

// update returns true when the value changed.
func (s *slider) update(p pointer) bool {
	if p.clickedIn(s.rect) {
		s.dragging = true
	}
	if !p.pressed {
		s.dragging = false
	}
	if !s.dragging || s.rect.Dx() == 0 {
		return false
	}
	frac := float64(p.pt.X-s.rect.Min.X) / float64(s.rect.Dx())
	frac = min(max(frac, 0), 1)
	v := s.lo + int(frac*float64(s.hi-s.lo)+0.5)
	if v == s.value {
		return false
	}
	s.value = v
	return true
}

func (s *slider) draw(dst *ebiten.Image) {
	midY := s.rect.Min.Y + s.rect.Dy()/2
	track := image.Rect(s.rect.Min.X, midY-2, s.rect.Max.X, midY+2)
	fillRect(dst, track, colorPanel)
	frac := 0.0
	if s.hi > s.lo {
		frac = float64(s.value-s.lo) / float64(s.hi-s.lo)
	}
	hx := float32(s.rect.Min.X) + float32(frac)*float32(s.rect.Dx())
	vector.DrawFilledCircle(dst, hx, float32(midY), float32(s.rect.Dy())/3, colorAccent, true)
}

type checkbox struct {
	rect    image.Rectangle
	label   string
	checked bool
}

// update returns true when the box was toggled.
func (c *checkbox) update(p pointer) bool {
	if !p.clickedIn(c.rect) {
		return false
	}
	c.checked = !c.checked
	return true
}

func (c *checkbox) draw(dst *ebiten.Image, face text.Face) {
	side := c.rect.Dy()
	box := image.Rect(c.rect.Min.X, c.rect.Min.Y, c.rect.Min.X+side, c.rect.Min.Y+side).Inset(side / 6)
	fillRect(dst, box, colorPanel)
	strokeRect(dst, box, colorBorder)
	if c.checked {
		fillRect(dst, box.Inset(box.Dx()/4), colorAccent)
	}
	_, h := text.Measure(c.label, face, 0)
	drawText(dst, c.label, float64(c.rect.Min.X+side+side/3), float64(c.rect.Min.Y)+(float64(side)-h)/2, face, colorText)
}

// listBox is a scrolling single-selection list.
type listBox struct {
	rect     image.Rectangle
	items    []string
	selected int
	offset   int
	rowH     int
}

func (l *listBox) visible() int {
	if l.rowH <= 0 {
		return 0
	}
	return l.rect.Dy() / l.rowH
}

func (l *listBox) setItems(items []string) {
	l.items = items
	l.offset = 0
	l.selected = -1
	if len(items) > 0 {
		l.selected = 0
	}
}

func (l *listBox) current() string {
	if l.selected < 0 || l.selected >= len(l.items) {
		return ""
	}
	return l.items[l.selected]
}

// update returns true when an item was clicked.
func (l *listBox) update(p pointer) bool {
	if p.pt.In(l.rect) && p.wheel != 0 {
		step := 1
		if p.wheel > 0 {
			step = -1
		}
		l.offset = min(max(l.offset+step, 0), max(len(l.items)-l.visible(), 0))
	}
	if !p.clickedIn(l.rect) || l.rowH <= 0 {
		return false
	}
	i := l.offset + (p.pt.Y-l.rect.Min.Y)/l.rowH
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.selected = i
	return true
}

func (l *listBox) draw(dst *ebiten.Image, face text.Face, empty string) {
	fillRect(dst, l.rect, colorPanel)
	strokeRect(dst, l.rect, colorBorder)
	pad := float64(l.rowH) / 4
	if len(l.items) == 0 {
		drawText(dst, empty, float64(l.rect.Min.X)+pad, float64(l.rect.Min.Y)+pad, face, colorMuted)
		return
	}
	_, h := text.Measure("Hg", face, 0)
	for row := 0; row < l.visible(); row++ {
		i := l.offset + row
		if i >= len(l.items) {
			break
		}
		r := image.Rect(l.rect.Min.X, l.rect.Min.Y+row*l.rowH, l.rect.Max.X, l.rect.Min.Y+(row+1)*l.rowH)
		clr := colorText
		if i == l.selected {
			fillRect(dst, r.Inset(1), colorAccent)
			clr = colorAccentText
		}
		drawText(dst, strings.TrimSpace(l.items[i]), float64(r.Min.X)+pad, float64(r.Min.Y)+(float64(l.rowH)-h)/2, face, clr)
	}
}
