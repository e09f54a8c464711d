package main

import (
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"coinwidget/internal"
)

const (
	settingsWidth  = 300
	settingsHeight = 430
)

// contextMenu is the right-click menu of a row.
type contextMenu struct {
	open bool
	row  int
	item button
}

// Game is the overlay window. It draws the rows bound to the selection and
// hosts the settings panel.
type Game struct {
	app         *internal.App
	log         logrus.FieldLogger
	openURL     internal.URLOpener
	quoteSuffix string
	tradeBase   string
	busy        func() bool

	fontFace    text.Face
	lineHeight  float64
	deviceScale float64

	frame *ebiten.Image

	settings     *settingsView
	settingsOpen bool
	menu         contextMenu

	dragging   bool
	dragOrigin image.Point

	lastClickRow  int
	lastClickTime time.Time

	appliedSize   internal.WindowSize
	appliedPinned bool
}

// NewGame builds the overlay. busy reports whether a refresh cycle is in
// flight and drives the header indicator.
func NewGame(app *internal.App, face text.Face, deviceScale float64, settings internal.Settings, busy func() bool, log logrus.FieldLogger) *Game {
	_, h := text.Measure("Hg", face, 0)
	g := &Game{
		app:          app,
		log:          log,
		openURL:      internal.OpenURL,
		quoteSuffix:  settings.QuoteSuffix,
		tradeBase:    settings.TradeURL,
		busy:         busy,
		fontFace:     face,
		lineHeight:   h*1.5 + 5*deviceScale,
		deviceScale:  deviceScale,
		lastClickRow: -1,
	}
	g.settings = newSettingsView(app, face, deviceScale)
	return g
}

func (g *Game) px(v float64) int { return int(v * g.deviceScale) }

func (g *Game) headerRect(w int) image.Rectangle {
	return image.Rect(0, 0, w, int(g.lineHeight))
}

func (g *Game) rowRect(i, w int) image.Rectangle {
	top := int(g.lineHeight) + g.px(4) + int(float64(i)*g.lineHeight)
	return image.Rect(0, top, w, top+int(g.lineHeight))
}

func (g *Game) headerButtons(w int) (settingsBtn, closeBtn button) {
	h := int(g.lineHeight)
	pad := g.px(4)
	closeBtn = button{rect: image.Rect(w-h, 0, w, h).Inset(pad), label: "x"}
	sw, _ := text.Measure(g.app.Text("settings"), g.fontFace, 0)
	settingsBtn = button{
		rect:  image.Rect(closeBtn.rect.Min.X-int(sw)-4*pad, 0, closeBtn.rect.Min.X-pad, h).Inset(pad),
		label: g.app.Text("settings"),
	}
	return settingsBtn, closeBtn
}

func (g *Game) rowAt(pt image.Point, w int) int {
	n := len(g.app.Rows())
	for i := 0; i < n; i++ {
		if pt.In(g.rowRect(i, w)) {
			return i
		}
	}
	return -1
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return g.shutdown()
	}
	g.syncWindow()

	w, _ := g.frameSize()
	p := readPointer()

	if g.settingsOpen {
		if g.settings.update(p) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.closeSettings()
		}
		return nil
	}

	settingsBtn, closeBtn := g.headerButtons(w)
	switch {
	case closeBtn.clicked(p):
		return g.shutdown()
	case settingsBtn.clicked(p):
		g.openSettings()
		return nil
	}

	if g.menu.open {
		if p.justPressed || p.rightPressed {
			if p.justPressed && g.menu.item.clicked(p) {
				g.app.RemoveRow(g.menu.row)
			}
			g.menu.open = false
		}
		return nil
	}

	if p.rightPressed {
		if i := g.rowAt(p.pt, w); i >= 0 {
			g.openMenu(i, p.pt)
		}
		return nil
	}

	if p.justPressed {
		i := g.rowAt(p.pt, w)
		if i < 0 {
			g.dragging = true
			g.dragOrigin = p.pt
		} else {
			g.handleRowClick(i)
		}
	}
	g.updateDrag(p)
	return nil
}

func (g *Game) handleRowClick(i int) {
	now := time.Now()
	double := i == g.lastClickRow && now.Sub(g.lastClickTime) <= doubleClickWindow
	g.lastClickRow, g.lastClickTime = i, now
	if !double {
		return
	}
	g.lastClickRow = -1

	rows := g.app.Rows()
	if i >= len(rows) {
		return
	}
	url := internal.TradingURL(rows[i].Symbol, g.quoteSuffix, g.tradeBase)
	if err := g.openURL(url); err != nil {
		g.log.WithError(err).Warn("Could not open trading page")
		return
	}
	g.log.WithField("url", url).Info("Opened trading page")
}

// updateDrag moves the frameless window while the left button is held on
// an empty area. Cursor coordinates are relative to the window, so the
// offset from the press point is the distance to move.
func (g *Game) updateDrag(p pointer) {
	if !g.dragging {
		return
	}
	if !p.pressed {
		g.dragging = false
		x, y := ebiten.WindowPosition()
		g.app.SetWindowPosition(x, y)
		return
	}
	dx := float64(p.pt.X-g.dragOrigin.X) / g.deviceScale
	dy := float64(p.pt.Y-g.dragOrigin.Y) / g.deviceScale
	if dx == 0 && dy == 0 {
		return
	}
	x, y := ebiten.WindowPosition()
	ebiten.SetWindowPosition(x+int(dx), y+int(dy))
}

func (g *Game) openMenu(row int, at image.Point) {
	label := g.app.Text("delete")
	lw, _ := text.Measure(label, g.fontFace, 0)
	pad := g.px(8)
	g.menu = contextMenu{
		open: true,
		row:  row,
		item: button{
			rect:  image.Rect(at.X, at.Y, at.X+int(lw)+2*pad, at.Y+int(g.lineHeight)),
			label: label,
		},
	}
}

func (g *Game) openSettings() {
	g.settingsOpen = true
	g.settings.reset()
}

func (g *Game) closeSettings() {
	g.settingsOpen = false
	g.settings.blur()
	g.app.RequestRefresh()
}

// syncWindow pushes preference changes made through the app onto the window.
func (g *Game) syncWindow() {
	prefs := g.app.Preferences()
	size := prefs.WindowSize
	if g.settingsOpen {
		size.Width = max(size.Width, settingsWidth)
		size.Height = max(size.Height, settingsHeight)
	}
	if size != g.appliedSize {
		ebiten.SetWindowSize(size.Width, size.Height)
		g.appliedSize = size
	}
	if prefs.Pinned() != g.appliedPinned {
		ebiten.SetWindowFloating(prefs.Pinned())
		g.appliedPinned = prefs.Pinned()
	}
}

func (g *Game) shutdown() error {
	x, y := ebiten.WindowPosition()
	g.app.SetWindowPosition(x, y)
	g.app.Save()
	g.log.Info("Window closed")
	return ebiten.Termination
}

func (g *Game) frameSize() (int, int) {
	w, h := ebiten.WindowSize()
	return int(float64(w) * g.deviceScale), int(float64(h) * g.deviceScale)
}

func (g *Game) Draw(screen *ebiten.Image) {
	bounds := screen.Bounds()
	if g.frame == nil || g.frame.Bounds() != bounds {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(bounds.Dx(), bounds.Dy())
	}

	if g.settingsOpen {
		g.settings.draw(screen)
		return
	}

	g.frame.Clear()
	g.drawRows(g.frame)

	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(float32(g.app.Preferences().Opacity) / 100)
	screen.DrawImage(g.frame, op)
}

func (g *Game) drawRows(dst *ebiten.Image) {
	w := dst.Bounds().Dx()
	p := readPointer()
	dst.Fill(colorBackground)

	header := g.headerRect(w)
	fillRect(dst, header, colorPanel)
	pad := float64(g.px(10))
	_, th := text.Measure("Hg", g.fontFace, 0)
	title := g.app.Text("title")
	drawText(dst, title, pad, (g.lineHeight-th)/2, g.fontFace, colorText)
	tw, _ := text.Measure(title, g.fontFace, 0)
	if g.busy != nil && g.busy() {
		r := float32(g.px(3))
		vector.DrawFilledCircle(dst, float32(pad+tw)+3*r, float32(g.lineHeight/2), r, colorMuted, true)
	}
	settingsBtn, closeBtn := g.headerButtons(w)
	settingsBtn.draw(dst, g.fontFace, p)
	closeBtn.draw(dst, g.fontFace, p)

	rows := g.app.Rows()
	if len(rows) == 0 {
		drawText(dst, g.app.Text("no_coins"), pad, float64(g.rowRect(0, w).Min.Y), g.fontFace, colorMuted)
	}

	deltaW, _ := text.Measure("+00.00%", g.fontFace, 0)
	right := float64(w) - pad
	for i, row := range rows {
		r := g.rowRect(i, w)
		y := float64(r.Min.Y) + (g.lineHeight-th)/2
		if !g.menu.open && p.pt.In(r) {
			fillRect(dst, r, color.RGBA{43, 49, 57, 160})
		}
		drawText(dst, row.Label, pad, y, g.fontFace, colorText)

		value, clr := row.Value, hintColor(row.Hint)
		if value == "" {
			value, clr = g.app.Text("loading"), colorMuted
		}
		drawTextRight(dst, value, right-deltaW-pad, y, g.fontFace, clr)
		if row.Delta != "" {
			drawTextRight(dst, row.Delta, right, y, g.fontFace, clr)
		}
	}

	if g.menu.open {
		fillRect(dst, g.menu.item.rect, colorPanel)
		strokeRect(dst, g.menu.item.rect, colorBorder)
		g.menu.item.draw(dst, g.fontFace, p)
	}
}

func hintColor(h internal.ColorHint) color.RGBA {
	switch h {
	case internal.HintUp:
		return colorUp
	case internal.HintDown:
		return colorDown
	case internal.HintError:
		return colorError
	default:
		return colorText
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return int(float64(outsideWidth) * g.deviceScale), int(float64(outsideHeight) * g.deviceScale)
}
