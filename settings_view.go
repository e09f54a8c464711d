package main

import (
	"image"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"coinwidget/internal"
)

// settingsView is the settings panel: language, coin search and add,
// opacity, always-on-top and window size.
type settingsView struct {
	app   *internal.App
	face  text.Face
	scale float64
	lineH int

	langButtons []button
	langCodes   []string
	search      textInput
	picker      listBox
	addBtn      button
	opacity     slider
	pinned      checkbox
	width       textInput
	height      textInput
	applyBtn    button
	closeBtn    button

	labels []labelAt
}

type labelAt struct {
	key  string
	x, y int
}

func newSettingsView(app *internal.App, face text.Face, scale float64) *settingsView {
	_, h := text.Measure("Hg", face, 0)
	v := &settingsView{
		app:       app,
		face:      face,
		scale:     scale,
		lineH:     int(h*1.6 + 4*scale),
		langCodes: app.LanguageCodes(),
	}
	v.search.maxLen = 20
	v.width.maxLen = 5
	v.height.maxLen = 5
	v.opacity.lo, v.opacity.hi = 0, 100
	v.layout()
	v.reset()
	return v
}

func (v *settingsView) px(f float64) int { return int(f * v.scale) }

// layout places every widget for the fixed panel size.
func (v *settingsView) layout() {
	pad := v.px(10)
	w := int(settingsWidth * v.scale)
	line := v.lineH
	gap := v.px(4)
	y := 0

	v.closeBtn = button{rect: image.Rect(w-line, 0, w, line).Inset(gap), label: "x"}
	y += line + gap
	v.labels = v.labels[:0]

	v.labels = append(v.labels, labelAt{"language", pad, y})
	y += line
	v.langButtons = v.langButtons[:0]
	if n := len(v.langCodes); n > 0 {
		bw := (w - 2*pad - (n-1)*gap) / n
		for i := range v.langCodes {
			x := pad + i*(bw+gap)
			v.langButtons = append(v.langButtons, button{rect: image.Rect(x, y, x+bw, y+line)})
		}
	}
	y += line + gap

	v.labels = append(v.labels, labelAt{"search_coin", pad, y})
	y += line
	v.search.rect = image.Rect(pad, y, w-pad, y+line)
	y += line + gap
	v.picker.rowH = line
	v.picker.rect = image.Rect(pad, y, w-pad, y+4*line)
	y += 4*line + gap
	v.addBtn = button{rect: image.Rect(pad, y, w-pad, y+line), primary: true}
	y += line + gap

	v.labels = append(v.labels, labelAt{"opacity", pad, y})
	y += line
	v.opacity.rect = image.Rect(pad, y, w-pad, y+line)
	y += line
	v.pinned.rect = image.Rect(pad, y, w-pad, y+line)
	y += line + gap

	fieldW := v.px(60)
	labelW := v.px(20)
	v.labels = append(v.labels, labelAt{"W:", pad, y})
	v.width.rect = image.Rect(pad+labelW, y, pad+labelW+fieldW, y+line)
	hx := v.width.rect.Max.X + v.px(30)
	v.labels = append(v.labels, labelAt{"H:", hx, y})
	v.height.rect = image.Rect(hx+labelW, y, hx+labelW+fieldW, y+line)
	y += line + gap
	v.applyBtn = button{rect: image.Rect(pad, y, w-pad, y+line), primary: true}
}

// reset loads the panel from the current preferences.
func (v *settingsView) reset() {
	prefs := v.app.Preferences()
	v.search.text = ""
	v.picker.setItems(v.app.FilterCatalog(""))
	v.opacity.value = prefs.Opacity
	v.pinned.checked = prefs.Pinned()
	v.resetSize(prefs.WindowSize)
}

func (v *settingsView) resetSize(s internal.WindowSize) {
	v.width.text = strconv.Itoa(s.Width)
	v.height.text = strconv.Itoa(s.Height)
}

// applySize commits the size inputs. Rejected input is replaced by the size
// currently in effect.
func (v *settingsView) applySize() {
	size, _ := v.app.ApplySize(v.width.text, v.height.text)
	v.resetSize(size)
}

func (v *settingsView) blur() {
	v.search.focused = false
	v.width.focused = false
	v.height.focused = false
}

// update handles one frame of input and reports whether the panel should
// close.
func (v *settingsView) update(p pointer) bool {
	if v.closeBtn.clicked(p) {
		return true
	}
	for i, b := range v.langButtons {
		if b.clicked(p) {
			v.app.SetLanguage(v.langCodes[i])
		}
	}

	if v.search.update(p) {
		v.picker.setItems(v.app.FilterCatalog(v.search.text))
	}
	v.picker.update(p)
	if v.addBtn.clicked(p) || v.search.submitted() {
		v.app.AddSymbol(v.picker.current())
	}

	if v.opacity.update(p) {
		v.app.SetOpacity(v.opacity.value)
	}
	if v.pinned.update(p) {
		v.app.SetAlwaysOnTop(v.pinned.checked)
	}

	v.width.update(p)
	v.height.update(p)
	if v.applyBtn.clicked(p) || v.width.submitted() || v.height.submitted() {
		v.applySize()
	}
	return false
}

// draw renders the panel at full opacity; the overlay's opacity only
// applies to the price rows.
func (v *settingsView) draw(dst *ebiten.Image) {
	p := readPointer()
	dst.Fill(colorBackground)

	w := dst.Bounds().Dx()
	pad := float64(v.px(10))
	_, th := text.Measure("Hg", v.face, 0)
	title := image.Rect(0, 0, w, v.lineH)
	fillRect(dst, title, colorPanel)
	drawText(dst, v.app.Text("settings"), pad, (float64(v.lineH)-th)/2, v.face, colorText)
	v.closeBtn.draw(dst, v.face, p)

	for _, l := range v.labels {
		drawText(dst, v.app.Text(l.key), float64(l.x), float64(l.y)+(float64(v.lineH)-th)/2, v.face, colorMuted)
	}

	current := v.app.Language()
	for i, b := range v.langButtons {
		b.label = v.app.LanguageName(v.langCodes[i])
		b.primary = v.langCodes[i] == current
		b.draw(dst, v.face, p)
	}

	v.search.placeholder = v.app.Text("search_placeholder")
	v.search.draw(dst, v.face)
	empty := v.app.Text("no_catalog")
	if v.app.Catalog().Len() > 0 {
		empty = ""
	}
	v.picker.draw(dst, v.face, empty)
	v.addBtn.label = v.app.Text("add_coin")
	v.addBtn.draw(dst, v.face, p)

	v.opacity.draw(dst)
	drawTextRight(dst, strconv.Itoa(v.opacity.value)+"%", float64(w)-pad, float64(v.opacity.rect.Min.Y)-float64(v.lineH)+(float64(v.lineH)-th)/2, v.face, colorText)
	v.pinned.label = v.app.Text("always_on_top")
	v.pinned.draw(dst, v.face)

	v.width.draw(dst, v.face)
	v.height.draw(dst, v.face)
	for _, r := range []image.Rectangle{v.width.rect, v.height.rect} {
		drawText(dst, "px", float64(r.Max.X+v.px(4)), float64(r.Min.Y)+(float64(v.lineH)-th)/2, v.face, colorMuted)
	}
	v.applyBtn.label = v.app.Text("apply_size")
	v.applyBtn.draw(dst, v.face, p)
}
