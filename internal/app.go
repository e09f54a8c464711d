package internal

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// PriceFetcher looks up the latest price of one symbol.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, sym Symbol) (PriceObservation, error)
}

// PreferenceSaver persists a full preference set.
type PreferenceSaver interface {
	Save(Preferences) error
}

// App is the widget's state: preferences, the display rows bound to the
// selection, and the last observation per symbol. All UI actions go through
// its methods; the refresh loop writes results back through ApplyResult.
type App struct {
	mu      sync.Mutex
	prefs   Preferences
	rows    []Row
	last    map[Symbol]PriceObservation
	catalog Catalog
	langs   Languages
	store   PreferenceSaver
	log     logrus.FieldLogger
	trigger func()
}

func NewApp(prefs Preferences, catalog Catalog, langs Languages, store PreferenceSaver, log logrus.FieldLogger) *App {
	prefs = prefs.Clone()
	prefs.normalize()
	if !langs.Has(prefs.Language) {
		log.WithField("language", prefs.Language).Warn("Unknown language, using default")
		prefs.Language = DefaultLanguage
	}

	rows := make([]Row, len(prefs.SelectedCoins))
	for i, sym := range prefs.SelectedCoins {
		rows[i] = emptyRow(sym)
	}
	return &App{
		prefs:   prefs,
		rows:    rows,
		last:    make(map[Symbol]PriceObservation),
		catalog: catalog,
		langs:   langs,
		store:   store,
		log:     log,
		trigger: func() {},
	}
}

func emptyRow(sym Symbol) Row {
	return Row{Symbol: sym, Label: sym, Hint: HintNeutral}
}

// SetRefreshTrigger installs the function used to request an immediate
// refresh after the selection changes.
func (a *App) SetRefreshTrigger(f func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trigger = f
}

// RequestRefresh asks the refresh loop for a cycle now, e.g. when the
// settings panel closes.
func (a *App) RequestRefresh() {
	a.mu.Lock()
	trigger := a.trigger
	a.mu.Unlock()
	trigger()
}

func (a *App) Preferences() Preferences {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prefs.Clone()
}

// Selection returns a snapshot of the selected symbols in display order.
func (a *App) Selection() []Symbol {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Symbol(nil), a.prefs.SelectedCoins...)
}

func (a *App) Rows() []Row {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Row(nil), a.rows...)
}

func (a *App) Catalog() Catalog { return a.catalog }

func (a *App) FilterCatalog(query string) []Symbol {
	return a.catalog.Filter(query)
}

// Text returns the localized text for key in the active language.
func (a *App) Text(key string) string {
	a.mu.Lock()
	code := a.prefs.Language
	a.mu.Unlock()
	return a.langs.Text(code, key)
}

func (a *App) Language() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prefs.Language
}

func (a *App) LanguageCodes() []string { return a.langs.Codes() }

// LanguageName is the display name of code in its own language.
func (a *App) LanguageName(code string) string {
	return a.langs.Text(code, "language_name")
}

// SetRow writes one display row. Out of range indexes are ignored.
func (a *App) SetRow(i int, label, value string, hint ColorHint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.rows) {
		return
	}
	a.rows[i].Label = label
	a.rows[i].Value = value
	a.rows[i].Hint = hint
}

// ApplyResult records the outcome of fetching sym for row i. It reports
// false when the row no longer shows sym because the selection changed
// while the fetch was in flight.
func (a *App) ApplyResult(i int, sym Symbol, obs PriceObservation, err error) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.rows) || a.rows[i].Symbol != sym {
		return false
	}
	if err != nil {
		a.log.WithField("symbol", sym).WithError(err).Warn("Could not get price")
		a.rows[i] = Row{Symbol: sym, Label: sym, Value: ErrorText, Hint: HintError}
		return true
	}

	var prev *PriceObservation
	if p, ok := a.last[sym]; ok {
		prev = &p
	}
	a.rows[i] = Row{
		Symbol: sym,
		Label:  sym,
		Value:  obs.Text(),
		Delta:  DeltaText(prev, obs.Price),
		Hint:   CompareHint(prev, obs.Price),
	}
	a.last[sym] = obs
	return true
}

// AddSymbol appends sym to the selection. It is a no-op for an empty or
// already selected symbol.
func (a *App) AddSymbol(sym Symbol) bool {
	sym = strings.TrimSpace(sym)
	a.mu.Lock()
	if sym == "" {
		a.mu.Unlock()
		return false
	}
	for _, s := range a.prefs.SelectedCoins {
		if s == sym {
			a.mu.Unlock()
			return false
		}
	}
	a.prefs.SelectedCoins = append(a.prefs.SelectedCoins, sym)
	a.rows = append(a.rows, emptyRow(sym))
	a.saveLocked()
	trigger := a.trigger
	a.mu.Unlock()

	a.log.WithField("symbol", sym).Info("Coin added")
	trigger()
	return true
}

// RemoveRow drops selection element i; later rows move up by one.
func (a *App) RemoveRow(i int) bool {
	a.mu.Lock()
	if i < 0 || i >= len(a.prefs.SelectedCoins) {
		a.mu.Unlock()
		return false
	}
	sym := a.prefs.SelectedCoins[i]
	a.prefs.SelectedCoins = append(a.prefs.SelectedCoins[:i], a.prefs.SelectedCoins[i+1:]...)
	a.rows = append(a.rows[:i], a.rows[i+1:]...)
	delete(a.last, sym)
	a.saveLocked()
	trigger := a.trigger
	a.mu.Unlock()

	a.log.WithField("symbol", sym).Info("Coin removed")
	trigger()
	return true
}

func (a *App) SetOpacity(v int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v = min(max(v, 0), 100)
	if v == a.prefs.Opacity {
		return
	}
	a.prefs.Opacity = v
	a.saveLocked()
}

func (a *App) SetAlwaysOnTop(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := 0
	if on {
		v = 1
	}
	if v == a.prefs.AlwaysOnTop {
		return
	}
	a.prefs.AlwaysOnTop = v
	a.saveLocked()
}

// ApplySize sets a new window size from user input. Both values must parse
// as positive integers; otherwise nothing changes and the persisted size is
// returned so the caller can reset its inputs.
func (a *App) ApplySize(widthText, heightText string) (WindowSize, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, errW := strconv.Atoi(strings.TrimSpace(widthText))
	h, errH := strconv.Atoi(strings.TrimSpace(heightText))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return a.prefs.WindowSize, false
	}
	a.prefs.WindowSize = WindowSize{Width: w, Height: h}
	a.saveLocked()
	return a.prefs.WindowSize, true
}

// SetLanguage switches the active text table. Unknown codes are ignored.
func (a *App) SetLanguage(code string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.langs.Has(code) || code == a.prefs.Language {
		return false
	}
	a.prefs.Language = code
	a.saveLocked()
	return true
}

// SetWindowPosition records where the window was moved to.
func (a *App) SetWindowPosition(x, y int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.prefs.WindowPosition.X == x && a.prefs.WindowPosition.Y == y {
		return
	}
	a.prefs.WindowPosition = WindowPosition{X: x, Y: y}
	a.saveLocked()
}

// Save writes the current preferences, e.g. on shutdown.
func (a *App) Save() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saveLocked()
}

func (a *App) saveLocked() {
	if a.store == nil {
		return
	}
	if err := a.store.Save(a.prefs.Clone()); err != nil {
		a.log.WithError(err).Warn("Could not save preferences")
	}
}
