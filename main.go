package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"coinwidget/internal"
)

const baseFontSize = 12

func main() {
	dir := internal.ConfigDir()
	bootLog := internal.NewLogger("info")

	settings, err := internal.LoadSettings(filepath.Join(dir, "settings.yaml"))
	if err != nil {
		bootLog.WithError(err).Warn("Error loading settings, using defaults")
	}
	log := internal.NewLogger(settings.LogLevel)

	store := internal.NewPreferenceStore(filepath.Join(dir, internal.ConfigFileName), log)
	prefs := store.Load()
	langs := internal.LoadLanguages(settings.LangPath, log)

	httpClient := &http.Client{}

	catalogCtx, cancelCatalog := context.WithTimeout(context.Background(), 15*time.Second)
	catalog, err := internal.FetchCatalog(catalogCtx, httpClient, settings)
	cancelCatalog()
	if err != nil {
		log.WithError(err).Warn("Could not load coin list")
	} else {
		log.WithField("symbols", catalog.Len()).Info("Coin list loaded")
	}

	app := internal.NewApp(prefs, catalog, langs, store, log)
	refresher := internal.NewRefresher(app, internal.NewPriceClient(httpClient, settings), settings.RefreshInterval(), log)
	app.SetRefreshTrigger(refresher.Trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refresher.Run(ctx)

	deviceScale := ebiten.Monitor().DeviceScaleFactor()
	fontFace, err := loadFontFace(settings.FontPath, int(baseFontSize*deviceScale), log)
	if err != nil {
		log.WithError(err).Fatal("Font could not be loaded")
	}

	p := app.Preferences()
	ebiten.SetWindowTitle("Coin Widget")
	ebiten.SetWindowSize(p.WindowSize.Width, p.WindowSize.Height)
	ebiten.SetWindowPosition(p.WindowPosition.X, p.WindowPosition.Y)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(p.Pinned())
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(30)

	g := NewGame(app, fontFace, deviceScale, settings, refresher.Refreshing, log)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
		app.Save()
		os.Exit(0)
	}()

	err = ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		SkipTaskbar:       true,
	})
	cancel()
	if err != nil {
		log.WithError(err).Error("Window terminated")
		os.Exit(1)
	}
}
