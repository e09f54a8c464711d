package main

import (
	"os"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sirupsen/logrus"
	"github.com/temidaradev/esset/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// hangulFonts are common system fonts able to render the Korean texts.
var hangulFonts = []string{
	`C:\Windows\Fonts\malgun.ttf`,
	"/System/Library/Fonts/Supplemental/AppleGothic.ttf",
	"/Library/Fonts/AppleGothic.ttf",
	"/usr/share/fonts/truetype/nanum/NanumGothic.ttf",
	"/usr/share/fonts/nanum/NanumGothic.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansKR-Regular.ttf",
}

// loadFontFace uses the configured font, then a system Hangul font, then the
// bundled Go font.
func loadFontFace(configured string, size int, log logrus.FieldLogger) (text.Face, error) {
	candidates := hangulFonts
	if configured != "" {
		candidates = append([]string{configured}, hangulFonts...)
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		face, err := esset.GetFont(data, size)
		if err != nil {
			log.WithField("path", path).WithError(err).Warn("Font could not be loaded")
			continue
		}
		log.WithField("path", path).Info("Font loaded")
		return face, nil
	}
	log.Info("No system Hangul font found, using Go Regular")
	return esset.GetFont(goregular.TTF, size)
}
