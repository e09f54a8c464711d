package internal

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
)

//go:embed lang.json
var defaultLanguages []byte

// Languages maps a language code to its key/text table.
type Languages map[string]map[string]string

// DefaultLanguages returns the table compiled into the binary.
func DefaultLanguages() Languages {
	var l Languages
	if err := json.Unmarshal(defaultLanguages, &l); err != nil {
		panic(fmt.Sprintf("embedded lang.json is invalid: %v", err))
	}
	return l
}

// LoadLanguages reads a language file, falling back to the embedded table
// when path is empty, missing or unparsable.
func LoadLanguages(path string, log logrus.FieldLogger) Languages {
	if path == "" {
		return DefaultLanguages()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).Warn("Could not read language file, using built-in texts")
		return DefaultLanguages()
	}
	var l Languages
	if err := json.Unmarshal(data, &l); err != nil || len(l) == 0 {
		log.WithError(err).Warn("Could not parse language file, using built-in texts")
		return DefaultLanguages()
	}
	return l
}

// Text looks key up for code. A miss returns the key itself.
func (l Languages) Text(code, key string) string {
	if t, ok := l[code][key]; ok {
		return t
	}
	return key
}

func (l Languages) Has(code string) bool {
	_, ok := l[code]
	return ok
}

// Codes lists the available language codes, default language first.
func (l Languages) Codes() []string {
	codes := make([]string, 0, len(l))
	for c := range l {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		if codes[i] == DefaultLanguage || codes[j] == DefaultLanguage {
			return codes[i] == DefaultLanguage
		}
		return codes[i] < codes[j]
	})
	return codes
}
