package internal

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestText_FallsBackToKey(t *testing.T) {
	l := Languages{"kr": {"settings": "설정"}, "en": {"settings": "Settings"}}

	if got := l.Text("en", "settings"); got != "Settings" {
		t.Errorf("Expected Settings, got %s", got)
	}
	if got := l.Text("en", "missing_key"); got != "missing_key" {
		t.Errorf("Expected key back, got %s", got)
	}
	if got := l.Text("jp", "settings"); got != "settings" {
		t.Errorf("Expected key back for unknown language, got %s", got)
	}
}

func TestDefaultLanguages(t *testing.T) {
	l := DefaultLanguages()
	if want := []string{"kr", "en"}; !reflect.DeepEqual(l.Codes(), want) {
		t.Errorf("Expected codes %v, got %v", want, l.Codes())
	}
	for key := range l["en"] {
		if _, ok := l["kr"][key]; !ok {
			t.Errorf("Key %q missing from kr table", key)
		}
	}
}

func TestLoadLanguages(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "lang.json")
	os.WriteFile(good, []byte(`{"en":{"title":"Prices"},"de":{"title":"Preise"}}`), 0o644)
	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(broken, []byte(`{"en":`), 0o644)

	l := LoadLanguages(good, DiscardLogger())
	if l.Text("de", "title") != "Preise" {
		t.Errorf("Expected file contents to be used, got %v", l)
	}

	for _, path := range []string{"", broken, filepath.Join(dir, "missing.json")} {
		l := LoadLanguages(path, DiscardLogger())
		if !l.Has("kr") || !l.Has("en") {
			t.Errorf("Expected built-in table for %q, got %v", path, l.Codes())
		}
	}
}
