package i18n_test

import (
	"strings"
	"testing"

	"github.com/reoring/dataspec/i18n"
)

func TestT_InterpolatesData(t *testing.T) {
	got := i18n.T("missing_key", map[string]string{"key": "b"})
	if !strings.Contains(got, "b") {
		t.Fatalf("message should carry the key, got %q", got)
	}
}

func TestT_UnknownCodeFallsBack(t *testing.T) {
	if got := i18n.T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unknown codes should return the code itself, got %q", got)
	}
}

func TestT_NilDataIsSafe(t *testing.T) {
	if got := i18n.T("predicate_failed", nil); got == "" {
		t.Fatalf("nil data should still yield a message")
	}
}

func TestSetLanguage(t *testing.T) {
	defer i18n.SetLanguage("en")

	en := i18n.T("not_a_mapping", nil)
	i18n.SetLanguage("ja")
	ja := i18n.T("not_a_mapping", nil)
	if en == ja {
		t.Fatalf("expected language switch to change the message")
	}

	// unknown languages fall back to English
	i18n.SetLanguage("xx")
	if got := i18n.T("not_a_mapping", nil); got != en {
		t.Fatalf("unknown language should fall back to en, got %q", got)
	}
}

func TestJapaneseFallsBackToEnglishForUncoveredCodes(t *testing.T) {
	defer i18n.SetLanguage("en")

	want := i18n.T("str_too_short", map[string]string{"value": "a", "min": "3"})
	i18n.SetLanguage("ja")
	got := i18n.T("str_too_short", map[string]string{"value": "a", "min": "3"})
	if got == "str_too_short" {
		t.Fatalf("uncovered ja code should not render as the bare code")
	}
	if got != want {
		t.Fatalf("uncovered ja code should use the English rendering, got %q", got)
	}
}

type prefixTranslator struct{}

func (prefixTranslator) Message(code string, data map[string]string) string {
	return "X:" + code
}

func TestSetTranslator(t *testing.T) {
	defer i18n.SetTranslator(nil)

	i18n.SetTranslator(prefixTranslator{})
	if got := i18n.T("anything", nil); got != "X:anything" {
		t.Fatalf("custom translator should take over, got %q", got)
	}

	i18n.SetTranslator(nil)
	if got := i18n.T("not_a_mapping", nil); strings.HasPrefix(got, "X:") {
		t.Fatalf("nil translator should restore the default")
	}
}
