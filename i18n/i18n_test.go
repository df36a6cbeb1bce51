package i18n

import (
	"context"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("fr-FR,es;q=0.8") != "es" {
		t.Fatalf("expected es as first supported")
	}
	if DetectLanguage("fr-FR") != "es" {
		t.Fatalf("expected default es for unsupported")
	}
	if DetectLanguage("") != "es" {
		t.Fatalf("expected default es")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("es", "required") != "Obligatorio" {
		t.Fatalf("expected Obligatorio")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to es translation
	if T("fr", "amount_exceeds_balance") != "El abono supera el saldo pendiente" {
		t.Fatalf("expected es fallback for fr lang")
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for code := range messages["es"] {
		if _, ok := messages["en"][code]; !ok {
			t.Errorf("missing en translation for %q", code)
		}
	}
	for code := range messages["en"] {
		if _, ok := messages["es"][code]; !ok {
			t.Errorf("missing es translation for %q", code)
		}
	}
}

func TestLangContext(t *testing.T) {
	if LangFrom(context.Background()) != "es" {
		t.Fatalf("expected default es")
	}
	if LangFrom(WithLang(context.Background(), "en")) != "en" {
		t.Fatalf("expected en from context")
	}
	if Normalize("EN-us") != "en" || Normalize("de") != "" {
		t.Fatalf("unexpected normalize result")
	}
}
