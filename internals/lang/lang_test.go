package lang

import (
	"os"
	"testing"
)

func TestBundleOverlay(t *testing.T) {
	bundle, err := New("ru_RU")
	if err != nil {
		t.Fatal(err)
	}

	// overlaid key
	title := bundle.Query("auth.error.unknown.title")
	if title != "Неизвестная ошибка" {
		t.Fatalf("expected the russian title, got %q", title)
	}
}

func TestBundleFallsBackToEnglish(t *testing.T) {
	bundle, err := New("xx_XX")
	if err != nil {
		t.Fatal(err)
	}

	title := bundle.Query("auth.error.unknown.title")
	if title != "Unknown Error" {
		t.Fatalf("expected the english fallback, got %q", title)
	}
}

func TestBundleUnknownKey(t *testing.T) {
	bundle, err := New("")
	if err != nil {
		t.Fatal(err)
	}

	if got := bundle.Query("does.not.exist"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	// a key that resolves to a table, not a string
	if got := bundle.Query("auth.error"); got != "" {
		t.Fatalf("expected empty string for a table key, got %q", got)
	}
}

func TestBundlePlaceholders(t *testing.T) {
	bundle, err := New("")
	if err != nil {
		t.Fatal(err)
	}

	text := bundle.QueryF("login.success", map[string]string{"name": "player1"})
	if text != "Signed in as player1" {
		t.Fatalf("placeholder was not substituted: %q", text)
	}
}

func TestDetectSystem(t *testing.T) {
	cases := []struct {
		locale string
		want   string
	}{
		{"ru_RU.UTF-8", "ru_RU"},
		{"es-ES", "es_ES"},
		{"en_US", "en_US"},
		{"de_DE.UTF-8", "en_US"},
		{"", "en_US"},
	}

	for _, c := range cases {
		t.Run(c.locale, func(t *testing.T) {
			for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG", "LANGUAGE"} {
				os.Unsetenv(env)
			}
			if c.locale != "" {
				os.Setenv("LC_ALL", c.locale)
			}
			if got := DetectSystem(); got != c.want {
				t.Fatalf("expected %s, got %s", c.want, got)
			}
		})
	}
}
