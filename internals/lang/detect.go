package lang

import (
	"os"
	"strings"
)

// Detector reports the preferred language id of the environment.
// Injected wherever locale detection is needed so tests (and embedders)
// can supply their own.
type Detector func() string

// supported maps bare language codes to the bundles we ship
var supported = map[string]string{
	"en": "en_US",
	"ru": "ru_RU",
	"es": "es_ES",
}

// DetectSystem inspects the usual POSIX locale variables. Unsupported
// or undetectable locales resolve to the default language.
func DetectSystem() string {
	locale := ""
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG", "LANGUAGE"} {
		if value := os.Getenv(env); value != "" {
			locale = value
			break
		}
	}
	if locale == "" {
		return DefaultLanguage
	}

	// "ru_RU.UTF-8" → "ru", "en-US" → "en"
	code := locale
	code = strings.SplitN(code, ".", 2)[0]
	code = strings.SplitN(code, "_", 2)[0]
	code = strings.SplitN(code, "-", 2)[0]

	if id, ok := supported[strings.ToLower(code)]; ok {
		return id
	}
	return DefaultLanguage
}
