// Package lang resolves UI strings from TOML language bundles. The
// en_US bundle is always loaded as the base; the selected language is
// overlaid on top, so missing keys fall back to English.
package lang

import (
	"embed"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

//go:embed translations/*.toml
var translations embed.FS

// DefaultLanguage is always loaded as the base layer
const DefaultLanguage = "en_US"

// Bundle is a read-only snapshot of the loaded language data. It is
// built once at startup and handed to whoever needs strings – nothing
// reads ambient global state.
type Bundle struct {
	data map[string]interface{}
}

// New loads the base language plus the requested overlay. An unknown
// language id falls back to plain English rather than failing.
func New(language string) (*Bundle, error) {
	b := &Bundle{data: map[string]interface{}{}}

	if err := b.load(DefaultLanguage); err != nil {
		return nil, err
	}
	if language != "" && language != DefaultLanguage {
		if err := b.load(language); err != nil {
			// the base layer answers everything, a missing overlay is
			// not fatal
			return b, nil
		}
	}
	return b, nil
}

func (b *Bundle) load(language string) error {
	raw, err := translations.ReadFile("translations/" + language + ".toml")
	if err != nil {
		return errors.Wrapf(err, "no language bundle %q", language)
	}

	layer := map[string]interface{}{}
	if err := toml.Unmarshal(raw, &layer); err != nil {
		return errors.Wrapf(err, "parsing language bundle %q", language)
	}

	merge(b.data, layer)
	return nil
}

// merge overlays src onto dst, descending into nested tables
func merge(dst, src map[string]interface{}) {
	for key, value := range src {
		srcTable, srcIsTable := value.(map[string]interface{})
		dstTable, dstIsTable := dst[key].(map[string]interface{})
		if srcIsTable && dstIsTable {
			merge(dstTable, srcTable)
			continue
		}
		dst[key] = value
	}
}

// Query resolves a dotted key ("auth.error.forbidden.title") to its
// string. Unknown keys return the empty string.
func (b *Bundle) Query(id string) string {
	var current interface{} = b.data
	for _, part := range strings.Split(id, ".") {
		table, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current = table[part]
	}

	text, ok := current.(string)
	if !ok {
		return ""
	}
	return text
}

// QueryF resolves a dotted key and substitutes {placeholder} markers
func (b *Bundle) QueryF(id string, placeholders map[string]string) string {
	text := b.Query(id)
	for key, value := range placeholders {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text
}
