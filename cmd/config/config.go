package config

import (
	"github.com/spf13/cobra"
)

const (
	configKindString = iota
	configKindBool
)

type configEntry struct {
	kind int
	help string
}

var config = map[string]configEntry{
	"language":         {configKindString, "UI language (en_US, ru_RU, es_ES); empty = detect"},
	"defaultprovider":  {configKindString, "skip the provider prompt on login (mojang, ely, microsoft)"},
	"mojangauthserver": {configKindString, "override the Mojang-compatible auth server"},
	"elyauthserver":    {configKindString, "override the ely.by auth server"},
}

var SubCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global config options",
}
