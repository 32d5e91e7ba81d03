package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	configCmd "github.com/polarlauncher/polar/cmd/config"
	"github.com/polarlauncher/polar/internals/auth"
	"github.com/polarlauncher/polar/internals/cmdlog"
	"github.com/polarlauncher/polar/internals/commands"
	"github.com/polarlauncher/polar/internals/credentials"
	"github.com/polarlauncher/polar/internals/lang"
	"github.com/polarlauncher/polar/internals/microsoft"
	"github.com/polarlauncher/polar/internals/ownhttp"
	"github.com/polarlauncher/polar/internals/skins"
	"github.com/polarlauncher/polar/internals/yggdrasil"
)

// Version is the current polar version
const Version = "0.3.1"

// azureClientID identifies the launcher's Azure application.
// Third-party distributions must register their own.
const azureClientID = "211863ee-f9dd-4c72-a0c6-3a344a32a17c"

var logger *cmdlog.Logger = cmdlog.New()

var (
	globalDir     string
	disableColors bool
	disableEmojis bool
)

var rootCmd = &cobra.Command{
	Version: Version,
	Use:     "polar",
	Short:   "Polar at your service.",
	Long:    "Manage your game accounts and launch with the one you want",

	Example: `
  polar login
  polar accounts
  polar skin --type body`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	globalDir = filepath.Join(home, ".polar")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&disableColors, "no-color", "", false, "disable color output")
	rootCmd.PersistentFlags().BoolVarP(&disableEmojis, "no-emoji", "", false, "disable emoji output")

	rootCmd.AddCommand(configCmd.SubCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if disableColors || os.Getenv("CI") != "" {
		color.Disable()
	}
	if disableEmojis {
		commands.EmojiEnabled = false
	}

	viper.AddConfigPath(globalDir)
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.SetEnvPrefix("polar")
	viper.AutomaticEnv() // read in environment variables that match

	viper.SetDefault("language", "")
	viper.SetDefault("defaultprovider", "")
	viper.SetDefault("mojangauthserver", yggdrasil.MojangAuthServer)
	viper.SetDefault("elyauthserver", yggdrasil.ElyAuthServer)

	// no config file is fine, defaults cover everything
	_ = viper.ReadInConfig()
}

// newManager wires the credential store and all provider clients into
// an account manager
func newManager() (*auth.Manager, error) {
	httpClient := ownhttp.New()

	mojangClient := yggdrasil.NewMojang(httpClient)
	mojangClient.BaseURL = viper.GetString("mojangauthserver")

	elyClient := yggdrasil.NewEly(httpClient)
	elyClient.BaseURL = viper.GetString("elyauthserver")

	microsoftClient := microsoft.New(httpClient, &oauth2.Config{
		ClientID: azureClientID,
	})

	store := credentials.New(globalDir)
	return auth.NewManager(store, mojangClient, elyClient, microsoftClient)
}

// newLang loads the language bundle, preferring the configured language
// over the detected system one
func newLang() *lang.Bundle {
	language := viper.GetString("language")
	if language == "" {
		language = lang.DetectSystem()
	}

	bundle, err := lang.New(language)
	if err != nil {
		logger.Fail("Could not load language bundles: " + err.Error())
	}
	return bundle
}

// newSkinResolver builds the throttled skin lookup client. Two requests
// per second is plenty for a CLI.
func newSkinResolver() *skins.Resolver {
	return skins.New(ownhttp.NewThrottled(rate.NewLimiter(2, 2)))
}
