package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/polarlauncher/polar/internals/auth"
	"github.com/polarlauncher/polar/internals/autherr"
	"github.com/polarlauncher/polar/internals/commands"
	"github.com/polarlauncher/polar/internals/lang"
)

func init() {
	runner := &loginRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "login",
		Aliases: []string{"signin"},
		Short:   "Sign in to a game account",
		Args:    cobra.NoArgs,
	}, runner)
	cmd.Flags().StringVarP(&runner.provider, "provider", "p", "", "account provider (mojang, ely or microsoft)")

	rootCmd.AddCommand(cmd.Command)
}

type loginRunner struct {
	provider string
}

func (l *loginRunner) RunE(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	bundle := newLang()
	ctx := cmd.Context()

	provider, err := l.pickProvider(bundle.Query("login.chooseProvider"))
	if err != nil {
		return err
	}

	var username, password string
	if provider != auth.ProviderMicrosoft {
		fmt.Println("Your password is sent encrypted to the provider directly and NOT saved anywhere.")
		username, password, err = promptCredentials(bundle.Query("login.username"), bundle.Query("login.password"))
		if err != nil {
			return err
		}
	} else {
		fmt.Println("A browser window will open to sign you in with your Microsoft account.")
	}

	session, err := l.authenticate(ctx, manager, provider, username, password, bundle.Query("login.authenticating"))

	// the one permitted two factor retry
	var authErr *autherr.Error
	if errors.As(err, &authErr) && authErr.Kind == autherr.KindTwoFactorRequired {
		d := authErr.Displayable(bundle)
		logger.Headline(d.Title)
		logger.Info(d.Desc)

		challenge, err := manager.TwoFactorChallenge(provider, username, password)
		if err != nil {
			return err
		}

		codePrompt := promptui.Prompt{
			Label:    bundle.Query("login.twoFactorCode"),
			Validate: sixDigitValidation,
		}
		code, err := codePrompt.Run()
		if err != nil {
			return errors.New("login aborted")
		}

		session, err = l.spinWhile(bundle.Query("login.authenticating"), func() (*auth.Session, error) {
			return challenge.Complete(ctx, code)
		})
		return l.finish(session, err, bundle)
	}

	return l.finish(session, err, bundle)
}

func (l *loginRunner) finish(session *auth.Session, err error, bundle *lang.Bundle) error {
	var authErr *autherr.Error
	if errors.As(err, &authErr) {
		return commands.FromDisplayable(authErr.Displayable(bundle))
	}
	if err != nil {
		return err
	}

	logger.Info(commands.Emoji("✅ ") + bundle.QueryF("login.success", map[string]string{
		"name": session.Profile.Name,
	}))
	return nil
}

func (l *loginRunner) authenticate(ctx context.Context, manager *auth.Manager, provider auth.Provider, username, password, spinnerText string) (*auth.Session, error) {
	return l.spinWhile(spinnerText, func() (*auth.Session, error) {
		return manager.AddAccount(ctx, provider, username, password)
	})
}

// spinWhile shows a spinner while the in-flight operation runs. The
// credential prompts stay disabled for the whole duration, so there is
// never more than one session operation per account in flight.
func (l *loginRunner) spinWhile(text string, op func() (*auth.Session, error)) (*auth.Session, error) {
	s := spinner.New(spinner.CharSets[9], 300*time.Millisecond)
	s.Suffix = " " + text
	s.Start()
	defer s.Stop()
	return op()
}

func (l *loginRunner) pickProvider(label string) (auth.Provider, error) {
	name := l.provider
	if name == "" {
		name = viper.GetString("defaultprovider")
	}
	if name != "" {
		return auth.ParseProvider(name)
	}

	prompt := promptui.Select{
		Label: label,
		Items: []string{"ely", "mojang", "microsoft"},
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return 0, errors.New("login aborted")
	}
	return auth.ParseProvider(choice)
}

func promptCredentials(usernameLabel, passwordLabel string) (string, string, error) {
	uPrompt := promptui.Prompt{
		Label:    usernameLabel,
		Validate: basicValidation,
	}
	username, err := uPrompt.Run()
	if err != nil {
		return "", "", errors.New("login aborted")
	}

	pPrompt := promptui.Prompt{
		Label:    passwordLabel,
		Validate: basicValidation,
		Mask:     '■',
	}
	password, err := pPrompt.Run()
	if err != nil {
		return "", "", errors.New("login aborted")
	}

	return username, password, nil
}

func basicValidation(input string) error {
	if len(input) == 0 {
		return errors.New("you have to enter something …")
	}
	return nil
}

func sixDigitValidation(input string) error {
	if len(input) != 6 {
		return errors.New("the code has exactly six digits")
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return errors.New("the code contains only digits")
		}
	}
	return nil
}
