package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/polarlauncher/polar/internals/auth"
	"github.com/polarlauncher/polar/internals/commands"
)

func init() {
	runner := &accountsRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "List your accounts and switch the active one",
		Args:    cobra.NoArgs,
	}, runner)
	cmd.Flags().BoolVarP(&runner.selectAccount, "select", "s", false, "interactively select the active account")

	rootCmd.AddCommand(cmd.Command)
}

type accountsRunner struct {
	selectAccount bool
}

func (a *accountsRunner) RunE(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	bundle := newLang()

	accounts := manager.Accounts()
	if len(accounts) == 0 {
		logger.Info(bundle.Query("accounts.none"))
		return nil
	}

	if a.selectAccount {
		return a.runSelect(manager, accounts)
	}

	selected, _ := manager.SelectedAccount()
	logger.Headline("Accounts")
	for _, account := range accounts {
		marker := "  "
		suffix := ""
		if selected != nil && selected.Profile.UUID == account.Profile.UUID {
			marker = commands.Emoji("⭐") + "* "
			suffix = " (" + bundle.Query("accounts.selected") + ")"
		}
		fmt.Printf(
			"%s%s – %s, added %s%s\n",
			marker,
			account.Profile.Name,
			account.Provider,
			humanize.Time(account.AddedAt),
			suffix,
		)
	}
	return nil
}

// runSelect shows an interactive picker. A pure local pointer swap, no
// network involved.
func (a *accountsRunner) runSelect(manager *auth.Manager, accounts []auth.Session) error {
	labels := make([]string, len(accounts))
	for i, account := range accounts {
		labels[i] = fmt.Sprintf("%s (%s)", account.Profile.Name, account.Provider)
	}

	prompt := promptui.Select{
		Label: "Choose the active account",
		Items: labels,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return errors.New("selection aborted")
	}

	session, err := manager.SelectAccount(accounts[i].Profile.UUID)
	if err != nil {
		return err
	}
	logger.Info("Now playing as " + session.Profile.Name)
	return nil
}
