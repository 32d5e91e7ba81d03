package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/polarlauncher/polar/internals/commands"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:     "logout [name]",
		Aliases: []string{"signout"},
		Short:   "Remove an account from this launcher",
		Long: `Removes the account locally and – best effort – invalidates its
session with the provider. A provider that cannot be reached does not
block the removal; the local launcher state is the source of truth.`,
		Args: cobra.MaximumNArgs(1),
	}, &logoutRunner{})

	rootCmd.AddCommand(cmd.Command)
}

type logoutRunner struct{}

func (l *logoutRunner) RunE(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	bundle := newLang()

	var uuid, name string
	if len(args) == 1 {
		name = args[0]
		for _, account := range manager.Accounts() {
			if account.Profile.Name == name {
				uuid = account.Profile.UUID
				break
			}
		}
		if uuid == "" {
			return &commands.CliError{
				Text: "No account named \"" + name + "\"",
				Help: "Run `polar accounts` to see the accounts on this launcher.",
			}
		}
	} else {
		selected, ok := manager.SelectedAccount()
		if !ok {
			return errors.New("no account selected, pass the account name to remove")
		}
		uuid = selected.Profile.UUID
		name = selected.Profile.Name
	}

	if err := manager.RemoveAccount(cmd.Context(), uuid); err != nil {
		return err
	}

	logger.Info(bundle.QueryF("accounts.removed", map[string]string{"name": name}))
	return nil
}
