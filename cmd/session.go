package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/polarlauncher/polar/internals/autherr"
	"github.com/polarlauncher/polar/internals/commands"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "session",
		Short: "Check (and refresh if needed) the active account's session",
		Long: `Validates the stored session with its provider. A stale session is
refreshed in place; only when both validate and refresh fail you will be
asked to log in again.`,
		Args: cobra.NoArgs,
	}, &sessionRunner{})

	rootCmd.AddCommand(cmd.Command)
}

type sessionRunner struct{}

func (s *sessionRunner) RunE(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	bundle := newLang()

	selected, ok := manager.SelectedAccount()
	if !ok {
		return errors.New("no account selected, run `polar login` first")
	}

	session, err := manager.EnsureValid(cmd.Context(), selected.Profile.UUID)
	var authErr *autherr.Error
	if errors.As(err, &authErr) {
		return commands.FromDisplayable(authErr.Displayable(bundle),
			"Run `polar login` to sign in again.")
	}
	if err != nil {
		return err
	}

	logger.Info(commands.Emoji("✅ ") + "Session for " + session.Profile.Name + " is ready to launch")
	return nil
}
