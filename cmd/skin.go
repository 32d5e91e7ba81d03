package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/polarlauncher/polar/internals/commands"
	"github.com/polarlauncher/polar/internals/skins"
)

func init() {
	runner := &skinRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "skin",
		Short: "Print the skin image URL of the active account",
		Args:  cobra.NoArgs,
	}, runner)
	cmd.Flags().StringVarP(&runner.renderType, "type", "t", "head", "render type (head, body or avatar)")
	cmd.Flags().IntVarP(&runner.size, "size", "", 40, "image size in pixels")

	rootCmd.AddCommand(cmd.Command)
}

type skinRunner struct {
	renderType string
	size       int
}

func (s *skinRunner) RunE(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}

	session, ok := manager.SelectedAccount()
	if !ok {
		return errors.New("no account selected, run `polar login` first")
	}

	var render skins.RenderType
	switch s.renderType {
	case "head":
		render = skins.RenderHead
	case "body":
		render = skins.RenderBody
	case "avatar":
		render = skins.RenderAvatar
	default:
		return &commands.CliError{
			Text: "Unknown render type \"" + s.renderType + "\"",
			Help: "Valid types are head, body and avatar.",
		}
	}

	resolver := newSkinResolver()
	fmt.Println(resolver.Resolve(cmd.Context(), session, render, s.size))
	return nil
}
