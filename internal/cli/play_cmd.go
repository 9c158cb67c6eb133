package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newPlayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "play [project-id]",
		Short: "Play a story project in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("play needs an interactive terminal")
			}

			rec, err := mustOutline(context.Background(), app, argOrEmpty(args))
			if err != nil {
				return err
			}

			model, err := newPlayModel(rec.Outline)
			if err != nil {
				return fmt.Errorf("project %s is not playable: %w", rec.ID, err)
			}

			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}
