package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessavero/fabula/internal/cli/formatter"
)

func newChapterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapter",
		Short: "Inspect the current project's chapters",
	}

	var project string
	cmd.PersistentFlags().StringVar(&project, "project", "", "Project ID (defaults to the current project)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List chapters in authoring order",
			RunE: func(cmd *cobra.Command, args []string) error {
				rec, err := mustOutline(context.Background(), app, project)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChapterList(rec.Outline))
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <chapter-id>",
			Short: "Show one chapter's brief and dialogs",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rec, err := mustOutline(context.Background(), app, project)
				if err != nil {
					return err
				}
				ch, ok := rec.Outline.Chapters[args[0]]
				if !ok {
					return fmt.Errorf("chapter %q not found in %s", args[0], rec.ID)
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChapterDetail(rec.Outline, ch))
				return nil
			},
		},
	)
	return cmd
}
