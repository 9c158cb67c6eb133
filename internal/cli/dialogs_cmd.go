package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessavero/fabula/internal/cli/formatter"
)

func newDialogsCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "dialogs <chapter-id>",
		Short: "Generate and append dialogs for a chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rec, err := mustOutline(ctx, app, project)
			if err != nil {
				return err
			}
			chapterID := args[0]
			if _, ok := rec.Outline.Chapters[chapterID]; !ok {
				return fmt.Errorf("chapter %q not found in %s", chapterID, rec.ID)
			}

			stop := formatter.StartSpinner("Writing dialogs with the AI screenwriter...")
			dialogs, err := app.Generation.GenerateChapterDialogs(ctx, rec.ID, chapterID)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %d lines to %s:\n\n", len(dialogs), chapterID)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDialogs(rec.Outline, dialogs))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (defaults to the current project)")
	return cmd
}
