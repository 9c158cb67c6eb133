package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessavero/fabula/internal/cli/formatter"
	"github.com/tessavero/fabula/internal/repository"
)

// resolveProjectID resolves user input to a stored project id: empty input
// means the current project, otherwise exact match first, then unique prefix.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		rec, err := app.Projects.Current(ctx)
		if err != nil {
			return "", fmt.Errorf("no project selected: %w", err)
		}
		return rec.ID, nil
	}

	metas, err := app.Projects.List(ctx)
	if err != nil {
		return "", err
	}

	for _, m := range metas {
		if m.ID == input {
			return m.ID, nil
		}
	}

	var matches []string
	for _, m := range metas {
		if strings.HasPrefix(m.ID, input) {
			matches = append(matches, m.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage stored story projects",
	}

	cmd.AddCommand(
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectUseCmd(app),
		newProjectDeleteCmd(app),
		newProjectExportCmd(app),
	)
	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			metas, err := app.Projects.List(ctx)
			if err != nil {
				return err
			}
			currentID := ""
			if current, err := app.Projects.Current(ctx); err == nil {
				currentID = current.ID
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(metas, currentID))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [project-id]",
		Short: "Show a project's cast and chapter graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, argOrEmpty(args))
			if err != nil {
				return err
			}
			rec, err := app.Projects.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectDetail(rec))
			return nil
		},
	}
}

func newProjectUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <project-id>",
		Short: "Mark a project as current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.SetCurrent(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current project is now %s\n", id)
			return nil
		},
	}
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if !force {
				return fmt.Errorf("deleting %s is permanent; re-run with --force", id)
			}
			if err := app.Projects.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation guard")
	return cmd
}

func newProjectExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [project-id]",
		Short: "Export the play-time manifest as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, argOrEmpty(args))
			if err != nil {
				return err
			}
			manifest, err := app.Projects.ExportManifest(ctx, id)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(manifest, "", "  ")
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(out, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("writing manifest: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// mustOutline loads the resolved project or fails with a uniform error.
func mustOutline(ctx context.Context, app *App, input string) (*repository.ProjectRecord, error) {
	id, err := resolveProjectID(ctx, app, input)
	if err != nil {
		return nil, err
	}
	return app.Projects.Get(ctx, id)
}
