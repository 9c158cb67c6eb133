package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessavero/fabula/internal/cli/formatter"
	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/service"
)

func newCreateCmd(app *App) *cobra.Command {
	var title, worldview, plot string
	var characters []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new story project with AI-generated chapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.CreateProjectRequest{
				Title:     title,
				Worldview: worldview,
				Plot:      plot,
			}
			for _, spec := range characters {
				card, err := parseCharacterFlag(spec)
				if err != nil {
					return err
				}
				req.Characters = append(req.Characters, card)
			}

			if req.Title == "" || req.Worldview == "" || req.Plot == "" {
				if app.IsInteractive == nil || !app.IsInteractive() {
					return fmt.Errorf("missing --title, --worldview or --plot (interactive wizard needs a terminal)")
				}
				if err := runCreateWizard(&req); err != nil {
					return err
				}
			}
			if len(req.Characters) == 0 {
				return fmt.Errorf("at least one character is required")
			}

			stop := formatter.StartSpinner("Plotting chapters with the AI director...")
			rec, err := app.Generation.CreateProject(context.Background(), req)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectDetail(rec))
			fmt.Fprintf(cmd.OutOrStdout(), "\nSaved as %s (now current). Try `fabula dialogs %s`.\n",
				rec.ID, rec.Outline.StartChapterID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Story title")
	cmd.Flags().StringVar(&worldview, "worldview", "", "Setting and tone of the story world")
	cmd.Flags().StringVar(&plot, "plot", "", "Overall plot arc")
	cmd.Flags().StringArrayVar(&characters, "character", nil,
		"Character card as name|description|personality|background (repeatable)")
	return cmd
}

// parseCharacterFlag parses "name|description|personality|background"; only
// the name is required.
func parseCharacterFlag(spec string) (domain.CharacterCard, error) {
	parts := strings.SplitN(spec, "|", 4)
	if strings.TrimSpace(parts[0]) == "" {
		return domain.CharacterCard{}, fmt.Errorf("invalid --character %q: name is required", spec)
	}
	card := domain.CharacterCard{
		ID:   domain.NewUserCharacterID(),
		Name: strings.TrimSpace(parts[0]),
	}
	if len(parts) > 1 {
		card.Description = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		card.Personality = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 {
		card.Background = strings.TrimSpace(parts[3])
	}
	return card, nil
}

func runCreateWizard(req *service.CreateProjectRequest) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Story title").
				Value(&req.Title).
				Validate(nonEmpty("title")),
			huh.NewText().
				Title("Worldview").
				Description("The setting, era, and tone of the story world.").
				Value(&req.Worldview).
				Validate(nonEmpty("worldview")),
			huh.NewText().
				Title("Plot").
				Description("The overall arc the chapters should follow.").
				Value(&req.Plot).
				Validate(nonEmpty("plot")),
		),
	).WithTheme(fabulaHuhTheme())
	if err := form.Run(); err != nil {
		return err
	}

	for {
		card, more, err := runCharacterCardForm(len(req.Characters))
		if err != nil {
			return err
		}
		if card != nil {
			req.Characters = append(req.Characters, *card)
		}
		if !more {
			break
		}
	}
	return nil
}

func runCharacterCardForm(existing int) (*domain.CharacterCard, bool, error) {
	card := domain.CharacterCard{ID: domain.NewUserCharacterID()}
	more := false

	nameField := huh.NewInput().
		Title(fmt.Sprintf("Character %d: name", existing+1)).
		Value(&card.Name)
	if existing == 0 {
		// The first character is mandatory.
		nameField = nameField.Validate(nonEmpty("name"))
	}

	form := huh.NewForm(
		huh.NewGroup(
			nameField,
			huh.NewInput().Title("Description").Value(&card.Description),
			huh.NewInput().Title("Personality").Value(&card.Personality),
			huh.NewInput().Title("Background").Value(&card.Background),
			huh.NewConfirm().Title("Add another character?").Value(&more),
		),
	).WithTheme(fabulaHuhTheme())
	if err := form.Run(); err != nil {
		return nil, false, err
	}

	if strings.TrimSpace(card.Name) == "" {
		return nil, more, nil
	}
	return &card, more, nil
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
