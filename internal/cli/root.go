// Package cli implements the fabula command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tessavero/fabula/internal/llm"
	"github.com/tessavero/fabula/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects   service.ProjectService
	Generation service.GenerationService
	LLM        llm.Client

	// IsInteractive reports whether stdin is a terminal; wizard-based
	// commands refuse to run without one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "fabula" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "fabula",
		Short: "Branching interactive fiction, written with an AI co-author",
	}

	root.AddCommand(
		newCreateCmd(app),
		newProjectCmd(app),
		newChapterCmd(app),
		newDialogsCmd(app),
		newPlayCmd(app),
		newServeCmd(app),
	)

	return root
}
