package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/tessavero/fabula/internal/cli"
	"github.com/tessavero/fabula/internal/db"
	"github.com/tessavero/fabula/internal/intelligence"
	"github.com/tessavero/fabula/internal/llm"
	"github.com/tessavero/fabula/internal/repository"
	"github.com/tessavero/fabula/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.fabula/fabula.db
	dbPath := os.Getenv("FABULA_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".fabula", "fabula.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	projectRepo := repository.NewSQLiteProjectRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	llmCfg := llm.LoadConfig()
	var observer llm.Observer = llm.NoopObserver{}
	if llmCfg.LogCalls {
		observer = llm.NewLogObserver(os.Stderr)
	}
	llmClient := llm.NewGLMClient(llmCfg, observer)
	gateway := llm.NewGateway(llmClient)

	var useCaseObserver service.UseCaseObserver = service.NoopUseCaseObserver{}
	if llmCfg.LogCalls {
		useCaseObserver = service.NewLogUseCaseObserver(os.Stderr)
	}

	app := &cli.App{
		Projects: service.NewProjectService(projectRepo),
		Generation: service.NewGenerationService(
			intelligence.NewOutlineService(gateway),
			intelligence.NewDialogService(gateway),
			projectRepo,
			uow,
			useCaseObserver,
		),
		LLM: llmClient,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
