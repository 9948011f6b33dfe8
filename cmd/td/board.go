package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/amonks/todopro/internal/boardtui"
	"github.com/amonks/todopro/internal/paths"
	"github.com/amonks/todopro/query"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive board",
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

var boardList bool

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVar(&boardList, "list", false, "Start in the list view")
}

func runBoard(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("td board needs an interactive terminal")
	}
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	// Log lines would scribble over the board.
	logFile := openBoardLog()
	if logFile != nil {
		defer logFile.Close()
		a.logger.SetOutput(logFile)
	} else {
		a.logger.SetOutput(io.Discard)
	}

	store := a.newStore()
	controller := query.NewController(store, query.ControllerOptions{
		ItemsPerPage: a.cfg.Client.ItemsPerPage,
		Logger:       a.logger,
	})
	return explain(boardtui.Run(cmd.Context(), boardtui.Options{
		Store:      store,
		Controller: controller,
		Logger:     a.logger,
		ListView:   boardList,
	}))
}

// openBoardLog opens board.log in the state directory, or returns nil.
func openBoardLog() *os.File {
	dir, err := paths.DefaultStateDir()
	if err != nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "board.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil
	}
	return f
}
