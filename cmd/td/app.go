package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/amonks/todopro/board"
	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/gateway"
	"github.com/amonks/todopro/internal/config"
	"github.com/amonks/todopro/internal/credentials"
	"github.com/amonks/todopro/internal/logging"
	"github.com/amonks/todopro/internal/paths"
	internalstrings "github.com/amonks/todopro/internal/strings"
)

// app holds what every command needs to talk to a gateway.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	creds  *credentials.Store
	server string
	client *gateway.Client
}

func loadApp(cmd *cobra.Command) (*app, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}

	server := cfg.Client.Server
	if rootServer != "" {
		server = internalstrings.NormalizeServerURL(rootServer)
	}

	credsPath, err := paths.DefaultCredentialsPath()
	if err != nil {
		return nil, err
	}
	creds := credentials.NewStore(credsPath)

	token := cfg.Client.Token
	if token == "" {
		session, err := creds.Get(server)
		switch {
		case err == nil:
			token = session.Token
		case !errors.Is(err, credentials.ErrNotLoggedIn):
			return nil, err
		}
	}

	logger := logging.FromConfig(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format, "td")
	return &app{
		cfg:    cfg,
		logger: logger,
		creds:  creds,
		server: server,
		client: gateway.NewClient(server, token),
	}, nil
}

func (a *app) newStore() *collection.Store {
	return collection.New(a.client, collection.Options{
		Logger:            a.logger,
		ItemsPerPage:      a.cfg.Client.ItemsPerPage,
		DiscardStaleLoads: a.cfg.Client.DiscardStaleLoads,
	})
}

// newCoordinator returns a coordinator whose notifications go to out, or to
// errOut for failures.
func (a *app) newCoordinator(store board.Store, out, errOut io.Writer) *board.Coordinator {
	return board.NewCoordinator(store, printNotifier{out: out, errOut: errOut}, a.logger)
}

// explain adds a hint to errors a user can fix.
func explain(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gateway.ErrUnauthorized) {
		return fmt.Errorf("%w (run `td login` first)", err)
	}
	return err
}
