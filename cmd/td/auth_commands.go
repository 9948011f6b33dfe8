package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/amonks/todopro/gateway"
	"github.com/amonks/todopro/internal/credentials"
	internalstrings "github.com/amonks/todopro/internal/strings"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the gateway and remember the session",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the gateway and log in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var (
	authName     string
	authEmail    string
	authPassword string
	whoamiJSON   bool
)

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVarP(&authEmail, "email", "e", "", "Account email")
		cmd.Flags().StringVar(&authPassword, "password", "", "Password (prompted when omitted on a terminal; '-' reads stdin)")
	}
	registerCmd.Flags().StringVarP(&authName, "name", "n", "", "Display name")
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "Output as JSON")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	password, err := resolvePassword(cmd)
	if err != nil {
		return err
	}
	session, err := a.client.Login(cmd.Context(), authEmail, password)
	if err != nil {
		return err
	}
	return saveSession(cmd, a, session)
}

func runRegister(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	password, err := resolvePassword(cmd)
	if err != nil {
		return err
	}
	session, err := a.client.Register(cmd.Context(), authName, authEmail, password)
	if err != nil {
		return err
	}
	return saveSession(cmd, a, session)
}

func saveSession(cmd *cobra.Command, a *app, session gateway.Session) error {
	err := a.creds.Put(credentials.Session{
		Server:  a.server,
		Token:   session.Token,
		User:    session.User,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", session.User.Name, session.User.Email)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.creds.Get(a.server); errors.Is(err, credentials.ErrNotLoggedIn) {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}
	if err := a.client.Logout(cmd.Context()); err != nil {
		a.logger.Warn("server logout failed", "err", err)
	}
	if err := a.creds.Delete(a.server); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	session, err := a.client.User(cmd.Context())
	if err != nil {
		return explain(err)
	}
	if whoamiJSON {
		return encodeJSON(cmd.OutOrStdout(), session.User)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> on %s\n", session.User.Name, session.User.Email, a.server)
	return nil
}

// resolvePassword reads the password from the flag, stdin, or a terminal prompt.
func resolvePassword(cmd *cobra.Command) (string, error) {
	switch {
	case authPassword == "-":
		return readLine(cmd.InOrStdin())
	case cmd.Flags().Changed("password"):
		return authPassword, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password is required (use --password, or --password - to read stdin)")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return internalstrings.TrimTrailingNewlines(line), nil
}
