package main

import "testing"

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "td" {
		t.Fatalf("expected root command name td, got %q", rootCmd.Use)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	want := []string{"board", "create", "delete", "list", "login", "logout", "move", "register", "serve", "show", "tag", "update", "whoami"}
	registered := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("expected %q to be registered", name)
		}
	}
}

func TestVersionString(t *testing.T) {
	if got := versionString(); got != "td dev (commit unknown)" {
		t.Fatalf("unexpected version string %q", got)
	}
}
