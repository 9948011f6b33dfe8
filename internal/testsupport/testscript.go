package testsupport

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/amonks/todopro/todo"
)

var (
	buildOnce sync.Once
	tdPath    string
	buildErr  error
)

// BuildTD builds the td binary once and returns its path.
func BuildTD(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "td-bin-")
		if err != nil {
			buildErr = err
			return
		}

		tdPath = filepath.Join(binDir, "td")
		cmd := exec.Command("go", "build", "-o", tdPath, "./cmd/td")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build td: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return tdPath
}

// SetupScriptEnv configures common environment variables for testscript:
// TD is the binary, HOME is a fresh home, TD_ADDR is a free local address
// and TODOPRO_SERVER points at it.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("TD", BuildTD(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("NO_COLOR", "1")

	addr, err := freeAddr()
	if err != nil {
		return err
	}
	env.Setenv("TD_ADDR", addr)
	env.Setenv("TODOPRO_SERVER", "http://"+addr)
	env.Setenv("TODOPRO_TOKEN", "")
	return nil
}

// Commands returns the custom testscript commands used by td scripts.
func Commands() map[string]func(ts *testscript.TestScript, neg bool, args []string) {
	return map[string]func(ts *testscript.TestScript, neg bool, args []string){
		"envset":     CmdEnvSet,
		"todoid":     CmdTodoID,
		"waitserver": CmdWaitServer,
	}
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdTodoID finds a todo by title in `td list --json` output and stores its ID in an env var.
func CmdTodoID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("todoid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: todoid FILE TITLE VAR")
	}

	var page struct {
		Items []todo.Todo `json:"items"`
	}
	data := ts.ReadFile(args[0])
	if err := json.Unmarshal([]byte(data), &page); err != nil {
		ts.Fatalf("parse todo list: %v", err)
	}

	title := args[1]
	for _, item := range page.Items {
		if item.Title == title {
			ts.Setenv(args[2], item.ID)
			return
		}
	}

	ts.Fatalf("todo with title %q not found", title)
}

// CmdWaitServer polls $TODOPRO_SERVER until it answers or five seconds pass.
func CmdWaitServer(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("waitserver does not support negation")
	}
	server := ts.Getenv("TODOPRO_SERVER")
	client := &http.Client{Timeout: 200 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(server + "/todos")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	ts.Fatalf("server %s did not start", server)
}

func freeAddr() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("reserve port: %w", err)
	}
	defer listener.Close()
	return listener.Addr().String(), nil
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
