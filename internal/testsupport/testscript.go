// Package testsupport runs the riff binary under testscript.
package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce sync.Once
	riffPath  string
	buildErr  error
)

// BuildRiff builds the riff binary once and returns its path.
func BuildRiff(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "riff-bin-")
		if err != nil {
			buildErr = err
			return
		}

		riffPath = filepath.Join(binDir, "riff")
		cmd := exec.Command("go", "build", "-o", riffPath, "./cmd/riff")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build riff: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return riffPath
}

// SetupScriptEnv points every script at its own home, database and config,
// with the bell and mirroring switched off.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("RIFF", BuildRiff(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := os.MkdirAll(filepath.Join(homeDir, ".riff"), 0o755); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("RIFF_DB", filepath.Join(homeDir, ".riff", "riff.db"))
	env.Setenv("RIFF_CONFIG", filepath.Join(homeDir, "config.toml"))
	env.Setenv("RIFF_ALERT", "false")
	env.Setenv("RIFF_MIRROR_ENABLED", "false")
	return nil
}

// Commands returns the custom script commands.
func Commands() map[string]func(ts *testscript.TestScript, neg bool, args []string) {
	return map[string]func(ts *testscript.TestScript, neg bool, args []string){
		"envset":     CmdEnvSet,
		"exerciseid": CmdExerciseID,
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

// CmdExerciseID finds an exercise by name in a backup file and stores its ID
// in an env var.
func CmdExerciseID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("exerciseid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: exerciseid BACKUP NAME VAR")
	}

	var data domain.AppData
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &data); err != nil {
		ts.Fatalf("parse backup: %v", err)
	}

	for _, ex := range data.Exercises {
		if ex.Name == args[1] {
			ts.Setenv(args[2], ex.ID)
			return
		}
	}

	ts.Fatalf("exercise named %q not found", args[1])
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
