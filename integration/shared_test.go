//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedBinaryPath holds the path to a shared fm301check binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the fm301check binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "fm301check-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "fm301check")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/fm301check")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build fm301check: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runCommand runs the binary with the test schema in dir and returns its
// combined output and exit code.
func runCommand(t *testing.T, dir string, env []string, args ...string) (string, int) {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "schema.json"))
	if err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command(getBinary(), append(args, "--schema", schemaPath)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return string(output), exitErr.ExitCode()
	}
	if err != nil {
		t.Fatalf("command failed to start: %s: %v", cmd.String(), err)
	}
	return string(output), 0
}

// dataPath returns the absolute path of the test dump.
func dataPath(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", "radar.json"))
	if err != nil {
		t.Fatal(err)
	}
	return path
}
