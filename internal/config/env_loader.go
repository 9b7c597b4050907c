package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// envFileNames are loaded in order; earlier files win.
var envFileNames = []string{".env.local", ".env"}

var (
	envMu       sync.Mutex
	envLoaded   bool
	envFiles    []string
	skipEnvLoad bool
)

// LoadEnvFiles loads .env.local and .env, searched upward from the working
// directory, on the first call only. Variables already present in the
// environment are never overwritten. It returns the files that were loaded.
func LoadEnvFiles() []string {
	envMu.Lock()
	defer envMu.Unlock()

	if skipEnvLoad || os.Getenv("CONFIG_SKIP_ENV_LOAD") == "1" {
		return nil
	}
	if envLoaded {
		return envFiles
	}
	envLoaded = true

	for _, name := range envFileNames {
		path, ok := findEnvFile(name)
		if !ok {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			envFiles = append(envFiles, path)
		}
	}
	return envFiles
}

// SetEnvFileLoadingForTest toggles env file loading and forgets earlier loads.
func SetEnvFileLoadingForTest(enabled bool) {
	envMu.Lock()
	defer envMu.Unlock()

	skipEnvLoad = !enabled
	envLoaded = false
	envFiles = nil
}

// findEnvFile walks from the working directory to the root looking for name.
func findEnvFile(name string) (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
