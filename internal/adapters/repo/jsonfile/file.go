package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	dataFileMode    = 0o600
	dataDirMode     = 0o700
	tempFilePattern = ".%s-*.tmp"
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// lockForPath serializes access to one file within this process. Other
// processes are not covered.
func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// writeJSONFile replaces path with the indented encoding of v via a temp file
// in the same directory.
func writeJSONFile(path string, label string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), dataDirMode); err != nil {
		return fmt.Errorf("create %s directory: %w", label, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s file: %w", label, err)
	}
	data = append(data, '\n')

	tempFile, err := os.CreateTemp(filepath.Dir(path), fmt.Sprintf(tempFilePattern, filepath.Base(path)))
	if err != nil {
		return fmt.Errorf("create temp %s file: %w", label, err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp %s file: %w", label, err)
	}

	if err := tempFile.Chmod(dataFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp %s file: %w", label, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp %s file: %w", label, err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace %s file: %w", label, err)
	}

	cleanup = false
	return nil
}
