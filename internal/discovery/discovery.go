// Package discovery locates candidate ABI artifact files under build
// output directories.
package discovery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Discover walks dirs and returns every .json file that looks like a
// compiled artifact: a JSON object carrying an "abi" array. Files that
// fail this pre-validation are skipped silently; unreadable root
// directories fail the call. Caller-supplied directory order is
// preserved, entries within each directory are visited lexically, and
// foundry build-info directories are skipped.
func Discover(dirs []string) ([]string, error) {
	var out []string

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("artifact directory %s: %w", dir, err)
		}

		// Iterative worklist, FIFO so listing order stays lexical
		// level by level.
		queue := []string{dir}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			entries, err := os.ReadDir(current)
			if err != nil {
				continue
			}

			for _, entry := range entries {
				path := filepath.Join(current, entry.Name())
				if entry.IsDir() {
					if entry.Name() == "build-info" {
						continue
					}
					queue = append(queue, path)
					continue
				}
				if !strings.HasSuffix(entry.Name(), ".json") {
					continue
				}
				if hasABIArray(path) {
					out = append(out, path)
				}
			}
		}
	}

	return out, nil
}

// hasABIArray reports whether path holds a JSON object whose "abi" field
// is an array.
func hasABIArray(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var probe struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}

	trimmed := bytes.TrimSpace(probe.ABI)
	return len(trimmed) > 0 && trimmed[0] == '['
}
