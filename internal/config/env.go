package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are tried, in order, by LoadEnvFiles when no paths are given.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads KEY=VALUE files into the process environment and returns the
// files that were found. Missing files are skipped. Variables already present in
// the environment are never overwritten, so earlier files take precedence.
func LoadEnvFiles(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = DefaultEnvFiles
	}
	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load env file %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
