package config

import (
	"os"
	"path/filepath"
)

// DefaultEnvFile is the name looked up when FindEnvFile gets no name.
const DefaultEnvFile = ".env"

// FindEnvFile returns the path of the nearest file called name, looking in
// the working directory first and then in each parent up to the root.
func FindEnvFile(name string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findUpward(wd, name)
}

func findUpward(dir, name string) (string, error) {
	if name == "" {
		name = DefaultEnvFile
	}
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
