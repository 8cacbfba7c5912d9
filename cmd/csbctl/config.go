package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/csbwire/csbwire/internal/config"
)

const (
	defaultTargetsPath = "csbctl.toml"
	defaultServerAddr  = "127.0.0.1:9090"
)

// resolveAddr looks the named target up in the catalog at path.
// Without a catalog, or with an empty one and no specific request,
// the local default applies.
func resolveAddr(targetName, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if targetName != "" {
				return "", fmt.Errorf("target %q requested but targets file %s does not exist", targetName, path)
			}
			return defaultServerAddr, nil
		}
		return "", fmt.Errorf("targets file %s: %w", path, err)
	}

	catalog, err := config.LoadTargets(path)
	if err != nil {
		return "", err
	}
	if targetName == "" && catalog.DefaultTarget == "" && len(catalog.Targets) == 0 {
		return defaultServerAddr, nil
	}
	return catalog.Resolve(targetName)
}
