package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/BurntSushi/toml"
)

// TargetsCatalog is the csbctl catalog of named server endpoints.
type TargetsCatalog struct {
	DefaultTarget string        `toml:"default_target"`
	Targets       []TargetEntry `toml:"targets"`
}

// TargetEntry names one reachable csbd endpoint.
type TargetEntry struct {
	Name string `toml:"name"`
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr is the dialable address of the entry.
func (e TargetEntry) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// LoadTargets decodes the catalog at path. Entries are not checked
// here; Resolve vets the one actually selected, Validate vets all.
func LoadTargets(path string) (TargetsCatalog, error) {
	var catalog TargetsCatalog
	if _, err := toml.DecodeFile(path, &catalog); err != nil {
		return TargetsCatalog{}, fmt.Errorf("targets load failed (%s): %w", path, err)
	}
	return catalog, nil
}

// Resolve returns the dial address for name. An empty name falls back
// to the catalog default, then to the first entry.
func (c TargetsCatalog) Resolve(name string) (string, error) {
	if name == "" {
		name = c.DefaultTarget
	}
	if name == "" && len(c.Targets) > 0 {
		name = c.Targets[0].Name
	}
	if name == "" {
		return "", fmt.Errorf("targets catalog has no entries")
	}
	for _, target := range c.Targets {
		if target.Name != name {
			continue
		}
		if err := target.validate(); err != nil {
			return "", err
		}
		return target.Addr(), nil
	}
	return "", fmt.Errorf("target %q not found", name)
}

// Validate checks every entry and the default reference.
func (c TargetsCatalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Targets))
	for _, target := range c.Targets {
		if err := target.validate(); err != nil {
			return err
		}
		if _, dup := seen[target.Name]; dup {
			return fmt.Errorf("duplicate target name: %q", target.Name)
		}
		seen[target.Name] = struct{}{}
	}
	if c.DefaultTarget != "" {
		if _, ok := seen[c.DefaultTarget]; !ok {
			return fmt.Errorf("default_target %q not defined", c.DefaultTarget)
		}
	}
	return nil
}

func (e TargetEntry) validate() error {
	if e.Name == "" {
		return fmt.Errorf("target entry without a name")
	}
	if e.Host == "" {
		return fmt.Errorf("target %q has no host", e.Name)
	}
	if e.Port < 1 || e.Port > 65535 {
		return fmt.Errorf("target %q port out of range: %d", e.Name, e.Port)
	}
	return nil
}
