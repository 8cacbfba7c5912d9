package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTargets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write targets: %v", err)
	}
	return path
}

func TestLoadTargetsAndResolve(t *testing.T) {
	path := writeTargets(t, `
default_target = "lab"

[[targets]]
name = "local"
host = "127.0.0.1"
port = 9090

[[targets]]
name = "lab"
host = "lab.example.net"
port = 7700
`)

	catalog, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("load targets: %v", err)
	}

	addr, err := catalog.Resolve("local")
	if err != nil {
		t.Fatalf("resolve named: %v", err)
	}
	if addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected named address: %q", addr)
	}

	addr, err = catalog.Resolve("")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if addr != "lab.example.net:7700" {
		t.Fatalf("default_target should win for empty name, got %q", addr)
	}

	if _, err := catalog.Resolve("nope"); err == nil {
		t.Fatalf("expected unknown target error")
	}
}

func TestResolveFallsBackToFirstEntry(t *testing.T) {
	catalog := TargetsCatalog{Targets: []TargetEntry{
		{Name: "only", Host: "192.0.2.9", Port: 9091},
	}}
	addr, err := catalog.Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr != "192.0.2.9:9091" {
		t.Fatalf("first entry should apply, got %q", addr)
	}
}

func TestResolveRejectsIncompleteEntry(t *testing.T) {
	catalog := TargetsCatalog{Targets: []TargetEntry{{Name: "broken"}}}
	if _, err := catalog.Resolve("broken"); err == nil {
		t.Fatalf("expected incomplete entry error")
	}
}

func TestResolveEmptyCatalogErrors(t *testing.T) {
	if _, err := (TargetsCatalog{}).Resolve(""); err == nil {
		t.Fatalf("expected empty catalog error")
	}
}

func TestTargetsValidate(t *testing.T) {
	good := TargetsCatalog{
		DefaultTarget: "a",
		Targets: []TargetEntry{
			{Name: "a", Host: "h1", Port: 1},
			{Name: "b", Host: "h2", Port: 65535},
		},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid catalog rejected: %v", err)
	}

	dup := TargetsCatalog{Targets: []TargetEntry{
		{Name: "a", Host: "h1", Port: 1},
		{Name: "a", Host: "h2", Port: 2},
	}}
	if err := dup.Validate(); err == nil {
		t.Fatalf("expected duplicate name error")
	}

	dangling := TargetsCatalog{
		DefaultTarget: "missing",
		Targets:       []TargetEntry{{Name: "a", Host: "h", Port: 1}},
	}
	if err := dangling.Validate(); err == nil {
		t.Fatalf("expected dangling default_target error")
	}

	badPort := TargetsCatalog{Targets: []TargetEntry{{Name: "a", Host: "h", Port: 70000}}}
	if err := badPort.Validate(); err == nil {
		t.Fatalf("expected port range error")
	}
}

func TestTargetsTemplateValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "csbctl.toml")
	if err := WriteTemplate(path, "targets", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	catalog, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("template must load cleanly: %v", err)
	}
	if err := catalog.Validate(); err != nil {
		t.Fatalf("template must validate cleanly: %v", err)
	}
	if catalog.DefaultTarget != "local" {
		t.Fatalf("unexpected template default: %q", catalog.DefaultTarget)
	}
}
