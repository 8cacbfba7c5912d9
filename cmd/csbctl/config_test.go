package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testCatalog = `default_target = "lab"

[[targets]]
name = "local"
host = "127.0.0.1"
port = 9090

[[targets]]
name = "lab"
host = "lab.example.net"
port = 7700

[[targets]]
name = "broken"
host = ""
port = 0
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write targets: %v", err)
	}
	return path
}

func TestResolveAddrNamedTarget(t *testing.T) {
	addr, err := resolveAddr("local", writeCatalog(t, testCatalog))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected target address: %q", addr)
	}
}

func TestResolveAddrUsesCatalogDefault(t *testing.T) {
	addr, err := resolveAddr("", writeCatalog(t, testCatalog))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr != "lab.example.net:7700" {
		t.Fatalf("default_target should apply, got %q", addr)
	}
}

func TestResolveAddrMissingFileFallsBackToDefault(t *testing.T) {
	addr, err := resolveAddr("", filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr != defaultServerAddr {
		t.Fatalf("expected local default, got %q", addr)
	}
}

func TestResolveAddrMissingFileWithTargetErrors(t *testing.T) {
	if _, err := resolveAddr("lab", filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for named target without a catalog")
	}
}

func TestResolveAddrUnknownTargetErrors(t *testing.T) {
	if _, err := resolveAddr("nope", writeCatalog(t, testCatalog)); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}

func TestResolveAddrIncompleteTargetErrors(t *testing.T) {
	if _, err := resolveAddr("broken", writeCatalog(t, testCatalog)); err == nil {
		t.Fatalf("expected error for target without host and port")
	}
}
