package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTP.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080", c.HTTP.Addr)
	}
	if c.RateLimit.Burst != 50 || c.RateLimit.PerSecond != 25 {
		t.Fatalf("rate limit defaults = %+v", c.RateLimit)
	}
}

func TestFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("http:\n  addr: \":9090\"\npostgres:\n  dsn: \"postgres://file\"\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("COOPRA_POSTGRES_DSN", "postgres://env")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTP.Addr != ":9090" {
		t.Fatalf("addr = %q, want :9090", c.HTTP.Addr)
	}
	if c.Postgres.DSN != "postgres://env" {
		t.Fatalf("dsn = %q, want env override", c.Postgres.DSN)
	}
}
