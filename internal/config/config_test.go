package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "binance-cli.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadTrimsAndValidates(t *testing.T) {
	path := writeTempConfig(t, `
spot:
  api_key: "  key-1  "
  api_secret: secret-1
  base_url: https://testnet.binance.vision
um_futures:
  stream_url: wss://fstream.binancefuture.com
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Spot.APIKey != "key-1" {
		t.Fatalf("spot.api_key = %q, want %q", cfg.Spot.APIKey, "key-1")
	}
	if cfg.UMFutures.StreamURL != "wss://fstream.binancefuture.com" {
		t.Fatalf("um_futures.stream_url = %q", cfg.UMFutures.StreamURL)
	}
	if cfg.CMFutures != (Venue{}) {
		t.Fatalf("cm_futures = %+v, want zero value", cfg.CMFutures)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeTempConfig(t, `
spot:
  api_keey: oops
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() error = nil, want unknown field error")
	}
}

func TestLoadRejectsBadScheme(t *testing.T) {
	path := writeTempConfig(t, `
spot:
  base_url: wss://api.binance.com
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "scheme must be") {
		t.Fatalf("Load() error = %v, want scheme error", err)
	}

	path = writeTempConfig(t, `
cm_futures:
  stream_url: https://dstream.binance.com
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() error = nil, want scheme error for stream_url")
	}
}

func TestLoadRejectsMultiDocument(t *testing.T) {
	path := writeTempConfig(t, "spot:\n  api_key: a\n---\nspot:\n  api_key: b\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() error = nil, want single document error")
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadOptional() error = %v, want nil for missing file", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("LoadOptional() = %+v, want zero config", cfg)
	}
}
