package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerConfig(t *testing.T) {
	t.Run("CreatesDefaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(cfg.JWTSecret) != 32 {
			t.Errorf("JWTSecret length = %d, want 32", len(cfg.JWTSecret))
		}
		if cfg.SessionTTL != 30*24*time.Hour {
			t.Errorf("SessionTTL = %v", cfg.SessionTTL)
		}
		if _, err := os.Stat(filepath.Join(dir, "server_config.yaml")); err != nil {
			t.Errorf("config file not created: %v", err)
		}
	})

	t.Run("SecretIsStable", func(t *testing.T) {
		dir := t.TempDir()
		first, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatal(err)
		}
		second, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatal(err)
		}
		if string(first.JWTSecret) != string(second.JWTSecret) {
			t.Error("JWT secret regenerated on reload")
		}
	})

	t.Run("RejectsInvalidFile", func(t *testing.T) {
		dir := t.TempDir()
		bad := "jwt_secret: \"\"\nsession_ttl: -1s\n"
		if err := os.WriteFile(filepath.Join(dir, "server_config.yaml"), []byte(bad), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadServerConfig(dir); err == nil {
			t.Error("invalid config accepted")
		}
	})
}
