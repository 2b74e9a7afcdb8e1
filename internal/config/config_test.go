package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so a stray config.yaml can't interfere.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 3456 {
		t.Errorf("Port = %d, want 3456", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.IMAP.Host != "imap.gmail.com" || cfg.IMAP.Port != 993 {
		t.Errorf("IMAP = %s:%d, want imap.gmail.com:993", cfg.IMAP.Host, cfg.IMAP.Port)
	}
	if cfg.IMAP.Mailbox != "INBOX" {
		t.Errorf("Mailbox = %q, want INBOX", cfg.IMAP.Mailbox)
	}
	if cfg.Household.Primary != "jesse" || cfg.Household.Partner != "wife" {
		t.Errorf("Household = %+v", cfg.Household)
	}
	if len(cfg.Household.PartnerAliases) == 0 {
		t.Error("no partner aliases")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FAMLIFE_SERVER_PORT", "9999")
	t.Setenv("FAMLIFE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8080
database:
  driver: sqlite
household:
  primary: alex
  partner: sam
  partner_aliases: [sam, sammy]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Household.Primary != "alex" {
		t.Errorf("Primary = %q, want alex", cfg.Household.Primary)
	}
	if len(cfg.Household.PartnerAliases) != 2 {
		t.Errorf("PartnerAliases = %v", cfg.Household.PartnerAliases)
	}
	// Untouched keys keep their defaults.
	if cfg.IMAP.Port != 993 {
		t.Errorf("IMAP.Port = %d, want 993", cfg.IMAP.Port)
	}
}

func TestLoadRejectsBadDriver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  driver: mongodb\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  driver: postgres\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for postgres without dsn")
	}
}
