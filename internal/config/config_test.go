package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.WorkHours != "09:00-17:00" {
		t.Errorf("WorkHours = %q, want 09:00-17:00", cfg.WorkHours)
	}
	if cfg.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", cfg.RetentionDays)
	}
}

func TestLoadFileEmptyPath(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want default", cfg.Addr)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowplan.yml")
	yaml := `
addr: ":9090"
work_hours: "08:00-16:00"
gemini:
  api_key: secret
caldav:
  url: https://dav.example.com
  username: alice
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.WorkHours != "08:00-16:00" {
		t.Errorf("WorkHours = %q", cfg.WorkHours)
	}
	if cfg.Gemini.APIKey != "secret" || cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Gemini = %+v, want key from file and default model", cfg.Gemini)
	}
	if cfg.CalDAV.URL != "https://dav.example.com" || cfg.CalDAV.Username != "alice" {
		t.Errorf("CalDAV = %+v", cfg.CalDAV)
	}
	// Untouched fields keep defaults.
	if cfg.Timezone != "Asia/Ho_Chi_Minh" {
		t.Errorf("Timezone = %q, want default", cfg.Timezone)
	}
}

func TestLoadFileMissingNamedFile(t *testing.T) {
	if _, err := LoadFile("/nonexistent/flowplan.yml"); err == nil {
		t.Fatal("expected error for missing named config file")
	}
}
