package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chtmp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtmp(t)
	cfg := Load(nil)

	if cfg.SwitchScheme != "https" {
		t.Errorf("SwitchScheme = %q, want https", cfg.SwitchScheme)
	}
	if cfg.SwitchPort != 8443 {
		t.Errorf("SwitchPort = %d, want 8443", cfg.SwitchPort)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.Transport != "nxapi" {
		t.Errorf("Transport = %q, want nxapi", cfg.Transport)
	}
	if !cfg.AuditEnabled {
		t.Error("AuditEnabled = false, want true")
	}
	if cfg.IsAPIAuthEnabled() {
		t.Error("IsAPIAuthEnabled = true with no token hash")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	chtmp(t)
	t.Setenv("SANCTL_SWITCH_ADDR", "10.0.0.1")
	t.Setenv("SANCTL_USERNAME", "admin")
	t.Setenv("SANCTL_PASSWORD", "secret")
	t.Setenv("SANCTL_INSECURE", "true")
	t.Setenv("SANCTL_SWITCH_PORT", "443")
	t.Setenv("SANCTL_MONITOR_VSANS", "1, 20,300")

	cfg := Load(nil)
	if cfg.SwitchAddr != "10.0.0.1" {
		t.Errorf("SwitchAddr = %q", cfg.SwitchAddr)
	}
	if cfg.Username != "admin" || cfg.Password != "secret" {
		t.Errorf("credentials = (%q, %q)", cfg.Username, cfg.Password)
	}
	if !cfg.Insecure {
		t.Error("Insecure = false, want true")
	}
	if cfg.SwitchPort != 443 {
		t.Errorf("SwitchPort = %d, want 443", cfg.SwitchPort)
	}
	want := []int{1, 20, 300}
	if len(cfg.MonitorVsans) != len(want) {
		t.Fatalf("MonitorVsans = %v, want %v", cfg.MonitorVsans, want)
	}
	for i := range want {
		if cfg.MonitorVsans[i] != want[i] {
			t.Errorf("MonitorVsans[%d] = %d, want %d", i, cfg.MonitorVsans[i], want[i])
		}
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := chtmp(t)
	env := "SANCTL_SWITCH_ADDR=192.0.2.5\n" +
		"# comment line\n" +
		"SANCTL_USERNAME=\"svc-fabric\"\n" +
		"SANCTL_TIMEOUT=45s\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg := Load(nil)
	if cfg.SwitchAddr != "192.0.2.5" {
		t.Errorf("SwitchAddr = %q", cfg.SwitchAddr)
	}
	if cfg.Username != "svc-fabric" {
		t.Errorf("Username = %q, want quoted value stripped", cfg.Username)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
	if cfg.ConfigFile != ".env" {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

func TestLoadOptsOverride(t *testing.T) {
	chtmp(t)
	t.Setenv("SANCTL_SWITCH_ADDR", "10.0.0.1")

	cfg := Load(&Config{
		SwitchAddr: "10.9.9.9",
		SwitchPort: 443,
		Insecure:   true,
		LogFormat:  "json",
	})
	if cfg.SwitchAddr != "10.9.9.9" {
		t.Errorf("SwitchAddr = %q, opts must win over env", cfg.SwitchAddr)
	}
	if cfg.SwitchPort != 443 {
		t.Errorf("SwitchPort = %d", cfg.SwitchPort)
	}
	if !cfg.Insecure {
		t.Error("Insecure = false")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q", cfg.LogFormat)
	}
}

func TestLoadValidation(t *testing.T) {
	chtmp(t)
	cfg := Load(&Config{SwitchScheme: "ftp", LogFormat: "xml"})
	if cfg.SwitchScheme != "https" {
		t.Errorf("SwitchScheme = %q, want https fallback", cfg.SwitchScheme)
	}
	if cfg.LogFormat != "console" {
		t.Errorf("LogFormat = %q, want console fallback", cfg.LogFormat)
	}
}
