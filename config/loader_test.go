package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pinger.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_Overlay(t *testing.T) {
	path := writeConfig(t, `
trace_command  = "traceroute -n -w 2"
lookup_command = "  nslookup -timeout=1  "
echo_port      = 7007
source_address = " 192.0.2.5 "
verbose        = 2
notify         = false
`)
	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.TraceCommand != "traceroute -n -w 2" {
		t.Errorf("TraceCommand = %q", cfg.TraceCommand)
	}
	if cfg.LookupCommand != "nslookup -timeout=1" {
		t.Errorf("LookupCommand = %q, want trimmed", cfg.LookupCommand)
	}
	if cfg.EchoPort != 7007 {
		t.Errorf("EchoPort = %d", cfg.EchoPort)
	}
	if cfg.SourceAddress != "192.0.2.5" {
		t.Errorf("SourceAddress = %q", cfg.SourceAddress)
	}
	if cfg.Verbose != 2 {
		t.Errorf("Verbose = %d", cfg.Verbose)
	}
	if cfg.Notify {
		t.Error("Notify should be false")
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

// TestLoadFile_KeepsUndefined verifies keys absent from the file leave
// defaults in place, including zero-valued ones.
func TestLoadFile_KeepsUndefined(t *testing.T) {
	path := writeConfig(t, `echo_port = 17`)
	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.EchoPort != 17 {
		t.Errorf("EchoPort = %d, want 17", cfg.EchoPort)
	}
	if cfg.TraceCommand != DefaultTraceCommand {
		t.Errorf("TraceCommand = %q, want default", cfg.TraceCommand)
	}
	if cfg.LookupCommand != DefaultLookupCommand {
		t.Errorf("LookupCommand = %q, want default", cfg.LookupCommand)
	}
	if !cfg.Notify {
		t.Error("Notify default should survive")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSub string
	}{
		{"syntax", `trace_command = `, "load config"},
		{"wrong type", `echo_port = "seven"`, "load config"},
		{"unknown key", "tracecommand = \"mtr\"\nfoo = 1", "unknown keys: foo, tracecommand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := LoadFile(writeConfig(t, tt.body), cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"), Default())
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
}
