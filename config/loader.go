package config

// loader.go - configuration loading from a TOML file.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Config file  (this file)
//   3. Defaults   (defaults.go)

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig maps config.toml keys.
type fileConfig struct {
	TraceCommand  string `toml:"trace_command"`
	LookupCommand string `toml:"lookup_command"`
	EchoPort      int    `toml:"echo_port"`
	SourceAddress string `toml:"source_address"`
	Verbose       int    `toml:"verbose"`
	Notify        bool   `toml:"notify"`
}

// LoadFile overlays the keys defined in the TOML file at path onto cfg.
// Keys absent from the file leave cfg untouched; unknown keys are an
// error so typos do not pass silently.
func LoadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("trace_command") {
		cfg.TraceCommand = strings.TrimSpace(raw.TraceCommand)
	}
	if meta.IsDefined("lookup_command") {
		cfg.LookupCommand = strings.TrimSpace(raw.LookupCommand)
	}
	if meta.IsDefined("echo_port") {
		cfg.EchoPort = raw.EchoPort
	}
	if meta.IsDefined("source_address") {
		cfg.SourceAddress = strings.TrimSpace(raw.SourceAddress)
	}
	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}
	if meta.IsDefined("notify") {
		cfg.Notify = raw.Notify
	}
	cfg.ConfigFile = path
	return nil
}
