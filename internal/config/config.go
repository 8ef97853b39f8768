// Package config loads the read-only project manifest (spec §1 ambient
// stack) plus local developer overrides. It never edits a manifest —
// the on-disk manifest editor is explicitly out of scope — it only
// parses aivi.yaml (canonical) or aivi.toml (alternate format) and
// validates declared exports against a resolved program.
//
// Grounded on the original compiler's internal/manifest (yaml.v3-based project
// manifest reader) plus the termfx-morfx pack entry's godotenv usage for
// local .env overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sunholo/aivi/internal/resolver"
)

// Manifest is the package-level aivi.yaml/aivi.toml contract: a module
// name, the entry points it exports, and pinned dependency versions.
type Manifest struct {
	Name         string            `yaml:"name" toml:"name"`
	Entry        string            `yaml:"entry" toml:"entry"`
	Exports      []string          `yaml:"exports" toml:"exports"`
	Dependencies map[string]string `yaml:"dependencies" toml:"dependencies"`
}

// Load reads aivi.yaml from dir, falling back to aivi.toml if the yaml
// file isn't present. yaml remains canonical per SPEC_FULL.md.
func Load(dir string) (*Manifest, error) {
	yamlPath := filepath.Join(dir, "aivi.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", yamlPath, err)
		}
		return &m, nil
	}

	tomlPath := filepath.Join(dir, "aivi.toml")
	data, err := os.ReadFile(tomlPath)
	if err != nil {
		return nil, fmt.Errorf("no aivi.yaml or aivi.toml found in %s", dir)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", tomlPath, err)
	}
	return &m, nil
}

// LoadEnv applies .env-style local overrides (database DSN, HTTP bind
// address, etc.) on top of the process environment. Never required for
// .aivi program semantics — a pure development convenience.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// ValidateExports checks every name the manifest declares as exported is
// actually bound by the resolved program's entry module.
func (m *Manifest) ValidateExports(prog *resolver.Program) error {
	if m.Entry == "" {
		return nil
	}
	scope, ok := prog.Modules[m.Entry]
	if !ok {
		return fmt.Errorf("manifest entry module %q not found in program", m.Entry)
	}
	for _, name := range m.Exports {
		if _, bound := scope.Values[name]; !bound {
			return fmt.Errorf("manifest declares export %q but module %q does not define it", name, m.Entry)
		}
	}
	return nil
}
