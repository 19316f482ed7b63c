// Package config loads the sennaar.toml project manifest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"sennaar/internal/pipeline"
	"sennaar/internal/registry"
)

// FileName is the manifest file looked up from the working directory.
const FileName = "sennaar.toml"

// Manifest is a decoded sennaar.toml and where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest tables.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Input    InputConfig    `toml:"input"`
	Output   OutputConfig   `toml:"output"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

type RegistryConfig struct {
	Name     string            `toml:"name"`
	Metadata map[string]string `toml:"metadata"`
	Imports  []ImportConfig    `toml:"imports"`
}

type ImportConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Depend  bool   `toml:"depend"`
}

type InputConfig struct {
	Headers           []string `toml:"headers"`
	ClangArgs         []string `toml:"clang_args"`
	SkipSystemHeaders bool     `toml:"skip_system_headers"`
}

type OutputConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

type PipelineConfig struct {
	Jobs           int    `toml:"jobs"`
	OnMappingError string `toml:"on_mapping_error"`
	Cache          bool   `toml:"cache"`
}

// Find walks up from startDir to locate sennaar.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and decodes the manifest governing startDir. ok is false when
// there is none.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := Decode(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// Decode reads and validates the manifest at path, filling defaults for
// absent keys.
func Decode(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("registry", "name") || strings.TrimSpace(cfg.Registry.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [registry].name", path)
	}
	if !meta.IsDefined("input", "headers") || len(cfg.Input.Headers) == 0 {
		return Config{}, fmt.Errorf("%s: missing [input].headers", path)
	}
	for i, imp := range cfg.Registry.Imports {
		if strings.TrimSpace(imp.Name) == "" {
			return Config{}, fmt.Errorf("%s: [[registry.imports]] entry %d has no name", path, i+1)
		}
	}
	if !meta.IsDefined("input", "skip_system_headers") {
		cfg.Input.SkipSystemHeaders = true
	}
	if !meta.IsDefined("pipeline", "cache") {
		cfg.Pipeline.Cache = true
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = registry.FormatJSON.String()
	}
	if _, err := registry.ParseFormat(cfg.Output.Format); err != nil {
		return Config{}, fmt.Errorf("%s: [output].format: %w", path, err)
	}
	if _, err := pipeline.ParseMappingPolicy(cfg.Pipeline.OnMappingError); err != nil {
		return Config{}, fmt.Errorf("%s: [pipeline].on_mapping_error: %w", path, err)
	}
	if cfg.Pipeline.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [pipeline].jobs must not be negative", path)
	}
	return cfg, nil
}

// Resolve interprets a manifest-relative path.
func (m *Manifest) Resolve(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

// Headers returns the input headers resolved against the manifest root.
func (m *Manifest) Headers() []string {
	out := make([]string, len(m.Config.Input.Headers))
	for i, h := range m.Config.Input.Headers {
		out[i] = m.Resolve(h)
	}
	return out
}

// Imports converts the [[registry.imports]] entries.
func (c Config) Imports() []registry.Import {
	out := make([]registry.Import, 0, len(c.Registry.Imports))
	for _, imp := range c.Registry.Imports {
		ri := registry.Import{Name: imp.Name, Depend: imp.Depend}
		if imp.Version != "" {
			v := imp.Version
			ri.Version = &v
		}
		out = append(out, ri)
	}
	return out
}

// UnitOptions returns the per-unit pass options. Decode has already
// validated the policy.
func (c Config) UnitOptions() pipeline.UnitOptions {
	policy, _ := pipeline.ParseMappingPolicy(c.Pipeline.OnMappingError)
	return pipeline.UnitOptions{
		SkipSystemHeaders: c.Input.SkipSystemHeaders,
		OnMappingError:    policy,
	}
}
