package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgomes/espscript/esp"
	"gopkg.in/yaml.v3"
)

const defaultExtension = ".esp"

var configFileNames = []string{"esp.yaml", "esp.yml"}

// cliConfig is the parsed contents of esp.yaml.
type cliConfig struct {
	Path       string         `yaml:"-"`
	Color      string         `yaml:"color"`
	Extensions []string       `yaml:"extensions"`
	Globals    map[string]any `yaml:"globals"`
}

func defaultConfig() cliConfig {
	return cliConfig{Color: "auto", Extensions: []string{defaultExtension}}
}

// loadConfig reads explicit when given, otherwise the first esp.yaml or
// esp.yml next to the script. A missing implicit file yields the defaults.
func loadConfig(explicit, scriptPath string) (cliConfig, error) {
	if explicit != "" {
		return readConfigFile(explicit)
	}
	dir := filepath.Dir(scriptPath)
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return cliConfig{}, fmt.Errorf("access config %q: %w", candidate, err)
		}
		return readConfigFile(candidate)
	}
	return defaultConfig(), nil
}

func readConfigFile(path string) (cliConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return cliConfig{}, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	cfg, err := parseConfig(f)
	if err != nil {
		return cliConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func parseConfig(r io.Reader) (cliConfig, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cliConfig{}, err
	}

	if cfg.Color == "" {
		cfg.Color = "auto"
	}
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return cliConfig{}, fmt.Errorf("color must be auto, always or never, got %q", cfg.Color)
	}

	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{defaultExtension}
	}
	for i, ext := range cfg.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return cliConfig{}, errors.New("extensions cannot contain an empty entry")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	return cfg, nil
}

func (c cliConfig) checkExtension(scriptPath string) error {
	ext := filepath.Ext(scriptPath)
	for _, allowed := range c.Extensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("script %q must have extension %s", filepath.Base(scriptPath), strings.Join(c.Extensions, ", "))
}

func (c cliConfig) hasExtension(path string) bool {
	return c.checkExtension(path) == nil
}

// globalValues converts the YAML globals into engine values. Scalars keep
// the type YAML resolved for them, so `7` is an int and `"7"` a string.
func (c cliConfig) globalValues() (map[string]esp.Value, error) {
	if len(c.Globals) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(c.Globals))
	for name := range c.Globals {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]esp.Value, len(names))
	for _, name := range names {
		val, err := esp.ValueFromAny(c.Globals[name])
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
