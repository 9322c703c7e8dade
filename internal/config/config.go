// Package config loads service settings from the environment and an optional
// YAML file. File values override the environment; CLI flags are applied by
// the caller afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Preference backends.
const (
	PrefsCookie = "cookie"
	PrefsSQLite = "sqlite"
	PrefsMemory = "memory"
)

// Template engines for the vanilla renderer.
const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "go-template"
)

// Config is the full runtime configuration.
type Config struct {
	Addr           string        `env:"FORMFLOW_ADDR"             envDefault:":8080" yaml:"addr"`
	Form           string        `env:"FORMFLOW_FORM"             envDefault:"contact" yaml:"form"`
	FormsFile      string        `env:"FORMFLOW_FORMS_FILE"       yaml:"forms_file"`
	CatalogDir     string        `env:"FORMFLOW_CATALOG_DIR"      yaml:"catalog_dir"`
	WatchCatalogs  bool          `env:"FORMFLOW_WATCH_CATALOGS"   yaml:"watch_catalogs"`
	SubmitEndpoint string        `env:"FORMFLOW_SUBMIT_ENDPOINT"  yaml:"submit_endpoint"`
	SimulatedDelay time.Duration `env:"FORMFLOW_SIMULATED_DELAY"  envDefault:"2s" yaml:"simulated_delay"`
	NotifyTTL      time.Duration `env:"FORMFLOW_NOTIFY_TTL"       envDefault:"5s" yaml:"notify_ttl"`
	PrefsDriver    string        `env:"FORMFLOW_PREFS_DRIVER"     envDefault:"cookie" yaml:"prefs_driver"`
	PrefsPath      string        `env:"FORMFLOW_PREFS_PATH"       yaml:"prefs_path"`
	StrictI18n     bool          `env:"FORMFLOW_STRICT_I18N"      yaml:"strict_i18n"`
	ThemeVariant   string        `env:"FORMFLOW_THEME_VARIANT"    yaml:"theme_variant"`
	ShareURL       string        `env:"FORMFLOW_SHARE_URL"        yaml:"share_url"`
	SessionIdleTTL time.Duration `env:"FORMFLOW_SESSION_IDLE_TTL" envDefault:"30m" yaml:"session_idle_ttl"`
	TemplateEngine string        `env:"FORMFLOW_TEMPLATE_ENGINE"  envDefault:"pongo2" yaml:"template_engine"`
	Verbose        bool          `env:"FORMFLOW_VERBOSE"          yaml:"verbose"`
}

// Load parses the environment, then overlays path when it is not empty.
func Load(path string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if strings.TrimSpace(path) != "" {
		if err := cfg.overlay(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Form) == "" {
		errs = append(errs, errors.New("form is required"))
	}
	switch c.PrefsDriver {
	case PrefsCookie, PrefsMemory:
	case PrefsSQLite:
		if strings.TrimSpace(c.PrefsPath) == "" {
			errs = append(errs, errors.New("prefs_path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown prefs driver %q", c.PrefsDriver))
	}
	switch c.TemplateEngine {
	case "", EnginePongo2, EngineGoTemplate:
	default:
		errs = append(errs, fmt.Errorf("unknown template engine %q", c.TemplateEngine))
	}
	if c.SimulatedDelay < 0 {
		errs = append(errs, errors.New("simulated_delay must not be negative"))
	}
	if c.NotifyTTL <= 0 {
		errs = append(errs, errors.New("notify_ttl must be positive"))
	}
	if c.SessionIdleTTL <= 0 {
		errs = append(errs, errors.New("session_idle_ttl must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
