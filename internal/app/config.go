package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/vk/curriculum/internal/export"
	"github.com/vk/curriculum/internal/registration"
	"gopkg.in/yaml.v3"
)

// Actions the application can run.
const (
	ActionCheck       = "check"
	ActionOrder       = "order"
	ActionLayout      = "layout"
	ActionTable       = "table"
	ActionEligibility = "eligibility"
	ActionExport      = "export"
	ActionBackup      = "backup"
	ActionRestore     = "restore"
	ActionServe       = "serve"
)

// Actions lists every valid action, in help order.
var Actions = []string{
	ActionCheck,
	ActionOrder,
	ActionLayout,
	ActionTable,
	ActionEligibility,
	ActionExport,
	ActionBackup,
	ActionRestore,
	ActionServe,
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CatalogPath string `yaml:"catalog_path"` // .hcl files or a JSON data directory
	DataDir     string `yaml:"data_dir"`     // where edits and backups are written

	Action       string   `yaml:"action"`
	Course       string   `yaml:"course"`
	Completed    []string `yaml:"completed"`
	Transitive   bool     `yaml:"transitive"`
	ExportFormat string   `yaml:"export_format"`
	OutputPath   string   `yaml:"output"`
	BackupName   string   `yaml:"backup_name"`
	HTTPPort     int      `yaml:"http_port"`
	NotifyURL    string   `yaml:"notify_url"` // socket.io hub announced to after each edit

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`

	Limits registration.Limits `yaml:"limits"`
}

// DefaultConfig returns the configuration used when neither a settings file
// nor a flag provides a value.
func DefaultConfig() Config {
	return Config{
		Action:       ActionCheck,
		ExportFormat: string(export.FormatJSON),
		HTTPPort:     8080,
		LogFormat:    "text",
		LogLevel:     "info",
		Limits:       registration.DefaultLimits(),
	}
}

// LoadSettings reads a YAML settings file over the defaults.
func LoadSettings(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return cfg, nil
}

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CatalogPath == "" {
		return nil, errors.New("CatalogPath is a required configuration field and cannot be empty")
	}

	cfg.Action = strings.ToLower(strings.TrimSpace(cfg.Action))
	if cfg.Action == "" {
		cfg.Action = ActionCheck
	}
	valid := false
	for _, a := range Actions {
		if a == cfg.Action {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("invalid action %q: must be one of %s", cfg.Action, strings.Join(Actions, ", "))
	}

	if cfg.Action == ActionEligibility && cfg.Course == "" {
		return nil, errors.New("the eligibility action needs a course")
	}
	if cfg.Action == ActionExport {
		if _, err := export.ParseFormat(cfg.ExportFormat); err != nil {
			return nil, err
		}
	}
	if cfg.Action == ActionServe && (cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535) {
		return nil, fmt.Errorf("invalid http port %d", cfg.HTTPPort)
	}
	if cfg.NotifyURL != "" {
		if u, err := url.Parse(cfg.NotifyURL); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid notify url %q", cfg.NotifyURL)
		}
	}
	if cfg.Limits.MinCredits > cfg.Limits.MaxCredits {
		return nil, fmt.Errorf("minimum credits %d exceed maximum credits %d", cfg.Limits.MinCredits, cfg.Limits.MaxCredits)
	}

	return &cfg, nil
}
