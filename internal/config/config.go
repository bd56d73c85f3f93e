package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds build-host parameters shared by msix-gen invocations.
type Settings struct {
	// CertStorePath is the certificate store location searched when no
	// explicit subject is supplied (PowerShell provider syntax).
	CertStorePath string `yaml:"cert_store_path"`
	// PadLimit is the exact byte size the AppInstaller file is padded to.
	// Descriptors that reach this size before padding abort the run.
	PadLimit int64 `yaml:"pad_limit"`
	// DefaultBackgroundColor is used when the manifest JSON omits
	// VisualElements.BackgroundColor.
	DefaultBackgroundColor string `yaml:"default_background_color"`
}

const (
	// DefaultConfigFilename is the default filename for tool settings.
	DefaultConfigFilename = "msix-gen-settings.yaml"

	// DefaultCertStorePath is the machine-wide store searched by default.
	DefaultCertStorePath = `Cert:\LocalMachine\*`

	// DefaultPadLimit is the AppInstaller padding size in bytes.
	// Kept well above observed descriptor sizes; raising it requires a
	// Delivery Optimization service restart on update hosts.
	DefaultPadLimit int64 = 4096

	// DefaultBackgroundColor is the visual-elements fallback color.
	DefaultBackgroundColor = "transparent"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errSettingsNotSet is returned when a nil settings value is provided.
	errSettingsNotSet = errors.New("settings are not set")
	// errPadLimitInvalid is returned when the padding limit is not positive.
	errPadLimitInvalid = errors.New("pad limit must be positive")
)

// Load reads settings from the provided path and validates essential fields.
// A missing file is not an error: defaults are returned instead, so the
// settings file stays optional.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Settings
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Settings to the provided path.
func Save(path string, cfg *Settings) error {
	if cfg == nil {
		return errSettingsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Default returns settings populated with package defaults.
func Default() *Settings {
	return &Settings{
		CertStorePath:          DefaultCertStorePath,
		PadLimit:               DefaultPadLimit,
		DefaultBackgroundColor: DefaultBackgroundColor,
	}
}

// Validate checks the provided settings and fills in defaults for empty fields.
func Validate(cfg *Settings) error {
	if cfg == nil {
		return errSettingsNotSet
	}

	if cfg.CertStorePath == "" {
		cfg.CertStorePath = DefaultCertStorePath
	}

	if cfg.PadLimit == 0 {
		cfg.PadLimit = DefaultPadLimit
	}

	if cfg.PadLimit < 0 {
		return errPadLimitInvalid
	}

	if cfg.DefaultBackgroundColor == "" {
		cfg.DefaultBackgroundColor = DefaultBackgroundColor
	}

	return nil
}
