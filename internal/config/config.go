package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/maximumstock/benchlinks/internal/logging"
)

// ErrInvalidRepository is returned when a repository string is not in owner/name form.
var ErrInvalidRepository = errors.New("repository must be in owner/name form")

// Config represents the benchlinks configuration.
type Config struct {
	Owner           string `toml:"owner"`
	Repo            string `toml:"repo"`
	ReferenceBranch string `toml:"referenceBranch"`
	Host            string `toml:"host"`
	APIURL          string `toml:"apiUrl,omitempty"`
	Format          string `toml:"format"`
	LogLevel        string `toml:"logLevel"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Owner:           "maximumstock",
		Repo:            "dns-thingy",
		ReferenceBranch: "master",
		Host:            "github.com",
		Format:          "text",
		LogLevel:        "info",
		TimeoutSeconds:  60,
	}
}

// Timeout returns the per-invocation deadline for GitHub API calls.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Repository returns the owner/name pair.
func (c Config) Repository() string {
	return c.Owner + "/" + c.Repo
}

// Validate checks that the effective configuration can drive an annotation run.
func (c Config) Validate() error {
	if c.Owner == "" || c.Repo == "" {
		return fmt.Errorf("%w: got %q", ErrInvalidRepository, c.Repository())
	}
	if c.ReferenceBranch == "" {
		return fmt.Errorf("referenceBranch must not be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported format %q (want text or json)", c.Format)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// SplitRepository parses "owner/name" into its parts.
func SplitRepository(s string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidRepository, s)
	}
	return parts[0], parts[1], nil
}

// ConfigDir returns the platform-appropriate config directory for benchlinks.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "benchlinks"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "benchlinks"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "benchlinks"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "benchlinks"), nil
	default:
		return filepath.Join(home, ".config", "benchlinks"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadFileWithDefaults returns the config file layered over defaults, ignoring env and flags.
func LoadFileWithDefaults() (Config, error) {
	cfg := Default()
	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Owner != "" {
		dst.Owner = src.Owner
	}
	if src.Repo != "" {
		dst.Repo = src.Repo
	}
	if src.ReferenceBranch != "" {
		dst.ReferenceBranch = src.ReferenceBranch
	}
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.APIURL != "" {
		dst.APIURL = src.APIURL
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("BENCHLINKS_OWNER"); v != "" {
		cfg.Owner = v
	}
	if v := os.Getenv("BENCHLINKS_REPO"); v != "" {
		cfg.Repo = v
	}
	if v := os.Getenv("BENCHLINKS_REFERENCE_BRANCH"); v != "" {
		cfg.ReferenceBranch = v
	}
	if v := os.Getenv("BENCHLINKS_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("BENCHLINKS_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("BENCHLINKS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BENCHLINKS_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BENCHLINKS_TIMEOUT must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	if overrides == nil {
		return nil
	}
	// repository is applied first so explicit owner/repo flags win over it
	if v, ok := overrides["repository"]; ok && v != "" {
		owner, repo, err := SplitRepository(v)
		if err != nil {
			return err
		}
		cfg.Owner, cfg.Repo = owner, repo
	}
	for _, key := range []string{"owner", "repo", "referenceBranch", "host", "apiUrl", "format", "logLevel", "timeoutSeconds"} {
		v, ok := overrides[key]
		if !ok || v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "owner":
		cfg.Owner = value
	case "repo":
		cfg.Repo = value
	case "repository":
		owner, repo, err := SplitRepository(value)
		if err != nil {
			return err
		}
		cfg.Owner, cfg.Repo = owner, repo
	case "referenceBranch":
		cfg.ReferenceBranch = value
	case "host":
		cfg.Host = value
	case "apiUrl":
		cfg.APIURL = value
	case "format":
		cfg.Format = value
	case "logLevel":
		cfg.LogLevel = value
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
