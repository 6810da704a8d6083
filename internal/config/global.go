package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents the user's railsforge configuration file.
type GlobalConfig struct {
	// Defaults are option selections applied before --set overrides.
	Defaults    map[string]string `yaml:"defaults"`
	TemplateURL string            `yaml:"template_url"`
	TemplateRef string            `yaml:"template_ref"`
	CacheDir    string            `yaml:"cache_dir"`
	Git         GitConfig         `yaml:"git"`
	Hooks       HooksConfig       `yaml:"hooks"`
}

// GitConfig sets the identity used for checkpoint commits.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// HooksConfig lists shell commands run after a successful generation.
type HooksConfig struct {
	PostGenerate []string `yaml:"post_generate"`
}

// Default checkpoint author.
const (
	DefaultAuthorName  = "railsforge"
	DefaultAuthorEmail = "railsforge@localhost"
)

// DefaultConfigDir returns the default configuration directory, respecting XDG_CONFIG_HOME.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "railsforge")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "railsforge")
	}

	return filepath.Join(home, ".config", "railsforge")
}

// DefaultConfigPath returns the path of config.yaml inside DefaultConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LoadGlobalConfig reads the global config from the given path.
// If the file doesn't exist, it returns a zero-value config (no error).
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}

		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return &cfg, nil
}

// Author returns the configured commit identity, falling back to railsforge defaults.
func (c *GlobalConfig) Author() (name, email string) {
	name, email = c.Git.AuthorName, c.Git.AuthorEmail
	if name == "" {
		name = DefaultAuthorName
	}

	if email == "" {
		email = DefaultAuthorEmail
	}

	return name, email
}
