package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RepositoryConfig is one entry of the batch repository list.
type RepositoryConfig struct {
	Name    string `mapstructure:"name"`
	Path    string `mapstructure:"path"`
	Remote  string `mapstructure:"remote"`
	Branch  string `mapstructure:"branch"`
	Enabled *bool  `mapstructure:"enabled"`
}

// IsEnabled reports whether the entry takes part in a batch run; entries
// without an explicit value are enabled.
func (r RepositoryConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// DisplayName returns Name, or the base of Path when Name is empty.
func (r RepositoryConfig) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return filepath.Base(filepath.Clean(r.Path))
}

type Config struct {
	RepositoryPath string             `mapstructure:"repository_path"`
	Remote         string             `mapstructure:"remote"`
	RemoteName     string             `mapstructure:"remote_name"`
	Branch         string             `mapstructure:"branch"`
	SSHKeyPath     string             `mapstructure:"ssh_key_path"`
	LogDir         string             `mapstructure:"log_dir"`
	LogFile        string             `mapstructure:"log_file"`
	MaxLogBytes    int64              `mapstructure:"max_log_bytes"`
	// Zero timeouts fall back to the orchestrator and prober defaults.
	CommandTimeout time.Duration      `mapstructure:"command_timeout"`
	NetworkTimeout time.Duration      `mapstructure:"network_timeout"`
	ProbeTimeout   time.Duration      `mapstructure:"probe_timeout"`
	GithubToken    string             `mapstructure:"github_token"`
	AuthorName     string             `mapstructure:"author_name"`
	AuthorEmail    string             `mapstructure:"author_email"`
	PushPending    bool               `mapstructure:"push_pending"`
	Debug          bool               `mapstructure:"debug"`
	Repositories   []RepositoryConfig `mapstructure:"repositories"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		RepositoryPath: ".",
		RemoteName:     "origin",
		SSHKeyPath:     "~/.ssh/id_ed25519",
		LogDir:         "logs",
		MaxLogBytes:    10 * 1024 * 1024,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GithubToken != "" {
		if err := ValidateGitHubToken(c.GithubToken); err != nil {
			return fmt.Errorf("invalid github_token: %w", err)
		}
	}
	if c.RemoteName == "" {
		return fmt.Errorf("remote_name cannot be empty")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log_dir cannot be empty")
	}
	if c.MaxLogBytes <= 0 {
		return fmt.Errorf("max_log_bytes must be positive, got %d", c.MaxLogBytes)
	}
	for key, d := range map[string]time.Duration{
		"command_timeout": c.CommandTimeout,
		"network_timeout": c.NetworkTimeout,
		"probe_timeout":   c.ProbeTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s cannot be negative, got %s", key, d)
		}
	}
	for i, repo := range c.Repositories {
		if repo.Path == "" {
			return fmt.Errorf("repositories[%d]: path cannot be empty", i)
		}
		if repo.Remote == "" {
			return fmt.Errorf("repositories[%d] (%s): remote cannot be empty", i, repo.DisplayName())
		}
	}
	return nil
}

// EnabledRepositories returns the batch entries that are enabled.
func (c *Config) EnabledRepositories() []RepositoryConfig {
	enabled := make([]RepositoryConfig, 0, len(c.Repositories))
	for _, repo := range c.Repositories {
		if repo.IsEnabled() {
			enabled = append(enabled, repo)
		}
	}
	return enabled
}

var (
	classicPAT     = regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	personalToken  = regexp.MustCompile(`^ghp_[a-zA-Z0-9]{36}$`)
	fineGrainedPAT = regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken       = regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken     = regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
)

// ValidateGitHubToken validates GitHub token format (exported for reuse)
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	for _, pattern := range []*regexp.Regexp{classicPAT, personalToken, fineGrainedPAT, appToken, oauthToken} {
		if pattern.MatchString(token) {
			return nil
		}
	}
	return fmt.Errorf("invalid token format")
}

// LoadConfig reads configFile, or .autopush.yaml from the working directory
// or $HOME/.config/autopush when configFile is empty.
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".autopush")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/autopush")
	}
	// Configure environment variables
	viper.SetEnvPrefix("AUTOPUSH")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := viper.BindEnv("github_token", "GITHUB_TOKEN", "AUTOPUSH_GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind github_token env: %w", err)
	}
	if err := viper.BindEnv("ssh_key_path", "AUTOPUSH_SSH_KEY_PATH", "GIT_SSH_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind ssh_key_path env: %w", err)
	}
	defaults := DefaultConfig()
	viper.SetDefault("repository_path", defaults.RepositoryPath)
	viper.SetDefault("remote_name", defaults.RemoteName)
	viper.SetDefault("ssh_key_path", defaults.SSHKeyPath)
	viper.SetDefault("log_dir", defaults.LogDir)
	viper.SetDefault("max_log_bytes", defaults.MaxLogBytes)
	viper.SetDefault("command_timeout", defaults.CommandTimeout)
	viper.SetDefault("network_timeout", defaults.NetworkTimeout)
	viper.SetDefault("probe_timeout", defaults.ProbeTimeout)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
