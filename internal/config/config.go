package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	RepoPath       string   `mapstructure:"repo_path"`
	Remote         string   `mapstructure:"remote"`
	DaemonPort     int      `mapstructure:"daemon_port"`
	DBPath         string   `mapstructure:"db_path"`
	AuditLogPath   string   `mapstructure:"audit_log_path"`
	AuthorName     string   `mapstructure:"author_name"`
	AuthorEmail    string   `mapstructure:"author_email"`
	NetworkTimeout int      `mapstructure:"network_timeout_sec"`
	DebounceMs     int      `mapstructure:"debounce_ms"`
	MaxFileSize    int64    `mapstructure:"max_file_size"`
	IgnoreList     []string `mapstructure:"ignore_list"`
}

var Default = Config{
	RepoPath:       ".",
	Remote:         "origin",
	DaemonPort:     9101,
	DBPath:         "agentsync.db",
	AuditLogPath:   "agentsync.log.jsonl",
	AuthorName:     "agentsync",
	AuthorEmail:    "agentsync@localhost",
	NetworkTimeout: 30,
	DebounceMs:     2000,
	MaxFileSize:    1 << 20,
	IgnoreList:     []string{".git", ".DS_Store", "*.tmp", "*.swp"},
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".agentsync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetDefault("repo_path", Default.RepoPath)
	viper.SetDefault("remote", Default.Remote)
	viper.SetDefault("daemon_port", Default.DaemonPort)
	viper.SetDefault("db_path", filepath.Join(configDir, Default.DBPath))
	viper.SetDefault("audit_log_path", filepath.Join(configDir, Default.AuditLogPath))
	viper.SetDefault("author_name", Default.AuthorName)
	viper.SetDefault("author_email", Default.AuthorEmail)
	viper.SetDefault("network_timeout_sec", Default.NetworkTimeout)
	viper.SetDefault("debounce_ms", Default.DebounceMs)
	viper.SetDefault("max_file_size", Default.MaxFileSize)
	viper.SetDefault("ignore_list", Default.IgnoreList)

	viper.SetEnvPrefix("AGENTSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
