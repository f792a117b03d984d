package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	CredentialSourceEnv     = "env"
	CredentialSourceKeyring = "keyring"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BitbucketUsername         string        `mapstructure:"bitbucket_username"`
	BitbucketPassword         string        `mapstructure:"bitbucket_password" json:"-"`
	BitbucketCredentialSource string        `mapstructure:"bitbucket_credential_source"`
	BitbucketKeyringKey       string        `mapstructure:"bitbucket_keyring_key"`
	BitbucketAPIURL           string        `mapstructure:"bitbucket_api_url"`
	BitbucketPageLen          int           `mapstructure:"bitbucket_page_len"`
	BitbucketTimeoutSeconds   int64         `mapstructure:"bitbucket_timeout_seconds"`
	BitbucketHTTPVersion      string        `mapstructure:"bitbucket_http_version"`
	BitbucketTimeout          time.Duration `mapstructure:"-"`

	QueriesFile            string        `mapstructure:"queries_file"`
	PublishersFile         string        `mapstructure:"publishers_file"`
	HarvestIntervalSeconds int64         `mapstructure:"harvest_interval"`
	HarvestInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "bitbucket-harvester")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")

	// Empty defaults register the keys so AutomaticEnv picks them up on Unmarshal.
	v.SetDefault("bitbucket_username", "")
	v.SetDefault("bitbucket_password", "")
	v.SetDefault("bitbucket_credential_source", CredentialSourceEnv)
	v.SetDefault("bitbucket_keyring_key", "bitbucket")
	v.SetDefault("bitbucket_api_url", "https://bitbucket.org/api/2.0/")
	v.SetDefault("bitbucket_page_len", 25)
	v.SetDefault("bitbucket_timeout_seconds", 5)
	v.SetDefault("bitbucket_http_version", "1.0")

	v.SetDefault("queries_file", "./configs/queries.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("harvest_interval", 900) // seconds

	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/harvest.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
}

func (cfg *Config) normalize() error {
	cfg.BitbucketCredentialSource = strings.ToLower(strings.TrimSpace(cfg.BitbucketCredentialSource))
	switch cfg.BitbucketCredentialSource {
	case "":
		cfg.BitbucketCredentialSource = CredentialSourceEnv
	case CredentialSourceEnv, CredentialSourceKeyring:
	default:
		return fmt.Errorf("invalid bitbucket_credential_source %q (expected env or keyring)", cfg.BitbucketCredentialSource)
	}

	if cfg.BitbucketTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid bitbucket_timeout_seconds (must be positive seconds)")
	}
	cfg.BitbucketTimeout = time.Duration(cfg.BitbucketTimeoutSeconds) * time.Second

	if cfg.HarvestIntervalSeconds <= 0 {
		return fmt.Errorf("invalid harvest_interval (must be positive seconds)")
	}
	cfg.HarvestInterval = time.Duration(cfg.HarvestIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}

// LogFields returns the settings logged at startup. The password is reduced
// to a presence flag.
func (cfg *Config) LogFields() map[string]any {
	if cfg == nil {
		return nil
	}
	return map[string]any{
		"app_name":                  cfg.AppName,
		"app_env":                   cfg.Env,
		"log_level":                 cfg.LogLevel,
		"bitbucket_username":        cfg.BitbucketUsername,
		"bitbucket_password_set":    cfg.BitbucketPassword != "",
		"bitbucket_credential_from": cfg.BitbucketCredentialSource,
		"bitbucket_api_url":         cfg.BitbucketAPIURL,
		"bitbucket_page_len":        cfg.BitbucketPageLen,
		"bitbucket_timeout":         cfg.BitbucketTimeout.String(),
		"bitbucket_http_version":    cfg.BitbucketHTTPVersion,
		"queries_file":              cfg.QueriesFile,
		"publishers_file":           cfg.PublishersFile,
		"harvest_interval":          cfg.HarvestInterval.String(),
		"storage_type":              cfg.StorageType,
		"bbolt_path":                cfg.BBoltPath,
	}
}
