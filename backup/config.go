package backup

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultLogRetentionDays = 30
	defaultConcurrency      = 1
	defaultSyncTimeout      = 10 * time.Minute

	minAllowedSyncTimeout = time.Second
)

// Config is the top level configuration of a backup run.
type Config struct {
	// GitHub API credentials
	GitHub GitHubConfig `yaml:"github"`

	// Backup holds local storage and run behaviour settings
	Backup StoreConfig `yaml:"backup"`

	// Organizations is the ordered list of GitHub organization names to
	// back up
	Organizations []string `yaml:"organizations"`
}

// GitHubConfig holds the remote API credentials. Either a personal access
// token or the full set of GitHub App attributes must be provided.
type GitHubConfig struct {
	// personal access token used for the API and for authenticated clone URLs
	Token string `yaml:"token"`

	// Github App Details
	// The application id or the client ID of the Github app
	AppID string `yaml:"app_id"`
	// The installation id of the app (in the organization).
	AppInstallationID string `yaml:"app_installation_id"`
	// path to the github app private key
	AppPrivateKeyPath string `yaml:"app_private_key_path"`
}

// StoreConfig holds local storage and run behaviour settings.
type StoreConfig struct {
	// Path is the absolute path to the root dir under which one dir per
	// organization is created
	Path string `yaml:"path"`

	// LogRetentionDays is how long rotated log files are kept, default 30
	LogRetentionDays int `yaml:"log_retention_days"`

	// HeartbeatURL if set receives a GET after every completed run
	HeartbeatURL string `yaml:"heartbeat_url"`

	// MetricsPushURL if set receives run metrics via the Prometheus
	// Pushgateway protocol after every completed run
	MetricsPushURL string `yaml:"metrics_push_url"`

	// Concurrency is the number of repositories synced in parallel,
	// default 1 (sequential)
	Concurrency int `yaml:"concurrency"`

	// SyncTimeout is the total time allowed for syncing one repository
	SyncTimeout time.Duration `yaml:"sync_timeout"`
}

// ValidateAndApplyDefaults verifies the config and fills in default values.
// It is safe to call more than once.
func (conf *Config) ValidateAndApplyDefaults() error {
	var errs []error

	if conf.GitHub.Token == "" &&
		conf.GitHub.AppID == "" &&
		conf.GitHub.AppInstallationID == "" &&
		conf.GitHub.AppPrivateKeyPath == "" {
		errs = append(errs, fmt.Errorf("github token or github app config is required"))
	}

	// if any of the github app config is set all should be set
	if conf.GitHub.AppID != "" ||
		conf.GitHub.AppInstallationID != "" ||
		conf.GitHub.AppPrivateKeyPath != "" {
		if conf.GitHub.AppID == "" ||
			conf.GitHub.AppInstallationID == "" ||
			conf.GitHub.AppPrivateKeyPath == "" {
			errs = append(errs, fmt.Errorf("all of the Github app attribute is required"))
		}
	}

	if conf.Backup.Path == "" {
		errs = append(errs, fmt.Errorf("backup path is required"))
	} else if !filepath.IsAbs(conf.Backup.Path) {
		errs = append(errs, fmt.Errorf("backup path '%s' must be absolute", conf.Backup.Path))
	}

	if len(conf.Organizations) == 0 {
		errs = append(errs, fmt.Errorf("at least one organization is required"))
	}

	for _, org := range conf.Organizations {
		if err := validateOrgName(org); err != nil {
			errs = append(errs, err)
		}
	}

	if conf.Backup.LogRetentionDays == 0 {
		conf.Backup.LogRetentionDays = defaultLogRetentionDays
	}
	if conf.Backup.LogRetentionDays < 0 {
		errs = append(errs, fmt.Errorf("log retention days cannot be negative"))
	}

	if conf.Backup.Concurrency == 0 {
		conf.Backup.Concurrency = defaultConcurrency
	}
	if conf.Backup.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency cannot be negative"))
	}

	if conf.Backup.SyncTimeout == 0 {
		conf.Backup.SyncTimeout = defaultSyncTimeout
	}
	if conf.Backup.SyncTimeout != 0 && conf.Backup.SyncTimeout < minAllowedSyncTimeout {
		errs = append(errs, fmt.Errorf("provided sync timeout is too short (%s), must be > %s",
			conf.Backup.SyncTimeout, minAllowedSyncTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", errs)
	}

	return nil
}

// validateOrgName rejects names which would escape the backup root when
// joined as a path segment.
func validateOrgName(org string) error {
	if org == "" {
		return fmt.Errorf("organization name cannot be empty")
	}
	if strings.ContainsAny(org, `/\`) || org == "." || org == ".." {
		return fmt.Errorf("invalid organization name '%s'", org)
	}
	return nil
}
