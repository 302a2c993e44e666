// Package config gathers the process-wide settings of license-hound. They
// come from flags, LICENSE_HOUND_* environment variables and a .env file,
// and are read once at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jakexks/license-hound/pkg/crate"
	"github.com/jakexks/license-hound/pkg/github"
)

const (
	KeyDebug          = "debug"
	KeyGitHubUsername = "github-username"
	KeyGitHubPassword = "github-password"
	KeyGitHubBranch   = "github-branch"
	KeyGitHubAPIURL   = "github-api-url"
	KeyGitHubRawURL   = "github-raw-url"
	KeyHTTPTimeout    = "http-timeout"
	KeyCacheSize      = "cache-size"
	KeyCargoHome      = "cargo-home"
	KeyLicensesDir    = "licenses-dir"
)

// EnvPrefix makes e.g. --github-username settable with
// LICENSE_HOUND_GITHUB_USERNAME.
const EnvPrefix = "license_hound"

// BindEnv lets every key of v be set from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv adds the variables of the given .env files (./.env by default)
// to the environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

type Config struct {
	Debug bool

	GitHub github.Config

	// CargoHome is where the package sources are looked for.
	CargoHome string

	// LicensesDir is an optional license corpus used to double check the
	// license files found in package trees.
	LicensesDir string
}

// Load reads the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	timeout := v.GetDuration(KeyHTTPTimeout)
	if timeout < 0 {
		return nil, fmt.Errorf("--%s must not be negative, got %s", KeyHTTPTimeout, timeout)
	}

	cfg := &Config{
		Debug: v.GetBool(KeyDebug),
		GitHub: github.Config{
			APIBase:   v.GetString(KeyGitHubAPIURL),
			RawBase:   v.GetString(KeyGitHubRawURL),
			Branch:    v.GetString(KeyGitHubBranch),
			Timeout:   timeout,
			CacheSize: v.GetInt(KeyCacheSize),
		},
		CargoHome:   v.GetString(KeyCargoHome),
		LicensesDir: v.GetString(KeyLicensesDir),
	}
	if username := v.GetString(KeyGitHubUsername); username != "" {
		cfg.GitHub.Credentials = &github.Credentials{
			Username: username,
			Password: v.GetString(KeyGitHubPassword),
		}
	}
	if cfg.CargoHome == "" {
		cfg.CargoHome = crate.DefaultCargoHome()
	}
	return cfg, nil
}

// NewLogger returns a logger writing to stderr, stdout being reserved for
// the report.
func NewLogger(debug bool) (*zap.SugaredLogger, error) {
	var opts []zap.Option
	if !debug {
		opts = append(opts, zap.IncreaseLevel(zap.InfoLevel))
	}
	logger, err := zap.NewDevelopment(opts...)
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
