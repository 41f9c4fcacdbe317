// Package config loads padsync settings from config files and the
// environment.
//
// Precedence: environment variables (PADSYNC_*) over a project-local
// .padsync/config.yaml (found by walking up from the working directory)
// over ~/.config/padsync/config.yaml over built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings consumed at engine construction time.
type Config struct {
	// AccessToken is the bearer token for the pad host API.
	AccessToken string

	// APIURL is the REST endpoint of the pad host.
	APIURL string

	// ShareURL is the host serving canonical note URLs.
	ShareURL string

	// Default sharing permissions applied when a push creates a note.
	ReadPermission    string
	WritePermission   string
	CommentPermission string

	// Timeout bounds every API round trip.
	Timeout time.Duration

	// Margin is the conflict tolerance applied to sync comparisons.
	Margin time.Duration
}

const (
	defaultAPIURL   = "https://api.mdpad.io/v1"
	defaultShareURL = "https://mdpad.io"
)

// Load reads configuration, resolving the project-local config by walking
// up from startDir.
func Load(startDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Explicitly locate the config file: project .padsync/config.yaml wins
	// over the user-level one.
	if p := findProjectConfig(startDir); p != "" {
		v.SetConfigFile(p)
	} else if configDir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(configDir, "padsync", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			v.SetConfigFile(p)
		}
	}

	v.SetEnvPrefix("PADSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("access-token", "")
	v.SetDefault("api-url", defaultAPIURL)
	v.SetDefault("share-url", defaultShareURL)
	v.SetDefault("read-permission", "guest")
	v.SetDefault("write-permission", "owner")
	v.SetDefault("comment-permission", "everyone")
	v.SetDefault("timeout", "10s")
	v.SetDefault("margin", "5s")

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return &Config{
		AccessToken:       v.GetString("access-token"),
		APIURL:            v.GetString("api-url"),
		ShareURL:          v.GetString("share-url"),
		ReadPermission:    v.GetString("read-permission"),
		WritePermission:   v.GetString("write-permission"),
		CommentPermission: v.GetString("comment-permission"),
		Timeout:           v.GetDuration("timeout"),
		Margin:            v.GetDuration("margin"),
	}, nil
}

// findProjectConfig walks up from startDir to the nearest
// .padsync/config.yaml. Returns "" when none exists.
func findProjectConfig(startDir string) string {
	dir := startDir
	for {
		p := filepath.Join(dir, ".padsync", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
