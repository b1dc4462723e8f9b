package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/go-authgate/dsc/session"
)

const (
	defaultDocspellURL = "http://localhost:7880"
	configFilename     = "config.toml"
)

// Config is the contents of the dsc configuration file.
type Config struct {
	DocspellURL    string `toml:"docspell_url"`
	DefaultAccount string `toml:"default_account"`
	PassEntry      string `toml:"pass_entry"`
	Password       string `toml:"password"`
	TokenFile      string `toml:"token_file"`
}

// settings is the effective configuration of one invocation.
type settings struct {
	serverURL string
	tokenFile string
	session   string
	config    Config
}

// defaultConfigFile returns <user config dir>/dsc/config.toml.
func defaultConfigFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("the config directory could not be found: %w", err)
	}
	return filepath.Join(dir, "dsc", configFilename), nil
}

// readConfig reads the config file at path. When path is empty, DSC_CONFIG
// and then the default location are used; a missing default file yields
// the zero Config.
func readConfig(path string) (Config, error) {
	var cfg Config

	explicit := true
	if path == "" {
		path = os.Getenv("DSC_CONFIG")
	}
	if path == "" {
		explicit = false
		p, err := defaultConfigFile()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("unable to read config file %s: %w", path, err)
	}
	return cfg, nil
}

// resolveSettings applies priority flag > env > config file > default.
func resolveSettings(flags globalFlags, cfg Config) (settings, error) {
	s := settings{
		serverURL: getConfig(flags.docspellURL, "DSC_DOCSPELL_URL", cfg.DocspellURL, defaultDocspellURL),
		tokenFile: getConfig(flags.tokenFile, "DSC_TOKEN_FILE", cfg.TokenFile, ""),
		session:   flags.session,
		config:    cfg,
	}

	if err := validateServerURL(s.serverURL); err != nil {
		return s, fmt.Errorf("invalid docspell url: %w", err)
	}

	if s.tokenFile == "" {
		path, err := session.DefaultTokenFile()
		if err != nil {
			return s, err
		}
		s.tokenFile = path
	}
	return s, nil
}

// getConfig returns value with priority: flag > env > config file > default
func getConfig(flagValue, envKey, fileValue, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if fileValue != "" {
		return getEnv(envKey, fileValue)
	}
	return getEnv(envKey, defaultValue)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// validateServerURL validates that the server URL is properly formatted
func validateServerURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("server URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got: %s", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("URL must include a host")
	}

	return nil
}
