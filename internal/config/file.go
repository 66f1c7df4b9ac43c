package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileValues mirrors the optional YAML overlay. Zero fields fall through to defaults.
type FileValues struct {
	AppName    string `yaml:"app_name"`
	Env        string `yaml:"env"`
	LogLevel   string `yaml:"log_level"`
	DataFolder string `yaml:"data_folder"`

	API struct {
		LocalURL       string        `yaml:"local_url"`
		LiveURL        string        `yaml:"live_url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		UploadTimeout  time.Duration `yaml:"upload_timeout"`
	} `yaml:"api"`

	Cookies struct {
		File          string `yaml:"file"`
		SessionName   string `yaml:"session_name"`
		AdminName     string `yaml:"admin_name"`
		Domain        string `yaml:"domain"`
		Secure        *bool  `yaml:"secure"`
		SameSite      string `yaml:"same_site"`
		ExpiryMinutes int    `yaml:"expiry_minutes"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPrefix   string `yaml:"redis_prefix"`
	} `yaml:"cookies"`

	Identity struct {
		Issuer       string `yaml:"issuer"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURL  string `yaml:"redirect_url"`
	} `yaml:"identity"`
}

// LoadFile reads the YAML overlay. An empty path or a missing file yields empty
// values without error; a file that exists but cannot be parsed is an error.
func LoadFile(path string) (*FileValues, error) {
	values := &FileValues{}
	if path == "" {
		return values, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return values, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, values); err != nil {
		return &FileValues{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return values, nil
}
