// Package config loads catgallery settings from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends for the favorites blob.
const (
	StorageFile      = "file"
	StorageSurrealDB = "surrealdb"
)

// Config holds all configuration values.
type Config struct {
	// Catalog API
	APIURL    string
	APIKey    string
	PageSize  int
	Timeout   time.Duration
	DetailTTL time.Duration

	// Favorites storage
	Storage string
	DataDir string

	// SurrealDB connection (Storage == StorageSurrealDB)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// ConfigFile is the YAML file that was applied, empty if none.
	ConfigFile string
}

// fileConfig mirrors the YAML layout. Empty values leave defaults untouched.
type fileConfig struct {
	API struct {
		URL       string `yaml:"url"`
		Key       string `yaml:"key"`
		PageSize  int    `yaml:"page_size"`
		Timeout   string `yaml:"timeout"`
		DetailTTL string `yaml:"detail_ttl"`
	} `yaml:"api"`
	Storage struct {
		Backend   string `yaml:"backend"`
		DataDir   string `yaml:"data_dir"`
		SurrealDB struct {
			URL       string `yaml:"url"`
			Namespace string `yaml:"namespace"`
			Database  string `yaml:"database"`
			User      string `yaml:"user"`
			Pass      string `yaml:"pass"`
			AuthLevel string `yaml:"auth_level"`
		} `yaml:"surrealdb"`
	} `yaml:"storage"`
	Log struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:    "https://api.thecatapi.com/v1",
		PageSize:  9,
		Timeout:   15 * time.Second,
		DetailTTL: 5 * time.Minute,

		Storage: StorageFile,
		DataDir: defaultDataDir(),

		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "catgallery",
		SurrealDBDatabase:  "gallery",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		LogFile:  filepath.Join(os.TempDir(), "catgallery.log"),
		LogLevel: slog.LevelInfo,
	}
}

// Load reads configuration from a .env file (if present), the YAML config
// file (if present) and environment variables.
// A broken config file is reported and skipped; Load never fails.
func Load() Config {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	path := getEnv("CATGALLERY_CONFIG", defaultConfigPath())
	if path != "" {
		if err := cfg.ApplyFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("ignoring config file", "path", path, "error", err)
		}
	}

	cfg.ApplyEnv()
	return cfg
}

// ApplyFile overlays the YAML file at path onto cfg.
func (cfg *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.APIURL, fc.API.URL)
	setString(&cfg.APIKey, fc.API.Key)
	if fc.API.PageSize > 0 {
		cfg.PageSize = fc.API.PageSize
	}
	if err := setDuration(&cfg.Timeout, fc.API.Timeout); err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	if err := setDuration(&cfg.DetailTTL, fc.API.DetailTTL); err != nil {
		return fmt.Errorf("api.detail_ttl: %w", err)
	}

	setString(&cfg.Storage, strings.ToLower(fc.Storage.Backend))
	setString(&cfg.DataDir, fc.Storage.DataDir)
	setString(&cfg.SurrealDBURL, fc.Storage.SurrealDB.URL)
	setString(&cfg.SurrealDBNamespace, fc.Storage.SurrealDB.Namespace)
	setString(&cfg.SurrealDBDatabase, fc.Storage.SurrealDB.Database)
	setString(&cfg.SurrealDBUser, fc.Storage.SurrealDB.User)
	setString(&cfg.SurrealDBPass, fc.Storage.SurrealDB.Pass)
	setString(&cfg.SurrealDBAuthLevel, fc.Storage.SurrealDB.AuthLevel)

	setString(&cfg.LogFile, fc.Log.File)
	if fc.Log.Level != "" {
		cfg.LogLevel = parseLogLevel(fc.Log.Level)
	}

	cfg.ConfigFile = path
	return nil
}

// ApplyEnv overlays environment variables onto cfg.
func (cfg *Config) ApplyEnv() {
	cfg.APIURL = getEnv("CATGALLERY_API_URL", cfg.APIURL)
	cfg.APIKey = getEnv("CATGALLERY_API_KEY", cfg.APIKey)
	cfg.PageSize = getEnvInt("CATGALLERY_PAGE_SIZE", cfg.PageSize)
	cfg.Timeout = getEnvDuration("CATGALLERY_TIMEOUT", cfg.Timeout)
	cfg.DetailTTL = getEnvDuration("CATGALLERY_DETAIL_TTL", cfg.DetailTTL)

	cfg.Storage = strings.ToLower(getEnv("CATGALLERY_STORAGE", cfg.Storage))
	cfg.DataDir = getEnv("CATGALLERY_DATA_DIR", cfg.DataDir)

	cfg.SurrealDBURL = getEnv("SURREALDB_URL", cfg.SurrealDBURL)
	cfg.SurrealDBNamespace = getEnv("SURREALDB_NAMESPACE", cfg.SurrealDBNamespace)
	cfg.SurrealDBDatabase = getEnv("SURREALDB_DATABASE", cfg.SurrealDBDatabase)
	cfg.SurrealDBUser = getEnv("SURREALDB_USER", cfg.SurrealDBUser)
	cfg.SurrealDBPass = getEnv("SURREALDB_PASS", cfg.SurrealDBPass)
	cfg.SurrealDBAuthLevel = getEnv("SURREALDB_AUTH_LEVEL", cfg.SurrealDBAuthLevel)

	cfg.LogFile = getEnv("CATGALLERY_LOG_FILE", cfg.LogFile)
	if lvl := os.Getenv("CATGALLERY_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = parseLogLevel(lvl)
	}
}

// Validate reports settings that cannot work.
func (cfg Config) Validate() error {
	switch cfg.Storage {
	case StorageFile:
		if cfg.DataDir == "" {
			return fmt.Errorf("storage %q needs a data directory", cfg.Storage)
		}
	case StorageSurrealDB:
		if cfg.SurrealDBURL == "" {
			return fmt.Errorf("storage %q needs SURREALDB_URL", cfg.Storage)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want %q or %q)", cfg.Storage, StorageFile, StorageSurrealDB)
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
	}
	return nil
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "catgallery")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "catgallery")
	}
	return filepath.Join(home, ".local", "share", "catgallery")
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "catgallery", "config.yaml")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setDuration(dst *time.Duration, val string) error {
	if val == "" {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
