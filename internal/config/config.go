package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const appName = "tasktracker"

type Config struct {
	DataDir         string `yaml:"data_dir" env:"TASKTRACKER_DATA_DIR"`
	DBPath          string `yaml:"db_path" env:"TASKTRACKER_DB_PATH"`
	CredentialsPath string `yaml:"credentials_path" env:"TASKTRACKER_CREDENTIALS_PATH"`
	LogPath         string `yaml:"log_path" env:"TASKTRACKER_LOG_PATH"`
	LogLevel        string `yaml:"log_level" env:"TASKTRACKER_LOG_LEVEL" env-default:"info"`
	PasswordHashing string `yaml:"password_hashing" env:"TASKTRACKER_PASSWORD_HASHING" env-default:"plain"`
	ArchiveCleared  bool   `yaml:"archive_cleared" env:"TASKTRACKER_ARCHIVE_CLEARED" env-default:"false"`
	APIAddress      string `yaml:"api_address" env:"TASKTRACKER_API_ADDRESS" env-default:"127.0.0.1:8765"`
	SMTP            SMTP   `yaml:"smtp" env-prefix:"TASKTRACKER_SMTP_"`
}

// SMTP addresses the relay used for password reset notifications. An empty
// Host disables them.
type SMTP struct {
	Host     string        `yaml:"host" env:"HOST"`
	Port     int           `yaml:"port" env:"PORT" env-default:"587"`
	Username string        `yaml:"username" env:"USERNAME"`
	Password string        `yaml:"password" env:"PASSWORD"`
	From     string        `yaml:"from" env:"FROM" env-default:"tasktracker@localhost"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"10s"`
}

// DefaultPath returns $XDG_CONFIG_HOME/tasktracker/config.yaml
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName, "config.yaml"), nil
}

// Load reads the YAML file at path with environment overrides. A missing
// file falls back to the environment alone. An empty path means DefaultPath.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	if err := loadDotEnv(path); err != nil {
		return cfg, err
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("cannot read env: %w", err)
		}
	}

	if err := cfg.resolvePaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadDotEnv exports the variables of a .env file next to the config file.
// Variables already set in the environment win.
func loadDotEnv(configPath string) error {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot read %q: %w", envPath, err)
	}
	return nil
}

// resolvePaths fills empty file paths from the data directory
func (c *Config) resolvePaths() error {
	if c.DataDir == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to resolve data dir: %w", err)
			}
			dataDir = filepath.Join(home, ".local", "share")
		}
		c.DataDir = filepath.Join(dataDir, appName)
	}

	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "tasks.db")
	}
	if c.CredentialsPath == "" {
		c.CredentialsPath = filepath.Join(c.DataDir, "credentials.txt")
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(c.DataDir, appName+".log")
	}
	return nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.PasswordHashing) {
	case "plain", "bcrypt":
	default:
		return fmt.Errorf("invalid password_hashing %q, expected plain or bcrypt", c.PasswordHashing)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if c.SMTP.Timeout <= 0 {
		return fmt.Errorf("invalid smtp timeout %s, must be positive", c.SMTP.Timeout)
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d", c.SMTP.Port)
	}
	return nil
}
