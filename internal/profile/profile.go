package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the pet's brain and its surfaces.
type Profile struct {
	// Persona
	PetName       string
	FavoriteTopic string

	// Brain configuration
	RulesFile string // optional YAML file with extra fallback rules
	Seed      int64  // random seed for the fallback pool, 0 means time-based

	// Telegram channel
	TelegramBotToken string

	// Server configuration
	Mode      string
	Addr      string
	Port      int
	RateLimit float64 // requests per second per client, 0 disables limiting

	// Storage configuration
	Data    string
	Driver  string
	DSN     string
	Version string
}

const (
	DefaultPetName       = "小语"
	DefaultFavoriteTopic = "日常会话"
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsTelegramEnabled returns true if a bot token is configured.
func (p *Profile) IsTelegramEnabled() bool {
	return p.TelegramBotToken != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt64 returns environment variable value as int64 or default value.
func getEnvOrDefaultInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		slog.Warn("ignoring non-integer environment value", "key", key, "value", value)
	}
	return defaultValue
}

// FromEnv loads the settings that have no command line flag.
// Values already set on the profile win over the environment.
func (p *Profile) FromEnv() {
	if p.PetName == "" {
		p.PetName = getEnvOrDefault("LINGUAPET_PET_NAME", DefaultPetName)
	}
	if p.FavoriteTopic == "" {
		p.FavoriteTopic = getEnvOrDefault("LINGUAPET_FAVORITE_TOPIC", DefaultFavoriteTopic)
	}
	if p.RulesFile == "" {
		p.RulesFile = getEnvOrDefault("LINGUAPET_RULES_FILE", "")
	}
	if p.Seed == 0 {
		p.Seed = getEnvOrDefaultInt64("LINGUAPET_SEED", 0)
	}
	if p.TelegramBotToken == "" {
		p.TelegramBotToken = getEnvOrDefault("LINGUAPET_TELEGRAM_BOT_TOKEN", "")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.PetName == "" {
		p.PetName = DefaultPetName
	}
	if p.FavoriteTopic == "" {
		p.FavoriteTopic = DefaultFavoriteTopic
	}
	if p.RateLimit < 0 {
		return errors.Errorf("rate limit must not be negative, got %v", p.RateLimit)
	}

	// The in-memory driver keeps nothing on disk.
	if p.Driver == "memory" {
		return nil
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "linguapet")
		} else {
			p.Data = "/var/opt/linguapet"
		}
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("linguapet_%s.db", p.Mode))
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	return nil
}
