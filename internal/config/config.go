package config

import (
	"os"

	"github.com/joho/godotenv"

	applog "cardauction/internal/log"
)

type Config struct {
	Port              string
	StoreEngine       string
	DBDSN             string
	MirrorPath        string
	ContentPath       string
	TemplatesDir      string
	LogFile           string
	LogLevel          string
	AdminUser         string
	AdminPasswordHash string
}

// Load reads the environment, after merging a .env file when one exists.
// Variables already set in the process win over the file.
func Load() Config {
	envFile := ".env"
	_, statErr := os.Stat(envFile)
	if statErr == nil {
		if err := godotenv.Load(envFile); err != nil {
			applog.Warn(nil, "config.dotenv.fail", err, nil)
		}
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		StoreEngine:       getEnv("STORE_ENGINE", "sqlite"),
		DBDSN:             getEnv("DB_DSN", "cardauction.db"), // sqlite file in project root
		MirrorPath:        os.Getenv("MIRROR_PATH"),
		ContentPath:       os.Getenv("CONTENT_PATH"), // empty: bundled content
		TemplatesDir:      getEnv("TEMPLATES_DIR", "./web/templates"),
		LogFile:           getEnv("LOG_FILE", "./cardauction.log"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
	applog.Info(nil, "config.loaded", map[string]any{
		"port":          cfg.Port,
		"store_engine":  cfg.StoreEngine,
		"db_dsn":        cfg.DBDSN,
		"mirror_path":   cfg.MirrorPath,
		"content_path":  cfg.ContentPath,
		"templates_dir": cfg.TemplatesDir,
		"log_file":      cfg.LogFile,
		"admin_enabled": cfg.AdminEnabled(),
	})
	return cfg
}

// AdminEnabled is false until a bcrypt hash is configured.
func (c Config) AdminEnabled() bool { return c.AdminPasswordHash != "" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
