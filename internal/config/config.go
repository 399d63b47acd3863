package config

import (
	"errors"
	"os"
	"strconv"
	"sync"
	"time"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	DBType string
	DBDSN  string

	// JSON-file source paths, used when STORAGE_BACKEND=file.
	FileCalendar    string
	FileActions     string
	FileCommitments string
	FileSurveys     string

	AuthToken      string
	AuthServiceURL string

	ReasonerURL     string
	ReasonerAPIKey  string
	ReasonerTimeout time.Duration

	ProfileCacheTTL time.Duration
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		cfg = &Config{
			Env:             getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			Port:            getEnv("PORT", "8088"),
			DBType:          getEnv("STORAGE_BACKEND", "file"),
			DBDSN:           getEnv("POSTGRES_DSN", ""),
			FileCalendar:    getEnv("CALENDAR_FILE", "data/calendar_events.json"),
			FileActions:     getEnv("ACTIONS_FILE", "data/daily_actions.json"),
			FileCommitments: getEnv("COMMITMENTS_FILE", "data/extracted_actions.json"),
			FileSurveys:     getEnv("SURVEYS_FILE", "data/surveys.json"),
			AuthToken:       getEnv("AUTH_TOKEN", "MOCK-TOKEN"),
			AuthServiceURL:  getEnv("AUTH_SERVICE_URL", ""),
			ReasonerURL:     getEnv("REASONER_URL", ""),
			ReasonerAPIKey:  getEnv("REASONER_API_KEY", ""),
			ReasonerTimeout: getEnvSeconds("REASONER_TIMEOUT_SECONDS", 10),
			ProfileCacheTTL: getEnvSeconds("PROFILE_CACHE_TTL_SECONDS", 1800),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && (c.FileCalendar == "" || c.FileActions == "" || c.FileCommitments == "" || c.FileSurveys == "") {
		return errors.New("File storage requires CALENDAR_FILE, ACTIONS_FILE, COMMITMENTS_FILE and SURVEYS_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		f, err := os.Open(".env")
		if err != nil {
			return err
		}
		defer f.Close()
		var lines []string
		buf := make([]byte, 4096)
		for {
			n, err := f.Read(buf)
			if n > 0 {
				lines = append(lines, string(buf[:n]))
			}
			if err != nil {
				break
			}
		}
		for _, line := range lines {
			for _, l := range splitLines(line) {
				if len(l) == 0 || l[0] == '#' {
					continue
				}
				kv := splitKV(l)
				if len(kv) == 2 {
					os.Setenv(kv[0], kv[1])
				}
			}
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' || c == '\r' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func splitKV(s string) []string {
	for i, c := range s {
		if c == '=' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
