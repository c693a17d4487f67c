package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		LockTTL   string `yaml:"lock_ttl"`
		CacheTTL  string `yaml:"cache_ttl"`
		StatusTTL string `yaml:"status_ttl"`
	} `yaml:"redis"`
	Input struct {
		Source         string `yaml:"source"`
		UploadsDir     string `yaml:"uploads_dir"`
		DefaultPDF     string `yaml:"default_pdf"`
		PastedText     string `yaml:"pasted_text"`
		LastUploadFile string `yaml:"last_upload_file"`
		MaxTextChars   int    `yaml:"max_text_chars"`
	} `yaml:"input"`
	Quiz struct {
		QuestionType string `yaml:"question_type"`
		Seed         uint64 `yaml:"seed"`
	} `yaml:"quiz"`
	Output struct {
		WorkDir   string `yaml:"work_dir"`
		FinalName string `yaml:"final_name"`
		Format    string `yaml:"format"`
	} `yaml:"output"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`

	// Warnings collects ignored environment values for the caller to log.
	Warnings []string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Redis.LockTTL = "10m"
	cfg.Redis.CacheTTL = "1h"
	cfg.Redis.StatusTTL = "24h"
	cfg.Input.Source = "auto"
	cfg.Input.UploadsDir = "uploads"
	cfg.Input.DefaultPDF = "sample.pdf"
	cfg.Input.PastedText = "pasted_text.txt"
	cfg.Input.LastUploadFile = "last_upload.txt"
	cfg.Input.MaxTextChars = 20000
	cfg.Quiz.QuestionType = "all"
	cfg.Output.WorkDir = "."
	cfg.Output.FinalName = "Generated_Quiz.pdf"
	cfg.Output.Format = "pdf"
	cfg.Log.Mode = "development"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnv loads the YAML file, then a .env file if present, then applies
// environment overrides.
func LoadWithEnv(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	_ = godotenv.Load()
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	c.Input.Source = getEnv("INPUT_SOURCE", c.Input.Source)
	c.Quiz.QuestionType = getEnv("QUESTION_TYPE", c.Quiz.QuestionType)
	c.Input.MaxTextChars = c.envInt("MAX_TEXT_CHARS", c.Input.MaxTextChars)
	c.Quiz.Seed = uint64(c.envInt("QUIZ_SEED", int(c.Quiz.Seed)))
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Log.Mode = getEnv("LOG_MODE", c.Log.Mode)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Output.WorkDir = getEnv("WORK_DIR", c.Output.WorkDir)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (c *Config) envInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q not a non-negative int, using default %d", key, v, def))
		return def
	}
	return n
}
