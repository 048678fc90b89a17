package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultOutputDir = "results"
	DefaultEps       = 0.023
	DefaultLOL       = 17.0
	DefaultRule      = "contiguous"
	DefaultLogLevel  = "info"
)

type Config struct {
	OutputDir string
	Eps       float64
	LOL       float64
	Rule      string
	LogLevel  string
	Sheet     string
}

// Load reads envFile (a missing default .env is fine, a missing explicit
// file is not) and then the TLC_* environment variables.
func Load(envFile string) (Config, error) {
	path := envFile
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg := Config{
		OutputDir: getenv("TLC_OUTPUT_DIR", DefaultOutputDir),
		Rule:      getenv("TLC_SCAN_RULE", DefaultRule),
		LogLevel:  getenv("TLC_LOG_LEVEL", DefaultLogLevel),
		Sheet:     os.Getenv("TLC_SHEET"),
	}
	var err error
	if cfg.Eps, err = getfloat("TLC_EPS", DefaultEps); err != nil {
		return Config{}, err
	}
	if cfg.LOL, err = getfloat("TLC_LOL", DefaultLOL); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getfloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
