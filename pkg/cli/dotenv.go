package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Fepozopo/imgprobe/pkg/probe"
)

// Environment keys read by LoadConfig.
const (
	EnvDebug      = "IMGPROBE_DEBUG"
	EnvJSON       = "IMGPROBE_JSON"
	EnvMaxBytes   = "IMGPROBE_MAX_BYTES"
	EnvUpdateRepo = "IMGPROBE_UPDATE_REPO"
)

const defaultUpdateRepo = "Fepozopo/imgprobe"

// Config holds settings taken from the environment. Command-line flags are
// applied on top of it in Run.
type Config struct {
	Debug      bool
	JSON       bool
	MaxBytes   int64
	UpdateRepo string
}

// LoadDotEnv loads the given .env files (".env" when none are given) into the
// process environment. Variables already set are not overridden and a missing
// file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads Config from the environment, loading the .env files first.
func LoadConfig(paths ...string) (Config, error) {
	if err := LoadDotEnv(paths...); err != nil {
		return Config{}, err
	}
	cfg := Config{
		Debug:      envBool(EnvDebug),
		JSON:       envBool(EnvJSON),
		MaxBytes:   probe.DefaultMaxBytes,
		UpdateRepo: defaultUpdateRepo,
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxBytes)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s=%q: expected a positive byte count", EnvMaxBytes, v)
		}
		cfg.MaxBytes = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvUpdateRepo)); v != "" {
		cfg.UpdateRepo = v
	}
	return cfg, nil
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
