// Package config reads the process configuration from the environment.
package config

import (
	"github.com/badgerinator/businessProcessAnalysis/internal/envstruct"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/joho/godotenv"
	"io/fs"
	"time"
)

type Config struct {
	// Addr is the address the JSON API listens on. Use port 0 to pick a free port.
	Addr string `env:"INTERVIEWKIT_ADDR" envDefault:"localhost:4000"`
	// SQLiteURL is the database file, or ":memory:" for a throwaway database.
	SQLiteURL string `env:"INTERVIEWKIT_SQLITE_URL" envDefault:"./interviewkit.sqlite3"`
	// Slot names the snapshot row holding the application state.
	Slot string `env:"INTERVIEWKIT_SLOT" envDefault:"interview-platform-storage"`
	// TickInterval is how often a running timer records the elapsed time.
	TickInterval time.Duration `env:"INTERVIEWKIT_TICK_INTERVAL" envDefault:"1s"`
	// Seed adds the bundled HR interview questionnaire on startup.
	Seed bool `env:"INTERVIEWKIT_SEED" envDefault:"true"`
	// PprofAddr enables the pprof listener when set, e.g. localhost:6060.
	PprofAddr string `env:"INTERVIEWKIT_PPROF_ADDR" envDefault:""`
	LogLevel  string `env:"INTERVIEWKIT_LOG_LEVEL" envDefault:"info"`
	// OptimizeInterval is how often the database runs PRAGMA optimize.
	OptimizeInterval time.Duration `env:"INTERVIEWKIT_OPTIMIZE_INTERVAL" envDefault:"1h"`
}

var ErrInvalid = errors.NewSentinel("invalid configuration")

// Load populates the configuration with lookupEnv, which has the signature of os.LookupEnv.
func Load(lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate config")
	}
	if cfg.TickInterval <= 0 {
		return Config{}, errors.Wrap(ErrInvalid, "tick interval must be positive")
	}
	if cfg.OptimizeInterval <= 0 {
		return Config{}, errors.Wrap(ErrInvalid, "optimize interval must be positive")
	}
	return cfg, nil
}

// LoadDotEnv reads the .env files into the process environment. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrap(err, "load env file")
		}
	}
	return nil
}
