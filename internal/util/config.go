package util

import (
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds runtime settings and flags.
type Config struct {
	SeedText      string `env:"LIFELINE_SEED"`
	DSN           string `env:"LIFELINE_DSN"            envDefault:"sqlite://lifeline.db"`
	SaveKey       string `env:"LIFELINE_SAVE_KEY"       envDefault:"life-line-game-storage"`
	CatalogPath   string `env:"LIFELINE_CATALOG"`
	Language      string `env:"LIFELINE_LANGUAGE"       envDefault:"en"`
	Difficulty    string `env:"LIFELINE_DIFFICULTY"     envDefault:"normal"`
	TextDensity   string `env:"LIFELINE_TEXT_DENSITY"   envDefault:"standard"` // concise|standard|rich
	AutosaveEvery int    `env:"LIFELINE_AUTOSAVE_EVERY" envDefault:"1"`
	Debug         bool   `env:"LIFELINE_DEBUG"`
	LogFile       string `env:"LIFELINE_LOG_FILE"       envDefault:"lifeline.log"`
	RulesVersion  string
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	return parse(env.Options{})
}

// LoadConfigFrom reads configuration from an explicit variable set instead of the process
// environment.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	cfg.TextDensity = strings.ToLower(strings.TrimSpace(cfg.TextDensity))
	switch cfg.TextDensity {
	case "concise", "standard", "rich":
	default:
		return Config{}, errors.Errorf("unknown text density %q", cfg.TextDensity)
	}
	if cfg.AutosaveEvery < 1 {
		cfg.AutosaveEvery = 1
	}
	return cfg, nil
}

// Backend names the persistence backend selected by the DSN scheme.
func (c Config) Backend() string {
	switch {
	case strings.HasPrefix(c.DSN, "postgres://"), strings.HasPrefix(c.DSN, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(c.DSN, "sqlite://"), strings.HasPrefix(c.DSN, "file:"):
		return "sqlite"
	case strings.HasPrefix(c.DSN, "memory://"):
		return "memory"
	case c.DSN == "":
		return ""
	default:
		return "unknown"
	}
}
