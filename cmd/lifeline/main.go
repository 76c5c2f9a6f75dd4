package main

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DaanHessen/lifeline/internal/engine"
	"github.com/DaanHessen/lifeline/internal/session"
	"github.com/DaanHessen/lifeline/internal/store"
	"github.com/DaanHessen/lifeline/internal/ui"
	"github.com/DaanHessen/lifeline/internal/util"
)

var (
	version      = "0.1.0"
	rulesVersion = version
	seedAlphabet = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := util.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	seedFlag := flag.String("seed", cfg.SeedText, "Run seed string (optional; random if omitted)")
	dsn := flag.String("dsn", cfg.DSN, "Storage DSN: sqlite://path | postgres://... | memory://")
	density := flag.String("density", cfg.TextDensity, "Text density: concise|standard|rich")
	lang := flag.String("lang", cfg.Language, "Language: en|tr")
	name := flag.String("name", "Alex", "Character name for simulate")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lifeline [--seed s] [--dsn DSN] [--density=concise|standard|rich] [--lang=en|tr] | simulate [--name N] | migrate up|down | version\n")
	}
	flag.Parse()
	cfg.DSN = *dsn
	cfg.TextDensity = *density
	cfg.Language = *lang
	cfg.RulesVersion = rulesVersion

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Println("lifeline", version)
			return
		case "migrate":
			if len(args) < 2 {
				log.Fatal("migrate requires 'up' or 'down'")
			}
			runMigrate(cfg.DSN, args[1])
			return
		case "simulate":
		default:
			flag.Usage()
			os.Exit(2)
		}
	}

	seedText := strings.TrimSpace(*seedFlag)
	if seedText == "" {
		generated, err := generateSeed()
		if err != nil {
			log.Fatalf("failed to generate seed: %v", err)
		}
		seedText = generated
		fmt.Printf("New run seed: %s\n", seedText)
	}
	cfg.SeedText = seedText
	seed, err := engine.NewRunSeed(seedText)
	if err != nil {
		log.Fatalf("invalid seed: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	catalog := engine.MustDefaultCatalog()
	if cfg.CatalogPath != "" {
		catalog, err = engine.LoadCatalogFile(cfg.CatalogPath)
		if err != nil {
			log.Fatalf("failed to load catalog: %v", err)
		}
	}

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer backend.Close()

	sess := session.New(
		session.WithLogger(logger),
		session.WithStore(backend, cfg.SaveKey),
		session.WithCatalog(catalog),
		session.WithSource(seed.Stream("life")),
		session.WithAutosaveEvery(cfg.AutosaveEvery),
	)
	settings := session.DefaultSettings()
	settings.Language = engine.Language(cfg.Language)
	settings.Difficulty = engine.Difficulty(cfg.Difficulty)
	sess.UpdateSettings(settings)
	logger.Info("starting", zap.String("seed", seedText), zap.String("backend", cfg.Backend()), zap.Int("events", catalog.Len()))

	if len(args) > 0 && args[0] == "simulate" {
		rec, err := ui.Simulate(ctx, sess, backend, cfg, *name, seed.Stream("choices"), os.Stdout)
		if err != nil {
			log.Fatalf("simulation failed: %v", err)
		}
		fmt.Printf("%s died at %d (%s), score %d\n", rec.Name, rec.Age, rec.Reason, rec.Score)
		return
	}

	if err := ui.Run(ctx, sess, backend, cfg); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(dsn, action string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	migrator, err := store.NewMigrator(dsn)
	if err != nil {
		log.Fatal(err)
	}
	switch action {
	case "up":
		if err := migrator.Up(ctx); err != nil && err != store.ErrNoChange {
			log.Fatal(err)
		}
		fmt.Println("Migrations applied")
	case "down":
		if err := migrator.Down(ctx); err != nil && err != store.ErrNoChange {
			log.Fatal(err)
		}
		fmt.Println("Migrations rolled back")
	default:
		log.Fatal("unknown migrate action; use up|down")
	}
}

// newLogger writes to the log file so the TUI keeps the terminal.
func newLogger(cfg util.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{cfg.LogFile}
	zc.ErrorOutputPaths = []string{cfg.LogFile}
	return zc.Build()
}

func generateSeed() (string, error) {
	buf := make([]byte, 15) // 24 characters base32
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToLower(seedAlphabet.EncodeToString(buf)), nil
}
