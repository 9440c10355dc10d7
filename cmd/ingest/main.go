package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/internal/config"
	"github.com/okian/scoutval/internal/ingest"
	"github.com/okian/scoutval/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout        = 10 * time.Minute
	defaultPlayersPerTeam = 22
	defaultUsers          = 50
)

func main() {
	var (
		file    = flag.String("file", "", "JSON dataset with teams, players and favorites")
		workers = flag.Int("workers", 0, "concurrent player writers (default: number of CPUs)")
		dryRun  = flag.Bool("dry-run", false, "decode and validate only")
		timeout = flag.Duration("timeout", defaultTimeout, "overall run timeout")

		genTeams = flag.Int("generate", 0, "generate a synthetic dataset with this many teams instead of reading -file")
		perTeam  = flag.Int("players-per-team", defaultPlayersPerTeam, "players per generated team")
		users    = flag.Int("users", defaultUsers, "users with generated favorites")
		seed     = flag.Uint64("seed", 1, "generator seed")
		out      = flag.String("out", "", "write the generated dataset here instead of loading it")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get().Named("ingest")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var ds *ingest.Dataset
	if *genTeams > 0 {
		g := ingest.Generate(ingest.GenerateConfig{Teams: *genTeams, PlayersPerTeam: *perTeam, Users: *users, Seed: *seed})
		if *out != "" {
			if err := writeDataset(*out, g); err != nil {
				log.Error(ctx, "write dataset", logger.Error(err))
				os.Exit(1)
			}
			log.Info(ctx, "dataset written", logger.String("file", *out), logger.Int("players", len(g.Players)))
			return
		}
		ds = &g
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	stores, err := service.OpenStores(ctx, cfg)
	if err != nil {
		log.Error(ctx, "open stores", logger.Error(err))
		os.Exit(1)
	}

	if ds != nil {
		_, err = ingest.Load(ctx, *ds, stores.Records, *workers)
	} else {
		_, err = ingest.Run(ctx, &ingest.Config{File: *file, Workers: *workers, DryRun: *dryRun}, stores.Records)
	}
	_ = stores.Close()
	if err != nil {
		log.Error(ctx, "ingest failed", logger.Error(err))
		os.Exit(1)
	}
}

func writeDataset(path string, ds ingest.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ingest.Encode(f, ds); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
