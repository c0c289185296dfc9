package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"tribemind/internal/catalog"
	"tribemind/internal/model"
	"tribemind/internal/storage"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "inspect":
		return runInspect(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	case "halloffame":
		return runHallOfFame(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: tribemindctl <init|run|inspect|fitness|lineage|halloffame> [flags]", msg)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func openStore(ctx context.Context, kind, dbPath string) (storage.Store, error) {
	store, err := storage.NewStore(kind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	return store, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tribemind.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config YAML path")
	runID := fs.String("run-id", "", "run id")
	seed := fs.Int64("seed", 0, "rng seed (required with -evolve)")
	evolve := fs.Bool("evolve", false, "enable role evolution")
	episodes := fs.Int("episodes", 0, "episode count")
	agents := fs.Int("agents", 0, "agents per episode")
	demandWindow := fs.Int("demand-window", 0, "priority window that must contain the demanded behavior")
	evolveEvery := fs.Int("evolve-every", 0, "episodes between evolution cycles")
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "", "sqlite database path")
	snapshotPath := fs.String("snapshot", "", "YAML snapshot path for load/checkpoint")
	checkpointEvery := fs.Int("checkpoint-every", 0, "episodes between checkpoints (0 means final only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadRunConfig(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "run-id":
			cfg.RunID = *runID
		case "seed":
			cfg.Seed = *seed
		case "evolve":
			cfg.Evolution = *evolve
		case "episodes":
			cfg.Episodes = *episodes
		case "agents":
			cfg.Agents = *agents
		case "demand-window":
			cfg.DemandWindow = *demandWindow
		case "evolve-every":
			cfg.EvolveEvery = *evolveEvery
		case "store":
			cfg.Store = *storeKind
		case "db-path":
			cfg.DBPath = *dbPath
		case "snapshot":
			cfg.SnapshotPath = *snapshotPath
		case "checkpoint-every":
			cfg.CheckpointEvery = *checkpointEvery
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	log := newLogger()
	store, err := openStore(ctx, cfg.Store, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	cat, err := catalog.New(catalog.Config{
		RunID:             cfg.RunID,
		EvolutionEnabled:  cfg.Evolution,
		Seed:              cfg.Seed,
		ScoreAlpha:        cfg.ScoreAlpha,
		PoolCapacity:      cfg.PoolCapacity,
		PromoteThreshold:  cfg.PromoteThreshold,
		PromoteStrict:     cfg.PromoteStrict,
		ExplorationRate:   cfg.ExplorationRate,
		SelectorKind:      cfg.Selector,
		TopK:              cfg.TopK,
		OffspringPerCycle: cfg.OffspringPerCycle,
	}, defaultBehaviors(), defaultBaselineRoles(), log)
	if err != nil {
		return err
	}

	// Persisted state only participates when evolution is on; baseline-only
	// runs neither load nor save.
	if cfg.Evolution {
		restoreFromSnapshot(cat, cfg.SnapshotPath, log)
	}

	if err := runEpisodes(ctx, cat, store, cfg, log); err != nil {
		return err
	}

	for _, point := range cat.History() {
		fmt.Printf("cycle=%d best=%.4f mean=%.4f pool=%d hof=%d\n",
			point.Cycle, point.BestScore, point.MeanScore, point.PoolSize, point.HallOfFameSize)
	}
	fmt.Printf("run complete run-id=%s episodes=%d roles=%d hall-of-fame=%d\n",
		cfg.RunID, cfg.Episodes, len(cat.ActiveRoles()), len(cat.HallOfFame()))
	return nil
}

func runInspect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tribemind.db", "sqlite database path")
	runID := fs.String("run-id", "default", "run id")
	roleID := fs.String("role", "", "print one role's full tier listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := latestCheckpoint(ctx, *storeKind, *dbPath, *runID)
	if err != nil {
		return err
	}

	if *roleID != "" {
		return printRoleDetail(snap, *roleID)
	}

	fmt.Printf("run=%s tick=%d behaviors=%d\n", snap.RunID, snap.Tick, len(snap.Behaviors))
	fmt.Printf("%-40s %-24s %6s %6s %8s\n", "ID", "NAME", "GAMES", "WINS", "SCORE")
	for _, rec := range snap.Roles {
		fmt.Printf("%-40s %-24s %6d %6d %8.4f\n", rec.ID, rec.Name, rec.Games, rec.Wins, rec.Score)
	}
	for _, rec := range snap.HallOfFame {
		fmt.Printf("%-40s %-24s %6d %6d %8.4f  [hall of fame]\n", rec.ID, rec.Name, rec.Games, rec.Wins, rec.Score)
	}
	return nil
}

func printRoleDetail(snap model.CatalogSnapshot, roleID string) error {
	names := make(map[string]string, len(snap.Behaviors))
	for _, b := range snap.Behaviors {
		names[b.ID] = b.Name
	}

	for _, rec := range append(snap.HallOfFame, snap.Roles...) {
		if rec.ID != roleID {
			continue
		}
		fmt.Printf("role=%s name=%q kind=%s origin=%s locked=%v games=%d wins=%d score=%.4f\n",
			rec.ID, rec.Name, rec.Kind, rec.Origin, rec.NameLocked, rec.Games, rec.Wins, rec.Score)
		for i, tier := range rec.Tiers {
			fmt.Printf("  tier %d (%s):\n", i, tier.Mode)
			for _, entry := range tier.Entries {
				name := names[entry.Behavior]
				if name == "" {
					name = entry.Behavior
				}
				if entry.Weight > 0 {
					fmt.Printf("    %-24s weight=%.2f\n", name, entry.Weight)
				} else {
					fmt.Printf("    %s\n", name)
				}
			}
		}
		return nil
	}
	return fmt.Errorf("role %s not found in checkpoint", roleID)
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tribemind.db", "sqlite database path")
	runID := fs.String("run-id", "default", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	points, ok, err := store.GetFitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no fitness history for run %s", *runID)
	}
	fmt.Printf("%6s %10s %10s %6s %5s\n", "CYCLE", "BEST", "MEAN", "POOL", "HOF")
	for _, p := range points {
		fmt.Printf("%6d %10.4f %10.4f %6d %5d\n",
			p.Cycle, p.BestScore, p.MeanScore, p.PoolSize, p.HallOfFameSize)
	}
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tribemind.db", "sqlite database path")
	runID := fs.String("run-id", "default", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	records, ok, err := store.GetLineage(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no lineage for run %s", *runID)
	}
	for _, rec := range records {
		fmt.Printf("cycle=%d role=%s parents=%s+%s ops=%v\n",
			rec.Cycle, rec.RoleID, rec.ParentA, rec.ParentB, rec.Operations)
	}
	return nil
}

func runHallOfFame(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("halloffame", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tribemind.db", "sqlite database path")
	runID := fs.String("run-id", "default", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := latestCheckpoint(ctx, *storeKind, *dbPath, *runID)
	if err != nil {
		return err
	}
	if len(snap.HallOfFame) == 0 {
		fmt.Println("hall of fame is empty")
		return nil
	}
	for _, rec := range snap.HallOfFame {
		fmt.Printf("%-40s %-24s score=%.4f games=%d\n", rec.ID, rec.Name, rec.Score, rec.Games)
	}
	return nil
}

func latestCheckpoint(ctx context.Context, storeKind, dbPath, runID string) (model.CatalogSnapshot, error) {
	store, err := openStore(ctx, storeKind, dbPath)
	if err != nil {
		return model.CatalogSnapshot{}, err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	snap, ok, err := store.LatestCheckpoint(ctx, runID)
	if err != nil {
		return model.CatalogSnapshot{}, err
	}
	if !ok {
		return model.CatalogSnapshot{}, fmt.Errorf("no checkpoint for run %s", runID)
	}
	return snap, nil
}
