package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/skirmish/internal/ai"
	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/db"
	"github.com/udisondev/skirmish/internal/game/battle"
	"github.com/udisondev/skirmish/internal/game/event"
	"github.com/udisondev/skirmish/internal/game/targeting"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// run simulates battles, or with the "import" argument copies the YAML
// catalog into PostgreSQL.
func run(ctx context.Context, args []string) error {
	cfgPath := config.Path()
	cfg, err := config.LoadBattle(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("battlesim starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"catalog", cfg.Catalog.Source)

	if len(args) > 0 && args[0] == "import" {
		return importCatalog(ctx, cfg)
	}

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	enc := cat.Encounter(cfg.Simulation.Encounter)
	if enc == nil {
		return fmt.Errorf("encounter %q not found in catalog", cfg.Simulation.Encounter)
	}

	return simulate(ctx, cfg, enc, logLevel == slog.LevelDebug)
}

func loadCatalog(ctx context.Context, cfg config.Battle) (*data.Catalog, error) {
	if cfg.Catalog.Source == config.SourceFile {
		cat, err := data.LoadCatalogFile(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		return cat, nil
	}

	database, err := openDatabase(ctx, cfg.Catalog.Database)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	cat, err := database.Catalog().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

func importCatalog(ctx context.Context, cfg config.Battle) error {
	doc, err := data.LoadDocumentFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("reading catalog for import: %w", err)
	}
	// Refuse to store a catalog that would not load back.
	if _, err := data.Build(doc); err != nil {
		return fmt.Errorf("validating catalog for import: %w", err)
	}

	database, err := openDatabase(ctx, cfg.Catalog.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Catalog().Save(ctx, doc); err != nil {
		return fmt.Errorf("importing catalog: %w", err)
	}
	slog.Info("catalog imported", "path", cfg.Catalog.Path)
	return nil
}

func openDatabase(ctx context.Context, dbCfg config.DatabaseConfig) (*db.DB, error) {
	database, err := db.New(ctx, dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected", "host", dbCfg.Host, "dbname", dbCfg.DBName)

	if err := db.RunMigrations(ctx, dbCfg.DSN()); err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")
	return database, nil
}

// simulate runs independent AI-vs-AI battles concurrently. Each battle
// owns all of its state; nothing is shared between goroutines except the
// read-only catalog.
func simulate(ctx context.Context, cfg config.Battle, enc *data.Encounter, traceEvents bool) error {
	sim := cfg.Simulation
	summaries := make([]battle.Summary, sim.Battles)
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sim.Concurrency)
	for i := range sim.Battles {
		g.Go(func() error {
			sum, err := runBattle(gctx, cfg, enc, i, traceEvents)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i, err)
			}
			summaries[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tally := make(map[battle.Outcome]int, 4)
	turns := 0
	for _, s := range summaries {
		tally[s.Outcome]++
		turns += s.Turns
	}
	slog.Info("simulation finished",
		"encounter", enc.ID,
		"battles", sim.Battles,
		"victories", tally[battle.OutcomeVictory],
		"defeats", tally[battle.OutcomeDefeat],
		"draws", tally[battle.OutcomeDraw],
		"avgTurns", float64(turns)/float64(sim.Battles),
		"elapsed", time.Since(started))
	return nil
}

func runBattle(ctx context.Context, cfg config.Battle, enc *data.Encounter, n int, traceEvents bool) (battle.Summary, error) {
	if cfg.Simulation.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Simulation.Timeout)
		defer cancel()
	}

	id := uuid.New()
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	stream := uint64(n)

	// Separate streams keep target picks of the sides independent of each
	// other and of the battle's own resolver.
	players := ai.NewController(ai.NewPolicy(
		targeting.NewResolver(rand.New(rand.NewPCG(seed, stream*3+1))),
		ai.WithConsumables(cfg.AI.ItemHPPercent, stackItems(enc.PartyItems)...)))
	enemies := ai.NewController(ai.NewPolicy(
		targeting.NewResolver(rand.New(rand.NewPCG(seed, stream*3+2))),
		ai.WithConsumables(cfg.AI.ItemHPPercent, stackItems(enc.EnemyItems)...)))

	opts := []battle.Option{
		battle.WithID(id),
		battle.WithRand(rand.New(rand.NewPCG(seed, stream*3))),
		battle.WithMaxTurns(cfg.MaxTurns),
		battle.WithMaxPromptAttempts(cfg.MaxPromptAttempts),
	}
	if traceEvents {
		opts = append(opts, battle.WithSink(event.SinkFunc(func(e event.Event) {
			slog.Debug("battle event", "battle", id, "event", e.String())
		})))
	}

	s, err := battle.FromEncounter(enc, players, enemies, opts...)
	if err != nil {
		return battle.Summary{}, err
	}
	return s.Run(ctx)
}

func stackItems(stacks []data.ItemStack) []*data.ItemDefinition {
	out := make([]*data.ItemDefinition, len(stacks))
	for i, st := range stacks {
		out[i] = st.Item
	}
	return out
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
