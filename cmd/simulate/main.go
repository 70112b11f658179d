// Package main provides the headless battle simulator: it auto-plays a run
// of wild encounters with a logging presenter and optionally persists the
// final snapshot.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/config"
	"github.com/cory-johannsen/monbattle/internal/game/battle"
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/data"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
	"github.com/cory-johannsen/monbattle/internal/observability"
	"github.com/cory-johannsen/monbattle/internal/scripting"
	"github.com/cory-johannsen/monbattle/internal/server"
	"github.com/cory-johannsen/monbattle/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and MONBATTLE_ env")
	starter := flag.String("starter", "emberkit", "species id of the starting party member")
	waves := flag.Int("waves", -1, "override battle.max_waves; -1 keeps the configured value")
	save := flag.Bool("save", false, "persist the final snapshot to PostgreSQL")
	resume := flag.String("resume", "", "session id of a stored snapshot to resume")
	flag.Parse()

	ctx := context.Background()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *waves >= 0 {
		cfg.Battle.MaxWaves = *waves
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewSource(cfg.Battle.Seed)
	roller := dice.NewLoggedRoller(src, logger)

	dataStart := time.Now()
	store, err := data.Load(cfg.Data.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.String("dir", cfg.Data.Dir), zap.Error(err))
	}
	entries, err := reward.LoadEntries(filepath.Join(cfg.Data.Dir, reward.RewardsFile))
	if err != nil {
		logger.Fatal("loading reward pool", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("species", len(store.SpeciesIDs())),
		zap.Int("rewards", len(entries)),
		zap.Duration("elapsed", time.Since(dataStart)),
	)

	poolOpts := []reward.PoolOption{reward.WithLogger(logger)}
	engineOpts := []battle.Option{
		battle.WithSource(src),
		battle.WithLogger(logger),
		battle.WithDecisions(battle.NewAutoPlayer(store)),
	}
	if cfg.Scripting.Dir != "" {
		mgr := scripting.NewManager(roller, logger)
		mgr.BindData(store)
		if err := mgr.Load(cfg.Scripting.Dir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		defer mgr.Close()
		poolOpts = append(poolOpts, reward.WithScripter(mgr))
		engineOpts = append(engineOpts, battle.WithEnemyAI(mgr))
	}
	pool := reward.NewPool(entries, poolOpts...)

	lead, err := store.Spawn(*starter, cfg.Battle.StartingLevel, battler.SidePlayer, roller)
	if err != nil {
		logger.Fatal("spawning starter", zap.String("species", *starter), zap.Error(err))
	}

	var repo *postgres.SnapshotRepository
	if *save || *resume != "" {
		dbStart := time.Now()
		db, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		if err := db.RequireSchema(ctx); err != nil {
			logger.Fatal("checking snapshot schema", zap.Error(err))
		}
		repo = db.Snapshots()
	}

	engineOpts = append(engineOpts, battle.WithPresenter(battle.LogPresenter{Logger: logger.Named("battle")}))
	engine := battle.NewEngine(cfg.Battle, store, pool, []*battler.Combatant{lead}, engineOpts...)
	if *resume != "" {
		snap, err := repo.Load(ctx, *resume)
		if err != nil {
			logger.Fatal("loading snapshot", zap.String("session", *resume), zap.Error(err))
		}
		if snap.Outcome != battle.OutcomeRunning {
			logger.Fatal("snapshot run already ended",
				zap.String("session", *resume),
				zap.Stringer("outcome", snap.Outcome),
			)
		}
		if err := engine.Restore(snap); err != nil {
			logger.Fatal("restoring snapshot", zap.Error(err))
		}
	}
	sessionLogger := observability.ForSession(logger, engine.SessionID())

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	finished := make(chan struct{})
	lc := server.NewLifecycle(logger)
	lc.Add("battle", &server.FuncService{
		StartFn: func() error {
			defer close(finished)
			engine.Start()
			err := engine.Run(runCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
		StopFn: cancelRun,
	})

	sessionLogger.Info("simulation starting",
		zap.String("starter", lead.Species),
		zap.Int("max_waves", cfg.Battle.MaxWaves),
		zap.Uint64("seed", cfg.Battle.Seed),
	)
	if err := lc.Run(ctx); err != nil {
		sessionLogger.Error("simulation failed", zap.Error(err))
	}
	<-finished

	wave := 0
	if b := engine.Battle(); b != nil {
		wave = b.Wave
	}
	sessionLogger.Info("simulation finished",
		zap.Stringer("outcome", engine.Outcome()),
		zap.Int("wave", wave),
		zap.Int("party", len(engine.Party())),
		zap.Duration("elapsed", time.Since(start)),
	)

	if repo == nil || !*save {
		return
	}
	snap, err := engine.Snapshot()
	if err != nil {
		sessionLogger.Warn("run stopped mid-turn; snapshot not saved", zap.Error(err))
		return
	}
	if err := repo.Save(ctx, snap); err != nil {
		sessionLogger.Error("saving snapshot", zap.Error(err))
		return
	}
	sessionLogger.Info("snapshot saved", zap.Int("wave", snap.Wave), zap.Int("turn", snap.Turn))
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadFromViper(config.NewViper())
	}
	return config.Load(path)
}
