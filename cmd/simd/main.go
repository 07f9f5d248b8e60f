package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"swarmsearch.ai/internal/observerproto"
	"swarmsearch.ai/internal/persistence/indexdb"
	persistlog "swarmsearch.ai/internal/persistence/log"
	"swarmsearch.ai/internal/report"
	"swarmsearch.ai/internal/sim/swarm"
	"swarmsearch.ai/internal/sim/tuning"
	obsserver "swarmsearch.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8080", "http listen address for observers")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		seed       = flag.Int64("seed", 0, "seed override (0 keeps the tuning value)")
		steps      = flag.Int("steps", 0, "step budget override (0 keeps the tuning value)")
		headless   = flag.Bool("headless", false, "disable the observer endpoint")
		disableDB  = flag.Bool("disable_db", false, "disable the run index database")
		disableLog = flag.Bool("disable_log", false, "disable compressed tick logs")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[simd] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}

	cfg := swarm.FromTuning(tune)
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *steps != 0 {
		cfg.StepBudget = *steps
	}

	sim, err := swarm.New(cfg)
	if err != nil {
		report.Fatal("configuration: %v", err)
	}
	cfg = sim.Config() // with defaults applied

	runID := uuid.New().String()
	runDir := filepath.Join(*dataDir, "runs", runID)

	if !*disableLog {
		tl := persistlog.NewTickLogger(runDir)
		defer tl.Close()
		sim.SetTickLogger(tl)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var httpSrv *http.Server
	if !*headless {
		srv := obsserver.NewServer(sim, logger)
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/observer/bootstrap", srv.BootstrapHandler())
		mux.HandleFunc("/v1/observer/ws", srv.WSHandler())
		httpSrv = &http.Server{Addr: *addr, Handler: mux}
		go func() {
			logger.Printf("observer endpoint on http://%s (protocol %s)", *addr, observerproto.Version)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("observer endpoint: %v", err)
			}
		}()
	}

	logger.Printf("run %s: %dx%d grid, %d agents (byzantine=%d), %d targets, seed=%d, budget=%d",
		runID, cfg.GridW, cfg.GridH, cfg.AgentCount, cfg.ByzantineIndex, cfg.TargetCount, cfg.Seed, cfg.StepBudget)

	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("run: %v", err)
	}

	if httpSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	finalTick := sim.CurrentTick()
	if finalTick == 0 {
		logger.Printf("no ticks completed")
		return
	}
	snap := sim.ExportSnapshot(finalTick - 1)
	report.PrintRun(runID, snap, cfg)

	if !*disableDB {
		if err := recordRun(*dataDir, runID, cfg, snap); err != nil {
			logger.Printf("run index: %v", err)
		}
	}
}

func recordRun(dataDir, runID string, cfg swarm.Config, snap swarm.Snapshot) error {
	idx, err := indexdb.OpenSQLite(filepath.Join(dataDir, "index.db"))
	if err != nil {
		return err
	}
	defer idx.Close()

	run := indexdb.RunRow{
		RunID:          runID,
		Seed:           cfg.Seed,
		GridW:          cfg.GridW,
		GridH:          cfg.GridH,
		Agents:         cfg.AgentCount,
		Targets:        cfg.TargetCount,
		ByzantineIndex: cfg.ByzantineIndex,
		Ticks:          snap.Tick + 1,
		Located:        len(snap.Located),
		Ratio:          snap.Ratio,
		RatioValid:     snap.RatioValid,
	}
	finds := make([]indexdb.TargetFindRow, 0, len(snap.Located))
	for _, t := range snap.Targets {
		tick, ok := snap.Located[t.ID]
		if !ok {
			continue
		}
		finds = append(finds, indexdb.TargetFindRow{
			RunID:    runID,
			TargetID: t.ID,
			Tick:     tick,
			X:        t.Pos.X,
			Y:        t.Pos.Y,
		})
	}
	return idx.RecordRun(run, finds)
}
