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

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/builder"
	"pathcraft.dev/internal/persistence/indexdb"
	"pathcraft.dev/internal/persistence/joblog"
	"pathcraft.dev/internal/terrain"
	"pathcraft.dev/internal/transport/ws"
	"pathcraft.dev/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the job index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Printf("tuning: %v (using defaults)", err)
		tune = tuning.Default()
	}

	cat, err := blocks.Load(filepath.Join(*configDir, "blocks.json"))
	if err != nil {
		logger.Printf("blocks: %v (using built-in catalog)", err)
		cat = blocks.Default()
	}
	logger.Printf("block palette: %d entries digest=%s", len(cat.Palette), cat.PaletteDigest[:12])

	store := terrain.NewStore(terrain.WorldGen{
		Seed:           tune.World.Seed,
		MinY:           tune.World.MinY,
		MaxY:           tune.World.MaxY,
		BaseHeight:     tune.World.BaseHeight,
		RidgeAmplitude: tune.World.RidgeAmp,
		SeaLevel:       tune.World.SeaLevel,
		Air:            cat.Index[blocks.Air],
		Water:          cat.Index["WATER"],
		Stone:          cat.Index["STONE"],
		Dirt:           cat.Index["DIRT"],
		Grass:          cat.Index["GRASS_BLOCK"],
	}, cat)

	var index *indexdb.Index
	if !*disableDB {
		index, err = indexdb.Open(filepath.Join(*dataDir, *worldID, "index.db"))
		if err != nil {
			logger.Fatalf("indexdb: %v", err)
		}
		defer index.Close()
	}

	audit := joblog.NewWriter(filepath.Join(*dataDir, *worldID, "jobs"))
	defer audit.Close()

	svc := builder.NewService(*worldID, store, tune, index, audit, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Placer().Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", ws.NewServer(svc, logger).Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s (world %s)", *addr, *worldID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Printf("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
}
