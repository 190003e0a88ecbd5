// Command planetsim serves planet save slots and the planet generator over
// HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talgya/planet-core/internal/api"
	"github.com/talgya/planet-core/internal/config"
	"github.com/talgya/planet-core/internal/logging"
	"github.com/talgya/planet-core/internal/persistence"
	"github.com/talgya/planet-core/internal/saves"
	"github.com/talgya/planet-core/internal/slots"
	"github.com/talgya/planet-core/internal/terrain"
)

func main() {
	configPath := flag.String("config", os.Getenv("PLANET_CONFIG"), "path to YAML config file")
	seedEmpty := flag.Bool("seed-empty", true, "generate a planet into slot 0 when no slot holds a loadable save")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log)

	slog.Info("planet-core starting",
		"storage", cfg.Storage.Backend,
		"slots", saves.SlotCount,
		"save_format", saves.FormatVersion,
	)

	kv, err := persistence.Open(cfg.Storage)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	store := slots.New(kv)
	gen := terrain.FromConfig(cfg.Terrain)

	if *seedEmpty {
		if err := seedIfEmpty(store, gen); err != nil {
			slog.Error("initial generation failed", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.API.AdminKey == "" {
		slog.Warn("PLANET_ADMIN_KEY not set; slot writes over HTTP are disabled")
	}
	server := api.New(store, gen, cfg.API, slog.Default())
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.API.Addr)
	if err := server.ListenAndServe(ctx, cfg.API.Addr); err != nil {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}
	slog.Info("planet-core stopped")
}

// seedIfEmpty generates a planet into slot 0 when nothing loadable exists.
// Slots holding unreadable data are left untouched.
func seedIfEmpty(store *slots.Store, gen terrain.GenConfig) error {
	summaries, err := store.List()
	if err != nil {
		return err
	}
	for _, s := range summaries {
		if _, ok := s.(slots.Available); ok {
			slog.Info("found saved planet", "slot", s.SlotIndex())
			return nil
		}
	}
	if _, ok := summaries[0].(slots.Empty); !ok {
		return errors.New("slot 0 holds an unreadable save; clear it or disable -seed-empty")
	}

	slog.Info("no saved planet found, generating", "seed", gen.Seed, "width", gen.Width, "height", gen.Height)
	state, err := terrain.Generate(gen)
	if err != nil {
		return err
	}
	rec, err := store.Save(0, state, slots.SaveOptions{Label: fmt.Sprintf("Generated (seed %d)", gen.Seed)})
	if err != nil {
		return err
	}
	slog.Info("planet generated",
		"slot", rec.Metadata.Slot,
		"ocean", state.Hydrology.OceanCoverage,
		"plates", len(state.Geology.Plates),
		"rivers", len(state.Hydrology.RiverNetwork.Rivers),
	)
	return nil
}
