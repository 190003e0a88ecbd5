package main

import (
	"testing"

	"github.com/talgya/planet-core/internal/persistence"
	"github.com/talgya/planet-core/internal/slots"
	"github.com/talgya/planet-core/internal/terrain"
)

func smallGen() terrain.GenConfig {
	gen := terrain.DefaultGenConfig()
	gen.Width, gen.Height = 16, 8
	return gen
}

func TestSeedIfEmpty(t *testing.T) {
	store := slots.New(persistence.NewMemoryStore())
	if err := seedIfEmpty(store, smallGen()); err != nil {
		t.Fatalf("seedIfEmpty: %v", err)
	}
	rec, err := store.Load(0)
	if err != nil {
		t.Fatalf("slot 0 not seeded: %v", err)
	}
	if rec.Metadata.Label != "Generated (seed 42)" {
		t.Errorf("label = %q", rec.Metadata.Label)
	}

	// A second run leaves the existing save alone.
	before, _ := store.Export(0)
	if err := seedIfEmpty(store, smallGen()); err != nil {
		t.Fatal(err)
	}
	after, _ := store.Export(0)
	if string(before) != string(after) {
		t.Fatal("existing save was overwritten")
	}
}

func TestSeedIfEmpty_UnreadableSlot(t *testing.T) {
	kv := persistence.NewMemoryStore()
	kv.Set(slots.Key(0), []byte("garbage"))
	if err := seedIfEmpty(slots.New(kv), smallGen()); err == nil {
		t.Fatal("expected error when slot 0 is unreadable")
	}
	if got, _ := kv.Get(slots.Key(0)); string(got) != "garbage" {
		t.Fatal("unreadable slot was overwritten")
	}
}
