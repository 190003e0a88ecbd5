// Command planetctl inspects and edits planet save slots directly in the
// configured storage backend.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/planet-core/internal/config"
	"github.com/talgya/planet-core/internal/logging"
	"github.com/talgya/planet-core/internal/persistence"
	"github.com/talgya/planet-core/internal/planet"
	"github.com/talgya/planet-core/internal/saves"
	"github.com/talgya/planet-core/internal/slots"
	"github.com/talgya/planet-core/internal/terrain"
)

const usage = `usage: planetctl [-config file] <command> [args]

commands:
  list                        classify every slot
  show <slot>                 print a slot's metadata and planet summary
  clear <slot>                remove a slot
  export <slot> <file>        write a slot's raw record to file ("-" for stdout)
  import <slot> <file>        validate a record from file ("-" for stdin) and store it
  generate <slot> [flags]     generate a planet into a slot
`

func main() {
	configPath := flag.String("config", os.Getenv("PLANET_CONFIG"), "path to YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// Keep the CLI quiet unless asked otherwise.
	if os.Getenv("PLANET_LOG_LEVEL") == "" {
		cfg.Log.Level = "warn"
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Log))

	kv, err := persistence.Open(cfg.Storage)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open storage:", err)
		os.Exit(1)
	}
	defer kv.Close()

	c := &cli{store: slots.New(kv), out: os.Stdout, in: os.Stdin, gen: terrain.FromConfig(cfg.Terrain), now: time.Now}
	if err := c.run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "planetctl:", err)
		os.Exit(1)
	}
}

type cli struct {
	store *slots.Store
	gen   terrain.GenConfig
	out   io.Writer
	in    io.Reader
	now   func() time.Time
}

func (c *cli) run(args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return c.list()
	case "show":
		return withSlot(rest, 1, func(slot int, _ []string) error { return c.show(slot) })
	case "clear":
		return withSlot(rest, 1, func(slot int, _ []string) error { return c.clear(slot) })
	case "export":
		return withSlot(rest, 2, func(slot int, a []string) error { return c.export(slot, a[0]) })
	case "import":
		return withSlot(rest, 2, func(slot int, a []string) error { return c.importFile(slot, a[0]) })
	case "generate":
		return withSlot(rest, 1, func(slot int, a []string) error { return c.generate(slot, a) })
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

// withSlot parses the leading slot argument and requires at least n args.
func withSlot(args []string, n int, fn func(slot int, rest []string) error) error {
	if len(args) < n {
		return fmt.Errorf("expected %d argument(s)\n%s", n, usage)
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("slot %q is not a number", args[0])
	}
	return fn(slot, args[1:])
}

func (c *cli) list() error {
	summaries, err := c.store.List()
	if err != nil {
		return err
	}
	latest, hasLatest, err := c.store.FindMostRecentValid()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tSTATUS\tLABEL\tUPDATED\tSIZE\t")
	for _, s := range summaries {
		size := "-"
		if raw, err := c.store.Export(s.SlotIndex()); err == nil {
			size = humanize.Bytes(uint64(len(raw)))
		}
		switch s := s.(type) {
		case slots.Available:
			marker := ""
			if hasLatest && latest.Slot == s.Slot {
				marker = " *"
			}
			fmt.Fprintf(tw, "%d%s\t%s\t%s\t%s\t%s\t\n", s.Slot, marker, s.Status(), s.Metadata.Label,
				humanize.RelTime(s.Metadata.UpdatedAt, c.now(), "ago", "from now"), size)
		case slots.Corrupted:
			fmt.Fprintf(tw, "%d\t%s\t%s\t-\t%s\t\n", s.Slot, s.Status(), s.Reason, size)
		case slots.Incompatible:
			fmt.Fprintf(tw, "%d\t%s\t%s\t-\t%s\t\n", s.Slot, s.Status(), s.Reason, size)
		case slots.Empty:
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\t\n", s.Slot, s.Status())
		}
	}
	return tw.Flush()
}

func (c *cli) show(slot int) error {
	rec, err := c.store.Load(slot)
	if err != nil {
		return err
	}
	m := rec.Metadata
	s := rec.PlanetState
	fmt.Fprintf(c.out, "slot:          %d\n", m.Slot)
	fmt.Fprintf(c.out, "label:         %s\n", m.Label)
	fmt.Fprintf(c.out, "created:       %s (%s)\n", saves.FormatTimestamp(m.CreatedAt), humanize.Time(m.CreatedAt))
	fmt.Fprintf(c.out, "updated:       %s (%s)\n", saves.FormatTimestamp(m.UpdatedAt), humanize.Time(m.UpdatedAt))
	fmt.Fprintf(c.out, "format:        v%d, planet state v%d\n", rec.FormatVersion, rec.PlanetStateVersion)
	fmt.Fprintf(c.out, "grid:          %dx%d\n", s.Geology.HeightField.Width, s.Geology.HeightField.Height)
	fmt.Fprintf(c.out, "ocean:         %.1f%%\n", s.Hydrology.OceanCoverage*100)
	fmt.Fprintf(c.out, "plates:        %d\n", len(s.Geology.Plates))
	fmt.Fprintf(c.out, "rivers:        %d\n", len(s.Hydrology.RiverNetwork.Rivers))
	fmt.Fprintf(c.out, "population:    %s in %d centers (%s)\n",
		humanize.Comma(totalPopulation(s)), len(s.Civilization.PopulationCenters), s.Civilization.TechLevel)
	return nil
}

func totalPopulation(s planet.PlanetState) int64 {
	var total int64
	for _, c := range s.Civilization.PopulationCenters {
		total += c.Population
	}
	return total
}

func (c *cli) clear(slot int) error {
	if err := c.store.Clear(slot); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "slot %d cleared\n", slot)
	return nil
}

func (c *cli) export(slot int, path string) error {
	raw, err := c.store.Export(slot)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = c.out.Write(raw)
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(c.out, "slot %d exported to %s (%s)\n", slot, path, humanize.Bytes(uint64(len(raw))))
	return nil
}

func (c *cli) importFile(slot int, path string) error {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(c.in)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	rec, err := c.store.Import(slot, raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "slot %d imported: %s\n", slot, rec.Metadata.Label)
	return nil
}

func (c *cli) generate(slot int, args []string) error {
	gen := c.gen
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(c.out)
	fs.Int64Var(&gen.Seed, "seed", gen.Seed, "noise seed")
	fs.IntVar(&gen.Width, "width", gen.Width, "grid columns")
	fs.IntVar(&gen.Height, "height", gen.Height, "grid rows")
	fs.IntVar(&gen.Octaves, "octaves", gen.Octaves, "fBm octaves")
	fs.IntVar(&gen.Settlements, "settlements", gen.Settlements, "population centers to seed")
	label := fs.String("label", "", "slot label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state, err := terrain.Generate(gen)
	if err != nil {
		return err
	}
	rec, err := c.store.Save(slot, state, slots.SaveOptions{Label: *label})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "slot %d: generated %dx%d planet (seed %d), %.0f%% ocean, %d rivers\n",
		rec.Metadata.Slot, gen.Width, gen.Height, gen.Seed,
		state.Hydrology.OceanCoverage*100, len(state.Hydrology.RiverNetwork.Rivers))
	return nil
}
