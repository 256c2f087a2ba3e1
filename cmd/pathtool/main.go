// pathtool runs the path generators offline against a synthetic world:
// feed it a JSON file of control points, get a layout summary. Useful
// for eyeballing settings before pointing a client at a live server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/pathgen"
	"pathcraft.dev/internal/terrain"
)

func main() {
	var (
		pointsPath = flag.String("points", "", "JSON file with an array of control points [{x,y,z},...]")
		mode       = flag.String("mode", "road", "road | bridge | curve")
		surface    = flag.Int("surface", 64, "flat terrain surface height")
		ridgeAmp   = flag.Int("ridge", 0, "ridge amplitude for uneven synthetic terrain")
		seed       = flag.Int64("seed", 1337, "synthetic terrain seed")
	)
	var sets []string
	flag.Func("set", "setting override key=value (repeatable)", func(v string) error {
		sets = append(sets, v)
		return nil
	})
	flag.Parse()

	logger := log.New(os.Stderr, "[pathtool] ", 0)
	if *pointsPath == "" {
		logger.Fatal("missing -points")
	}
	raw, err := os.ReadFile(*pointsPath)
	if err != nil {
		logger.Fatalf("points: %v", err)
	}
	var points []geom.Vec3
	if err := json.Unmarshal(raw, &points); err != nil {
		logger.Fatalf("points: %v", err)
	}

	cat := blocks.Default()
	store := terrain.NewStore(terrain.WorldGen{
		Seed:           *seed,
		MinY:           0,
		MaxY:           255,
		BaseHeight:     *surface,
		RidgeAmplitude: *ridgeAmp,
		SeaLevel:       -1,
		Air:            cat.Index[blocks.Air],
		Water:          cat.Index["WATER"],
		Stone:          cat.Index["STONE"],
		Dirt:           cat.Index["DIRT"],
		Grass:          cat.Index["GRASS_BLOCK"],
	}, cat)

	m, ok := pathgen.ParseMode(*mode)
	if !ok {
		logger.Fatalf("unknown mode %q", *mode)
	}

	road := pathgen.DefaultRoadSettings()
	bridge := pathgen.DefaultBridgeSettings()
	curve := pathgen.DefaultCurveSettings()
	for _, kv := range sets {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			logger.Fatalf("bad -set %q, want key=value", kv)
		}
		var err error
		switch m {
		case pathgen.ModeRoad:
			err = road.Set(key, value)
		case pathgen.ModeBridge:
			err = bridge.Set(key, value)
		default:
			err = curve.Set(key, value)
		}
		if err != nil {
			logger.Fatalf("set: %v", err)
		}
	}

	var path geom.Path
	switch m {
	case pathgen.ModeRoad:
		if err := road.Validate(cat); err != nil {
			logger.Fatalf("settings: %v", err)
		}
		path = geom.Sample(points, road.Resolution, road.Algorithm)
	case pathgen.ModeBridge:
		if err := bridge.Validate(cat); err != nil {
			logger.Fatalf("settings: %v", err)
		}
		path = geom.Sample(points, bridge.Resolution, geom.AlgoCatmullRom)
	default:
		if err := curve.Validate(); err != nil {
			logger.Fatalf("settings: %v", err)
		}
		path = geom.Sample(points, curve.Resolution, curve.Algorithm)
	}

	fmt.Printf("points:  %d\n", len(points))
	fmt.Printf("samples: %d\n", len(path))
	fmt.Printf("length:  %.2f\n", path.Length())

	if m == pathgen.ModeCurve || len(path) == 0 {
		return
	}

	var changes blocks.ChangeSet
	switch m {
	case pathgen.ModeRoad:
		gen := &pathgen.RoadGenerator{Terrain: store, Catalog: cat}
		changes = gen.Generate(path, road)
	case pathgen.ModeBridge:
		gen := &pathgen.BridgeGenerator{Terrain: store, Catalog: cat}
		changes = gen.Generate(path, bridge)
	}

	fmt.Printf("blocks:  %d\n", len(changes))
	counts := map[string]int{}
	for _, c := range changes {
		counts[c.Block+"/"+c.Shape.String()]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-32s %d\n", k, counts[k])
	}
}
