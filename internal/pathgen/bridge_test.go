package pathgen

import (
	"testing"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/terrain"
)

func flatBridgeGen(surface int) *BridgeGenerator {
	cat := blocks.Default()
	return &BridgeGenerator{Terrain: terrain.NewFlat(surface, cat), Catalog: cat}
}

// deckOnly strips the optional passes so tests can look at one feature.
func deckOnly(st BridgeSettings) BridgeSettings {
	st.Railings = false
	st.Ramps = false
	st.Supports = false
	return st
}

func countBlock(out blocks.ChangeSet, id string) int {
	n := 0
	for _, c := range out {
		if c.Block == id {
			n++
		}
	}
	return n
}

func TestBridge_EmptyPath(t *testing.T) {
	gen := flatBridgeGen(59)
	if got := gen.Generate(nil, DefaultBridgeSettings()); len(got) != 0 {
		t.Fatalf("empty path produced %d changes", len(got))
	}
}

func TestBridge_PillarCadence(t *testing.T) {
	gen := flatBridgeGen(59)
	st := deckOnly(DefaultBridgeSettings())
	st.Supports = true
	st.Width = 5
	st.SupportSpacing = 8
	st.SupportWidth = 1

	// 16 blocks of straight span at resolution 0.5: pillars land at the
	// start and then every 8 blocks of arc length.
	path := geom.Sample([]geom.Vec3{{X: 0.5, Y: 70, Z: 0.5}, {X: 16.5, Y: 70, Z: 0.5}}, 0.5, geom.AlgoCatmullRom)
	out := gen.Generate(path, st)

	for _, x := range []int{0, 8, 16} {
		// Columns run from below the deck to the grass at 59.
		for y := 60; y <= 69; y++ {
			c, ok := out[geom.BlockPos{X: x, Y: y, Z: 0}]
			if !ok || c.Block != st.SupportMaterial {
				t.Fatalf("pillar block at x=%d y=%d: %v ok=%v", x, y, c, ok)
			}
		}
		if _, ok := out[geom.BlockPos{X: x, Y: 59, Z: 0}]; ok {
			t.Fatalf("pillar at x=%d replaced ground", x)
		}
	}
	if got := countBlock(out, st.SupportMaterial); got != 30 {
		t.Fatalf("%d support blocks, want 30", got)
	}
}

func TestBridge_PillarDepthBounded(t *testing.T) {
	gen := flatBridgeGen(10)
	st := deckOnly(DefaultBridgeSettings())
	st.Supports = true
	st.Width = 1
	st.SupportWidth = 1
	st.SupportMaxDepth = 5

	out := gen.Generate(geom.Path{{X: 0.5, Y: 70, Z: 0.5}}, st)
	if got := countBlock(out, st.SupportMaterial); got != 5 {
		t.Fatalf("%d support blocks, want 5", got)
	}
	if _, ok := out[geom.BlockPos{X: 0, Y: 64, Z: 0}]; ok {
		t.Fatal("pillar descended past support_max_depth")
	}
}

func TestBridge_WideDeckTwinPillars(t *testing.T) {
	gen := flatBridgeGen(59)
	st := deckOnly(DefaultBridgeSettings())
	st.Supports = true
	st.Width = 7
	st.SupportWidth = 1

	out := gen.Generate(geom.Path{{X: 0.5, Y: 70, Z: 0.5}}, st)
	for _, z := range []int{-2, 2} {
		if c, ok := out[geom.BlockPos{X: 0, Y: 69, Z: z}]; !ok || c.Block != st.SupportMaterial {
			t.Fatalf("no inset pillar at z=%d: %v ok=%v", z, c, ok)
		}
	}
	if _, ok := out[geom.BlockPos{X: 0, Y: 69, Z: 0}]; ok {
		t.Fatal("wide deck grew a center pillar")
	}
}

func TestBridge_RailingsLineTheEdges(t *testing.T) {
	gen := flatBridgeGen(59)
	st := deckOnly(DefaultBridgeSettings())
	st.Railings = true
	st.Width = 5

	out := gen.Generate(geom.Path{{X: 0.5, Y: 70, Z: 0.5}}, st)
	for _, z := range []int{-2, 2} {
		c, ok := out[geom.BlockPos{X: 0, Y: 71, Z: z}]
		if !ok || c.Block != st.RailMaterial {
			t.Fatalf("edge rail at z=%d: %v ok=%v", z, c, ok)
		}
	}
	for _, z := range []int{-1, 0, 1} {
		if _, ok := out[geom.BlockPos{X: 0, Y: 71, Z: z}]; ok {
			t.Fatalf("rail over interior column z=%d", z)
		}
	}
}

func TestBridge_FirstWriterWins(t *testing.T) {
	gen := flatBridgeGen(10)
	st := deckOnly(DefaultBridgeSettings())
	st.Railings = true
	st.Width = 1
	st.HeightMode = HeightAuto

	// Second sample's deck lands exactly where the first sample's rail
	// already sits. The earlier write stays.
	path := geom.Path{{X: 0.5, Y: 70.2, Z: 0.5}, {X: 0.5, Y: 70.8, Z: 0.5}}
	out := gen.Generate(path, st)

	if c := out[geom.BlockPos{X: 0, Y: 70, Z: 0}]; c.Block != st.DeckMaterial {
		t.Fatalf("deck at 70: %v", c)
	}
	if c := out[geom.BlockPos{X: 0, Y: 71, Z: 0}]; c.Block != st.RailMaterial {
		t.Fatalf("block at 71: %v, want the earlier rail", c)
	}
	if c := out[geom.BlockPos{X: 0, Y: 72, Z: 0}]; c.Block != st.RailMaterial {
		t.Fatalf("block at 72: %v, want rail", c)
	}
}

func TestBridge_HeightModes(t *testing.T) {
	gen := flatBridgeGen(10)
	st := deckOnly(DefaultBridgeSettings())
	st.Width = 1

	pts := []geom.Vec3{{X: 0.5, Y: 70, Z: 0.5}, {X: 8.5, Y: 78, Z: 0.5}}
	path := geom.Sample(pts, 0.5, geom.AlgoCatmullRom)

	st.HeightMode = HeightFixed
	out := gen.Generate(path, st)
	for pos := range out {
		if pos.Y != 70 {
			t.Fatalf("fixed deck left elevation 70 at %v", pos)
		}
	}

	st.HeightMode = HeightAuto
	out = gen.Generate(path, st)
	if _, ok := out[geom.BlockPos{X: 8, Y: 78, Z: 0}]; !ok {
		t.Fatal("auto deck did not follow the curve to 78")
	}
}

func TestBridge_RampsDescendFromBothEnds(t *testing.T) {
	gen := flatBridgeGen(59)
	st := deckOnly(DefaultBridgeSettings())
	st.Ramps = true
	st.Width = 1

	path := geom.Sample([]geom.Vec3{{X: 0.5, Y: 70, Z: 0.5}, {X: 16.5, Y: 70, Z: 0.5}}, 0.5, geom.AlgoCatmullRom)
	out := gen.Generate(path, st)

	// Ten steps off each end, descending one block per block of run.
	for k := 1; k <= 10; k++ {
		start, ok := out[geom.BlockPos{X: -k, Y: 70 - k, Z: 0}]
		if !ok {
			t.Fatalf("no start ramp step at k=%d", k)
		}
		if start.Shape != blocks.ShapeStair || start.Facing != blocks.FacingWest {
			t.Fatalf("start step %d: %v, want west-facing stair", k, start)
		}
		end, ok := out[geom.BlockPos{X: 16 + k, Y: 70 - k, Z: 0}]
		if !ok {
			t.Fatalf("no end ramp step at k=%d", k)
		}
		if end.Shape != blocks.ShapeStair || end.Facing != blocks.FacingEast {
			t.Fatalf("end step %d: %v, want east-facing stair", k, end)
		}
		if start.Half != blocks.HalfBottom || end.Half != blocks.HalfBottom {
			t.Fatalf("ramp step %d not bottom-half", k)
		}
	}
	if _, ok := out[geom.BlockPos{X: -11, Y: 59, Z: 0}]; ok {
		t.Fatal("ramp step placed at ground level")
	}
}

func TestBridge_RampSkippedOverVoid(t *testing.T) {
	gen := flatBridgeGen(10)
	st := deckOnly(DefaultBridgeSettings())
	st.Ramps = true
	st.Width = 1

	// Ground is beyond the ramp scan range, so no staircase appears.
	path := geom.Sample([]geom.Vec3{{X: 0.5, Y: 70, Z: 0.5}, {X: 8.5, Y: 70, Z: 0.5}}, 0.5, geom.AlgoCatmullRom)
	out := gen.Generate(path, st)
	for pos, c := range out {
		if c.Shape == blocks.ShapeStair {
			t.Fatalf("unexpected ramp step at %v", pos)
		}
	}
}

func TestBridge_RampAtGroundLevelIsEmpty(t *testing.T) {
	gen := flatBridgeGen(59)
	st := deckOnly(DefaultBridgeSettings())
	st.Ramps = true
	st.Width = 1

	// Deck one block above grass: already walkable, no steps needed.
	path := geom.Sample([]geom.Vec3{{X: 0.5, Y: 60, Z: 0.5}, {X: 8.5, Y: 60, Z: 0.5}}, 0.5, geom.AlgoCatmullRom)
	out := gen.Generate(path, st)
	for pos, c := range out {
		if c.Shape == blocks.ShapeStair {
			t.Fatalf("unexpected ramp step at %v", pos)
		}
	}
}
