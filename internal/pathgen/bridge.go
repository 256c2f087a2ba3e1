package pathgen

import (
	"math"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/terrain"
)

// rampScanDepth bounds the downward ground search for endpoint ramps.
const rampScanDepth = 40

// BridgeGenerator turns a sampled curve into an elevated deck with
// optional railings, ground-seeking support pillars and endpoint ramps.
// Deck blocks are written first and are never overwritten by the later
// railing, pillar or ramp passes.
type BridgeGenerator struct {
	Terrain terrain.Terrain
	Catalog *blocks.Catalog
}

// Generate walks the path once. Settings are assumed pre-validated; an
// empty path yields an empty set.
func (g *BridgeGenerator) Generate(path geom.Path, st BridgeSettings) blocks.ChangeSet {
	out := blocks.ChangeSet{}
	if len(path) == 0 {
		return out
	}
	minY, maxY := g.Terrain.Bounds()
	half := st.Width / 2

	fixedY := int(math.Round(path[0].Y))

	// Distance accumulated since the last pillar. Decremented by the
	// spacing rather than reset so rounding never drifts the cadence.
	traveled := 0.0

	for i, p := range path {
		tangent := path.Tangent(i)
		perp := geom.Perpendicular(tangent)

		deckY := fixedY
		if st.HeightMode == HeightAuto {
			deckY = int(math.Round(p.Y))
		}

		for w := -half; w <= half; w++ {
			if st.Width%2 == 0 && w == 0 {
				continue
			}
			lane := p.Add(perp.Scale(float64(w))).Block()
			lane.Y = deckY
			if lane.Y >= minY && lane.Y <= maxY {
				out.PutIfAbsent(lane, blocks.Full(st.DeckMaterial))
			}
			if st.Railings && (w == -half || w == half) && lane.Y+1 >= minY && lane.Y+1 <= maxY {
				rail := geom.BlockPos{X: lane.X, Y: lane.Y + 1, Z: lane.Z}
				out.PutIfAbsent(rail, blocks.Full(st.RailMaterial))
			}
		}

		if st.Supports {
			if i > 0 {
				traveled += path[i-1].DistanceTo(p)
			}
			if i == 0 || traveled >= float64(st.SupportSpacing) {
				if i > 0 {
					traveled -= float64(st.SupportSpacing)
				}
				g.placePillars(out, p, perp, deckY, half, st, minY)
			}
		}
	}

	if st.Ramps {
		g.placeRamp(out, path, 0, st, minY, maxY)
		g.placeRamp(out, path, len(path)-1, st, minY, maxY)
	}
	return out
}

// placePillars drops one or two pillars under a sample. Wide decks get
// two pillars inset one column from each edge; narrow decks one centered
// pillar.
func (g *BridgeGenerator) placePillars(out blocks.ChangeSet, p geom.Vec3, perp geom.Vec3, deckY, half int, st BridgeSettings, minY int) {
	var centers []geom.Vec3
	if st.Width >= 7 {
		inset := float64(half - 1)
		centers = []geom.Vec3{
			p.Add(perp.Scale(-inset)),
			p.Add(perp.Scale(inset)),
		}
	} else {
		centers = []geom.Vec3{p}
	}
	for _, c := range centers {
		g.pillarDisc(out, c.Block(), deckY, st, minY)
	}
}

// pillarDisc builds a horizontal disc of columns descending from one
// block below the deck until each column hits ground, bounded by the
// configured maximum depth.
func (g *BridgeGenerator) pillarDisc(out blocks.ChangeSet, center geom.BlockPos, deckY int, st BridgeSettings, minY int) {
	r := st.SupportWidth
	rr := (float64(r) - 0.5) * (float64(r) - 0.5)
	floor := deckY - st.SupportMaxDepth
	if floor < minY {
		floor = minY
	}
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			if float64(dx*dx+dz*dz) > rr {
				continue
			}
			x := center.X + dx
			z := center.Z + dz
			for y := deckY - 1; y >= floor; y-- {
				if g.isGround(x, y, z) {
					break
				}
				out.PutIfAbsent(geom.BlockPos{X: x, Y: y, Z: z}, blocks.Full(st.SupportMaterial))
			}
		}
	}
}

// isGround reports whether a block can bear a pillar: anything that is
// neither air nor liquid.
func (g *BridgeGenerator) isGround(x, y, z int) bool {
	id := g.Terrain.BlockAt(x, y, z)
	return id != blocks.Air && !g.Catalog.IsLiquid(id)
}

// placeRamp builds a staircase from one endpoint of the deck down to
// ground, extending away from the bridge. Skipped when the deck already
// sits at or below ground.
func (g *BridgeGenerator) placeRamp(out blocks.ChangeSet, path geom.Path, i int, st BridgeSettings, minY, maxY int) {
	p := path[i]
	deckY := int(math.Round(path[0].Y))
	if st.HeightMode == HeightAuto {
		deckY = int(math.Round(p.Y))
	}

	// Away from the bridge: opposite the tangent at the start, along it
	// at the end.
	dir := path.Tangent(i)
	if i == 0 {
		dir = dir.Scale(-1)
	}

	base := p.Block()
	groundY := minY - 1
	for d := 1; d <= rampScanDepth; d++ {
		y := deckY - d
		if y < minY {
			break
		}
		if g.isGround(base.X, y, base.Z) {
			groundY = y
			break
		}
	}
	if groundY < minY || deckY <= groundY {
		return
	}

	stair, hasStair := g.Catalog.StairVariant(st.DeckMaterial)
	facing := blocks.FacingFromDir(dir)

	// One descent step per block until the step above ground is placed.
	for k := 1; deckY-k > groundY; k++ {
		step := p.Add(dir.Scale(float64(k))).Block()
		step.Y = deckY - k
		if step.Y < minY || step.Y > maxY {
			break
		}
		if hasStair {
			out.PutIfAbsent(step, blocks.Stair(stair, facing, blocks.HalfBottom))
		} else {
			out.PutIfAbsent(step, blocks.Full(st.DeckMaterial))
		}
	}
}
