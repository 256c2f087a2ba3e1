package pathgen

import (
	"math"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/terrain"
)

// Slope thresholds for surface shaping. A step steeper than stairSlope
// gets a stair; a gentler step inside the slab band gets a slab.
const (
	stairSlope  = 0.4
	slabSlopeLo = 0.2
	slabSlopeHi = 0.6
)

// RoadGenerator turns a sampled curve into a walkable lane with
// slope-adaptive surface geometry and terrain cut/fill. It only reads
// the terrain; all writes go into the returned change set.
type RoadGenerator struct {
	Terrain terrain.Terrain
	Catalog *blocks.Catalog
}

// Generate walks the path once and emits the full surface layout.
// Settings are assumed pre-validated. An empty path yields an empty set.
func (g *RoadGenerator) Generate(path geom.Path, st RoadSettings) blocks.ChangeSet {
	out := blocks.ChangeSet{}
	if len(path) == 0 {
		return out
	}
	minY, maxY := g.Terrain.Bounds()
	half := st.Width / 2

	for i, p := range path {
		tangent := path.Tangent(i)
		perp := geom.Perpendicular(tangent)
		baseY := int(math.Round(p.Y))

		slope := 0.0
		if i > 0 {
			slope = p.Y - path[i-1].Y
		}

		for w := -half; w <= half; w++ {
			// Even widths have no centerline column.
			if st.Width%2 == 0 && w == 0 {
				continue
			}
			lane := p.Add(perp.Scale(float64(w))).Block()
			lane.Y = baseY

			// A single-lane road is all main material; borders and
			// the centerline only exist once there is room for them.
			material := st.Material
			if st.Width > 1 {
				switch {
				case w == -half || w == half:
					material = st.BorderMaterial
				case w == 0:
					material = st.CenterMaterial
				}
			}

			if lane.Y >= minY && lane.Y <= maxY {
				out.Put(lane, g.surfaceChange(material, slope, tangent, st))
			}

			if st.TerrainAdapt {
				g.fillBelow(out, lane, st, minY)
				g.clearAbove(out, lane, st, maxY)
			}
		}
	}
	return out
}

// surfaceChange picks the block form for one lane column from the local
// slope. Missing slab/stair variants fall back to the full block.
func (g *RoadGenerator) surfaceChange(material string, slope float64, tangent geom.Vec3, st RoadSettings) blocks.Change {
	abs := math.Abs(slope)
	half := blocks.HalfBottom
	if slope < 0 {
		half = blocks.HalfTop
	}
	if abs >= stairSlope && st.Stairs {
		if stair, ok := g.Catalog.StairVariant(material); ok {
			return blocks.Stair(stair, blocks.FacingFromDir(tangent), half)
		}
		return blocks.Full(material)
	}
	if abs >= slabSlopeLo && abs < slabSlopeHi && st.Slabs {
		if slab, ok := g.Catalog.SlabVariant(material); ok {
			return blocks.Slab(slab, half)
		}
	}
	return blocks.Full(material)
}

// fillBelow fills air and liquid under a lane column until the first
// solid block, stopping early so it never tunnels into terrain.
func (g *RoadGenerator) fillBelow(out blocks.ChangeSet, lane geom.BlockPos, st RoadSettings, minY int) {
	for d := 1; d <= st.FillBelow; d++ {
		y := lane.Y - d
		if y < minY {
			return
		}
		if g.Terrain.IsSolid(lane.X, y, lane.Z) {
			return
		}
		out.PutIfAbsent(geom.BlockPos{X: lane.X, Y: y, Z: lane.Z}, blocks.Full(st.FillMaterial))
	}
}

// clearAbove opens headroom over a lane column.
func (g *RoadGenerator) clearAbove(out blocks.ChangeSet, lane geom.BlockPos, st RoadSettings, maxY int) {
	for d := 1; d <= st.Clearance; d++ {
		y := lane.Y + d
		if y > maxY {
			return
		}
		if g.Terrain.BlockAt(lane.X, y, lane.Z) == blocks.Air {
			continue
		}
		out.PutIfAbsent(geom.BlockPos{X: lane.X, Y: y, Z: lane.Z}, blocks.Clear())
	}
}
