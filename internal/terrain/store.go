package terrain

import (
	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/mathx"
)

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is a 16x16 stack of block columns between the store's vertical
// bounds.
type Chunk struct {
	CX, CZ int
	Blocks []uint16 // len = 16*16*height, x fastest, then z, then y

	dirty bool
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*16 + y*16*16
}

// WorldGen describes the deterministic terrain a fresh store produces.
type WorldGen struct {
	Seed int64
	MinY int
	MaxY int

	// Surface shaping.
	BaseHeight     int
	RidgeAmplitude int // 0 yields flat terrain
	RidgePeriod    int
	SeaLevel       int // columns below this are flooded; MinY-1 disables

	// Palette ids for the generated layers.
	Air   uint16
	Water uint16
	Stone uint16
	Dirt  uint16
	Grass uint16
}

// Store is a lazily generated, chunked block column store. It is the
// reference terrain behind the server and tests; access is expected from
// a single goroutine.
type Store struct {
	gen    WorldGen
	cat    *blocks.Catalog
	chunks map[ChunkKey]*Chunk
}

func NewStore(gen WorldGen, cat *blocks.Catalog) *Store {
	if gen.MaxY <= gen.MinY {
		gen.MinY, gen.MaxY = 0, 255
	}
	return &Store{
		gen:    gen,
		cat:    cat,
		chunks: map[ChunkKey]*Chunk{},
	}
}

// NewFlat returns a store whose surface sits at the given height
// everywhere, handy for fixtures and the offline tool.
func NewFlat(surface int, cat *blocks.Catalog) *Store {
	return NewStore(WorldGen{
		MinY:       0,
		MaxY:       255,
		BaseHeight: surface,
		SeaLevel:   -1,
		Air:        cat.Index[blocks.Air],
		Stone:      cat.Index["STONE"],
		Dirt:       cat.Index["DIRT"],
		Grass:      cat.Index["GRASS_BLOCK"],
	}, cat)
}

func (s *Store) height() int { return s.gen.MaxY - s.gen.MinY + 1 }

func (s *Store) Bounds() (minY, maxY int) { return s.gen.MinY, s.gen.MaxY }

func (s *Store) Catalog() *blocks.Catalog { return s.cat }

func (s *Store) getOrGenChunk(cx, cz int) *Chunk {
	key := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := s.chunks[key]; ok {
		return ch
	}
	ch := &Chunk{
		CX:     cx,
		CZ:     cz,
		Blocks: make([]uint16, 16*16*s.height()),
	}
	s.generateChunk(ch)
	s.chunks[key] = ch
	return ch
}

// surfaceHeight is the generated ground Y for a column, before any edits.
func (s *Store) surfaceHeight(wx, wz int) int {
	h := s.gen.BaseHeight
	if s.gen.RidgeAmplitude > 0 {
		period := s.gen.RidgePeriod
		if period <= 0 {
			period = 32
		}
		rx := mathx.FloorDiv(wx, period)
		rz := mathx.FloorDiv(wz, period)
		h += int(mathx.Hash2(s.gen.Seed, rx, rz) % uint64(s.gen.RidgeAmplitude+1))
	}
	return mathx.ClampInt(h, s.gen.MinY, s.gen.MaxY)
}

func (s *Store) generateChunk(ch *Chunk) {
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			wx := ch.CX*16 + x
			wz := ch.CZ*16 + z
			surf := s.surfaceHeight(wx, wz)
			for y := s.gen.MinY; y <= s.gen.MaxY; y++ {
				b := s.gen.Air
				switch {
				case y < surf-2:
					b = s.gen.Stone
				case y < surf:
					b = s.gen.Dirt
				case y == surf:
					b = s.gen.Grass
				case y <= s.gen.SeaLevel:
					b = s.gen.Water
				}
				ch.Blocks[ch.index(x, y-s.gen.MinY, z)] = b
			}
		}
	}
}

func (s *Store) locate(x, y, z int) (*Chunk, int, bool) {
	if y < s.gen.MinY || y > s.gen.MaxY {
		return nil, 0, false
	}
	ch := s.getOrGenChunk(mathx.FloorDiv(x, 16), mathx.FloorDiv(z, 16))
	return ch, ch.index(mathx.Mod(x, 16), y-s.gen.MinY, mathx.Mod(z, 16)), true
}

func (s *Store) BlockAt(x, y, z int) string {
	ch, i, ok := s.locate(x, y, z)
	if !ok {
		return blocks.Air
	}
	return s.cat.Palette[ch.Blocks[i]]
}

func (s *Store) SetBlock(x, y, z int, id string) {
	pid, ok := s.cat.Index[id]
	if !ok {
		return
	}
	ch, i, inBounds := s.locate(x, y, z)
	if !inBounds {
		return
	}
	if ch.Blocks[i] != pid {
		ch.Blocks[i] = pid
		ch.dirty = true
	}
}

func (s *Store) HeightAt(x, z int) int {
	for y := s.gen.MaxY; y >= s.gen.MinY; y-- {
		if s.BlockAt(x, y, z) != blocks.Air {
			return y
		}
	}
	return s.gen.MinY - 1
}

func (s *Store) IsSolid(x, y, z int) bool {
	return s.cat.IsSolid(s.BlockAt(x, y, z))
}

func (s *Store) IsLiquid(x, y, z int) bool {
	return s.cat.IsLiquid(s.BlockAt(x, y, z))
}

// Apply writes one change into the store and returns the block id that
// was there before.
func (s *Store) Apply(p geom.BlockPos, c blocks.Change) (prev string) {
	prev = s.BlockAt(p.X, p.Y, p.Z)
	if c.Shape == blocks.ShapeClear {
		s.SetBlock(p.X, p.Y, p.Z, blocks.Air)
		return prev
	}
	s.SetBlock(p.X, p.Y, p.Z, c.Block)
	return prev
}

// LoadedChunks reports how many chunks have been materialized.
func (s *Store) LoadedChunks() int { return len(s.chunks) }
