package blocks

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Catalog holds the block definitions a world is built from, with a
// stable palette ordering and content digests.
type Catalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]Def
	PaletteDigest string
	DefsDigest    string
}

type Def struct {
	ID     string `json:"id"`
	Solid  bool   `json:"solid"`
	Liquid bool   `json:"liquid,omitempty"`
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var defs []Def
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}
	c, err := build(defs)
	if err != nil {
		return nil, err
	}
	c.DefsDigest = sha256Hex(raw)
	return c, nil
}

func build(defs []Def) (*Catalog, error) {
	c := &Catalog{Defs: map[string]Def{}}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("blocks.json: empty id")
		}
		c.Defs[d.ID] = d
	}
	if _, ok := c.Defs[Air]; !ok {
		return nil, fmt.Errorf("blocks.json: missing %s", Air)
	}

	ids := make([]string, 0, len(c.Defs))
	for id := range c.Defs {
		if id != Air {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	// AIR is always palette id 0.
	c.Palette = append([]string{Air}, ids...)
	c.Index = make(map[string]uint16, len(c.Palette))
	for i, id := range c.Palette {
		c.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(c.Palette)
	c.PaletteDigest = sha256Hex(palJSON)
	return c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Air is the reserved empty block id.
const Air = "AIR"

// Has reports whether the catalog defines the block id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Defs[id]
	return ok
}

func (c *Catalog) IsSolid(id string) bool {
	d, ok := c.Defs[id]
	return ok && d.Solid
}

func (c *Catalog) IsLiquid(id string) bool {
	d, ok := c.Defs[id]
	return ok && d.Liquid
}

// Default returns the built-in catalog used by tests and the offline
// tool when no blocks.json is supplied.
func Default() *Catalog {
	c, err := build(defaultDefs)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultDefs = []Def{
	{ID: "AIR"},
	{ID: "WATER", Liquid: true},
	{ID: "LAVA", Liquid: true},
	{ID: "DIRT", Solid: true},
	{ID: "GRASS_BLOCK", Solid: true},
	{ID: "SAND", Solid: true},
	{ID: "GRAVEL", Solid: true},
	{ID: "STONE", Solid: true},
	{ID: "STONE_SLAB", Solid: true},
	{ID: "STONE_STAIRS", Solid: true},
	{ID: "COBBLESTONE", Solid: true},
	{ID: "COBBLESTONE_SLAB", Solid: true},
	{ID: "COBBLESTONE_STAIRS", Solid: true},
	{ID: "STONE_BRICKS", Solid: true},
	{ID: "STONE_BRICK_SLAB", Solid: true},
	{ID: "STONE_BRICK_STAIRS", Solid: true},
	{ID: "OAK_PLANKS", Solid: true},
	{ID: "OAK_SLAB", Solid: true},
	{ID: "OAK_STAIRS", Solid: true},
	{ID: "OAK_LOG", Solid: true},
	{ID: "OAK_FENCE", Solid: true},
	{ID: "GLOWSTONE", Solid: true},
}
