package blocks

import "strings"

// Variant resolution derives slab and stair ids from a base block name by
// suffix convention: STONE -> STONE_SLAB / STONE_STAIRS. Two families
// need their base normalized first:
//
//	*_PLANKS drops the suffix entirely (OAK_PLANKS -> OAK_SLAB)
//	*BRICKS loses its plural S (STONE_BRICKS -> STONE_BRICK_SLAB)
//
// A derived id that the catalog does not define resolves to ok=false; the
// caller falls back to the full base block rather than failing.

func variantBase(id string) string {
	if base, ok := strings.CutSuffix(id, "_PLANKS"); ok {
		return base
	}
	if strings.HasSuffix(id, "BRICKS") {
		return strings.TrimSuffix(id, "S")
	}
	return id
}

// SlabVariant returns the slab id for a base block, if the catalog has
// one.
func (c *Catalog) SlabVariant(id string) (string, bool) {
	v := variantBase(id) + "_SLAB"
	if c.Has(v) {
		return v, true
	}
	return "", false
}

// StairVariant returns the stair id for a base block, if the catalog has
// one.
func (c *Catalog) StairVariant(id string) (string, bool) {
	v := variantBase(id) + "_STAIRS"
	if c.Has(v) {
		return v, true
	}
	return "", false
}
