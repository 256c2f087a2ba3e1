// Package terrain exposes the narrow world-reading capability the path
// generators depend on, so they can run against a live column store or a
// synthetic fixture without caring which.
package terrain

// Terrain is everything a generator may ask of the world. Reads outside
// the vertical bounds behave as air.
type Terrain interface {
	// BlockAt returns the block id at a position, AIR when unset or out
	// of bounds.
	BlockAt(x, y, z int) string
	// HeightAt returns the Y of the highest non-air block in a column,
	// or MinY-1 for an empty column.
	HeightAt(x, z int) int
	IsSolid(x, y, z int) bool
	IsLiquid(x, y, z int) bool
	// Bounds returns the inclusive vertical world limits.
	Bounds() (minY, maxY int)
}
