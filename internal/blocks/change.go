package blocks

import (
	"math"

	"pathcraft.dev/internal/geom"
)

// Shape is the placed surface form of a change.
type Shape uint8

const (
	ShapeFull Shape = iota
	ShapeSlab
	ShapeStair
	ShapeClear // replace with AIR
)

func (s Shape) String() string {
	switch s {
	case ShapeSlab:
		return "slab"
	case ShapeStair:
		return "stair"
	case ShapeClear:
		return "clear"
	default:
		return "full"
	}
}

// Half distinguishes top and bottom placement for slabs and stairs.
type Half uint8

const (
	HalfBottom Half = iota
	HalfTop
)

func (h Half) String() string {
	if h == HalfTop {
		return "top"
	}
	return "bottom"
}

// Facing is a horizontal cardinal direction. North is -Z, east is +X.
type Facing uint8

const (
	FacingNorth Facing = iota
	FacingEast
	FacingSouth
	FacingWest
)

func (f Facing) String() string {
	switch f {
	case FacingEast:
		return "east"
	case FacingSouth:
		return "south"
	case FacingWest:
		return "west"
	default:
		return "north"
	}
}

// Opposite returns the reverse direction.
func (f Facing) Opposite() Facing {
	return Facing((uint8(f) + 2) & 3)
}

// FacingFromDir picks the cardinal direction closest to the horizontal
// components of v. A vertical or zero vector yields north.
func FacingFromDir(v geom.Vec3) Facing {
	if math.Abs(v.X) >= math.Abs(v.Z) {
		if v.X >= 0 {
			if v.X == 0 && v.Z == 0 {
				return FacingNorth
			}
			return FacingEast
		}
		return FacingWest
	}
	if v.Z >= 0 {
		return FacingSouth
	}
	return FacingNorth
}

// Change is the atomic output unit of a generator: what to place at one
// position. Generators never write a world directly.
type Change struct {
	Block  string `json:"block"`
	Shape  Shape  `json:"shape"`
	Half   Half   `json:"half,omitempty"`
	Facing Facing `json:"facing,omitempty"`
}

func Full(id string) Change { return Change{Block: id} }
func Clear() Change { return Change{Block: Air, Shape: ShapeClear} }
func Slab(id string, half Half) Change {
	return Change{Block: id, Shape: ShapeSlab, Half: half}
}
func Stair(id string, facing Facing, half Half) Change {
	return Change{Block: id, Shape: ShapeStair, Facing: facing, Half: half}
}

// ChangeSet is a position-keyed block layout produced by one generation
// pass.
type ChangeSet map[geom.BlockPos]Change

// Put unconditionally records a change.
func (cs ChangeSet) Put(p geom.BlockPos, c Change) {
	cs[p] = c
}

// PutIfAbsent records a change only when the position has not been
// written yet, and reports whether it wrote. First writer wins.
func (cs ChangeSet) PutIfAbsent(p geom.BlockPos, c Change) bool {
	if _, ok := cs[p]; ok {
		return false
	}
	cs[p] = c
	return true
}
