// Package maplib holds the tile grid: dense ground-type and height
// arrays plus the passability/buildability predicates the rest of the
// core builds on.
package maplib

// GroundType encodes a landscape class. The numeric values are
// supplied by the map loader; the core only cares which classes are
// passable and which are buildable.
type GroundType uint8

const (
	GroundGrass GroundType = iota
	GroundDirt
	GroundSand
	GroundWater
	GroundDeepWater
	GroundRock
	GroundMountain
	GroundSwamp
	GroundConstructionSite
)

// ConstructionSiteGroundType is painted onto footprint tiles once
// terrain leveling has begun.
const ConstructionSiteGroundType = GroundConstructionSite

// MaxSlope is the maximum absolute neighbor-height difference allowed
// within a building footprint.
const MaxSlope = 8

// IsPassable reports whether a ground type can be walked on.
func IsPassable(g GroundType) bool {
	switch g {
	case GroundWater, GroundDeepWater, GroundMountain:
		return false
	default:
		return true
	}
}

// IsBuildable reports whether a ground type accepts a building
// footprint. Buildable is a stricter subset of passable.
func IsBuildable(g GroundType) bool {
	switch g {
	case GroundGrass, GroundDirt, GroundConstructionSite:
		return true
	default:
		return false
	}
}

// TileGrid is a dense array-backed map of ground type and height,
// indexed i = y*width + x.
type TileGrid struct {
	Width, Height int
	GroundType    []GroundType
	GroundHeight  []uint8

	onTerrainModified func()
}

// NewTileGrid builds an empty grid, all grass, height 0.
func NewTileGrid(width, height int) *TileGrid {
	g := &TileGrid{
		Width:        width,
		Height:       height,
		GroundType:   make([]GroundType, width*height),
		GroundHeight: make([]uint8, width*height),
	}
	return g
}

// NewTileGridFromArrays wraps map-loader-supplied arrays directly:
// initial tile dimensions, ground-type array, ground-height array.
func NewTileGridFromArrays(width, height int, groundType []GroundType, groundHeight []uint8) *TileGrid {
	return &TileGrid{
		Width:        width,
		Height:       height,
		GroundType:   groundType,
		GroundHeight: groundHeight,
	}
}

// ToIndex converts tile coordinates to the flat array index.
func (g *TileGrid) ToIndex(x, y int) int {
	return y*g.Width + x
}

// InBounds reports whether (x, y) is within the grid.
func (g *TileGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// GroundTypeAt returns the ground type at (x, y), or GroundWater (the
// impassable default) if out of bounds.
func (g *TileGrid) GroundTypeAt(x, y int) GroundType {
	if !g.InBounds(x, y) {
		return GroundWater
	}
	return g.GroundType[g.ToIndex(x, y)]
}

// HeightAt returns the ground height at (x, y), or 0 if out of bounds.
func (g *TileGrid) HeightAt(x, y int) uint8 {
	if !g.InBounds(x, y) {
		return 0
	}
	return g.GroundHeight[g.ToIndex(x, y)]
}

// SetGroundType writes a tile's ground type; no-op out of bounds.
func (g *TileGrid) SetGroundType(x, y int, t GroundType) {
	if !g.InBounds(x, y) {
		return
	}
	g.GroundType[g.ToIndex(x, y)] = t
}

// SetHeight writes a tile's height; no-op out of bounds.
func (g *TileGrid) SetHeight(x, y int, h uint8) {
	if !g.InBounds(x, y) {
		return
	}
	g.GroundHeight[g.ToIndex(x, y)] = h
}

// OnTerrainModified registers the callback invoked once a batch of
// terrain mutation completes, so the renderer can refresh its GPU
// uploads. Only one callback is supported; a later call replaces an
// earlier one.
func (g *TileGrid) OnTerrainModified(cb func()) {
	g.onTerrainModified = cb
}

// NotifyTerrainModified invokes the registered callback, if any. The
// construction system calls this at most once per tick, after all
// buildings have been processed.
func (g *TileGrid) NotifyTerrainModified() {
	if g.onTerrainModified != nil {
		g.onTerrainModified()
	}
}
