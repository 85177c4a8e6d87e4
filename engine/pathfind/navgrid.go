// Package pathfind implements A* search over the hex grid, uniform
// move cost, hex-distance heuristic.
package pathfind

import (
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
	"github.com/brackwater/colonysim/engine/maplib"
)

// NavGrid is a derived passability array rebuilt wholesale from the
// tile grid and entity table whenever terrain or building occupancy
// changes, the same idiom territory.Map uses for ownership.
type NavGrid struct {
	Width, Height int
	passable      []bool
}

// NewNavGrid builds a nav grid from the current tile grid and entity
// table. Only Building entities block movement; units may transiently
// share approach tiles, resolved by the movement system.
func NewNavGrid(grid *maplib.TileGrid, entities *core.Table) *NavGrid {
	ng := &NavGrid{Width: grid.Width, Height: grid.Height}
	ng.Refresh(grid, entities)
	return ng
}

// Refresh recomputes the passability array from scratch.
func (ng *NavGrid) Refresh(grid *maplib.TileGrid, entities *core.Table) {
	ng.Width, ng.Height = grid.Width, grid.Height
	ng.passable = make([]bool, grid.Width*grid.Height)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			i := grid.ToIndex(x, y)
			ng.passable[i] = maplib.IsPassable(grid.GroundTypeAt(x, y))
		}
	}
	for _, e := range entities.All() {
		if e.Type != core.EntityBuilding {
			continue
		}
		if !ng.InBounds(e.Pos) {
			continue
		}
		ng.passable[grid.ToIndex(e.Pos.X, e.Pos.Y)] = false
	}
}

// InBounds reports whether c is within the grid.
func (ng *NavGrid) InBounds(c hexgrid.Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < ng.Width && c.Y < ng.Height
}

// Passable reports whether c can be entered.
func (ng *NavGrid) Passable(c hexgrid.Coord) bool {
	if !ng.InBounds(c) {
		return false
	}
	return ng.passable[c.Y*ng.Width+c.X]
}
