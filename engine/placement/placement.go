// Package placement validates whether a building footprint may be
// placed on the tile grid: bounds, buildability, occupancy, slope, and
// territory rights.
package placement

import (
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
	"github.com/brackwater/colonysim/engine/maplib"
	"github.com/brackwater/colonysim/engine/territory"
	"github.com/brackwater/colonysim/internal/simerr"
)

// SlopeStatus rates how steep a footprint is, shared with the
// placement-indicator UI surface, whose slope rating derives from the
// same predicate the validator uses.
type SlopeStatus uint8

const (
	SlopeEasy SlopeStatus = iota
	SlopeMedium
	SlopeDifficult
	SlopeTooSteep
)

// Footprint is the set of tiles (relative to an anchor) a building
// occupies. A footprint of a single {0,0} offset is a 1-tile building.
type Footprint []hexgrid.Coord

// AbsoluteTiles returns the footprint's tiles translated to world
// coordinates anchored at anchor.
func (f Footprint) AbsoluteTiles(anchor hexgrid.Coord) []hexgrid.Coord {
	out := make([]hexgrid.Coord, len(f))
	for i, off := range f {
		out[i] = hexgrid.Coord{X: anchor.X + off.X, Y: anchor.Y + off.Y}
	}
	return out
}

// SlopeStatusOf classifies a footprint's steepness by the largest
// absolute height difference between any two cardinally adjacent
// tiles within the footprint (a tile and a same-footprint neighbor),
// not the global max-min height range across the whole footprint —
// a footprint that rises monotonically tile-by-tile has a large range
// but a small per-step delta, and should rate no steeper than its
// steepest single step. MaxSlope from maplib is the TooSteep cutoff;
// below it, Difficult starts at three quarters of MaxSlope and Medium
// at half.
func SlopeStatusOf(tiles []hexgrid.Coord, grid *maplib.TileGrid) SlopeStatus {
	if len(tiles) == 0 {
		return SlopeEasy
	}
	inFootprint := make(map[hexgrid.Coord]bool, len(tiles))
	for _, t := range tiles {
		inFootprint[t] = true
	}

	delta := 0
	for _, t := range tiles {
		h := int(grid.HeightAt(t.X, t.Y))
		for _, d := range []hexgrid.Direction{hexgrid.NE, hexgrid.E, hexgrid.SE, hexgrid.SW, hexgrid.W, hexgrid.NW} {
			n := hexgrid.Neighbor(t, d)
			if !inFootprint[n] {
				continue
			}
			nh := int(grid.HeightAt(n.X, n.Y))
			diff := nh - h
			if diff < 0 {
				diff = -diff
			}
			if diff > delta {
				delta = diff
			}
		}
	}

	switch {
	case delta > maplib.MaxSlope:
		return SlopeTooSteep
	case delta >= maplib.MaxSlope*3/4:
		return SlopeDifficult
	case delta >= maplib.MaxSlope/2:
		return SlopeMedium
	default:
		return SlopeEasy
	}
}

// Validator checks whether a building footprint may be placed,
// against the tile grid, the entity table's occupancy, and territory
// rights.
type Validator struct {
	Grid      *maplib.TileGrid
	Entities  *core.Table
	Territory *territory.Map
}

// NewValidator wires the three read-only sources placement decisions
// depend on.
func NewValidator(grid *maplib.TileGrid, entities *core.Table, terr *territory.Map) *Validator {
	return &Validator{Grid: grid, Entities: entities, Territory: terr}
}

// Validate reports whether placing footprint at anchor for player
// succeeds, returning the first validation error found.
// A player with no buildings yet may place their first building
// anywhere otherwise valid (bootstrapping); afterward, the anchor
// tile must lie within their own territory.
func (v *Validator) Validate(footprint Footprint, anchor hexgrid.Coord, player int) error {
	tiles := footprint.AbsoluteTiles(anchor)

	for _, t := range tiles {
		if !v.Grid.InBounds(t.X, t.Y) {
			return simerr.ErrOutOfBounds
		}
	}
	for _, t := range tiles {
		if !maplib.IsBuildable(v.Grid.GroundTypeAt(t.X, t.Y)) {
			return simerr.ErrNotBuildable
		}
	}
	for _, t := range tiles {
		if v.Entities.GetAt(t) != nil {
			return simerr.ErrTileOccupied
		}
	}
	if SlopeStatusOf(tiles, v.Grid) == SlopeTooSteep {
		return simerr.ErrTooSteep
	}
	if v.playerHasBuildings(player) {
		if v.Territory.OwnerAt(anchor) != player {
			return simerr.ErrNoTerritory
		}
	}
	return nil
}

func (v *Validator) playerHasBuildings(player int) bool {
	for _, e := range v.Entities.All() {
		if e.Type == core.EntityBuilding && e.Player == player {
			return true
		}
	}
	return false
}
