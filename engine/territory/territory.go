// Package territory rebuilds a per-tile ownership map from scratch
// whenever a building is added or removed, rather than maintaining it
// incrementally — the same "derived array, rebuilt wholesale" idiom
// the pathfinding package uses for its nav grid.
package territory

import (
	"sort"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
)

// Radius is how far a building's ownership paint reaches, in hex
// steps.
const Radius = 6

// NoOwner marks a tile with no building's territory reaching it.
const NoOwner = -1

// Map holds the current owner-per-tile array and a version counter
// that increments on every rebuild, so callers can cheaply detect
// staleness.
type Map struct {
	width, height int
	owner         []int
	Version       uint64
}

// NewMap builds an empty territory map over a width x height grid,
// all tiles unowned.
func NewMap(width, height int) *Map {
	m := &Map{width: width, height: height}
	m.owner = make([]int, width*height)
	for i := range m.owner {
		m.owner[i] = NoOwner
	}
	return m
}

func (m *Map) index(c hexgrid.Coord) (int, bool) {
	if c.X < 0 || c.Y < 0 || c.X >= m.width || c.Y >= m.height {
		return 0, false
	}
	return c.Y*m.width + c.X, true
}

// OwnerAt returns the owning player for a tile, or NoOwner.
func (m *Map) OwnerAt(c hexgrid.Coord) int {
	i, ok := m.index(c)
	if !ok {
		return NoOwner
	}
	return m.owner[i]
}

// Rebuild repaints the whole map from the current set of buildings:
// for each building, every tile within Radius hex steps is painted
// with its owner, ties broken by nearest building (earlier buildings
// win ties since later ones only overwrite a tile if strictly
// closer). Call this after any PlaceBuilding/RemoveEntity affecting a
// building.
func (m *Map) Rebuild(entities *core.Table) {
	for i := range m.owner {
		m.owner[i] = NoOwner
	}
	bestDist := make([]int, len(m.owner))
	for i := range bestDist {
		bestDist[i] = -1
	}

	buildings := entities.All()
	sort.Slice(buildings, func(i, j int) bool { return buildings[i].ID < buildings[j].ID })
	for _, e := range buildings {
		if e.Type != core.EntityBuilding {
			continue
		}
		for _, c := range hexgrid.Disc(e.Pos, Radius) {
			i, ok := m.index(c)
			if !ok {
				continue
			}
			d := hexgrid.StepDistance(e.Pos, c)
			if bestDist[i] == -1 || d < bestDist[i] {
				bestDist[i] = d
				m.owner[i] = e.Player
			}
		}
	}
	m.Version++
}
