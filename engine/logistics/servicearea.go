// Package logistics implements carrier-based supply: service areas,
// inventory and reservation bookkeeping, the request queue, the
// fulfillment matcher, carrier state, the dispatcher, and the carrier
// job state machine.
package logistics

import (
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
)

// ServiceArea is one hub's circular (in hex-distance) coverage area.
type ServiceArea struct {
	Hub    core.EntityID
	Center hexgrid.Coord
	Radius int
	Player int
}

// ServiceAreaIndex indexes hubs by tile so membership queries are
// O(k) in the number of hubs covering a tile rather than a scan of
// every hub, same as territory.Map's derived-array approach but keyed
// by tile-to-hub-list instead of tile-to-owner.
type ServiceAreaIndex struct {
	hubs  map[core.EntityID]ServiceArea
	index map[hexgrid.Coord][]core.EntityID
}

// NewServiceAreaIndex builds an empty index.
func NewServiceAreaIndex() *ServiceAreaIndex {
	return &ServiceAreaIndex{
		hubs:  make(map[core.EntityID]ServiceArea),
		index: make(map[hexgrid.Coord][]core.EntityID),
	}
}

// RegisterHub adds or replaces a hub's service area and rebuilds the
// tile index for it.
func (s *ServiceAreaIndex) RegisterHub(hub core.EntityID, center hexgrid.Coord, radius, player int) {
	if _, ok := s.hubs[hub]; ok {
		s.unindex(hub)
	}
	sa := ServiceArea{Hub: hub, Center: center, Radius: radius, Player: player}
	s.hubs[hub] = sa
	for _, c := range hexgrid.Disc(center, radius) {
		s.index[c] = append(s.index[c], hub)
	}
}

// RemoveHub drops a hub's service area entirely.
func (s *ServiceAreaIndex) RemoveHub(hub core.EntityID) {
	s.unindex(hub)
	delete(s.hubs, hub)
}

func (s *ServiceAreaIndex) unindex(hub core.EntityID) {
	sa, ok := s.hubs[hub]
	if !ok {
		return
	}
	for _, c := range hexgrid.Disc(sa.Center, sa.Radius) {
		list := s.index[c]
		for i, h := range list {
			if h == hub {
				s.index[c] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// ServesPosition reports whether hub's service area covers pos.
func (s *ServiceAreaIndex) ServesPosition(hub core.EntityID, pos hexgrid.Coord) bool {
	sa, ok := s.hubs[hub]
	if !ok {
		return false
	}
	return hexgrid.StepDistance(sa.Center, pos) <= sa.Radius
}

// HubsServing returns every hub whose service area covers pos.
func (s *ServiceAreaIndex) HubsServing(pos hexgrid.Coord) []core.EntityID {
	return append([]core.EntityID(nil), s.index[pos]...)
}

// HubsServingBoth returns hubs covering both a and b.
func (s *ServiceAreaIndex) HubsServingBoth(a, b hexgrid.Coord) []core.EntityID {
	inA := make(map[core.EntityID]bool)
	for _, h := range s.index[a] {
		inA[h] = true
	}
	var out []core.EntityID
	for _, h := range s.index[b] {
		if inA[h] {
			out = append(out, h)
		}
	}
	return out
}

// NearestHub returns the player's closest hub to pos, if any. Ties
// (equal step distance) are broken by hub id ascending, since map
// iteration order is otherwise unspecified.
func (s *ServiceAreaIndex) NearestHub(pos hexgrid.Coord, player int) (core.EntityID, bool) {
	best := core.EntityID(0)
	bestDist := -1
	found := false
	for id, sa := range s.hubs {
		if sa.Player != player {
			continue
		}
		d := hexgrid.StepDistance(sa.Center, pos)
		if !found || d < bestDist || (d == bestDist && id < best) {
			best, bestDist, found = id, d, true
		}
	}
	return best, found
}
