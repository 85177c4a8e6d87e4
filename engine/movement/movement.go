// Package movement advances units step by step along an A*-computed
// hex path, handling mid-path obstruction with bounded re-path
// retries before giving up.
package movement

import (
	"sort"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
	"github.com/brackwater/colonysim/engine/pathfind"
	"github.com/brackwater/colonysim/internal/simerr"
)

// StoppedReason explains why unit:movementStopped was emitted.
type StoppedReason uint8

const (
	ReasonReachedDestination StoppedReason = iota
	ReasonBlocked
)

// MovementStoppedPayload is the payload carried by
// core.EvtUnitMovementStopped.
type MovementStoppedPayload struct {
	Entity core.EntityID
	Reason StoppedReason
}

// state is one unit's in-flight move order.
type state struct {
	dest           hexgrid.Coord
	path           []hexgrid.Coord // remaining waypoints, not including current tile
	progress       float64         // fraction of the current leg covered
	speed          float64         // tiles per second
	blockedTicks   int
	repathAttempts int
}

// Manager drives every unit's active move order each tick. Arrival
// for job state machines (carriers) is detected by subscribing to
// core.EvtUnitMovementStopped, not by polling this package.
type Manager struct {
	states                    map[core.EntityID]*state
	entities                  *core.Table
	nav                       *pathfind.NavGrid
	bus                       *core.EventBus
	maxBlockedTicksBeforeRepath int
	maxRepathAttempts           int
}

// NewManager wires the entity table, nav grid, and event bus. Callers
// must call the nav grid's Refresh after terrain or building occupancy
// changes so paths respect current obstacles; neither the manager nor
// the scheduler does so.
func NewManager(entities *core.Table, nav *pathfind.NavGrid, bus *core.EventBus, maxRepathAttempts int) *Manager {
	return &Manager{
		states:                      make(map[core.EntityID]*state),
		entities:                    entities,
		nav:                         nav,
		bus:                         bus,
		maxBlockedTicksBeforeRepath: 3,
		maxRepathAttempts:           maxRepathAttempts,
	}
}

// OrderMove computes a path from the unit's current tile to dest and
// begins moving it, replacing any existing order. Returns
// simerr.ErrNoPath if no path exists, simerr.ErrUnknownEntity if id
// doesn't resolve to a live entity.
func (m *Manager) OrderMove(id core.EntityID, dest hexgrid.Coord, speed float64) error {
	e := m.entities.Get(id)
	if e == nil {
		return simerr.ErrUnknownEntity
	}
	path := pathfind.FindPath(m.nav, e.Pos, dest)
	if path == nil {
		return simerr.ErrNoPath
	}
	m.states[id] = &state{
		dest:  dest,
		path:  path[1:], // path[0] is the current tile
		speed: speed,
	}
	return nil
}

// IsMoving reports whether a unit currently has an active move order.
func (m *Manager) IsMoving(id core.EntityID) bool {
	_, ok := m.states[id]
	return ok
}

// Cancel clears a unit's active move order without emitting an event
// (used when the entity itself is being removed).
func (m *Manager) Cancel(id core.EntityID) {
	delete(m.states, id)
}

// Update advances every active move by dt seconds. Implements
// core.System.
//
// Units are processed in id-ascending order rather than map iteration
// order: two units can contest the same destination tile in one tick,
// and whichever is processed first claims it, so an unordered scan
// would make that resolution nondeterministic across replay runs.
func (m *Manager) Update(dt float64) {
	ids := make([]core.EntityID, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		s := m.states[id]
		if len(s.path) == 0 {
			m.finish(id, ReasonReachedDestination)
			continue
		}

		next := s.path[0]
		if m.blocked(id, next) {
			s.blockedTicks++
			if s.blockedTicks < m.maxBlockedTicksBeforeRepath {
				continue
			}
			if !m.repath(id, s) {
				m.finish(id, ReasonBlocked)
			}
			continue
		}

		s.blockedTicks = 0
		s.progress += dt * s.speed
		if s.progress >= 1.0 {
			m.entities.UpdatePosition(id, next)
			s.path = s.path[1:]
			s.progress -= 1.0
			s.repathAttempts = 0
			if len(s.path) == 0 {
				m.finish(id, ReasonReachedDestination)
			}
		}
	}
}

func (m *Manager) blocked(id core.EntityID, tile hexgrid.Coord) bool {
	if !m.nav.Passable(tile) {
		return true
	}
	occupant := m.entities.GetAt(tile)
	return occupant != nil && occupant.ID != id
}

// repath attempts a fresh path from the unit's current tile to its
// destination. Returns false once maxRepathAttempts is exceeded or no
// path exists.
func (m *Manager) repath(id core.EntityID, s *state) bool {
	s.repathAttempts++
	if s.repathAttempts > m.maxRepathAttempts {
		return false
	}
	e := m.entities.Get(id)
	if e == nil {
		return false
	}
	path := pathfind.FindPath(m.nav, e.Pos, s.dest)
	if path == nil {
		return false
	}
	s.path = path[1:]
	s.blockedTicks = 0
	return true
}

func (m *Manager) finish(id core.EntityID, reason StoppedReason) {
	delete(m.states, id)
	m.bus.Emit(core.Event{
		Type:    core.EvtUnitMovementStopped,
		Payload: MovementStoppedPayload{Entity: id, Reason: reason},
	})
}
