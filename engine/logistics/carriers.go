package logistics

import (
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/internal/simerr"
)

// CarrierStatus is a carrier's current activity.
type CarrierStatus uint8

const (
	StatusIdle CarrierStatus = iota
	StatusResting
	StatusWalking
	StatusPickingUp
	StatusDelivering
)

// FatigueBand classifies a carrier's fatigue level: Fresh [0..25],
// Tired [26..50], Exhausted [51..75], Collapsed [76..100].
type FatigueBand uint8

const (
	FatigueFresh FatigueBand = iota
	FatigueTired
	FatigueExhausted
	FatigueCollapsed
)

// BandFor classifies a fatigue value into its band.
func BandFor(fatigue float64) FatigueBand {
	switch {
	case fatigue <= 25:
		return FatigueFresh
	case fatigue <= 50:
		return FatigueTired
	case fatigue <= 75:
		return FatigueExhausted
	default:
		return FatigueCollapsed
	}
}

// JobKind distinguishes a delivery job from a return-home job. This
// implementation uses one small closed CarrierJob struct rather than
// a pluggable task interface — every job a carrier runs is one of
// these two kinds.
type JobKind uint8

const (
	JobDelivery JobKind = iota
	JobReturnHome
)

// CarrierJob is a carrier's current assignment.
type CarrierJob struct {
	Kind     JobKind
	Source   core.EntityID // building the material comes from
	Dest     core.EntityID // building the material goes to, or home hub for JobReturnHome
	Material string
	Amount   float64
}

// Carried is what a carrier is physically holding.
type Carried struct {
	Material string
	Amount   float64
}

// Carrier is one unit's logistics state.
type Carrier struct {
	ID      core.EntityID
	HomeHub core.EntityID
	Status  CarrierStatus
	Fatigue float64
	Job     *CarrierJob
	Carry   *Carried
}

// CarrierManager is CRUD plus indexing over carrier state.
type CarrierManager struct {
	carriers map[core.EntityID]*Carrier
	bus      *core.EventBus
}

// NewCarrierManager wires the event bus status-change/removal events
// are emitted on.
func NewCarrierManager(bus *core.EventBus) *CarrierManager {
	return &CarrierManager{carriers: make(map[core.EntityID]*Carrier), bus: bus}
}

// Register creates carrier state for a newly spawned carrier unit,
// homed at hub: spawning a carrier unit auto-registers it with the
// nearest same-player service hub.
func (m *CarrierManager) Register(id, homeHub core.EntityID) *Carrier {
	c := &Carrier{ID: id, HomeHub: homeHub, Status: StatusIdle}
	m.carriers[id] = c
	m.bus.Emit(core.Event{Type: core.EvtCarrierCreated, Payload: id})
	return c
}

// Get returns a carrier's state, or nil.
func (m *CarrierManager) Get(id core.EntityID) *Carrier {
	return m.carriers[id]
}

// CanAssign reports whether a carrier may accept a new job: it must
// be Idle, jobless, and not overly fatigued.
func (m *CarrierManager) CanAssign(id core.EntityID) bool {
	c, ok := m.carriers[id]
	if !ok {
		return false
	}
	if c.Status != StatusIdle || c.Job != nil {
		return false
	}
	band := BandFor(c.Fatigue)
	return band == FatigueFresh || band == FatigueTired
}

// AssignJob gives a carrier a new job, gated by CanAssign. This is
// the dispatcher's external entry point; leg-to-leg transitions
// within an already-assigned delivery are made by the carrier system
// via setJob, which bypasses the CanAssign gate since the carrier is
// legitimately mid-job, not available for a new one.
func (m *CarrierManager) AssignJob(id core.EntityID, job CarrierJob) error {
	if !m.CanAssign(id) {
		return simerr.ErrCarrierUnavailable
	}
	m.setJob(id, job)
	return nil
}

// setJob sets a carrier's job without the CanAssign gate and emits
// carrier:jobAssigned.
func (m *CarrierManager) setJob(id core.EntityID, job CarrierJob) {
	c, ok := m.carriers[id]
	if !ok {
		return
	}
	j := job
	c.Job = &j
	m.bus.Emit(core.Event{Type: core.EvtCarrierJobAssigned, Payload: id})
}

// CompleteJob clears a carrier's job and returns it, or nil if it had
// none.
func (m *CarrierManager) CompleteJob(id core.EntityID) *CarrierJob {
	c, ok := m.carriers[id]
	if !ok || c.Job == nil {
		return nil
	}
	job := c.Job
	c.Job = nil
	m.bus.Emit(core.Event{Type: core.EvtCarrierJobCompleted, Payload: id})
	return job
}

// SetStatus updates a carrier's status and emits carrier:statusChanged
// if it actually changed.
func (m *CarrierManager) SetStatus(id core.EntityID, status CarrierStatus) {
	c, ok := m.carriers[id]
	if !ok || c.Status == status {
		return
	}
	c.Status = status
	m.bus.Emit(core.Event{Type: core.EvtCarrierStatusChanged, Payload: id})
}

// SetCarrying sets or clears what a carrier is holding (amount <= 0
// clears it).
func (m *CarrierManager) SetCarrying(id core.EntityID, material string, amount float64) {
	c, ok := m.carriers[id]
	if !ok {
		return
	}
	if amount <= 0 {
		c.Carry = nil
		return
	}
	c.Carry = &Carried{Material: material, Amount: amount}
}

// AddFatigue adds delta (positive or negative) to a carrier's
// fatigue, clamped to [0, 100].
func (m *CarrierManager) AddFatigue(id core.EntityID, delta float64) {
	c, ok := m.carriers[id]
	if !ok {
		return
	}
	c.Fatigue += delta
	if c.Fatigue < 0 {
		c.Fatigue = 0
	}
	if c.Fatigue > 100 {
		c.Fatigue = 100
	}
}

// ReassignToHub changes a carrier's home hub; fails if it has an
// active job.
func (m *CarrierManager) ReassignToHub(id, hub core.EntityID) error {
	c, ok := m.carriers[id]
	if !ok {
		return simerr.ErrUnknownEntity
	}
	if c.Job != nil {
		return simerr.ErrCarrierUnavailable
	}
	c.HomeHub = hub
	return nil
}

// Remove deletes a carrier's state and emits carrier:removed.
func (m *CarrierManager) Remove(id core.EntityID) {
	if _, ok := m.carriers[id]; !ok {
		return
	}
	delete(m.carriers, id)
	m.bus.Emit(core.Event{Type: core.EvtCarrierRemoved, Payload: id})
}

// All returns every carrier in unspecified (map) order; callers that
// need a deterministic order, such as the dispatcher, sort by id
// themselves.
func (m *CarrierManager) All() []*Carrier {
	out := make([]*Carrier, 0, len(m.carriers))
	for _, c := range m.carriers {
		out = append(out, c)
	}
	return out
}
