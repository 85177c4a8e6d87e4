package logistics

import (
	"sort"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/internal/simlog"
	"github.com/sirupsen/logrus"
)

// MaxAssignmentsPerTick bounds how many pending requests the
// dispatcher attempts to match in a single tick.
const MaxAssignmentsPerTick = 5

// Dispatcher matches pending requests to supply and an available
// carrier each tick, and periodically resets stalled InProgress
// requests.
type Dispatcher struct {
	requests    *RequestManager
	reservation *ReservationManager
	inventory   *InventoryManager
	carriers    *CarrierManager
	carrierSys  *CarrierSystem
	areas       *ServiceAreaIndex
	entities    *core.Table
	bus         *core.EventBus
	log         *logrus.Entry

	stallCheckIntervalTicks uint64
	stallTimeoutTicks       uint64
	lastStallCheck          uint64
	tick                    uint64

	requestToCarrier map[int]core.EntityID
}

// NewDispatcher wires every manager the dispatcher coordinates and
// subscribes to the carrier lifecycle events it must react to.
func NewDispatcher(
	requests *RequestManager,
	reservation *ReservationManager,
	inventory *InventoryManager,
	carriers *CarrierManager,
	carrierSys *CarrierSystem,
	areas *ServiceAreaIndex,
	entities *core.Table,
	bus *core.EventBus,
	stallCheckIntervalTicks, stallTimeoutTicks uint64,
	logger *logrus.Logger,
) *Dispatcher {
	d := &Dispatcher{
		requests:                requests,
		reservation:             reservation,
		inventory:               inventory,
		carriers:                carriers,
		carrierSys:              carrierSys,
		areas:                   areas,
		entities:                entities,
		bus:                     bus,
		log:                     simlog.Or(logger).WithField("system", "dispatcher"),
		stallCheckIntervalTicks: stallCheckIntervalTicks,
		stallTimeoutTicks:       stallTimeoutTicks,
		requestToCarrier:        make(map[int]core.EntityID),
	}
	bus.On(core.EvtCarrierDeliveryComplete, d.onDeliveryComplete)
	bus.On(core.EvtCarrierPickupFailed, d.onPickupFailed)
	bus.On(core.EvtCarrierRemoved, d.onCarrierRemoved)
	return d
}

// Update runs one dispatcher tick: periodic stall sweep, then up to
// MaxAssignmentsPerTick assignment attempts. Implements core.System; dt is
// unused since stall timeouts are measured in tick counts, not wall
// time, for determinism — the dispatcher keeps its own tick counter
// in lockstep with the scheduler's fixed-rate Step calls.
func (d *Dispatcher) Update(dt float64) {
	d.tick++
	if d.tick-d.lastStallCheck >= d.stallCheckIntervalTicks {
		d.sweepStalled(d.tick)
		d.lastStallCheck = d.tick
	}
	d.assign(d.tick)
}

func (d *Dispatcher) sweepStalled(nowTick uint64) {
	for _, r := range d.requests.Stalled(nowTick, d.stallTimeoutTicks) {
		d.reservation.ReleaseForRequest(r.ID)
		delete(d.requestToCarrier, r.ID)
		d.requests.Reset(r, "timeout")
		d.log.WithFields(logrus.Fields{"request": r.ID, "building": r.Building}).Warn("request stalled, reset to pending")
	}
}

func (d *Dispatcher) assign(nowTick uint64) {
	pending := d.requests.GetPending()
	assigned := 0
	for _, req := range pending {
		if assigned >= MaxAssignmentsPerTick {
			break
		}
		d.tryAssign(req, nowTick)
		assigned++
	}
}

func (d *Dispatcher) tryAssign(req *Request, nowTick uint64) bool {
	match := FindMatch(req, d.entities, d.inventory, d.reservation, d.areas, DefaultMatchOptions())
	if match == nil {
		return false
	}

	carrierID, ok := d.findAvailableCarrier(match)
	if !ok {
		return false
	}

	resID, ok := d.reservation.Create(match.Source, req.Material, match.Amount, req.ID)
	if !ok {
		return false
	}

	if err := d.carrierSys.AssignDeliveryJob(carrierID, match.Source, req.Building, req.Material, match.Amount); err != nil {
		d.reservation.Release(resID)
		return false
	}

	d.requests.Assign(req, match.Source, carrierID, nowTick)
	d.requestToCarrier[req.ID] = carrierID
	return true
}

// findAvailableCarrier picks the first assignable carrier (in
// ascending entity-id order, for determinism) whose home hub sits in
// the intersection of hubs serving both source and destination.
func (d *Dispatcher) findAvailableCarrier(match *Match) (core.EntityID, bool) {
	servingHubs := make(map[core.EntityID]bool, len(match.Hubs))
	for _, h := range match.Hubs {
		servingHubs[h] = true
	}

	carriers := d.carriers.All()
	sort.Slice(carriers, func(i, j int) bool { return carriers[i].ID < carriers[j].ID })

	for _, c := range carriers {
		if !servingHubs[c.HomeHub] {
			continue
		}
		if d.carriers.CanAssign(c.ID) {
			return c.ID, true
		}
	}
	return 0, false
}

func (d *Dispatcher) onDeliveryComplete(e core.Event) {
	p, ok := e.Payload.(CarrierPayload)
	if !ok {
		return
	}
	reqID := d.requestIDFor(p.Carrier)
	if reqID == 0 {
		return
	}
	d.completeRequest(reqID)
}

func (d *Dispatcher) onPickupFailed(e core.Event) {
	p, ok := e.Payload.(CarrierPayload)
	if !ok {
		return
	}
	reqID := d.requestIDFor(p.Carrier)
	if reqID == 0 {
		return
	}
	d.resetRequest(reqID, "pickup_failed")
}

func (d *Dispatcher) onCarrierRemoved(e core.Event) {
	id, ok := e.Payload.(core.EntityID)
	if !ok {
		return
	}
	for reqID, carrierID := range d.requestToCarrier {
		if carrierID == id {
			d.resetRequest(reqID, "carrier_removed")
		}
	}
}

func (d *Dispatcher) requestIDFor(carrierID core.EntityID) int {
	for reqID, cid := range d.requestToCarrier {
		if cid == carrierID {
			return reqID
		}
	}
	return 0
}

func (d *Dispatcher) completeRequest(reqID int) {
	req := d.findRequest(reqID)
	if req == nil {
		delete(d.requestToCarrier, reqID)
		return
	}
	d.reservation.ReleaseForRequest(req.ID)
	d.requests.Fulfill(req)
	delete(d.requestToCarrier, reqID)
}

func (d *Dispatcher) resetRequest(reqID int, reason string) {
	req := d.findRequest(reqID)
	if req == nil {
		delete(d.requestToCarrier, reqID)
		return
	}
	d.reservation.ReleaseForRequest(req.ID)
	d.requests.Reset(req, reason)
	delete(d.requestToCarrier, reqID)
}

func (d *Dispatcher) findRequest(id int) *Request {
	return d.requests.requests[id]
}

// HandleBuildingDestroyed cascades a building's removal through
// logistics: cancel requests to it, reset requests from it, release
// its reservations, and prune carrier-to-request mappings that touch
// it.
func (d *Dispatcher) HandleBuildingDestroyed(b core.EntityID) {
	reservationsReleased := 0
	mappingsPruned := 0

	cancelled := d.requests.CancelForBuilding(b)
	for _, r := range cancelled {
		reservationsReleased += d.reservation.ReleaseForRequest(r.ID)
		if _, ok := d.requestToCarrier[r.ID]; ok {
			delete(d.requestToCarrier, r.ID)
			mappingsPruned++
		}
	}

	reset := d.requests.ResetFromSource(b)
	for _, r := range reset {
		reservationsReleased += d.reservation.ReleaseForRequest(r.ID)
		if _, ok := d.requestToCarrier[r.ID]; ok {
			delete(d.requestToCarrier, r.ID)
			mappingsPruned++
		}
	}

	reservationsReleased += d.reservation.ReleaseForBuilding(b)

	d.bus.Emit(core.Event{
		Type: core.EvtLogisticsBuildingCleanedUp,
		Payload: map[string]int{
			"cancelled":    len(cancelled),
			"reset":        len(reset),
			"reservations": reservationsReleased,
			"mappings":     mappingsPruned,
		},
	})
	d.log.WithFields(logrus.Fields{
		"building":     b,
		"cancelled":    len(cancelled),
		"reset":        len(reset),
		"reservations": reservationsReleased,
		"mappings":     mappingsPruned,
	}).Info("building removal cleaned up logistics")
}
