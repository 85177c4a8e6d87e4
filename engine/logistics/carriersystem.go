package logistics

import (
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
	"github.com/brackwater/colonysim/engine/movement"
	"github.com/brackwater/colonysim/engine/pathfind"
	"github.com/brackwater/colonysim/internal/simerr"
)

// leg is which part of a job a walking carrier is currently on.
type leg uint8

const (
	legPickup leg = iota
	legDeliver
	legReturnHome
)

type legState struct {
	leg          leg
	targetBldg   core.EntityID
	expectedTile hexgrid.Coord
}

// CarrierPayload is the payload carried by every carrier:* event
// emitted directly by CarrierSystem (pickupComplete, deliveryComplete,
// returnedHome, pickupFailed).
type CarrierPayload struct {
	Carrier  core.EntityID
	Material string
	Amount   float64
	Overflow float64
}

// CarrierSystem drives fatigue decay and the per-carrier job
// execution state machine: Pickup -> Deliver -> ReturnHome, each leg
// a Walking order followed by the action the leg names, arrival
// detected by subscribing to unit:movementStopped rather than polling.
type CarrierSystem struct {
	carriers  *CarrierManager
	inventory *InventoryManager
	entities  *core.Table
	movement  *movement.Manager
	nav       *pathfind.NavGrid
	bus       *core.EventBus
	speed     float64

	legs map[core.EntityID]*legState
}

// NewCarrierSystem wires every collaborator and subscribes to
// unit:movementStopped and carrier:deliveryComplete.
func NewCarrierSystem(
	carriers *CarrierManager,
	inventory *InventoryManager,
	entities *core.Table,
	mv *movement.Manager,
	nav *pathfind.NavGrid,
	bus *core.EventBus,
	speedTilesPerSec float64,
) *CarrierSystem {
	cs := &CarrierSystem{
		carriers:  carriers,
		inventory: inventory,
		entities:  entities,
		movement:  mv,
		nav:       nav,
		bus:       bus,
		speed:     speedTilesPerSec,
		legs:      make(map[core.EntityID]*legState),
	}
	bus.On(core.EvtUnitMovementStopped, cs.onMovementStopped)
	bus.On(core.EvtCarrierDeliveryComplete, cs.onDeliveryComplete)
	return cs
}

// Update decays fatigue each tick: Resting carriers recover 10/s,
// idle carriers recover 5/s, everyone else holds steady.
func (cs *CarrierSystem) Update(dt float64) {
	for _, c := range cs.carriers.All() {
		switch c.Status {
		case StatusResting:
			cs.carriers.AddFatigue(c.ID, -10*dt)
			if c.Fatigue <= 0 {
				cs.carriers.SetStatus(c.ID, StatusIdle)
			}
		case StatusIdle:
			cs.carriers.AddFatigue(c.ID, -5*dt)
		}
	}
}

// AssignDeliveryJob is the dispatcher's entry point: gate on
// CanAssign, record the job, and begin the pickup leg.
func (cs *CarrierSystem) AssignDeliveryJob(carrierID, source, dest core.EntityID, material string, amount float64) error {
	if err := cs.carriers.AssignJob(carrierID, CarrierJob{
		Kind: JobDelivery, Source: source, Dest: dest, Material: material, Amount: amount,
	}); err != nil {
		return err
	}
	return cs.beginLeg(carrierID, legPickup, source)
}

// beginLeg orders the carrier to the approach tile of targetBldg and
// records which leg it's walking, for correlation when
// unit:movementStopped fires.
func (cs *CarrierSystem) beginLeg(carrierID core.EntityID, l leg, targetBldg core.EntityID) error {
	carrier := cs.entities.Get(carrierID)
	target := cs.entities.Get(targetBldg)
	if carrier == nil || target == nil {
		return simerr.ErrUnknownEntity
	}
	approach, ok := pathfind.ApproachTile(cs.nav, target.Pos, carrier.Pos)
	if !ok {
		return simerr.ErrNoPath
	}
	if err := cs.movement.OrderMove(carrierID, approach, cs.speed); err != nil {
		return err
	}
	cs.carriers.SetStatus(carrierID, StatusWalking)
	cs.legs[carrierID] = &legState{leg: l, targetBldg: targetBldg, expectedTile: approach}
	return nil
}

func (cs *CarrierSystem) onMovementStopped(e core.Event) {
	p := e.Payload.(movement.MovementStoppedPayload)
	ls, tracked := cs.legs[p.Entity]
	if !tracked {
		return
	}
	carrier := cs.carriers.Get(p.Entity)
	if carrier == nil || carrier.Job == nil {
		delete(cs.legs, p.Entity)
		return
	}

	if p.Reason == movement.ReasonBlocked {
		cs.abortJob(p.Entity, carrier)
		return
	}

	switch ls.leg {
	case legPickup:
		cs.finishPickup(p.Entity, carrier)
	case legDeliver:
		cs.finishDeliver(p.Entity, carrier)
	case legReturnHome:
		cs.finishReturnHome(p.Entity, carrier)
	}
}

func (cs *CarrierSystem) finishPickup(id core.EntityID, carrier *Carrier) {
	cs.carriers.SetStatus(id, StatusPickingUp)
	job := carrier.Job
	withdrawn := cs.inventory.WithdrawOutput(job.Source, job.Material, job.Amount)
	if withdrawn <= 0 {
		cs.bus.Emit(core.Event{Type: core.EvtCarrierPickupFailed, Payload: CarrierPayload{Carrier: id, Material: job.Material}})
		cs.carriers.CompleteJob(id)
		cs.startReturnHome(id, carrier)
		return
	}
	cs.carriers.SetCarrying(id, job.Material, withdrawn)
	cs.bus.Emit(core.Event{Type: core.EvtCarrierPickupComplete, Payload: CarrierPayload{Carrier: id, Material: job.Material, Amount: withdrawn}})

	cs.carriers.setJob(id, CarrierJob{Kind: JobDelivery, Source: job.Source, Dest: job.Dest, Material: job.Material, Amount: withdrawn})
	if err := cs.beginLeg(id, legDeliver, job.Dest); err != nil {
		cs.abortJob(id, cs.carriers.Get(id))
	}
}

func (cs *CarrierSystem) finishDeliver(id core.EntityID, carrier *Carrier) {
	cs.carriers.SetStatus(id, StatusDelivering)
	job := carrier.Job
	deposited := cs.inventory.DepositInput(job.Dest, job.Material, job.Amount)
	overflow := job.Amount - deposited
	cs.carriers.SetCarrying(id, "", 0)
	cs.bus.Emit(core.Event{
		Type: core.EvtCarrierDeliveryComplete,
		Payload: CarrierPayload{
			Carrier: id, Material: job.Material, Amount: deposited, Overflow: overflow,
		},
	})
	cs.carriers.CompleteJob(id)
	cs.startReturnHome(id, carrier)
}

func (cs *CarrierSystem) finishReturnHome(id core.EntityID, carrier *Carrier) {
	cs.carriers.CompleteJob(id)
	delete(cs.legs, id)
	if BandFor(carrier.Fatigue) == FatigueExhausted || BandFor(carrier.Fatigue) == FatigueCollapsed {
		cs.carriers.SetStatus(id, StatusResting)
	} else {
		cs.carriers.SetStatus(id, StatusIdle)
	}
	cs.bus.Emit(core.Event{Type: core.EvtCarrierReturnedHome, Payload: id})
}

func (cs *CarrierSystem) startReturnHome(id core.EntityID, carrier *Carrier) {
	cs.carriers.setJob(id, CarrierJob{Kind: JobReturnHome, Dest: carrier.HomeHub})
	if err := cs.beginLeg(id, legReturnHome, carrier.HomeHub); err != nil {
		cs.carriers.CompleteJob(id)
		cs.carriers.SetStatus(id, StatusIdle)
		delete(cs.legs, id)
	}
}

// abortJob handles a blocked movement mid-job: the leg in progress is
// given up, any carried goods are dropped, and (unless already
// homebound) the carrier attempts to return home.
func (cs *CarrierSystem) abortJob(id core.EntityID, carrier *Carrier) {
	ls, tracked := cs.legs[id]
	delete(cs.legs, id)
	if carrier == nil {
		return
	}
	wasReturning := tracked && ls.leg == legReturnHome
	if carrier.Job != nil && carrier.Job.Kind == JobDelivery {
		cs.bus.Emit(core.Event{Type: core.EvtCarrierPickupFailed, Payload: CarrierPayload{Carrier: id}})
	}
	cs.carriers.SetCarrying(id, "", 0)
	cs.carriers.CompleteJob(id)
	if wasReturning {
		cs.carriers.SetStatus(id, StatusIdle)
		return
	}
	cs.startReturnHome(id, carrier)
}

// onDeliveryComplete adds the fixed fatigue cost of a completed
// delivery: carrier:deliveryComplete adds 5 to fatigue.
func (cs *CarrierSystem) onDeliveryComplete(e core.Event) {
	p, ok := e.Payload.(CarrierPayload)
	if !ok {
		return
	}
	cs.carriers.AddFatigue(p.Carrier, 5)
}
