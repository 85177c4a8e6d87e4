package logistics

import (
	"testing"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/stretchr/testify/require"
)

func TestBandForBoundaries(t *testing.T) {
	require.Equal(t, FatigueFresh, BandFor(25))
	require.Equal(t, FatigueTired, BandFor(26))
	require.Equal(t, FatigueTired, BandFor(50))
	require.Equal(t, FatigueExhausted, BandFor(51))
	require.Equal(t, FatigueExhausted, BandFor(75))
	require.Equal(t, FatigueCollapsed, BandFor(76))
}

func TestRegisterEmitsCreated(t *testing.T) {
	bus := core.NewEventBus()
	calls := 0
	bus.On(core.EvtCarrierCreated, func(e core.Event) { calls++ })
	m := NewCarrierManager(bus)

	c := m.Register(1, 10)

	require.Equal(t, core.EntityID(1), c.ID)
	require.Equal(t, StatusIdle, c.Status)
	require.Equal(t, 1, calls)
}

func TestCanAssignGatesOnStatusJobAndFatigue(t *testing.T) {
	bus := core.NewEventBus()
	m := NewCarrierManager(bus)
	m.Register(1, 10)

	require.True(t, m.CanAssign(1))

	m.SetStatus(1, StatusWalking)
	require.False(t, m.CanAssign(1))

	m.SetStatus(1, StatusIdle)
	m.AddFatigue(1, 60)
	require.False(t, m.CanAssign(1))
}

func TestAssignJobFailsWhenUnavailable(t *testing.T) {
	bus := core.NewEventBus()
	m := NewCarrierManager(bus)
	m.Register(1, 10)
	m.SetStatus(1, StatusWalking)

	err := m.AssignJob(1, CarrierJob{Kind: JobDelivery})

	require.Error(t, err)
}

func TestAssignJobSucceedsAndBlocksSecondAssignment(t *testing.T) {
	bus := core.NewEventBus()
	m := NewCarrierManager(bus)
	m.Register(1, 10)

	require.NoError(t, m.AssignJob(1, CarrierJob{Kind: JobDelivery, Amount: 5}))
	require.False(t, m.CanAssign(1))

	err := m.AssignJob(1, CarrierJob{Kind: JobDelivery, Amount: 5})
	require.Error(t, err)
}

func TestCompleteJobClearsJobAndReturnsIt(t *testing.T) {
	bus := core.NewEventBus()
	m := NewCarrierManager(bus)
	m.Register(1, 10)
	m.AssignJob(1, CarrierJob{Kind: JobDelivery, Amount: 7})

	job := m.CompleteJob(1)

	require.NotNil(t, job)
	require.Equal(t, 7.0, job.Amount)
	require.Nil(t, m.Get(1).Job)
	require.Nil(t, m.CompleteJob(1))
}

func TestAddFatigueClampsToRange(t *testing.T) {
	bus := core.NewEventBus()
	m := NewCarrierManager(bus)
	m.Register(1, 10)

	m.AddFatigue(1, -50)
	require.Equal(t, 0.0, m.Get(1).Fatigue)

	m.AddFatigue(1, 500)
	require.Equal(t, 100.0, m.Get(1).Fatigue)
}

func TestSetStatusEmitsOnlyOnChange(t *testing.T) {
	bus := core.NewEventBus()
	calls := 0
	bus.On(core.EvtCarrierStatusChanged, func(e core.Event) { calls++ })
	m := NewCarrierManager(bus)
	m.Register(1, 10)

	m.SetStatus(1, StatusIdle)
	require.Equal(t, 0, calls)

	m.SetStatus(1, StatusWalking)
	require.Equal(t, 1, calls)
}

func TestReassignToHubFailsWithActiveJob(t *testing.T) {
	bus := core.NewEventBus()
	m := NewCarrierManager(bus)
	m.Register(1, 10)
	m.AssignJob(1, CarrierJob{Kind: JobDelivery})

	err := m.ReassignToHub(1, 20)

	require.Error(t, err)
}

func TestRemoveEmitsRemoved(t *testing.T) {
	bus := core.NewEventBus()
	calls := 0
	bus.On(core.EvtCarrierRemoved, func(e core.Event) { calls++ })
	m := NewCarrierManager(bus)
	m.Register(1, 10)

	m.Remove(1)

	require.Nil(t, m.Get(1))
	require.Equal(t, 1, calls)
}

func TestAllReturnsEveryCarrier(t *testing.T) {
	bus := core.NewEventBus()
	m := NewCarrierManager(bus)
	m.Register(1, 10)
	m.Register(2, 10)

	require.Len(t, m.All(), 2)
}
