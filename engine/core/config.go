package core

import "github.com/sirupsen/logrus"

// Config bundles the knobs a host app can tune when constructing a
// simulation: tick rate, carrier tuning, and an injectable logger.
// sim.NewGame reads every field except CarrierFatigueRecoveryPerTick.
type Config struct {
	// TickRate is simulation ticks per second.
	TickRate float64

	// CarrierBaseSpeedTilesPerSec is how fast a carrier moves; the
	// carrier system uses it unchanged at every fatigue level.
	CarrierBaseSpeedTilesPerSec float64

	// CarrierFatigueRecoveryPerTick is not read by any system: the
	// carrier system recovers fatigue at fixed rates (see
	// logistics.CarrierSystem.Update).
	CarrierFatigueRecoveryPerTick float64

	// DispatcherStallTicks is how many ticks an assigned (InProgress)
	// request may stay unfulfilled before the dispatcher's stall sweep
	// resets it to pending and logs a warning. sim.NewGame also derives
	// the sweep interval from it (one fifth, plus one).
	DispatcherStallTicks uint64

	// MovementMaxRepathAttempts bounds how many times a blocked unit
	// re-requests a path before giving up and emitting
	// unit:movementStopped.
	MovementMaxRepathAttempts int

	// Logger is used by every manager for structured logging. If nil,
	// managers fall back to simlog.Default().
	Logger *logrus.Logger
}

// DefaultConfig returns reasonable defaults: 10 ticks/sec, up to three
// re-path attempts, and a 50-tick stall timeout.
func DefaultConfig() Config {
	return Config{
		TickRate:                      10,
		CarrierBaseSpeedTilesPerSec:   2,
		CarrierFatigueRecoveryPerTick: 0.01,
		DispatcherStallTicks:          50,
		MovementMaxRepathAttempts:     3,
	}
}
