// Package phase implements the flight-phase state machine: consensus
// over the particle cloud, gated by hysteresis and rate-limited
// actuator commands.
package phase

import (
	"github.com/pkg/errors"
)

// Phase is one of the four flight states. Transitions are strictly
// forward except that PREFLIGHT and ARMED both fall through to FLIGHT
// on the same not-on-ground edge.
type Phase int

const (
	Preflight Phase = iota
	Armed
	Flight
	Recovery
)

func (p Phase) String() string {
	switch p {
	case Preflight:
		return "PREFLIGHT"
	case Armed:
		return "ARMED"
	case Flight:
		return "FLIGHT"
	case Recovery:
		return "RECOVERY"
	default:
		return "UNKNOWN"
	}
}

const (
	canArmThreshold      = 0.25 // s, hysteresis before can_arm
	flightThreshold      = 1.0  // s, hysteresis before FLIGHT
	recoveryThreshold    = 1.0  // s, hysteresis before RECOVERY
	deployThreshold      = 0.25 // s, hysteresis before drogue/main fire
	consensusMajority    = 0.5  // fraction of weight required to hold a condition
	rateLimitDelay       = 1.0  // s, minimum spacing between pyro commands
)

// Callbacks is the harness-facing actuator/notification interface. The
// core never touches hardware directly; every side effect the phase
// machine decides on flows out through one of these.
type Callbacks interface {
	ReportState(p Phase)
	Ignite(on bool)
	DrogueChute(on bool)
	MainChute(on bool)
	// EnqueueError surfaces a locally-recovered anomaly (a rejected
	// arm(), a repeated idempotent actuation) without aborting the
	// tick.
	EnqueueError(err error)
}

// Consensus is the per-tick aggregated particle-cloud statistics the
// machine decides on; the caller (the estimator's weighted pass over
// the population) computes these as normalized consensus masses in
// [0, 1].
type Consensus struct {
	OnGround     float64 // weight of particles with |vel|<=2 and |acc|<=2
	DeployDrogue float64 // weight descending, near-freefall, while in FLIGHT
	DeployMain   float64 // weight descending, below 500m AGL, |vel|>=10, while in FLIGHT
}

// Machine holds the phase, the hysteresis duration accumulators, and
// the per-actuator rate-limit clocks. Zero value is not valid; use
// New.
type Machine struct {
	state Phase
	cb    Callbacks

	onGroundDuration    float64
	notOnGroundDuration float64
	drogueDuration      float64
	mainDuration        float64

	drogueDelay float64
	mainDelay   float64

	canArm  bool
	ignited bool
}

// New constructs a Machine in PREFLIGHT with both rate-limit clocks
// already elapsed (a command may fire the first time its condition is
// satisfied).
func New(cb Callbacks) *Machine {
	return &Machine{
		state:       Preflight,
		cb:          cb,
		drogueDelay: rateLimitDelay,
		mainDelay:   rateLimitDelay,
	}
}

// State returns the current phase.
func (m *Machine) State() Phase { return m.state }

// CanArm reports whether the on-ground hysteresis has held long enough
// to allow arm().
func (m *Machine) CanArm() bool { return m.canArm }

// accumulate advances a duration counter: increments by delta while
// holding is true, resets to zero otherwise. Mirrors the "increments
// by Δt when the condition holds above 0.5 and resets to 0 otherwise"
// hysteresis rule.
func accumulate(dur, delta float64, holding bool) float64 {
	if holding {
		return dur + delta
	}
	return 0
}

// Update runs one tick of phase decisions against the aggregated
// consensus masses. It must be called after all sensor updates for the
// tick have landed and before the physics predict step, so that a
// phase transition is never based on a state that has already been
// advanced past it.
func (m *Machine) Update(delta float64, c Consensus) {
	onGround := c.OnGround > consensusMajority
	m.onGroundDuration = accumulate(m.onGroundDuration, delta, onGround)
	m.notOnGroundDuration = accumulate(m.notOnGroundDuration, delta, !onGround)

	m.canArm = m.onGroundDuration > canArmThreshold

	if m.state != Recovery && m.state != Flight && m.notOnGroundDuration > flightThreshold {
		m.transition(Flight)
	}

	if m.state == Flight && m.onGroundDuration > recoveryThreshold {
		m.transition(Recovery)
	}

	drogueHolding := m.state == Flight && c.DeployDrogue > consensusMajority
	m.drogueDuration = accumulate(m.drogueDuration, delta, drogueHolding)
	m.drogueDelay += delta
	if m.drogueDuration > deployThreshold && m.drogueDelay >= rateLimitDelay {
		m.cb.DrogueChute(true)
		m.drogueDelay = 0
	}

	mainHolding := m.state == Flight && c.DeployMain > consensusMajority
	m.mainDuration = accumulate(m.mainDuration, delta, mainHolding)
	m.mainDelay += delta
	if m.mainDuration > deployThreshold && m.mainDelay >= rateLimitDelay {
		m.cb.MainChute(true)
		m.mainDelay = 0
	}
}

func (m *Machine) transition(to Phase) {
	if m.state == Recovery || m.state == to {
		// Testable property 6: once RECOVERY, no further transition.
		// Re-entering the current state is a no-op, not a re-report.
		return
	}
	m.state = to
	m.cb.ReportState(to)
}

// Arm is the operator command to move PREFLIGHT->ARMED. It is rejected
// (enqueued as an error, not panicked) if can_arm hasn't held or the
// machine isn't in PREFLIGHT.
func (m *Machine) Arm() {
	if m.state != Preflight {
		m.cb.EnqueueError(errors.New("cannot arm: not in preflight state"))
		return
	}
	if !m.canArm {
		m.cb.EnqueueError(errors.New("cannot arm: safety conditions not met"))
		return
	}
	m.transition(Armed)
}

// Launch is the operator command to ignite from ARMED. Actuator
// commands are idempotent from the host's perspective: a repeated
// ignite is a logged anomaly, not a fault.
func (m *Machine) Launch() {
	if m.state != Armed {
		m.cb.EnqueueError(errors.New("cannot launch: not armed"))
		return
	}
	if m.ignited {
		m.cb.EnqueueError(errors.New("ignite already issued, ignoring repeat launch"))
		return
	}
	m.ignited = true
	m.cb.Ignite(true)
}
