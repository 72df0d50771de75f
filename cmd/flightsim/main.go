// Command flightsim drives the simulator truth generator against the
// estimator end-to-end: a runnable demonstration of the full tick
// loop, standing in for the real sensor harness during development
// and in CI.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/psas/rocketnav/internal/atmo"
	"github.com/psas/rocketnav/internal/calib"
	"github.com/psas/rocketnav/internal/config"
	"github.com/psas/rocketnav/internal/estimator"
	"github.com/psas/rocketnav/internal/filter"
	"github.com/psas/rocketnav/internal/geo"
	"github.com/psas/rocketnav/internal/phase"
	"github.com/psas/rocketnav/internal/simtruth"
	"github.com/psas/rocketnav/internal/telemetry"
	"github.com/psas/rocketnav/internal/tracing"
)

var (
	missionFile   = flag.String("mission", "", "mission YAML file (defaults if empty)")
	duration      = flag.Float64("duration", 120, "simulated seconds to run")
	tickRate      = flag.Float64("rate", 100, "tick rate, Hz")
	traceLevel    = flag.Int("trace", 0, "trace verbosity (0=off)")
	tracePhysics  = flag.Bool("trace-physics", false, "trace physics detail (level 3)")
	traceLTP      = flag.Bool("trace-ltp", false, "trace LTP/geodetic detail (level 4)")
	launchAtSec   = flag.Float64("launch-at", 2.0, "simulated second to issue arm()+launch()")
	calibFile     = flag.String("calib", "", "sqlite calibration database (skipped if empty)")
	influxURL     = flag.String("influx-url", "", "InfluxDB server URL (skipped if empty)")
	influxToken   = flag.String("influx-token", "", "InfluxDB auth token")
	influxOrg     = flag.String("influx-org", "psas", "InfluxDB organization")
	influxBucket  = flag.String("influx-bucket", "rocketnav", "InfluxDB bucket")
)

// ziggurantRNG is the harness's concrete filter.RNG: the estimator's
// particle noise and resampling offsets both come from here. Named
// for the ziggurat-style Gaussian sampler the original flight computer
// uses; this is a minimal Box-Muller substitute adequate for
// simulation and demonstration, not a bit-for-bit port of the
// original generator.
type ziggurantRNG struct {
	state uint64
}

func newRNG(seed uint64) *ziggurantRNG { return &ziggurantRNG{state: seed} }

func (r *ziggurantRNG) next() float64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return float64(r.state%1_000_000_007) / 1_000_000_007
}

func (r *ziggurantRNG) Uniform() float64 { return r.next() }

func (r *ziggurantRNG) Gaussian(sigma float64) float64 {
	u1, u2 := r.next(), r.next()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	const twoPi = 6.283185307179586
	radius := math.Sqrt(-2 * math.Log(u1))
	return sigma * radius * math.Cos(twoPi*u2)
}

func main() {
	flag.Parse()
	defer recoverInvariantViolation()

	level := *traceLevel
	if *tracePhysics && level < 3 {
		level = 3
	}
	if *traceLTP && level < 4 {
		level = 4
	}
	sink := tracing.NewSink(os.Stdout, level)

	mission := config.Default()
	if *missionFile != "" {
		m, err := config.Load(*missionFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrap(err, "flightsim"))
			os.Exit(1)
		}
		mission = m
	}

	atm := atmo.New(mission.Atmosphere.GroundPressure, mission.Atmosphere.GroundTemperature)
	origin := geo.Geodetic{Lat: mission.Origin.LatRad, Lon: mission.Origin.LonRad, Alt: mission.Origin.AltM}

	sim := simtruth.New(origin, atm)
	cb := &flightsimCallbacks{sink: sink, sim: sim}

	cfg := estimator.Config{
		Particles:    mission.Particles,
		Atmosphere:   atm,
		ProcessNoise: mission.FilterProcessNoise(),
		SensorNoise:  mission.EstimatorSensorNoise(),
	}
	est := estimator.New(cfg, newRNG(1), cb)
	est.Init(origin)

	if *calibFile != "" {
		store, err := calib.Open(*calibFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrap(err, "flightsim"))
			os.Exit(1)
		}
		if err := est.LoadCalibration(store); err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrap(err, "flightsim"))
			os.Exit(1)
		}
		store.Close()
	}

	cb.gauges = telemetry.NewGauges(prometheus.DefaultRegisterer)
	cb.est = est
	if *influxURL != "" {
		cb.influx = telemetry.NewInfluxSink(*influxURL, *influxToken, *influxOrg, *influxBucket)
		defer cb.influx.Close()
	}

	dt := 1.0 / *tickRate
	for t := 0.0; t < *duration; t += dt {
		if t >= *launchAtSec && cb.armedAt == 0 {
			est.Arm()
			est.Launch()
			sim.Ignite()
			cb.armedAt = t
		}

		r := sim.Sense()
		est.AccelerometerSensor(r.Accel)
		est.GyroscopeSensor(r.Gyro)
		est.MagnetometerSensor(r.Mag)
		est.PressureSensor(r.Pressure)
		est.GPSSensor(r.GPSPos, r.GPSVel)

		est.Tick(dt)
		sim.Tick(dt)
	}
}

// flightsimCallbacks wires the estimator's harness-facing interface
// onto the demo's own truth simulator (ignite/drogue/main toggle the
// same recovery state the truth generator reads) and the trace sink.
type flightsimCallbacks struct {
	sink    *tracing.Sink
	sim     *simtruth.Simulator
	armedAt float64

	est           *estimator.Estimator
	gauges        *telemetry.Gauges
	influx        *telemetry.InfluxSink
	lastResamples int
}

func (c *flightsimCallbacks) ReportState(p phase.Phase) {
	c.sink.Trace(0, "phase -> %s\n", p)
}

func (c *flightsimCallbacks) Ignite(on bool) {
	if on {
		c.sim.Ignite()
	}
	c.sink.Trace(1, "ignite(%v)\n", on)
}

func (c *flightsimCallbacks) DrogueChute(on bool) {
	if on {
		c.sim.ReleaseDrogue()
	}
	c.sink.Trace(1, "drogue_chute(%v)\n", on)
}

func (c *flightsimCallbacks) MainChute(on bool) {
	if on {
		c.sim.ReleaseMain()
	}
	c.sink.Trace(1, "main_chute(%v)\n", on)
}

func (c *flightsimCallbacks) EnqueueError(err error) {
	c.sink.Trace(0, "error: %s\n", err)
}

func (c *flightsimCallbacks) TraceState(ce estimator.Centroid, p phase.Phase, ess float64) {
	c.sink.TraceLine(
		tracing.Vec3Like{X: ce.Pos.X, Y: ce.Pos.Y, Z: ce.Pos.Z},
		tracing.Vec3Like{X: ce.Vel.X, Y: ce.Vel.Y, Z: ce.Vel.Z},
		p.String(), ess)

	altM := geo.ECEFToGeodetic(ce.Pos).Alt
	total := c.est.ResampleCount()
	if c.gauges != nil {
		c.gauges.ESS.Set(ess)
		c.gauges.Phase.Set(float64(p))
		c.gauges.CentroidAltM.Set(altM)
		if delta := total - c.lastResamples; delta > 0 {
			c.gauges.ResampleCount.Add(float64(delta))
		}
	}
	if c.influx != nil {
		c.influx.WriteTick(c.sink.SessionID().String(), time.Now(), altM, ess, p.String(), total)
	}
	c.lastResamples = total
}

// recoverInvariantViolation is the distinct recover path spec.md
// section 7 requires for estimator.ErrInvariantViolation: a corrupted
// particle population is a fatal condition the harness reports and
// exits on, separately from the ordinary EnqueueError anomaly path.
func recoverInvariantViolation() {
	r := recover()
	if r == nil {
		return
	}
	err, ok := r.(error)
	if !ok || errors.Cause(err) != estimator.ErrInvariantViolation {
		panic(r)
	}
	fmt.Fprintln(os.Stderr, "flightsim: invariant violation:", err)
	os.Exit(2)
}

// filter.RNG compile-time check.
var _ filter.RNG = (*ziggurantRNG)(nil)
