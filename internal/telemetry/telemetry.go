// Package telemetry exposes the estimator's per-tick observability
// surface: Prometheus gauges for ground-support scraping and an
// InfluxDB point sink for post-flight review, grounded on the same
// two clients the teacher's plotting tool pushes solution data
// through.
package telemetry

import (
	"time"

	influxdb "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/prometheus/client_golang/prometheus"
)

// Gauges are the live ground-support metrics: ESS, current phase (as
// its ordinal), resample count, and weighted-centroid altitude.
type Gauges struct {
	ESS           prometheus.Gauge
	Phase         prometheus.Gauge
	ResampleCount prometheus.Counter
	CentroidAltM  prometheus.Gauge
}

// NewGauges builds and registers the gauge set against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the
// default global registry across runs.
func NewGauges(reg prometheus.Registerer) *Gauges {
	g := &Gauges{
		ESS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rocketnav_filter_ess",
			Help: "effective sample size of the particle population",
		}),
		Phase: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rocketnav_flight_phase",
			Help: "current flight phase ordinal (0=PREFLIGHT..3=RECOVERY)",
		}),
		ResampleCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rocketnav_resample_total",
			Help: "number of resample operations performed",
		}),
		CentroidAltM: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rocketnav_centroid_altitude_meters",
			Help: "weighted-centroid geodetic altitude",
		}),
	}
	reg.MustRegister(g.ESS, g.Phase, g.ResampleCount, g.CentroidAltM)
	return g
}

// InfluxSink writes one point per tick to a bucket for post-flight
// review, using the client's non-blocking WriteAPI rather than
// WriteAPIBlocking, matching the teacher's own plotting tool.
type InfluxSink struct {
	client   influxdb.Client
	writeAPI api.WriteAPI
}

// NewInfluxSink opens a client against serverURL/token and returns a
// sink bound to org/bucket. The caller owns the sink's lifetime and
// must call Close when done.
func NewInfluxSink(serverURL, token, org, bucket string) *InfluxSink {
	client := influxdb.NewClient(serverURL, token)
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPI(org, bucket),
	}
}

// WriteTick records one tick's centroid/ESS/phase as a single point in
// the "tick" measurement, tagged with the run's session UUID.
func (s *InfluxSink) WriteTick(sessionID string, t time.Time, altM, ess float64, phaseName string, resampleCount int) {
	p := influxdb.NewPointWithMeasurement("tick").
		AddTag("session", sessionID).
		AddTag("phase", phaseName).
		AddField("centroid_alt_m", altM).
		AddField("ess", ess).
		AddField("resample_count", resampleCount).
		SetTime(t)
	s.writeAPI.WritePoint(p)
}

// Flush blocks until all buffered points have been written.
func (s *InfluxSink) Flush() { s.writeAPI.Flush() }

// Close flushes and releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.writeAPI.Flush()
	s.client.Close()
}
