package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGaugesRecordValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := NewGauges(reg)

	g.ESS.Set(123.5)
	g.Phase.Set(2)
	g.ResampleCount.Add(1)
	g.CentroidAltM.Set(4500)

	if got := testutil.ToFloat64(g.ESS); got != 123.5 {
		t.Errorf("ESS = %v, want 123.5", got)
	}
	if got := testutil.ToFloat64(g.ResampleCount); got != 1 {
		t.Errorf("ResampleCount = %v, want 1", got)
	}
}
