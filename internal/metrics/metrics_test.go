package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestNilSchedulerMethodsAreNoOps(t *testing.T) {
	var s *Scheduler
	assert.NotPanics(t, func() {
		s.ObserveTick(time.Millisecond)
		s.SetWakeDepth(3)
		s.CountOp("login")
	})
}

func TestSchedulerRecordsObservations(t *testing.T) {
	s := NewScheduler()

	s.SetWakeDepth(5)
	var gauge dto.Metric
	assert.NoError(t, s.WakeDepth.Write(&gauge))
	assert.Equal(t, float64(5), gauge.GetGauge().GetValue())

	s.CountOp("login")
	s.CountOp("login")
	var counter dto.Metric
	assert.NoError(t, s.OpsTotal.WithLabelValues("login").Write(&counter))
	assert.Equal(t, float64(2), counter.GetCounter().GetValue())
}
