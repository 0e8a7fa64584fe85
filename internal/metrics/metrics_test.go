package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("sportsdb", OutcomeOK))
	ObserveUpstream("sportsdb", OutcomeOK, 10*time.Millisecond)
	after := testutil.ToFloat64(upstreamRequests.WithLabelValues("sportsdb", OutcomeOK))
	assert.Equal(t, before+1, after)
}

func TestReportAndRecommendationCounters(t *testing.T) {
	ReportComposed(OutcomeSkipped)
	RecommendationProduced(OutcomeEmpty)
	assert.GreaterOrEqual(t, testutil.ToFloat64(reports.WithLabelValues(OutcomeSkipped)), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(recommendations.WithLabelValues(OutcomeEmpty)), 1.0)
}

func TestQueueMetrics(t *testing.T) {
	QueueDepth("critical", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(queueDepth.WithLabelValues("critical")))

	before := testutil.ToFloat64(queueDropped.WithLabelValues("background"))
	QueueDropped("background")
	assert.Equal(t, before+1, testutil.ToFloat64(queueDropped.WithLabelValues("background")))
}
