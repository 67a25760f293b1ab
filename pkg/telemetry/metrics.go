// See:
//   https://godoc.org/github.com/prometheus/client_golang/prometheus/push#Pusher.Push
//   https://prometheus.io/docs/instrumenting/pushing/
package telemetry

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Metrics is a collection of metric sets, one per label kind.
// For label names ["pipeline", "step"], observing a "step" records the pipeline it ran in as well.
type Metrics struct {
	labelNames       []string
	kindToMetricSets map[string]*MetricSet
}

// NewMetrics returns a Metrics object. Use a new instance of
// Metrics when not using the default Prometheus metrics registry.
func NewMetrics(name string, labelNames []string, counterOpts ...CounterOption) *Metrics {
	metricsets := map[string]*MetricSet{}
	for i := 0; i < len(labelNames); i++ {
		l := labelNames[i]
		metricsets[l] = NewMetricSet(name, labelNames[:i+1], counterOpts...)
	}

	return &Metrics{
		labelNames:       labelNames,
		kindToMetricSets: metricsets,
	}
}

// EnableHandlingTimeHistogram enables histograms for every metric set.
func (m *Metrics) EnableHandlingTimeHistogram(opts ...HistogramOption) {
	for _, ms := range m.kindToMetricSets {
		ms.EnableHandlingTimeHistogram(opts...)
	}
}

// Observe records one handled operation of the given kind.
// labelValues must hold one value per label name up to and including kind.
func (m *Metrics) Observe(kind string, startTime, endTime time.Time, status string, labelValues ...string) error {
	ms, ok := m.kindToMetricSets[kind]
	if !ok {
		return fmt.Errorf("unregistered kind found: %q", kind)
	}
	if len(labelValues) != len(ms.LabelNames) {
		return fmt.Errorf("kind %q takes %d label values, got %d", kind, len(ms.LabelNames), len(labelValues))
	}
	ms.Observe(startTime, endTime, status, labelValues)
	return nil
}

// Describe sends the super-set of all possible descriptors of metrics
// collected by this Collector to the provided channel and returns once
// the last descriptor has been sent.
func (m *Metrics) Describe(ch chan<- *prom.Desc) {
	for _, ms := range m.kindToMetricSets {
		ms.Describe(ch)
	}
}

// Collect is called by the Prometheus registry when collecting
// metrics. The implementation sends each collected metric via the
// provided channel and returns once the last metric has been sent.
func (m *Metrics) Collect(ch chan<- prom.Metric) {
	for _, ms := range m.kindToMetricSets {
		ms.Collect(ch)
	}
}

// pushBase can be something like http://pushgateway:9091 (for pushgateway)
// or http://pushgateway:9091/api/ui (for weaveworks/prom-aggregation-gateway)
func (m *Metrics) Push(pushBase, job string) error {
	return push.New(pushBase, job).
		Collector(m).
		Push()
}
