/*
Copyright 2026 The Kubernetes-CSI-Addons Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exports the result of teardown runs in the Prometheus
// text format, for collection by the node exporter textfile collector.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/csi-addons/vg-cleanup/internal/teardown"
)

const namespace = "vg_cleanup"

// Metrics holds the gauges and counters describing teardown runs.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	matched       prometheus.Gauge
	succeeded     prometheus.Gauge
	failed        prometheus.Gauge
	outcomes      *prometheus.GaugeVec
	duration      prometheus.Gauge
	lastRun       prometheus.Gauge
	lastRunFailed prometheus.Gauge
}

// New returns Metrics registered on a dedicated registry. prefix and
// dryRun are attached to every series.
func New(prefix string, dryRun bool) *Metrics {
	labels := prometheus.Labels{
		"prefix":  prefix,
		"dry_run": strconv.FormatBool(dryRun),
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "runs_total",
			Help:        "Number of teardown runs, by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		matched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "volume_groups_matched",
			Help:        "Number of volume groups matching the prefix in the last run.",
			ConstLabels: labels,
		}),
		succeeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "volume_groups_succeeded",
			Help:        "Number of volume groups deleted in the last run.",
			ConstLabels: labels,
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "volume_groups_failed",
			Help:        "Number of volume groups not deleted in the last run.",
			ConstLabels: labels,
		}),
		outcomes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "volume_group_outcomes",
			Help:        "Number of volume groups per outcome in the last run.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_duration_seconds",
			Help:        "Duration of the last run.",
			ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Time the last run finished, in seconds since the epoch.",
			ConstLabels: labels,
		}),
		lastRunFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_failed",
			Help:        "1 if at least one volume group was not deleted in the last run.",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.runs,
		m.matched,
		m.succeeded,
		m.failed,
		m.outcomes,
		m.duration,
		m.lastRun,
		m.lastRunFailed,
	)

	return m
}

// Observe records the summary of a finished run.
func (m *Metrics) Observe(s teardown.Summary, duration time.Duration, finished time.Time) {
	result := "success"
	m.lastRunFailed.Set(0)
	if s.HasFailures() {
		result = "failure"
		m.lastRunFailed.Set(1)
	}
	m.runs.WithLabelValues(result).Inc()

	m.matched.Set(float64(s.Matched))
	m.succeeded.Set(float64(s.Succeeded))
	m.failed.Set(float64(s.Failed))
	for _, o := range teardown.Outcomes() {
		m.outcomes.WithLabelValues(o.String()).Set(float64(s.Outcomes[o]))
	}
	m.duration.Set(duration.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

// WriteToTextfile writes all metrics to path, replacing the file
// atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %q: %w", path, err)
	}

	return nil
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
