/*
Copyright (c) Facebook, Inc. and its affiliates.

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

package listener

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/facebook/safetime/ntp"
)

// PrometheusListener pushes sync progress directly into a prometheus
// registry as it happens, rather than scraping a separate process. Embed
// NoOp semantics are not needed since every callback is implemented.
type PrometheusListener struct {
	registry *prometheus.Registry

	syncsSucceeded prometheus.Counter
	syncsFailed    prometheus.Counter
	responsesOK    prometheus.Counter
	responsesFail  prometheus.Counter
	retryLoops     prometheus.Counter
	lastOffsetMS   prometheus.Gauge
}

// NewPrometheusListener builds a PrometheusListener with its own registry
// and registers every collector.
func NewPrometheusListener() *PrometheusListener {
	p := &PrometheusListener{
		registry: prometheus.NewRegistry(),
		syncsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safetime_syncs_succeeded_total",
			Help: "Number of sync tasks that produced a trusted TimeSample.",
		}),
		syncsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safetime_syncs_failed_total",
			Help: "Number of sync tasks that exhausted their retry budget.",
		}),
		responsesOK: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safetime_ntp_responses_accepted_total",
			Help: "Number of individual NTP responses that passed validation.",
		}),
		responsesFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safetime_ntp_responses_rejected_total",
			Help: "Number of individual NTP attempts that failed (transport or validation).",
		}),
		retryLoops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safetime_retry_loops_total",
			Help: "Number of announced waits before a new cycle across the host list (cycles without a delay are not counted).",
		}),
		lastOffsetMS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "safetime_last_offset_milliseconds",
			Help: "Offset, in milliseconds, of the most recently trusted sample.",
		}),
	}
	p.registry.MustRegister(p.syncsSucceeded, p.syncsFailed, p.responsesOK, p.responsesFail, p.retryLoops, p.lastOffsetMS)
	return p
}

// Handler returns the HTTP handler that exposes the registry at /metrics.
func (p *PrometheusListener) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusListener) OnSuccessful(sample ntp.TimeSample) {
	p.syncsSucceeded.Inc()
	p.lastOffsetMS.Set(float64(sample.OffsetMS))
}

func (p *PrometheusListener) OnFailed(error) {
	p.syncsFailed.Inc()
}

func (p *PrometheusListener) OnNTPResponseSuccessful(_ ntp.TimeSample, _ string, _, _ int) {
	p.responsesOK.Inc()
}

func (p *PrometheusListener) OnNTPResponseFailed(_ string, _, _ int, _ error) {
	p.responsesFail.Inc()
}

func (p *PrometheusListener) NextRetryLoopIn(_ int, _ time.Duration) {
	p.retryLoops.Inc()
}

var _ Set = (*PrometheusListener)(nil)
