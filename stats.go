// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"encoding/json"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// statistics records completed requests into a private Prometheus
// registry.
type statistics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	bytes     prometheus.Histogram
	redirects prometheus.Counter
}

func newStatistics() *statistics {
	s := &statistics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlrequest_requests_total",
				Help: "Requests that reached a terminal state, by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "urlrequest_request_duration_seconds",
				Help:    "Time from start to terminal state, by outcome.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		bytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "urlrequest_response_body_bytes",
				Help:    "Response body bytes written to the sink per request.",
				Buckets: prometheus.ExponentialBuckets(64, 4, 10),
			},
		),
		redirects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "urlrequest_redirects_total",
				Help: "Redirects followed.",
			},
		),
	}
	s.registry.MustRegister(s.requests, s.duration, s.bytes, s.redirects)
	return s
}

func (s *statistics) observe(r *Request) {
	res := r.Result()
	outcome := r.Outcome().String()
	s.requests.WithLabelValues(outcome).Inc()
	if d := res.Duration(); d > 0 {
		s.duration.WithLabelValues(outcome).Observe(d.Seconds())
	}
	s.bytes.Observe(float64(res.BytesWritten))
	s.redirects.Add(float64(res.Redirects))
}

type metricJSON struct {
	Labels map[string]string `json:"labels,omitempty"`
	Value  *float64          `json:"value,omitempty"`
	Count  *uint64           `json:"count,omitempty"`
	Sum    *float64          `json:"sum,omitempty"`
}

type familyJSON struct {
	Help    string       `json:"help"`
	Type    string       `json:"type"`
	Metrics []metricJSON `json:"metrics"`
}

// json renders every metric family whose name contains filter. An empty
// filter selects all families.
func (s *statistics) json(filter string) (string, error) {
	families, err := s.registry.Gather()
	if err != nil {
		return "", err
	}
	out := make(map[string]familyJSON, len(families))
	for _, mf := range families {
		if !strings.Contains(mf.GetName(), filter) {
			continue
		}
		fam := familyJSON{Help: mf.GetHelp(), Type: mf.GetType().String()}
		for _, m := range mf.GetMetric() {
			fam.Metrics = append(fam.Metrics, metricOf(mf.GetType(), m))
		}
		out[mf.GetName()] = fam
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func metricOf(t dto.MetricType, m *dto.Metric) metricJSON {
	var mj metricJSON
	if pairs := m.GetLabel(); len(pairs) > 0 {
		mj.Labels = make(map[string]string, len(pairs))
		for _, lp := range pairs {
			mj.Labels[lp.GetName()] = lp.GetValue()
		}
	}
	switch t {
	case dto.MetricType_COUNTER:
		v := m.GetCounter().GetValue()
		mj.Value = &v
	case dto.MetricType_GAUGE:
		v := m.GetGauge().GetValue()
		mj.Value = &v
	case dto.MetricType_HISTOGRAM:
		c, sum := m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
		mj.Count, mj.Sum = &c, &sum
	}
	return mj
}
