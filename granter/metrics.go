package granter

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/prometheus/client_golang/prometheus"
)

const successOutcome = "success"

// Metrics counts grants by grant type and outcome and times them.
type Metrics struct {
	grants   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the grant collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		grants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grants_total",
			Help: "Token grants by grant type and outcome.",
		}, []string{"grant_type", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grant_duration_seconds",
			Help:    "Time spent creating an access token.",
			Buckets: prometheus.DefBuckets,
		}, []string{"grant_type"}),
	}
	for _, c := range []prometheus.Collector{m.grants, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Instrument wraps every strategy in r.
func (m *Metrics) Instrument(r Registry) Registry {
	out := make(Registry, len(r))
	for grantType, g := range r {
		out[grantType] = &Instrumented{next: g, grantType: grantType, metrics: m}
	}
	return out
}

var _ Granter = (*Instrumented)(nil)

// Instrumented records the outcome and latency of another granter.
type Instrumented struct {
	next      Granter
	grantType oauth2.GrantType
	metrics   *Metrics
}

func (i *Instrumented) CreateAccessToken(ctx context.Context, client *clients.Client, req *oauth2.TokenRequest) (*token.AuthorizedAccessToken, error) {
	start := time.Now()
	t, err := i.next.CreateAccessToken(ctx, client, req)

	label := string(i.grantType)
	i.metrics.duration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	outcome := successOutcome
	if err != nil {
		outcome = string(oauthmodel.CodeFor(err))
	}
	i.metrics.grants.WithLabelValues(label, outcome).Inc()
	return t, err
}
