package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "navindex"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	loadDuration *prom.HistogramVec
	siteSize     *prom.GaugeVec
	violations   prom.Gauge
	brokenHrefs  prom.Gauge
	reloads      *prom.CounterVec
	snapshots    *prom.CounterVec
	gitSyncs     *prom.CounterVec
	httpRequests *prom.CounterVec
	httpDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		loadDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of loading a site's navigation data",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		siteSize: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "site_items",
			Help:      "Number of tree nodes, symbols and index entries in the loaded site",
		}, []string{"kind"}),
		violations: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_violations",
			Help:      "Violations and index problems found by the last validation",
		}),
		brokenHrefs: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "broken_hrefs",
			Help:      "Broken hrefs found by the last verification",
		}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Site reloads by result",
		}, []string{"result"}),
		snapshots: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshot saves by whether a row was written",
		}, []string{"created"}),
		gitSyncs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "git_syncs_total",
			Help:      "Git sync runs by result",
		}, []string{"result"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status",
		}, []string{"route", "status"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API request duration by route",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(pr.loadDuration, pr.siteSize, pr.violations, pr.brokenHrefs,
		pr.reloads, pr.snapshots, pr.gitSyncs, pr.httpRequests, pr.httpDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveLoadDuration(d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.loadDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetSiteSize(nodes, symbols, entries int) {
	if p == nil {
		return
	}
	p.siteSize.WithLabelValues("nodes").Set(float64(nodes))
	p.siteSize.WithLabelValues("symbols").Set(float64(symbols))
	p.siteSize.WithLabelValues("index_entries").Set(float64(entries))
}

func (p *PrometheusRecorder) SetViolations(n int) {
	if p == nil {
		return
	}
	p.violations.Set(float64(n))
}

func (p *PrometheusRecorder) SetBrokenHrefs(n int) {
	if p == nil {
		return
	}
	p.brokenHrefs.Set(float64(n))
}

func (p *PrometheusRecorder) IncReload(result ResultLabel) {
	if p == nil {
		return
	}
	p.reloads.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncSnapshot(created bool) {
	if p == nil {
		return
	}
	p.snapshots.WithLabelValues(strconv.FormatBool(created)).Inc()
}

func (p *PrometheusRecorder) IncGitSync(result ResultLabel) {
	if p == nil {
		return
	}
	p.gitSyncs.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
