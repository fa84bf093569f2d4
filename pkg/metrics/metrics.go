// Package metrics is a small Prometheus text-format registry for the API
// server: request counters, the catalog backend gauge and request latency.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LatencyBuckets are the histogram upper bounds, in seconds.
var LatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Counter only goes up.
type Counter struct{ n atomic.Int64 }

func (c *Counter) Inc() { c.n.Add(1) }

func (c *Counter) write(w io.Writer, series string) {
	fmt.Fprintf(w, "%s %d\n", series, c.n.Load())
}

// Gauge holds the last value set.
type Gauge struct{ n atomic.Int64 }

func (g *Gauge) Set(v int64) { g.n.Store(v) }

func (g *Gauge) write(w io.Writer, series string) {
	fmt.Fprintf(w, "%s %d\n", series, g.n.Load())
}

// Histogram counts observations into LatencyBuckets.
type Histogram struct {
	mu    sync.Mutex
	hits  []uint64 // per bucket, not cumulative
	sum   float64
	count uint64
}

// Observe records v.
func (h *Histogram) Observe(v float64) {
	i := sort.SearchFloat64s(LatencyBuckets, v)
	h.mu.Lock()
	if i < len(h.hits) {
		h.hits[i]++
	}
	h.sum += v
	h.count++
	h.mu.Unlock()
}

// Since observes the seconds elapsed since t.
func (h *Histogram) Since(t time.Time) { h.Observe(time.Since(t).Seconds()) }

func (h *Histogram) write(w io.Writer, series string) {
	base, labels := splitSeries(series)
	h.mu.Lock()
	defer h.mu.Unlock()
	var cum uint64
	for i, le := range LatencyBuckets {
		cum += h.hits[i]
		fmt.Fprintf(w, "%s_bucket%s %d\n", base, joinLabels(labels, fmt.Sprintf(`le="%g"`, le)), cum)
	}
	fmt.Fprintf(w, "%s_bucket%s %d\n", base, joinLabels(labels, `le="+Inf"`), h.count)
	fmt.Fprintf(w, "%s_sum%s %g\n", base, joinLabels(labels, ""), h.sum)
	fmt.Fprintf(w, "%s_count%s %d\n", base, joinLabels(labels, ""), h.count)
}

type metric interface {
	write(w io.Writer, series string)
}

// family groups every labelled series of one metric name.
type family struct {
	typ    string
	help   string
	series map[string]metric
}

// Registry holds metric families in registration order.
type Registry struct {
	mu       sync.Mutex
	families map[string]*family
	order    []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{families: map[string]*family{}}
}

// Counter returns the counter for series, a name optionally carrying labels
// built with WithLabels.
func (r *Registry) Counter(series, help string) *Counter {
	return get(r, series, "counter", help, func() *Counter { return &Counter{} })
}

// Gauge returns the gauge for series.
func (r *Registry) Gauge(series, help string) *Gauge {
	return get(r, series, "gauge", help, func() *Gauge { return &Gauge{} })
}

// Histogram returns the latency histogram for series.
func (r *Registry) Histogram(series, help string) *Histogram {
	return get(r, series, "histogram", help, func() *Histogram {
		return &Histogram{hits: make([]uint64, len(LatencyBuckets))}
	})
}

func get[M metric](r *Registry, series, typ, help string, mk func() M) M {
	base, _ := splitSeries(series)
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.families[base]
	if !ok {
		f = &family{typ: typ, series: map[string]metric{}}
		r.families[base] = f
		r.order = append(r.order, base)
	}
	if f.help == "" {
		f.help = help
	}
	if m, ok := f.series[series].(M); ok {
		return m
	}
	m := mk()
	f.series[series] = m
	return m
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// WithLabels appends escaped label pairs to name:
// WithLabels("foo", "k", "v") is `foo{k="v"}`. An odd pair count returns name.
func WithLabels(name string, kvs ...string) string {
	if len(kvs) == 0 || len(kvs)%2 != 0 {
		return name
	}
	pairs := make([]string, 0, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		pairs = append(pairs, kvs[i]+`="`+labelEscaper.Replace(kvs[i+1])+`"`)
	}
	return name + "{" + strings.Join(pairs, ",") + "}"
}

// splitSeries separates `foo{k="v"}` into "foo" and `k="v"`.
func splitSeries(series string) (base, labels string) {
	base, rest, ok := strings.Cut(series, "{")
	if !ok {
		return series, ""
	}
	return base, strings.TrimSuffix(rest, "}")
}

func joinLabels(labels, extra string) string {
	switch {
	case labels == "" && extra == "":
		return ""
	case labels == "":
		return "{" + extra + "}"
	case extra == "":
		return "{" + labels + "}"
	}
	return "{" + labels + "," + extra + "}"
}

// Render writes every family in the text exposition format: families in
// registration order, series sorted within a family.
func (r *Registry) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for _, base := range r.order {
		f := r.families[base]
		if f.help != "" {
			fmt.Fprintf(&b, "# HELP %s %s\n", base, f.help)
		}
		fmt.Fprintf(&b, "# TYPE %s %s\n", base, f.typ)
		names := make([]string, 0, len(f.series))
		for s := range f.series {
			names = append(names, s)
		}
		sort.Strings(names)
		for _, s := range names {
			f.series[s].write(&b, s)
		}
	}
	return b.String()
}

// Handler serves Render at /metrics.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		io.WriteString(w, r.Render())
	})
}
