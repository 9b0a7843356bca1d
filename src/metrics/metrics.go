// Package metrics provides the operation counters the benchmark increments
// while it submits transactions and polls account states. Counters are
// identified by name, for example "submit_txns.Accepted".
package metrics

import (
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpCounter counts named operations. Implementations must be safe for
// concurrent use.
type OpCounter interface {
	Inc(op string)
}

// PrometheusCounter exports operation counts as the txbench_ops_total counter
// vector, labelled by op.
type PrometheusCounter struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
}

// NewPrometheusCounter registers the counter vector on a fresh registry.
func NewPrometheusCounter() *PrometheusCounter {
	return NewPrometheusCounterWithRegistry(prometheus.NewRegistry())
}

// NewPrometheusCounterWithRegistry registers the counter vector on registry.
// It panics if the vector is already registered there.
func NewPrometheusCounterWithRegistry(registry *prometheus.Registry) *PrometheusCounter {
	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "txbench",
			Name:      "ops_total",
			Help:      "Operations performed by the benchmark client.",
		},
		[]string{"op"},
	)

	registry.MustRegister(ops)

	return &PrometheusCounter{
		registry: registry,
		ops:      ops,
	}
}

// Inc implements OpCounter.
func (p *PrometheusCounter) Inc(op string) {
	p.ops.WithLabelValues(op).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (p *PrometheusCounter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (p *PrometheusCounter) Registry() *prometheus.Registry {
	return p.registry
}

// InmemCounter keeps counts in memory. It is used to print a summary at the
// end of a run, and as a recording double in tests.
type InmemCounter struct {
	sync.Mutex
	counts map[string]int
}

// NewInmemCounter creates an empty InmemCounter.
func NewInmemCounter() *InmemCounter {
	return &InmemCounter{
		counts: make(map[string]int),
	}
}

// Inc implements OpCounter.
func (c *InmemCounter) Inc(op string) {
	c.Lock()
	defer c.Unlock()
	c.counts[op]++
}

// Count returns the number of times op was incremented.
func (c *InmemCounter) Count(op string) int {
	c.Lock()
	defer c.Unlock()
	return c.counts[op]
}

// Total returns the sum of all counts.
func (c *InmemCounter) Total() int {
	c.Lock()
	defer c.Unlock()
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Counts returns a copy of all counts.
func (c *InmemCounter) Counts() map[string]int {
	c.Lock()
	defer c.Unlock()
	res := make(map[string]int, len(c.counts))
	for op, n := range c.counts {
		res[op] = n
	}
	return res
}

// Ops returns the names of all counted operations, sorted.
func (c *InmemCounter) Ops() []string {
	c.Lock()
	defer c.Unlock()
	ops := make([]string, 0, len(c.counts))
	for op := range c.counts {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

type multiCounter []OpCounter

func (m multiCounter) Inc(op string) {
	for _, c := range m {
		c.Inc(op)
	}
}

// Multi returns an OpCounter that increments every counter in cs.
func Multi(cs ...OpCounter) OpCounter {
	return multiCounter(cs)
}

// Nop is an OpCounter that discards everything.
var Nop OpCounter = multiCounter(nil)
