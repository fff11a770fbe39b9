package dimetrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sectrean/di-graph"
)

// Collector counts the instances constructed by Graphs and the Graphs disposed.
//
// Metrics:
//   - <namespace>_instances_constructed_total{scope, type}
//   - <namespace>_graphs_disposed_total{qualifier}
type Collector struct {
	constructed *prometheus.CounterVec
	disposed    *prometheus.CounterVec
}

var (
	_ di.PostConstructPlugin = (*Collector)(nil)
	_ di.GraphDisposePlugin  = (*Collector)(nil)
	_ prometheus.Collector   = (*Collector)(nil)
)

// NewCollector creates a Collector.
//
// Available options:
//   - [WithNamespace] sets the metric namespace. The default is "di".
//   - [WithConstLabels] adds constant labels to every metric.
func NewCollector(opts ...Option) *Collector {
	cfg := config{namespace: "di"}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Collector{
		constructed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "instances_constructed_total",
			Help:        "Number of service instances constructed, by scope and type.",
			ConstLabels: cfg.constLabels,
		}, []string{"scope", "type"}),
		disposed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "graphs_disposed_total",
			Help:        "Number of graphs disposed, by component qualifier.",
			ConstLabels: cfg.constLabels,
		}, []string{"qualifier"}),
	}
}

// Install adds the Collector to the plugins.
func (c *Collector) Install(p *di.Plugins) {
	p.AddPostConstructPlugin(c)
	p.AddGraphDisposePlugin(c)
}

// Uninstall removes the Collector from the plugins.
func (c *Collector) Uninstall(p *di.Plugins) {
	p.RemovePostConstructPlugin(c)
	p.RemoveGraphDisposePlugin(c)
}

// PostConstruct counts the instance by scope and dynamic type. It implements
// [di.PostConstructPlugin].
func (c *Collector) PostConstruct(_ *di.Graph, scope di.Scope, _, instance any) {
	c.constructed.WithLabelValues(scope.String(), fmt.Sprintf("%T", instance)).Inc()
}

// GraphDispose counts the disposed Graph by the qualifier of its component. It implements
// [di.GraphDisposePlugin].
func (c *Collector) GraphDispose(g *di.Graph) {
	c.disposed.WithLabelValues(fmt.Sprint(g.Component().Qualifier())).Inc()
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.constructed.Describe(ch)
	c.disposed.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.constructed.Collect(ch)
	c.disposed.Collect(ch)
}
