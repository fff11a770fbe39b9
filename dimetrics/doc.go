// Package dimetrics exports Prometheus metrics about the instances created and the Graphs disposed
// by the di package.
//
// A [Collector] is a di plugin and a [prometheus.Collector]. Install it on the [di.Plugins] passed
// to [di.WithPlugins] and register it with a Prometheus registry:
//
//	plugins := di.NewPlugins()
//	c := dimetrics.NewCollector(dimetrics.WithNamespace("app"))
//	c.Install(plugins)
//	prometheus.MustRegister(c)
//
//	g, err := component.CreateGraph(di.WithPlugins(plugins))
package dimetrics
