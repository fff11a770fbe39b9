package dimetrics

import "github.com/prometheus/client_golang/prometheus"

// Option configures a [Collector].
type Option func(*config)

type config struct {
	namespace   string
	constLabels prometheus.Labels
}

// WithNamespace sets the namespace of the metrics.
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithConstLabels adds constant labels to the metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *config) {
		c.constLabels = labels
	}
}
