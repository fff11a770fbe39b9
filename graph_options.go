package di

import (
	"time"

	"go.uber.org/zap"
)

// GraphOption is used to configure a Graph when calling [Component.CreateGraph],
// [Graph.OpenSubgraph], [Graph.CreateSubgraph] or the [Tree] methods.
//
// Available options:
//   - [WithBuilder]
//   - [WithIdentifier]
//   - [WithLogger]
//   - [WithPlugins]
//   - [WithWeakReferences]
//   - [WithSoftReferences]
type GraphOption interface {
	applyGraph(*graphConfig)
}

type graphConfig struct {
	block      BuilderBlock
	identifier any
	logger     *zap.Logger
	plugins    *Plugins
	weak       *ReferencePolicy
	soft       *ReferencePolicy
}

type graphOption func(*graphConfig)

func (o graphOption) applyGraph(c *graphConfig) {
	o(c)
}

func newGraphConfig(opts []GraphOption) graphConfig {
	var cfg graphConfig
	for _, opt := range opts {
		if opt != nil {
			opt.applyGraph(&cfg)
		}
	}
	return cfg
}

// WithBuilder derives the component of the new Graph with block before the Graph is created.
//
// This is used to add instance specific entries, for example a request or a session.
func WithBuilder(block BuilderBlock) GraphOption {
	return graphOption(func(c *graphConfig) {
		c.block = block
	})
}

// WithIdentifier registers a subgraph under id instead of its qualifier, so several subgraphs of the
// same subcomponent can be open at the same time.
//
// The identifier must be comparable. It is not supported for root graphs.
func WithIdentifier(id any) GraphOption {
	return graphOption(func(c *graphConfig) {
		c.identifier = id
	})
}

// WithLogger sets the logger used for lifecycle events. The default is a no-op logger.
//
// Subgraphs inherit the logger of their parent.
func WithLogger(l *zap.Logger) GraphOption {
	return graphOption(func(c *graphConfig) {
		c.logger = l
	})
}

// WithPlugins sets the plugins notified by the Graph and its subgraphs.
func WithPlugins(p *Plugins) GraphOption {
	return graphOption(func(c *graphConfig) {
		c.plugins = p
	})
}

// WithWeakReferences gives the Graph its own cache of [WeakSingleton] instances holding at most size
// instances, each for at most ttl. Zero means unbounded.
//
// By default a root Graph keeps 64 instances without expiration and subgraphs share the cache of
// their parent. A non-zero ttl starts a cleanup goroutine for the lifetime of the process, so it
// is only supported for root Graphs. Opening a subgraph with a ttl fails.
func WithWeakReferences(size int, ttl time.Duration) GraphOption {
	return graphOption(func(c *graphConfig) {
		c.weak = &ReferencePolicy{Size: size, TTL: ttl}
	})
}

// WithSoftReferences is like WithWeakReferences for [SoftSingleton] instances.
//
// By default a root Graph keeps 256 instances without expiration.
func WithSoftReferences(size int, ttl time.Duration) GraphOption {
	return graphOption(func(c *graphConfig) {
		c.soft = &ReferencePolicy{Size: size, TTL: ttl}
	})
}
