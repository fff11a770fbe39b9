package dihttp

import (
	"go.uber.org/zap"

	"github.com/sectrean/di-graph"
	"github.com/sectrean/di-graph/internal/errors"
)

// MiddlewareOption is used to configure the middleware when calling
// [NewRequestSubgraphMiddleware].
type MiddlewareOption interface {
	applyMiddleware(*middlewareConfig) error
}

type middlewareOption func(*middlewareConfig) error

func (o middlewareOption) applyMiddleware(c *middlewareConfig) error {
	return o(c)
}

// WithGraphOptions sets the options to use when calling [di.Graph.OpenSubgraph] for each request.
//
// [di.WithIdentifier] and [di.WithBuilder] are set by the middleware and are ignored.
func WithGraphOptions(opts ...di.GraphOption) MiddlewareOption {
	return middlewareOption(func(c *middlewareConfig) error {
		c.graphOpts = append(c.graphOpts, opts...)
		return nil
	})
}

// WithBuilder adds entries to the subcomponent of each request subgraph.
func WithBuilder(block di.BuilderBlock) MiddlewareOption {
	return middlewareOption(func(c *middlewareConfig) error {
		if block == nil {
			return errors.New("WithBuilder: block is nil")
		}
		c.blocks = append(c.blocks, block)
		return nil
	})
}

// WithNewSubgraphErrorHandler sets the error handler for when there is an error opening a request
// subgraph.
func WithNewSubgraphErrorHandler(h NewSubgraphErrorHandler) MiddlewareOption {
	return middlewareOption(func(c *middlewareConfig) error {
		if h == nil {
			return errors.New("WithNewSubgraphErrorHandler: h is nil")
		}
		c.newSubgraphHandler = h
		return nil
	})
}

// WithDisposeErrorHandler sets the error handler for when there is an error disposing a request
// subgraph.
func WithDisposeErrorHandler(h DisposeErrorHandler) MiddlewareOption {
	return middlewareOption(func(c *middlewareConfig) error {
		if h == nil {
			return errors.New("WithDisposeErrorHandler: h is nil")
		}
		c.disposeHandler = h
		return nil
	})
}

// WithLogger sets the logger used by the default error handlers. The default is [zap.L].
func WithLogger(l *zap.Logger) MiddlewareOption {
	return middlewareOption(func(c *middlewareConfig) error {
		if l == nil {
			return errors.New("WithLogger: l is nil")
		}
		c.logger = l
		return nil
	})
}
