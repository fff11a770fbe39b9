package dihttp

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sectrean/di-graph"
	"github.com/sectrean/di-graph/dicontext"
	"github.com/sectrean/di-graph/internal/errors"
)

// NewRequestSubgraphMiddleware creates middleware that opens a subgraph of parent from the
// subcomponent with the qualifier for each request. The subgraph is disposed after the request has
// been processed.
//
// The current [*http.Request] is registered as a constant with the subgraph. It can be used as a
// dependency of request services.
//
// The subgraph is stored on the request context and can be accessed using [dicontext.Graph],
// [dicontext.Resolve], or [dicontext.MustResolve].
//
// Available options:
//   - [WithGraphOptions] sets options used when opening each request subgraph.
//   - [WithBuilder] adds entries to each request subgraph.
//   - [WithNewSubgraphErrorHandler] sets the handler for errors opening the subgraph.
//   - [WithDisposeErrorHandler] sets the handler for errors disposing the subgraph.
//   - [WithLogger] sets the logger used by the default error handlers.
func NewRequestSubgraphMiddleware(
	parent *di.Graph,
	qualifier any,
	opts ...MiddlewareOption,
) (func(http.Handler) http.Handler, error) {
	if parent == nil {
		return nil, errors.New("dihttp.NewRequestSubgraphMiddleware: parent is nil")
	}

	cfg := &middlewareConfig{
		parent:    parent,
		qualifier: qualifier,
		logger:    zap.L(),
	}
	cfg.newSubgraphHandler = cfg.defaultNewSubgraphErrorHandler
	cfg.disposeHandler = cfg.defaultDisposeErrorHandler

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyMiddleware(cfg))
	}
	if err := errs.Wrap("dihttp.NewRequestSubgraphMiddleware"); err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return &subgraphMiddleware{
			config: cfg,
			next:   next,
		}
	}, nil
}

// NewSubgraphErrorHandler is a function that writes an error response to the client.
// This is called by the middleware when there is an error opening the request subgraph.
//
// The default handler logs the error and writes a 500 Internal Server Error response.
type NewSubgraphErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

// DisposeErrorHandler is a function that handles errors when disposing the request subgraph after
// the request has completed.
//
// The default handler logs the error.
type DisposeErrorHandler = func(r *http.Request, err error)

type middlewareConfig struct {
	parent             *di.Graph
	qualifier          any
	graphOpts          []di.GraphOption
	blocks             []di.BuilderBlock
	logger             *zap.Logger
	newSubgraphHandler NewSubgraphErrorHandler
	disposeHandler     DisposeErrorHandler
}

func (c *middlewareConfig) defaultNewSubgraphErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	c.logger.Error("error opening HTTP request subgraph",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (c *middlewareConfig) defaultDisposeErrorHandler(r *http.Request, err error) {
	c.logger.Error("error disposing HTTP request subgraph",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}

type subgraphMiddleware struct {
	config *middlewareConfig
	next   http.Handler
}

func (m *subgraphMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := m.config

	opts := make([]di.GraphOption, 0, len(cfg.graphOpts)+2)
	opts = append(opts, cfg.graphOpts...)
	opts = append(opts,
		// Each request is registered under its own identifier
		di.WithIdentifier(r),
		di.WithBuilder(func(b *di.ComponentBuilder) error {
			if err := di.Constant(b, r); err != nil {
				return err
			}
			for _, block := range cfg.blocks {
				if err := block(b); err != nil {
					return err
				}
			}
			return nil
		}),
	)

	sub, err := cfg.parent.OpenSubgraph(cfg.qualifier, opts...)
	if err != nil {
		cfg.newSubgraphHandler(w, r, err)
		return
	}

	ctx := dicontext.WithGraph(r.Context(), sub)
	m.next.ServeHTTP(w, r.WithContext(ctx))

	if err := sub.Dispose(); err != nil {
		cfg.disposeHandler(r, err)
	}
}
