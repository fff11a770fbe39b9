/*
Package dihttp provides HTTP middleware that opens a [di.Graph] subgraph for each request.

Example:

	package main

	import (
		"net/http"

		"github.com/sectrean/di-graph"
		"github.com/sectrean/di-graph/dicontext"
		"github.com/sectrean/di-graph/dihttp"
	)

	func main() {
		c, err := di.NewComponent(nil, func(b *di.ComponentBuilder) error {
			return errors.Join(
				di.Provide(b, di.Singleton, NewService),
				b.Subcomponent("request", func(b *di.ComponentBuilder) error {
					return di.Provide(b, di.Singleton, NewRequestService)
				}),
			)
		})

		app, err := c.CreateGraph()

		// Create a new subgraph middleware
		mw, err := dihttp.NewRequestSubgraphMiddleware(app, "request")

		// Create a handler function
		handler := func(w http.ResponseWriter, r *http.Request) {
			svc := dicontext.MustResolve[*RequestService](r.Context())

			svc.HandleRequest(w, r)
		}

		// Wrap the handler with the subgraph middleware
		http.Handle("/", mw(http.HandlerFunc(handler)))
		http.ListenAndServe(":8080", nil)
	}
*/
package dihttp
