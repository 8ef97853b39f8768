package builtins

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sunholo/aivi/internal/effects"
	"github.com/sunholo/aivi/internal/eval"
)

// httpServer builds a routed HTTP server on chi (spec §4.9/§6
// `httpServer`, left contract-silent by the distillation — filled in
// per the DOMAIN STACK's chi/cors wiring): route registers a handler
// closure (request record -> Effect response record) under a method and
// pattern, listen starts serving. Handler closures run through
// interp.RunEffect so they can themselves use file/console/database
// effects under the program's capability grants.
func httpServerNamespace(interp *eval.Interp, ctx *effects.EffContext) *namespace {
	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
	}))

	n := newNamespace()
	n.add("route", 3, httpServerRoute(interp, router))
	n.add("listen", 1, httpServerListen(ctx, router))
	return n
}

func httpServerRoute(interp *eval.Interp, router chi.Router) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		method, err := wantText("route", args[0])
		if err != nil {
			return nil, err
		}
		pattern, err := wantText("route", args[1])
		if err != nil {
			return nil, err
		}
		handler := args[2]

		router.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			params := eval.NewRecord()
			for _, k := range chi.RouteContext(r.Context()).URLParams.Keys {
				params = params.With(k, eval.Text{Value: chi.URLParam(r, k)})
			}
			req := eval.NewRecord().
				With("method", eval.Text{Value: r.Method}).
				With("path", eval.Text{Value: r.URL.Path}).
				With("body", eval.Text{Value: string(body)}).
				With("params", params)

			result, err := interp.Apply(handler, []eval.Value{req}, eval.NewCancel())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if eff, ok := result.(*eval.Effect); ok {
				result, err = interp.RunEffect(eff, eval.NewCancel())
				if err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
			}
			resp, ok := result.(*eval.Record)
			if !ok {
				http.Error(w, "handler did not return a response record", http.StatusInternalServerError)
				return
			}
			status := int64(200)
			if s, present := resp.Fields["status"]; present {
				if i, ok := s.(eval.Int); ok {
					status = i.Value
				}
			}
			body2 := ""
			if b, present := resp.Fields["body"]; present {
				if t, ok := b.(eval.Text); ok {
					body2 = t.Value
				}
			}
			w.WriteHeader(int(status))
			fmt.Fprint(w, body2)
		})
		return eval.Unit{}, nil
	}
}

func httpServerListen(ctx *effects.EffContext, router chi.Router) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if err := ctx.RequireCap("Net"); err != nil {
			return nil, err
		}
		addr, err := wantText("listen", args[0])
		if err != nil {
			return nil, err
		}
		srv := &http.Server{Addr: addr, Handler: router}
		go srv.ListenAndServe()
		return ok(&eval.Handle{Kind: "Server", Impl: srv}), nil
	}
}
