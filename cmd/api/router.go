package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"courseflow/pkg/course/handler"
	"courseflow/pkg/logger"
	"courseflow/pkg/middleware"
)

// newRouter mounts the course API, health check and API docs. Request id,
// tracing, logging, panic recovery and CORS wrap the whole router so they
// also see unmatched routes and preflight requests.
func newRouter(h *handler.Handler, tracer trace.Tracer, log *logger.Logger, origins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.NameSpanByRoute)

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	h.RegisterRoutes(r)

	r.Handle("/api-docs", http.RedirectHandler("/api-docs/index.html", http.StatusMovedPermanently))
	r.PathPrefix("/api-docs/").Handler(httpSwagger.WrapHandler)

	var out http.Handler = r
	out = middleware.CORS(origins)(out)
	out = middleware.Recover(log)(out)
	out = middleware.Logger(log)(out)
	out = middleware.Trace(tracer)(out)
	return middleware.RequestID(out)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
