// Package middleware holds the HTTP middleware fronting the course API.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"courseflow/pkg/logger"
	otelpkg "courseflow/pkg/otel"
)

// RequestIDHeader carries the request id to and from clients.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// GetRequestID returns the id stored by the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID reuses the client's X-Request-ID or assigns a new UUID and
// echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// Logger logs one line per request.
func Logger(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.code(),
				"bytes", rec.bytes,
				"duration", time.Since(start).String(),
				"request_id", GetRequestID(r.Context()),
			)
		})
	}
}

// panicEntry reports panics caught by chi's Recoverer through the
// application logger.
type panicEntry struct {
	log *logger.Logger
	r   *http.Request
}

func (e panicEntry) Write(int, int, http.Header, time.Duration, any) {}

func (e panicEntry) Panic(v any, stack []byte) {
	e.log.Error(e.r.Context(), "panic", "error", fmt.Sprint(v), "path", e.r.URL.Path, "stack", string(stack))
}

// Recover turns a panic in a handler into a 500 response.
func Recover(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		rec := chimw.Recoverer(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec.ServeHTTP(w, chimw.WithLogEntry(r, panicEntry{log: log, r: r}))
		})
	}
}

// CORS sets cross-origin headers. A single "*" origin allows everything.
// Preflight requests are answered directly.
func CORS(allowedOrigins []string) mux.MiddlewareFunc {
	allowAll := len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" {
				for _, o := range allowedOrigins {
					if strings.TrimSpace(o) == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Add("Vary", "Origin")
						break
					}
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Trace starts a server span per request, continuing any trace propagated
// by the caller, and makes tracer available to otel.AddSpan. The span is
// named "METHOD path" until NameSpanByRoute sees the matched route.
func Trace(tracer trace.Tracer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx = otelpkg.InjectTracing(ctx, tracer)

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.Int("http.response.status_code", rec.code()),
			)
			if rec.code() >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.code()))
			}
		})
	}
}

// NameSpanByRoute renames the request's server span after the matched mux
// route template, e.g. "GET /courses/{id}".
func NameSpanByRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				trace.SpanFromContext(r.Context()).SetName(r.Method + " " + tpl)
			}
		}
		next.ServeHTTP(w, r)
	})
}
