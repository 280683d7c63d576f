package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paintd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Process(ctx context.Context, image []byte, params types.GenerationParams) ([]byte, error)
	Status() types.StatusResponse
	Models() []types.Checkpoint
	ModelID() string
	Ready() bool
}

// NewMux builds the router: /process, /models, /status, /healthz, /readyz,
// /metrics, plus the optional swagger mount.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)

	r.Post("/process", processHandler(svc))

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ModelsResponse{Models: svc.Models()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// processHandler implements POST /process.
//
// The route has a single-outcome error contract: every failure — missing or
// corrupt upload, runtime fault, encode error — maps to 500 with the error
// text in a JSON payload. Numeric form fields are never rejected; malformed
// values fall back to their defaults and out-of-range values are clamped.
func processHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		lvl := requestLogLevel(r)
		start := time.Now()

		image, err := readImageFile(r)
		if err != nil {
			observeTransform("error", time.Since(start))
			logProcessEnd(r, lvl, http.StatusInternalServerError, start, err)
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		params := types.GenerationParams{
			Prompt:   formString(r, "prompt", types.DefaultPrompt),
			Strength: formFloat(r, "strength", types.DefaultStrength),
			Steps:    formInt(r, "steps", types.DefaultSteps),
			Guidance: formFloat(r, "guidance", types.DefaultGuidance),
		}.Clamped()

		if lvl >= LevelInfo {
			logProcessStart(r, params, len(image))
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		out, err := svc.Process(ctx, image, params)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			observeTransform("error", time.Since(start))
			logProcessEnd(r, lvl, http.StatusInternalServerError, start, err)
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		observeTransform("success", time.Since(start))
		logProcessEnd(r, lvl, http.StatusOK, start, nil)
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Processing-Status", "success")
		w.Header().Set("X-Model", svc.ModelID())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	}
}

// readImageFile pulls the required "image" file field out of the multipart body.
func readImageFile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}
	f, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// formString returns the named form value or def when absent.
func formString(r *http.Request, name, def string) string {
	if v := r.FormValue(name); v != "" {
		return v
	}
	return def
}

// formFloat parses the named form value; malformed input coerces to def.
func formFloat(r *http.Request, name string, def float64) float64 {
	v := r.FormValue(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// formInt parses the named form value; malformed input coerces to def.
func formInt(r *http.Request, name string, def int) int {
	v := r.FormValue(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
