package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"paintd/internal/config"
	"paintd/internal/httpapi"
	"paintd/internal/pipeline"
	"paintd/internal/registry"
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated flag value, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		p := strings.TrimSpace(part)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envDefault("PAINTD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	runtimeURL := flag.String("runtime-url", envDefault("PAINTD_RUNTIME_URL", "http://127.0.0.1:7860"), "Base URL of the diffusion runtime")
	model := flag.String("model", envDefault("PAINTD_MODEL", "DreamShaper-8"), "Model checkpoint id advertised in X-Model")
	outputSize := flag.Int("output-size", 0, "Square output resolution in pixels (0=default 512)")
	checkpointsDir := flag.String("checkpoints-dir", envDefault("PAINTD_CHECKPOINTS_DIR", ""), "Optional directory to scan for *.safetensors/*.ckpt checkpoints")
	maxUploadMB := flag.Int("max-upload-mb", 0, "Maximum multipart upload size in MB (0=default 16)")
	requestTimeoutS := flag.Int64("request-timeout-s", 0, "Per-transform runtime timeout in seconds (0=default 300)")
	logLevel := flag.String("log-level", envDefault("PAINTD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	corsOrigins := flag.String("cors-origins", envDefault("PAINTD_CORS_ORIGINS", ""), "Comma-separated allowed CORS origins (empty disables CORS)")
	configPath := flag.String("config", envDefault("PAINTD_CONFIG", ""), "Optional config file (.yaml/.json/.toml); flags override")
	flag.Parse()

	// Config file fills in anything the flags left at defaults.
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		if cfg.Addr != "" && !flagSet("addr") {
			*addr = cfg.Addr
		}
		if cfg.RuntimeURL != "" && !flagSet("runtime-url") {
			*runtimeURL = cfg.RuntimeURL
		}
		if cfg.Model != "" && !flagSet("model") {
			*model = cfg.Model
		}
		if cfg.OutputSize > 0 && !flagSet("output-size") {
			*outputSize = cfg.OutputSize
		}
		if cfg.CheckpointsDir != "" && !flagSet("checkpoints-dir") {
			*checkpointsDir = cfg.CheckpointsDir
		}
		if cfg.MaxUploadMB > 0 && !flagSet("max-upload-mb") {
			*maxUploadMB = cfg.MaxUploadMB
		}
		if cfg.RequestTimeoutS > 0 && !flagSet("request-timeout-s") {
			*requestTimeoutS = cfg.RequestTimeoutS
		}
		if cfg.LogLevel != "" && !flagSet("log-level") {
			*logLevel = cfg.LogLevel
		}
	}

	zl := zerolog.New(os.Stderr).With().Timestamp().Str("svc", "paintd").Logger()
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zl = zl.Level(lvl)
	}
	httpapi.SetLogger(zl)

	if *maxUploadMB > 0 {
		httpapi.SetMaxUploadBytes(int64(*maxUploadMB) << 20)
	}
	if origins := splitCSV(*corsOrigins); len(origins) > 0 {
		httpapi.SetCORSOptions(true, origins,
			[]string{http.MethodGet, http.MethodPost, http.MethodOptions},
			[]string{"Content-Type", "X-Log-Level"})
	}

	pipe := pipeline.NewWithConfig(pipeline.PipelineConfig{
		Model:          *model,
		RuntimeURL:     *runtimeURL,
		OutputSize:     *outputSize,
		RequestTimeout: time.Duration(*requestTimeoutS) * time.Second,
	})
	if *checkpointsDir != "" {
		models, err := registry.LoadDir(*checkpointsDir)
		if err != nil {
			log.Fatalf("failed to scan checkpoints: %v", err)
		}
		pipe.SetCatalog(models)
	}

	// Load the model once at startup. A failed probe keeps the process up
	// with /readyz unready; the platform decides whether to restart.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	if err := pipe.Load(baseCtx); err != nil {
		zl.Error().Err(err).Str("runtime", *runtimeURL).Msg("pipeline load failed")
	} else {
		zl.Info().Str("model", *model).Str("runtime", *runtimeURL).Msg("pipeline ready")
	}

	mux := httpapi.NewMux(pipe)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		zl.Info().Str("addr", *addr).Msg("paintd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := pipe.Close(); err != nil {
		zl.Error().Err(err).Msg("pipeline close error")
	}
}

// flagSet reports whether the named flag was passed explicitly.
func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
