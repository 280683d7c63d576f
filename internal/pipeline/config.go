package pipeline

import "time"

// Defaults applied when corresponding PipelineConfig fields are unset.
const (
	defaultOutputSize     = 512
	defaultRequestTimeout = 300 * time.Second
	defaultConnectTimeout = 10 * time.Second
)

// PipelineConfig encapsulates all tunables for Pipeline construction.
type PipelineConfig struct {
	// Model is the checkpoint identifier advertised in X-Model and sent to
	// the runtime as the checkpoint override.
	Model string
	// RuntimeURL is the base URL of the diffusion runtime.
	RuntimeURL string
	// OutputSize is the square working resolution in pixels.
	OutputSize int
	// RequestTimeout bounds a single transform call against the runtime.
	RequestTimeout time.Duration
	// ConnectTimeout bounds dialing the runtime.
	ConnectTimeout time.Duration
}

// NewWithConfig constructs a Pipeline from PipelineConfig.
func NewWithConfig(cfg PipelineConfig) *Pipeline {
	if cfg.OutputSize <= 0 {
		cfg.OutputSize = defaultOutputSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	p := &Pipeline{
		cfg:       cfg,
		state:     StateLoading,
		startTime: time.Now(),
	}
	p.adapter = NewSDServerAdapter(cfg.RuntimeURL, cfg.RequestTimeout, cfg.ConnectTimeout)
	return p
}
