package pipeline

import "context"

// DiffusionAdapter abstracts the img2img runtime used by the Pipeline.
// Concrete implementations (e.g., an Automatic1111-compatible server)
// should satisfy this interface.
type DiffusionAdapter interface {
	// Open prepares a session bound to the given model checkpoint.
	Open(model string) (DiffusionSession, error)
}

// DiffusionSession represents the resident runtime connection held for the
// lifetime of the worker process.
type DiffusionSession interface {
	// Ping probes the runtime for liveness. Implementations must return
	// when the context is canceled.
	Ping(ctx context.Context) error
	// Transform runs img2img for the given input and returns the raw image
	// bytes produced by the runtime.
	Transform(ctx context.Context, in TransformInput) ([]byte, error)
	// Close releases any resources associated with the session.
	Close() error
}

// TransformInput captures one img2img invocation passed to the adapter.
type TransformInput struct {
	// PNG-encoded, already normalized to Width x Height.
	InitImage []byte
	Prompt    string
	Strength  float64
	Steps     int
	Guidance  float64
	Width     int
	Height    int
}
