package pipeline

import (
	"context"
	"sync"
	"time"

	"paintd/pkg/types"
)

// State represents lifecycle state of the pipeline.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
)

// Pipeline owns the single resident diffusion model for this worker process.
// It is initialized once at startup and handed to the HTTP layer explicitly.
type Pipeline struct {
	mu        sync.RWMutex
	cfg       PipelineConfig
	state     State
	lastErr   string
	adapter   DiffusionAdapter
	session   DiffusionSession
	catalog   []types.Checkpoint
	served    uint64
	startTime time.Time
}

// New constructs a Pipeline for the given model and runtime URL with
// package defaults for everything else.
func New(model, runtimeURL string) *Pipeline {
	return NewWithConfig(PipelineConfig{Model: model, RuntimeURL: runtimeURL})
}

// SetAdapter swaps the runtime adapter. Must be called before Load; used by
// tests and alternative runtime wiring in main.
func (p *Pipeline) SetAdapter(a DiffusionAdapter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.adapter = a
}

// Load opens the runtime session and probes the runtime once. On failure the
// pipeline is left in the error state: /readyz reports unready, while
// /process keeps surfacing the underlying failure per request.
func (p *Pipeline) Load(ctx context.Context) error {
	p.mu.Lock()
	adapter := p.adapter
	model := p.cfg.Model
	p.state = StateLoading
	p.mu.Unlock()

	sess, err := adapter.Open(model)
	if err == nil {
		err = sess.Ping(ctx)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = StateError
		p.lastErr = err.Error()
		return err
	}
	p.session = sess
	p.state = StateReady
	p.lastErr = ""
	return nil
}

// Close releases the runtime session.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	err := p.session.Close()
	p.session = nil
	return err
}

// Ready reports whether the pipeline can serve transforms.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == StateReady && p.session != nil
}

// ModelID returns the configured model identifier.
func (p *Pipeline) ModelID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Model
}

// OutputSize returns the square working resolution in pixels.
func (p *Pipeline) OutputSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.OutputSize
}

// SetCatalog installs the checkpoint catalog served by GET /models.
func (p *Pipeline) SetCatalog(models []types.Checkpoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog = append([]types.Checkpoint(nil), models...)
}

// Models returns the checkpoint catalog. When no directory was scanned the
// catalog is just the configured model id.
func (p *Pipeline) Models() []types.Checkpoint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.catalog) > 0 {
		return append([]types.Checkpoint(nil), p.catalog...)
	}
	return []types.Checkpoint{{ID: p.cfg.Model, Name: p.cfg.Model}}
}

// currentSession returns the live session or a not-ready error.
func (p *Pipeline) currentSession() (DiffusionSession, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil {
		return nil, notReadyError{model: p.cfg.Model}
	}
	return p.session, nil
}

// recordResult updates counters after a transform attempt.
func (p *Pipeline) recordResult(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lastErr = err.Error()
		return
	}
	p.served++
}
