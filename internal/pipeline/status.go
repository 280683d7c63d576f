package pipeline

import (
	"time"

	"paintd/pkg/types"
)

// Status builds a detailed status response for /status.
func (p *Pipeline) Status() types.StatusResponse {
	p.mu.RLock()
	defer p.mu.RUnlock()
	now := time.Now()
	return types.StatusResponse{
		State:           string(p.state),
		Model:           p.cfg.Model,
		RuntimeURL:      p.cfg.RuntimeURL,
		OutputSize:      p.cfg.OutputSize,
		TransformsTotal: p.served,
		LastError:       p.lastErr,
		UptimeSeconds:   int64(now.Sub(p.startTime).Seconds()),
		ServerTimeUnix:  now.Unix(),
	}
}
