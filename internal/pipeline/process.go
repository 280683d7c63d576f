package pipeline

import (
	"context"

	"paintd/internal/imaging"
	"paintd/pkg/types"
)

// Process runs one img2img transform: decode and normalize the uploaded
// bytes, invoke the runtime, then normalize and PNG-encode the result.
// Strictly sequential; any failure propagates to the caller unchanged.
// Params are expected to be clamped by the HTTP layer already.
func (p *Pipeline) Process(ctx context.Context, imageBytes []byte, params types.GenerationParams) ([]byte, error) {
	sess, err := p.currentSession()
	if err != nil {
		p.recordResult(err)
		return nil, err
	}
	size := p.OutputSize()

	init, err := imaging.NormalizePNG(imageBytes, size)
	if err != nil {
		p.recordResult(err)
		return nil, err
	}

	raw, err := sess.Transform(ctx, TransformInput{
		InitImage: init,
		Prompt:    params.Prompt,
		Strength:  params.Strength,
		Steps:     params.Steps,
		Guidance:  params.Guidance,
		Width:     size,
		Height:    size,
	})
	if err != nil {
		p.recordResult(err)
		return nil, err
	}

	// Runtimes are not trusted to honor the requested canvas or format;
	// the response contract is PNG at the configured square resolution.
	out, err := imaging.NormalizePNG(raw, size)
	p.recordResult(err)
	if err != nil {
		return nil, err
	}
	return out, nil
}
