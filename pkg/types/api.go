package types

// ProcessDefaults are the form-field defaults applied by POST /process.
const (
	DefaultPrompt   = "professional photograph, highly detailed, photorealistic"
	DefaultStrength = 0.75
	DefaultSteps    = 30
	DefaultGuidance = 7.5
)

// Clamp bounds applied to /process parameters. Out-of-range values are
// coerced to the nearest boundary, never rejected.
const (
	MinStrength = 0.4
	MaxStrength = 0.95
	MinSteps    = 15
	MaxSteps    = 100
	MinGuidance = 5.0
	MaxGuidance = 15.0
)

// GenerationParams are the knobs accepted by POST /process.
type GenerationParams struct {
	// Text description guiding the generation.
	// example: professional photograph, highly detailed, photorealistic
	Prompt string `json:"prompt" example:"professional photograph, highly detailed, photorealistic"`
	// Denoising strength; how far the output departs from the input image.
	// example: 0.75
	Strength float64 `json:"strength" example:"0.75"`
	// Number of iterative refinement steps.
	// example: 30
	Steps int `json:"steps" example:"30"`
	// Guidance scale; how strictly generation follows the prompt.
	// example: 7.5
	Guidance float64 `json:"guidance" example:"7.5"`
}

// Defaults returns GenerationParams populated with the documented defaults.
func Defaults() GenerationParams {
	return GenerationParams{
		Prompt:   DefaultPrompt,
		Strength: DefaultStrength,
		Steps:    DefaultSteps,
		Guidance: DefaultGuidance,
	}
}

// Clamped returns a copy with every knob coerced into its valid range
// and an empty prompt replaced by the default.
func (p GenerationParams) Clamped() GenerationParams {
	out := p
	if out.Prompt == "" {
		out.Prompt = DefaultPrompt
	}
	out.Strength = clampFloat(out.Strength, MinStrength, MaxStrength)
	out.Steps = clampInt(out.Steps, MinSteps, MaxSteps)
	out.Guidance = clampFloat(out.Guidance, MinGuidance, MaxGuidance)
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ModelsResponse wraps the checkpoint catalog returned by GET /models.
type ModelsResponse struct {
	// List of known checkpoints.
	Models []Checkpoint `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: decode image: image: unknown format
	Error string `json:"error" example:"decode image: image: unknown format"`
	// HTTP status code.
	// example: 500
	Code int `json:"code" example:"500"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall pipeline state (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Identifier of the resident model.
	// example: DreamShaper-8
	Model string `json:"model" example:"DreamShaper-8"`
	// Base URL of the diffusion runtime.
	// example: http://127.0.0.1:7860
	RuntimeURL string `json:"runtime_url" example:"http://127.0.0.1:7860"`
	// Square output resolution in pixels.
	// example: 512
	OutputSize int `json:"output_size" example:"512"`
	// Total transforms served since startup.
	// example: 42
	TransformsTotal uint64 `json:"transforms_total" example:"42"`
	// Last error observed by the pipeline (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
