// Package pipeline holds the resident image-to-image diffusion pipeline and
// the adapter seam to its runtime. It is structured into small files by
// concern:
//
//   - pipeline.go: core Pipeline type, constructor, lifecycle (Load/Ready).
//   - config.go: PipelineConfig and package defaults; NewWithConfig applies defaults.
//   - process.go: the transform entry point (decode, run, re-encode).
//   - adapter_iface.go: DiffusionAdapter/DiffusionSession interfaces.
//   - adapter_sd_server.go: HTTP adapter for Automatic1111-compatible runtimes.
//   - errors.go: error types and helpers (IsNotReady, IsRuntimeUnavailable).
//   - status.go: Status reporting for GET /status.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (New/NewWithConfig, Load, Ready, Process, Status,
// ModelID). Internal types are subject to change.
package pipeline
