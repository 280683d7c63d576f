package types

// Checkpoint represents a discoverable diffusion model checkpoint on disk.
type Checkpoint struct {
	// Stable identifier for the checkpoint (filename without extension).
	// example: dreamshaper_8
	ID string `json:"id" example:"dreamshaper_8"`
	// Human-friendly name.
	// example: dreamshaper_8
	Name string `json:"name" example:"dreamshaper_8"`
	// Absolute path to the checkpoint file on disk.
	// example: /home/user/models/sd/dreamshaper_8.safetensors
	Path string `json:"path" example:"/home/user/models/sd/dreamshaper_8.safetensors"`
	// Checkpoint file format (safetensors or ckpt).
	// example: safetensors
	Format string `json:"format" example:"safetensors"`
}
