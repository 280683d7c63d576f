package httpapi

// maxUploadBytes controls the maximum allowed multipart body size for /process.
// Painted canvases are small; 16 MiB leaves room for large camera uploads.
var maxUploadBytes int64 = 16 << 20

// SetMaxUploadBytes allows configuring the maximum upload size.
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = 16 << 20
		return
	}
	maxUploadBytes = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server. Browser canvas
// clients post directly to /process, so this is commonly enabled.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
