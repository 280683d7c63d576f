package e2e

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"paintd/internal/httpapi"
	"paintd/internal/pipeline"
	"paintd/pkg/types"
)

// fakeRuntime is an Automatic1111-shaped stand-in that records the last
// img2img payload and echoes back a generated PNG.
type fakeRuntime struct {
	mu      sync.Mutex
	lastReq map[string]any
	srv     *httptest.Server
}

func newFakeRuntime(t *testing.T) *fakeRuntime {
	t.Helper()
	f := &fakeRuntime{}
	mux := http.NewServeMux()
	mux.HandleFunc("/sdapi/v1/sd-models", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{{"model_name": "DreamShaper-8"}})
	})
	mux.HandleFunc("/sdapi/v1/img2img", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.lastReq = req
		f.mu.Unlock()
		// deliberately answer with a non-square JPEG-sized canvas; the
		// service must still return PNG at the configured resolution
		out := encodePNG(t, 300, 200)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"images": []string{base64.StdEncoding.EncodeToString(out)},
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRuntime) last() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newStack(t *testing.T, outputSize int) (http.Handler, *fakeRuntime) {
	t.Helper()
	rt := newFakeRuntime(t)
	pipe := pipeline.NewWithConfig(pipeline.PipelineConfig{
		Model:          "DreamShaper-8",
		RuntimeURL:     rt.srv.URL,
		OutputSize:     outputSize,
		RequestTimeout: 30 * time.Second,
	})
	if err := pipe.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return httpapi.NewMux(pipe), rt
}

func postProcess(t *testing.T, h http.Handler, img []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if img != nil {
		fw, err := mw.CreateFormFile("image", "painting.png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := fw.Write(img); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/process", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestProcessEndToEnd(t *testing.T) {
	h, rt := newStack(t, 512)
	w := postProcess(t, h, encodePNG(t, 640, 480), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Processing-Status"); got != "success" {
		t.Fatalf("X-Processing-Status=%q", got)
	}
	if got := w.Header().Get("X-Model"); got != "DreamShaper-8" {
		t.Fatalf("X-Model=%q", got)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if format != "png" || cfg.Width != 512 || cfg.Height != 512 {
		t.Fatalf("body %s %dx%d, want png 512x512", format, cfg.Width, cfg.Height)
	}

	req := rt.last()
	if req == nil {
		t.Fatalf("runtime never called")
	}
	if got := req["denoising_strength"].(float64); got != types.DefaultStrength {
		t.Fatalf("strength=%v", got)
	}
	if got := req["steps"].(float64); got != float64(types.DefaultSteps) {
		t.Fatalf("steps=%v", got)
	}
	if got := req["cfg_scale"].(float64); got != types.DefaultGuidance {
		t.Fatalf("guidance=%v", got)
	}
	if got := req["prompt"].(string); got != types.DefaultPrompt {
		t.Fatalf("prompt=%q", got)
	}
	if got := req["width"].(float64); got != 512 {
		t.Fatalf("width=%v", got)
	}
}

func TestProcessClampsBeforeRuntime(t *testing.T) {
	h, rt := newStack(t, 128)
	w := postProcess(t, h, encodePNG(t, 64, 64), map[string]string{
		"strength": "0.1",
		"steps":    "500",
		"guidance": "0",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	req := rt.last()
	if got := req["denoising_strength"].(float64); got != types.MinStrength {
		t.Fatalf("strength=%v", got)
	}
	if got := req["steps"].(float64); got != float64(types.MaxSteps) {
		t.Fatalf("steps=%v", got)
	}
	if got := req["cfg_scale"].(float64); got != types.MinGuidance {
		t.Fatalf("guidance=%v", got)
	}
}

func TestProcessCorruptUpload(t *testing.T) {
	h, rt := newStack(t, 128)
	w := postProcess(t, h, []byte("definitely not an image"), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Error == "" {
		t.Fatalf("empty error detail")
	}
	if rt.last() != nil {
		t.Fatalf("runtime should not be called for corrupt input")
	}
}

func TestStatusAndReadyz(t *testing.T) {
	h, _ := newStack(t, 128)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz=%d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	var st types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.State != "ready" || st.Model != "DreamShaper-8" || st.OutputSize != 128 {
		t.Fatalf("status=%+v", st)
	}
}
