package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"paintd/pkg/types"
)

// fakeAdapter returns a canned image or error from Transform.
type fakeAdapter struct {
	openErr error
	sess    *fakeSession
}

func (a *fakeAdapter) Open(model string) (DiffusionSession, error) {
	if a.openErr != nil {
		return nil, a.openErr
	}
	if a.sess == nil {
		a.sess = &fakeSession{}
	}
	a.sess.model = model
	return a.sess, nil
}

type fakeSession struct {
	model    string
	pingErr  error
	result   []byte
	err      error
	lastIn   TransformInput
	closed   bool
	requests int
}

func (s *fakeSession) Ping(ctx context.Context) error { return s.pingErr }
func (s *fakeSession) Transform(ctx context.Context, in TransformInput) ([]byte, error) {
	s.requests++
	s.lastIn = in
	return s.result, s.err
}
func (s *fakeSession) Close() error { s.closed = true; return nil }

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func loadedPipeline(t *testing.T, sess *fakeSession) *Pipeline {
	t.Helper()
	p := NewWithConfig(PipelineConfig{Model: "DreamShaper-8", RuntimeURL: "http://unused", OutputSize: 64})
	p.SetAdapter(&fakeAdapter{sess: sess})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

func TestLoadReady(t *testing.T) {
	p := loadedPipeline(t, &fakeSession{})
	if !p.Ready() {
		t.Fatalf("expected ready after load")
	}
	if p.ModelID() != "DreamShaper-8" {
		t.Fatalf("model=%q", p.ModelID())
	}
}

func TestLoadFailureLeavesErrorState(t *testing.T) {
	p := New("m", "http://unused")
	p.SetAdapter(&fakeAdapter{sess: &fakeSession{pingErr: errors.New("down")}})
	if err := p.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if p.Ready() {
		t.Fatalf("expected not ready")
	}
	if st := p.Status(); st.State != string(StateError) || st.LastError == "" {
		t.Fatalf("status=%+v", st)
	}
}

func TestProcessNotReady(t *testing.T) {
	p := New("m", "http://unused")
	_, err := p.Process(context.Background(), testPNG(t, 8, 8), types.Defaults())
	if !IsNotReady(err) {
		t.Fatalf("expected not-ready error, got %v", err)
	}
}

func TestProcessNormalizesInputAndResult(t *testing.T) {
	sess := &fakeSession{result: testPNG(t, 100, 30)} // runtime ignores requested canvas
	p := loadedPipeline(t, sess)
	out, err := p.Process(context.Background(), testPNG(t, 300, 120), types.Defaults())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if format != "png" || cfg.Width != 64 || cfg.Height != 64 {
		t.Fatalf("result %s %dx%d, want png 64x64", format, cfg.Width, cfg.Height)
	}
	if sess.lastIn.Width != 64 || sess.lastIn.Height != 64 {
		t.Fatalf("runtime asked for %dx%d, want 64x64", sess.lastIn.Width, sess.lastIn.Height)
	}
	// the init image sent to the runtime is already normalized
	icfg, _, err := image.DecodeConfig(bytes.NewReader(sess.lastIn.InitImage))
	if err != nil {
		t.Fatalf("decode init image: %v", err)
	}
	if icfg.Width != 64 || icfg.Height != 64 {
		t.Fatalf("init image %dx%d, want 64x64", icfg.Width, icfg.Height)
	}
}

func TestProcessPropagatesDecodeError(t *testing.T) {
	p := loadedPipeline(t, &fakeSession{result: testPNG(t, 8, 8)})
	if _, err := p.Process(context.Background(), []byte("corrupt"), types.Defaults()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestProcessPropagatesRuntimeError(t *testing.T) {
	sess := &fakeSession{err: errors.New("cuda out of memory")}
	p := loadedPipeline(t, sess)
	_, err := p.Process(context.Background(), testPNG(t, 8, 8), types.Defaults())
	if err == nil || err.Error() != "cuda out of memory" {
		t.Fatalf("err=%v", err)
	}
	if st := p.Status(); st.LastError != "cuda out of memory" || st.TransformsTotal != 0 {
		t.Fatalf("status=%+v", st)
	}
}

func TestStatusCountsTransforms(t *testing.T) {
	p := loadedPipeline(t, &fakeSession{result: testPNG(t, 64, 64)})
	for i := 0; i < 3; i++ {
		if _, err := p.Process(context.Background(), testPNG(t, 8, 8), types.Defaults()); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	st := p.Status()
	if st.TransformsTotal != 3 || st.State != string(StateReady) {
		t.Fatalf("status=%+v", st)
	}
}

func TestCloseReleasesSession(t *testing.T) {
	sess := &fakeSession{}
	p := loadedPipeline(t, sess)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !sess.closed {
		t.Fatalf("session not closed")
	}
	if p.Ready() {
		t.Fatalf("ready after close")
	}
}
