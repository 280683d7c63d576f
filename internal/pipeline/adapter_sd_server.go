package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// sdServerAdapter implements DiffusionAdapter by talking to a running
// Automatic1111-compatible Stable Diffusion server over HTTP.
type sdServerAdapter struct {
	baseURL        string
	reqTimeout     time.Duration
	connectTimeout time.Duration
	httpClient     *http.Client
}

// NewSDServerAdapter constructs a server-backed adapter.
func NewSDServerAdapter(baseURL string, reqTimeout, connectTimeout time.Duration) DiffusionAdapter {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Intentionally set Timeout=0 here: all requests must carry context-based
	// timeouts. See Transform() which applies reqTimeout via context.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &sdServerAdapter{
		baseURL:        strings.TrimRight(baseURL, "/"),
		reqTimeout:     reqTimeout,
		connectTimeout: connectTimeout,
		httpClient:     cli,
	}
}

// sdServerSession holds per-session state (the selected checkpoint).
type sdServerSession struct {
	adapter *sdServerAdapter
	model   string
}

func (a *sdServerAdapter) Open(model string) (DiffusionSession, error) {
	if a.baseURL == "" {
		return nil, errors.New("sd server adapter: empty runtime url")
	}
	return &sdServerSession{adapter: a, model: strings.TrimSpace(model)}, nil
}

// img2imgRequest is the subset of the Automatic1111 /sdapi/v1/img2img
// payload this service uses. Init images travel base64-encoded.
type img2imgRequest struct {
	InitImages        []string          `json:"init_images"`
	Prompt            string            `json:"prompt"`
	DenoisingStrength float64           `json:"denoising_strength"`
	Steps             int               `json:"steps"`
	CFGScale          float64           `json:"cfg_scale"`
	Width             int               `json:"width"`
	Height            int               `json:"height"`
	OverrideSettings  map[string]string `json:"override_settings,omitempty"`
}

// img2imgResponse carries the generated images, base64-encoded.
type img2imgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

func (s *sdServerSession) Ping(ctx context.Context) error {
	if s.adapter.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.adapter.connectTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.adapter.baseURL+"/sdapi/v1/sd-models", nil)
	if err != nil {
		return err
	}
	resp, err := s.adapter.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrRuntimeUnavailable("sd server unreachable: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrRuntimeUnavailable("sd server http error: " + resp.Status)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return nil
}

func (s *sdServerSession) Transform(ctx context.Context, in TransformInput) ([]byte, error) {
	if s.adapter == nil || s.adapter.httpClient == nil {
		return nil, errors.New("sd server adapter not initialized")
	}
	// Apply request timeout via context, if configured
	if s.adapter.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.adapter.reqTimeout)
		defer cancel()
	}

	payload := img2imgRequest{
		InitImages:        []string{base64.StdEncoding.EncodeToString(in.InitImage)},
		Prompt:            in.Prompt,
		DenoisingStrength: in.Strength,
		Steps:             in.Steps,
		CFGScale:          in.Guidance,
		Width:             in.Width,
		Height:            in.Height,
	}
	if s.model != "" {
		payload.OverrideSettings = map[string]string{"sd_model_checkpoint": s.model}
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.adapter.baseURL+"/sdapi/v1/img2img", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.adapter.httpClient.Do(req)
	if err != nil {
		// Translate context timeouts/cancels
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrRuntimeUnavailable("sd server unreachable: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.New("sd server http error: " + resp.Status + ": " + string(b))
	}
	var out img2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.New("sd server: decode response: " + err.Error())
	}
	if len(out.Images) == 0 {
		return nil, errors.New("sd server: response contained no images")
	}
	img, err := base64.StdEncoding.DecodeString(out.Images[0])
	if err != nil {
		return nil, errors.New("sd server: decode image payload: " + err.Error())
	}
	return img, nil
}

func (s *sdServerSession) Close() error { return nil }
