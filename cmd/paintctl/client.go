package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 10 * time.Minute}

type processParams struct {
	Prompt   string
	Strength float64
	Steps    int
	Guidance float64
}

// processImage posts image through POST /process and returns the PNG bytes
// and the X-Model header.
func processImage(server string, image []byte, params processParams) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "painting.png")
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(image); err != nil {
		return nil, "", err
	}
	fields := map[string]string{
		"prompt":   params.Prompt,
		"strength": strconv.FormatFloat(params.Strength, 'f', -1, 64),
		"steps":    strconv.Itoa(params.Steps),
		"guidance": strconv.FormatFloat(params.Guidance, 'f', -1, 64),
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(server, "/")+"/process", &buf)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		var detail struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &detail) == nil && detail.Error != "" {
			return nil, "", fmt.Errorf("server error (%d): %s", resp.StatusCode, detail.Error)
		}
		return nil, "", fmt.Errorf("server error (%d)", resp.StatusCode)
	}
	return body, resp.Header.Get("X-Model"), nil
}

// fetchStatus retrieves GET /status raw.
func fetchStatus(server string) ([]byte, error) {
	resp, err := httpClient.Get(strings.TrimRight(server, "/") + "/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
