package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MCPProxy talks to the hearth-server REST API.
type MCPProxy struct {
	serverURL  string
	httpClient *http.Client
}

// NewMCPProxy creates a new REST client targeting the given server URL.
func NewMCPProxy(serverURL string) *MCPProxy {
	return &MCPProxy{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ServerVersion returns the version reported by GET /api/version.
func (p *MCPProxy) ServerVersion() (string, error) {
	body, err := p.get("/api/version")
	if err != nil {
		return "", err
	}
	var v struct {
		Version string `json:"version"`
		Build   string `json:"build"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("failed to decode version: %w", err)
	}
	if v.Build != "" && v.Build != "unknown" {
		return v.Version + " (" + v.Build + ")", nil
	}
	return v.Version, nil
}

// get performs a GET request and returns the response body.
func (p *MCPProxy) get(path string) ([]byte, error) {
	resp, err := p.httpClient.Get(p.serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("server request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s", errResp.Error)
		}
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
