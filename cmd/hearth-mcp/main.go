package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// StdioProxy forwards JSON-RPC messages from stdin to the hearth-server MCP
// endpoint and writes responses to stdout.
type StdioProxy struct {
	serverURL  string
	httpClient *http.Client
}

func main() {
	serverURL := strings.TrimRight(os.Getenv("HEARTH_SERVER_URL"), "/")
	if serverURL == "" {
		serverURL = "http://localhost:4343"
	}

	if version, err := NewMCPProxy(serverURL).ServerVersion(); err != nil {
		fmt.Fprintf(os.Stderr, "hearth-mcp: server at %s not reachable yet: %v\n", serverURL, err)
	} else {
		fmt.Fprintf(os.Stderr, "hearth-mcp: connected to hearth-server %s\n", version)
	}

	proxy := &StdioProxy{
		serverURL: serverURL + "/mcp",
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}

	if err := proxy.RunWithIO(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "proxy error: %v\n", err)
		os.Exit(1)
	}
}

// RunWithIO reads newline-delimited JSON-RPC from r, forwards each message
// to the HTTP server, and writes the response to w.
func (p *StdioProxy) RunWithIO(r io.Reader, w io.Writer) error {
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 300 * time.Second}
	}

	scanner := bufio.NewScanner(r)
	// Chart images arrive base64-encoded inside tool results
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		resp, err := p.forward(line)
		if err != nil {
			id := extractID(line)
			if id == nil {
				// Notifications never get a reply
				continue
			}
			w.Write(jsonRPCError(id, -32000, err.Error()))
			w.Write([]byte("\n"))
			continue
		}
		if len(resp) == 0 {
			continue
		}

		w.Write(resp)
		w.Write([]byte("\n"))
	}

	return scanner.Err()
}

// forward sends a JSON-RPC message to the HTTP server and returns the response body.
// Accepted notifications return an empty body.
func (p *StdioProxy) forward(body []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, p.serverURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusAccepted, http.StatusNoContent:
		return nil, nil
	default:
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(bytes.TrimSpace(respBody)))
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return lastSSEData(respBody), nil
	}
	return bytes.TrimSpace(respBody), nil
}

// lastSSEData returns the payload of the final data: line in an event stream.
func lastSSEData(stream []byte) []byte {
	var last []byte
	for _, line := range bytes.Split(stream, []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		if data, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			last = bytes.TrimSpace(data)
		}
	}
	return last
}

// extractID pulls the "id" field from a JSON-RPC request. It returns nil for
// notifications and "null" for unparseable input.
func extractID(msg []byte) json.RawMessage {
	var req struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(msg, &req); err != nil {
		return json.RawMessage("null")
	}
	return req.ID
}

// jsonRPCError creates a JSON-RPC error response.
func jsonRPCError(id json.RawMessage, code int, message string) []byte {
	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
	data, _ := json.Marshal(resp)
	return data
}
