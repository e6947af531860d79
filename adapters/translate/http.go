package translate

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds every provider call
	DefaultTimeout = 10 * time.Second
	// maxResponseBytes caps provider bodies
	maxResponseBytes = 1 << 20
	// errorPreviewBytes limits how much of an error body reaches the logs
	errorPreviewBytes = 256
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doAndRead executes req, always closes the body and returns at most
// maxResponseBytes of it
func doAndRead(client *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	limited := &io.LimitedReader{R: resp.Body, N: maxResponseBytes + 1}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, resp, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", maxResponseBytes)
	}
	return body, resp, nil
}

func preview(body []byte) string {
	if len(body) > errorPreviewBytes {
		return string(body[:errorPreviewBytes]) + "..."
	}
	return string(body)
}
