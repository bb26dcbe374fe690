package sportsapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// DoRequest performs an authenticated GET and returns the response body.
func DoRequest(ctx context.Context, client *http.Client, key string, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Add("accept", "application/json")
	if key != "" {
		req.Header.Add("x-apisports-key", key)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, StatusError{URL: url, StatusCode: resp.StatusCode, Body: abbreviate(body)}
	}

	return body, nil
}

// envelope is the wrapper every endpoint answers with.
type envelope[T any] struct {
	Errors   jsoniter.RawMessage `json:"errors"`
	Results  int                 `json:"results"`
	Response []T                 `json:"response"`
}

// APIError carries the errors the API reports inside a 200 response.
type APIError struct {
	Errors string
}

func (e APIError) Error() string {
	return "api reported errors: " + e.Errors
}

func decodeEnvelope[T any](body []byte) ([]T, error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if e := bytes.TrimSpace(env.Errors); len(e) > 0 && !bytes.Equal(e, []byte("[]")) && !bytes.Equal(e, []byte("{}")) && !bytes.Equal(e, []byte("null")) {
		return nil, APIError{Errors: string(e)}
	}
	if env.Response == nil {
		env.Response = []T{}
	}
	return env.Response, nil
}

func abbreviate(b []byte) string {
	const n = 256
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
