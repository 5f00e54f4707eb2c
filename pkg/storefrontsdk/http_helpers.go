package storefrontsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HeaderTokenExpired is set to "true" by the API on a 401 caused by an expired
// access token.
const HeaderTokenExpired = "Token-Expired"

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
// This is for unauthenticated requests (no Authorization header).
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// doAuthRequest performs an authenticated HTTP request using the session's
// access token. A 401 carrying the Token-Expired signal triggers exactly one
// refresh and one replay of the request; anything else is returned as is.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	// Buffer the body so the request can be replayed after a refresh
	var payload []byte
	if body != nil {
		var err error
		if payload, err = io.ReadAll(body); err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.send(ctx, method, path, payload, headers, token)
	if err != nil {
		return nil, err
	}
	if !tokenExpired(resp) {
		return resp, nil
	}
	discard(resp)

	newToken, err := s.refreshExpired(ctx, token)
	if err != nil {
		return nil, err
	}

	// Single replay: its response is final, even another 401
	return s.send(ctx, method, path, payload, headers, newToken)
}

// send issues one attempt of an authenticated request.
func (s *Session) send(
	ctx context.Context,
	method, path string,
	payload []byte,
	headers map[string]string,
	token string,
) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// tokenExpired reports whether resp is the API's "access token expired" answer.
func tokenExpired(resp *http.Response) bool {
	return resp.StatusCode == http.StatusUnauthorized &&
		strings.EqualFold(strings.TrimSpace(resp.Header.Get(HeaderTokenExpired)), "true")
}

// discard drains and closes a response body we are not going to use, so the
// connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// encodeJSON marshals v into a request body.
func encodeJSON(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}

// decodeJSON decodes a 2xx JSON response into target. Non-2xx responses
// become an *APIError using fallback when the body carries no message. An
// empty success body leaves target untouched.
func decodeJSON(resp *http.Response, target any, fallback string) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := parseErrorResponse(resp, bodyBytes, fallback); err != nil {
		return err
	}

	if target == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// checkStatusOK returns a typed error if the response status is not 2xx.
func checkStatusOK(resp *http.Response, fallback string) error {
	return decodeJSON(resp, nil, fallback)
}
