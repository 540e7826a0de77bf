package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

func NewTransport(baseURL, token string) *Transport {
	return &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AuthToken:  token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *Transport) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// Do sends data as JSON (when not nil) and decodes the response into out
// (when not nil).
func (t *Transport) Do(ctx context.Context, method, path string, query url.Values, data any, out any) error {
	fullURL, err := t.buildURL(path, query)
	if err != nil {
		return err
	}

	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if t.AuthToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.AuthToken))
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	resdata, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: string(resdata)}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(resdata, &envelope) == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil || len(resdata) == 0 {
		return nil
	}
	if err := json.Unmarshal(resdata, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

// Download streams a raw response body into w.
func (t *Transport) Download(ctx context.Context, path string, query url.Values, w io.Writer) error {
	fullURL, err := t.buildURL(path, query)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	if t.AuthToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.AuthToken))
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode, Message: string(b)}
	}
	_, err = io.Copy(w, resp.Body)
	return err
}
