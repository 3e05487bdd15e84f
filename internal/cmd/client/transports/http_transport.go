package transports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HttpTransport implements LogsTransport over the JSON API.
type HttpTransport struct {
	baseURL string
	client  *http.Client
	creds   Credentials
}

// NewHttpTransport returns a transport for the server at baseURL.
func NewHttpTransport(baseURL string, creds Credentials) *HttpTransport {
	return &HttpTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  uint32 `json:"code"`
	Name  string `json:"name"`
}

func (t *HttpTransport) post(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case t.creds.Token != "":
		req.Header.Set("Authorization", "Bearer "+t.creds.Token)
	case t.creds.Caller != "":
		req.Header.Set("X-Caller", t.creds.Caller)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var eb errorBody
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Name != "" {
			return &RemoteError{Name: eb.Name, Code: eb.Code, Message: eb.Error}
		}
		if eb.Error != "" {
			return fmt.Errorf("http %d: %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Create creates a log via HTTP.
func (t *HttpTransport) Create(ctx context.Context, key uint64) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := t.post(ctx, "/v1/logs/create", map[string]uint64{"key": key}, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

// Append appends one event via HTTP.
func (t *HttpTransport) Append(ctx context.Context, key uint64, payload []byte) (int, error) {
	in := struct {
		Key     uint64 `json:"key"`
		Payload []byte `json:"payload"`
	}{key, payload}
	var out struct {
		Len int `json:"len"`
	}
	if err := t.post(ctx, "/v1/logs/append", in, &out); err != nil {
		return 0, err
	}
	return out.Len, nil
}
