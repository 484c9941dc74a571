package harness

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

// RESTClient drives the HTTP+JSON surface.
type RESTClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *RESTClient) Name() string { return "rest" }

func (c *RESTClient) Do(ctx context.Context, call Call) (*Response, error) {
	def, err := lookupOp(call.Op)
	if err != nil {
		return nil, err
	}
	route := def.rest

	target := c.BaseURL + strings.ReplaceAll(route.path, "{id}", url.PathEscape(idSegment(call.Args["id"])))
	if len(route.query) > 0 {
		q := url.Values{}
		for _, k := range route.query {
			if v, ok := call.Args[k]; ok && v != nil {
				q.Set(k, fmt.Sprint(v))
			}
		}
		if enc := q.Encode(); enc != "" {
			target += "?" + enc
		}
	}

	var body io.Reader
	if len(route.body) > 0 {
		payload := make(map[string]any, len(route.body))
		for _, k := range route.body {
			if v, ok := call.Args[k]; ok {
				payload[k] = v
			}
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", call.Op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, route.method, target, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := call.Token
	if route.tokenArg != "" {
		token = argString(call.Args[route.tokenArg])
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", route.method, route.path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", call.Op, err)
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &e)
		return NewRESTResponse(resp.StatusCode, nil, e.Message), nil
	}
	if resp.StatusCode == http.StatusNoContent && len(bytes.TrimSpace(raw)) > 0 {
		return nil, fmt.Errorf("%s: 204 response carries a body", call.Op)
	}
	rec, err := normalizeREST(call.Op, raw, call.Revert)
	if err != nil {
		return nil, err
	}
	return NewRESTResponse(resp.StatusCode, rec, ""), nil
}

// idSegment renders an id arg for a path. Missing ids become "0" so the
// server rejects them the way gRPC rejects an unset id.
func idSegment(v any) string {
	if v == nil {
		return "0"
	}
	s := fmt.Sprint(v)
	if s == "" {
		return "0"
	}
	return s
}

func argString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
