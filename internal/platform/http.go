package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sessiongate/internal/domain"
)

const (
	// maxResponseSize bounds how much of a reply body is ever read.
	maxResponseSize int64 = 1 << 20
	// maxErrorBody bounds the body excerpt kept in a TransportError.
	maxErrorBody = 512
)

type route struct {
	method string
	path   string
}

var routes = map[domain.Operation]route{
	domain.OpInitSession:   {http.MethodPost, "/v1/session/init"},
	domain.OpChallenge:     {http.MethodPost, "/v1/session/challenge"},
	domain.OpVerify:        {http.MethodPost, "/v1/session/verify"},
	domain.OpDeleteSession: {http.MethodDelete, "/v1/session"},
}

// Route returns the HTTP method and path serving op.
func Route(op domain.Operation) (method, path string, ok bool) {
	rt, ok := routes[op]
	return rt.method, rt.path, ok
}

// HTTPTransport sends session RPCs as JSON over HTTP.
type HTTPTransport struct {
	Base string
	HTTP *http.Client
}

// NewHTTPTransport returns a transport rooted at base. A nil client means
// http.DefaultClient.
func NewHTTPTransport(base string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Base: strings.TrimRight(base, "/"), HTTP: client}
}

// Call performs op, attaching headers, encoding in and decoding the reply
// into out.
func (c *HTTPTransport) Call(
	ctx context.Context,
	op domain.Operation,
	headers Headers,
	in, out any,
) error {
	rt, ok := routes[op]
	if !ok {
		return fmt.Errorf("platform: unknown operation %q", op)
	}

	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("platform %s: encode request: %w", op, err)
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, rt.method, c.Base+rt.path, body)
	if err != nil {
		return fmt.Errorf("platform %s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &domain.TransportError{
			Op:     op,
			Status: resp.StatusCode,
			Body:   errorBody(resp.Body),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &domain.TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s: empty body", domain.ErrMalformedResponse, op)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, op, err)
	}
	return nil
}

// errorBody reads a short excerpt of an error reply for diagnostics. Read
// errors are ignored; a partial body is still useful.
func errorBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(data))
}

var _ Transport = (*HTTPTransport)(nil)
