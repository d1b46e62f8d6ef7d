package client

import (
	"context"
	"strings"

	"github.com/fivetwenty-io/scratch-client/internal/http"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// httpTransport adapts the HTTP client to scratch.Transport.
type httpTransport struct {
	client *http.Client
}

// Do implements scratch.Transport.
func (t *httpTransport) Do(ctx context.Context, req *scratch.Request) (*scratch.Response, error) {
	headers := make(map[string]string, len(req.Headers))

	for name, values := range req.Headers {
		separator := ", "
		if name == "Cookie" {
			separator = "; "
		}

		headers[name] = strings.Join(values, separator)
	}

	httpReq := &http.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query,
		Headers: headers,
		NoCache: req.NoCache(),
	}

	if req.Body != nil {
		httpReq.Body = req.Body
	}

	resp, err := t.client.Do(ctx, httpReq)
	if resp == nil {
		return nil, err
	}

	return &scratch.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		Error:      err,
	}, err
}
