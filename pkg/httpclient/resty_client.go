package httpclient

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options tunes the shared resty client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// RestyClient adapts resty.Client to the Client and JSONClient interfaces.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified options.
func NewRestyClient(opts Options) *RestyClient {
	return &RestyClient{client: NewRestyHTTPClient(opts)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(opts Options) *resty.Client {
	c := resty.New()
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// PostJSON marshals body as JSON and POSTs it.
func (r *RestyClient) PostJSON(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	req := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
