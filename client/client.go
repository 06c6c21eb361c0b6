package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	reportBaseURL = "https://s.cafef.vn/bao-cao-tai-chinh"

	// Default access rate for cafef. They don't publish one, so stay polite.
	limitRate = 10
)

// HttpRequestDoer performs HTTP requests.
//
// The standard http.Client implements this interface.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Limiter interface{ Wait(context.Context) error }

func New(opts ...ClientOption) *Client {
	c := &Client{}
	return c.applyOptions(opts...)
}

type ClientOption func(c *Client)

func WithHttpClient(client HttpRequestDoer) ClientOption {
	return func(c *Client) { c.client = client }
}

func WithRateLimiter(l Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

type Client struct {
	client  HttpRequestDoer
	limiter Limiter
	ua      string

	reportBaseURL string
	listing       ListingURLs
}

func (self *Client) applyOptions(opts ...ClientOption) *Client {
	for _, fn := range opts {
		fn(self)
	}

	if self.client == nil {
		self.client = &http.Client{}
	}

	if self.limiter == nil {
		self.limiter = rate.NewLimiter(limitRate, limitRate)
	}

	return self
}

func (self *Client) WithReportBaseURL(url string) *Client {
	self.reportBaseURL = url
	return self
}

func (self *Client) ReportBaseURL() string {
	if self.reportBaseURL == "" {
		return reportBaseURL
	}
	return self.reportBaseURL
}

func (self *Client) WithUserAgent(ua string) *Client {
	self.ua = ua
	return self
}

func (self *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return self.do(ctx, http.MethodGet, url, nil)
}

func (self *Client) do(ctx context.Context, method, url string, body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create new %s request for %q: %w", method, url, err)
	}
	if self.ua != "" {
		req.Header.Add("User-Agent", self.ua)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := self.limitRate(ctx); err != nil {
		return nil, fmt.Errorf("rate limit %s %s: %w", method, url, err)
	}

	resp, err := self.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	return resp, nil
}

func (self *Client) limitRate(ctx context.Context) error {
	if self.limiter != nil {
		if err := self.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait: %w", err)
		}
	}
	return nil
}

func (self *Client) GetJSON(ctx context.Context, url string, value any) error {
	resp, err := self.Get(ctx, url)
	if err != nil {
		return err
	}
	return self.decodeJSON(resp, http.MethodGet, url, value)
}

// PostJSON sends payload as JSON body and decodes JSON response into value.
func (self *Client) PostJSON(ctx context.Context, url string, payload, value any,
) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal POST %s: %w", url, err)
	}

	resp, err := self.do(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	return self.decodeJSON(resp, http.MethodPost, url, value)
}

func (self *Client) decodeJSON(resp *http.Response, method, url string,
	value any,
) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode > maxExpectedStatusCode {
		return fmt.Errorf("%s %s: %w", method, url, newUnexpectedStatusError(resp))
	}
	if err != nil {
		return fmt.Errorf("read body from %s: %w", url, err)
	}

	if err := json.Unmarshal(body, value); err != nil {
		return fmt.Errorf("unmarshal %s: %w", url, err)
	}

	return nil
}
