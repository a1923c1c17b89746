package tuya

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
	"golang.org/x/time/rate"
)

// Config carries the vendor API credentials and endpoint. It is passed
// in explicitly; nothing in this package reads the environment.
type Config struct {
	Endpoint     string
	AccessID     string
	AccessSecret string
}

var configSchema = z.Struct(z.Shape{
	"Endpoint":     z.String().Required(),
	"AccessID":     z.String().Required(),
	"AccessSecret": z.String().Required(),
})

type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithPageLimiter paces outbound requests; every page of a paginated
// fetch waits on it.
func WithPageLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithClock overrides the timestamp source used for request signing.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if issues := configSchema.Validate(&cfg); issues != nil {
		return nil, fmt.Errorf("invalid tuya config: %v", issues)
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the top-level shape of every vendor response.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	T       int64           `json:"t"`
	Result  json.RawMessage `json:"result"`
}

// APIError is a logical vendor failure (success=false with HTTP 200).
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tuya api error %d: %s", e.Code, e.Msg)
}

// get issues one signed GET and decodes result into out. The signature
// covers the path only, not the query string.
func (c *Client) get(ctx context.Context, urlPath string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	fullURL := strings.TrimRight(c.cfg.Endpoint, "/") + urlPath
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	headers := SignRequest(c.cfg.AccessID, c.cfg.AccessSecret, http.MethodGet, urlPath, nil, c.now().UnixMilli())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode tuya response: %w", err)
	}
	if !env.Success {
		return &APIError{Code: env.Code, Msg: env.Msg}
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode tuya result: %w", err)
		}
	}
	return nil
}
