package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	logx "coursewatch/pkg/logx"
)

type Config struct {
	// ProxyBase is the request-rewriting proxy endpoint; the real API URL
	// travels percent-encoded in its query string.
	ProxyBase string
	// APIHost is the origin of the catalog API, also sent as referrer.
	APIHost string

	// RetryCount is the total number of attempts per call. Default 3.
	RetryCount int
	// RetryBackoff is the fixed wait between attempts. Default 5s.
	RetryBackoff time.Duration
	// RequestTimeout bounds each individual attempt. Default 10s.
	RequestTimeout time.Duration
}

// Client fetches subject and item lists from the remote catalog.
type Client struct {
	cfg  Config
	http *resty.Client
	log  logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	hc := resty.New()
	hc.SetTimeout(cfg.RequestTimeout)
	hc.SetRetryCount(cfg.RetryCount - 1)
	hc.SetRetryWaitTime(cfg.RetryBackoff)
	hc.SetRetryMaxWaitTime(cfg.RetryBackoff)
	hc.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= 500
	})

	return &Client{cfg: cfg, http: hc, log: log}
}

// apiURL wraps an API path into the proxy's query-parameter form.
func (c *Client) apiURL(path string) string {
	target := c.cfg.APIHost + "/api" + path
	return c.cfg.ProxyBase +
		"?url=" + url.QueryEscape(target) +
		"&referrer=" + url.QueryEscape(c.cfg.APIHost)
}

// ListSubjects returns the subjects published under a batch.
func (c *Client) ListSubjects(ctx context.Context, batchID string) ([]Subject, error) {
	var subjects []Subject
	if err := c.getData(ctx, c.apiURL("/batches/"+batchID), &subjects); err != nil {
		return nil, &FetchError{Op: "subjects", Err: err}
	}
	return subjects, nil
}

// ListItems returns the items of one content type under a subject.
// An empty or missing list is not an error, just zero items.
func (c *Client) ListItems(ctx context.Context, batchID, subjectID string, typ ContentType) ([]Item, error) {
	path := fmt.Sprintf("/%s/subjects/%s/%s", batchID, subjectID, typ)
	var items []Item
	if err := c.getData(ctx, c.apiURL(path), &items); err != nil {
		return nil, &FetchError{Op: string(typ), Err: err}
	}
	return items, nil
}

// envelope is the remote response shape. data is RawMessage because the
// API sometimes returns null or an object there; anything that is not an
// array decodes to zero entries.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) getData(ctx context.Context, rawURL string, out any) error {
	resp, err := c.http.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Data) == 0 || !strings.HasPrefix(strings.TrimSpace(string(env.Data)), "[") {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
