// Package newsapi is a thin client for the NewsAPI v2 endpoints the reader
// uses. Each call is a single GET; failures are logged and returned.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/matheuskafuri/headlines/internal/article"
	"github.com/matheuskafuri/headlines/internal/logging"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL             = "https://newsapi.org/v2"
	DefaultCountry             = "us"
	DefaultRecommendedCategory = "technology"
)

// Response is the body of a successful call.
type Response struct {
	Status       string            `json:"status"`
	TotalResults int               `json:"totalResults"`
	Articles     []article.Article `json:"articles"`
}

type errorBody struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Options struct {
	BaseURL             string
	APIKey              string
	Country             string
	RecommendedCategory string
	Timeout             time.Duration
	// Retries is the number of extra attempts after a failed request.
	Retries int
	// RequestsPerMinute caps outgoing calls; zero means unlimited.
	RequestsPerMinute int
	HTTPClient        *http.Client
	Logger            *log.Logger
}

type Client struct {
	baseURL     string
	apiKey      string
	country     string
	recommended string
	http        *retryablehttp.Client
	limiter     *rate.Limiter
	logger      *log.Logger
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Country == "" {
		opts.Country = DefaultCountry
	}
	if opts.RecommendedCategory == "" {
		opts.RecommendedCategory = DefaultRecommendedCategory
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	r := retryablehttp.NewClient()
	if opts.HTTPClient != nil {
		// Copy so the timeout below stays local to this client
		hc := *opts.HTTPClient
		r.HTTPClient = &hc
	}
	r.HTTPClient.Timeout = opts.Timeout
	r.RetryMax = opts.Retries
	r.Logger = nil
	// Hand the final response back so the body's error code can be read
	r.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		country:     opts.Country,
		recommended: opts.RecommendedCategory,
		http:        r,
		limiter:     limiter,
		logger:      logging.OrDiscard(opts.Logger).WithPrefix("newsapi"),
	}
}

// Breaking returns the country's top headlines.
func (c *Client) Breaking(ctx context.Context) (*Response, error) {
	return c.get(ctx, "breaking", "/top-headlines", url.Values{"country": {c.country}})
}

// Recommended returns top headlines in the recommended category.
func (c *Client) Recommended(ctx context.Context) (*Response, error) {
	return c.get(ctx, "recommended", "/top-headlines", url.Values{
		"country":  {c.country},
		"category": {c.recommended},
	})
}

// Discover returns top headlines for a caller-chosen category.
func (c *Client) Discover(ctx context.Context, category string) (*Response, error) {
	return c.get(ctx, "discover", "/top-headlines", url.Values{
		"country":  {c.country},
		"category": {category},
	})
}

// Search runs a free-text query against the everything endpoint.
func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	return c.get(ctx, "search", "/everything", url.Values{"q": {query}})
}

func (c *Client) endpoint(path string, params url.Values) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apiKey", c.apiKey)
	return c.baseURL + path + "?" + q.Encode()
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values) (*Response, error) {
	resp, err := c.do(ctx, op, path, params)
	if err != nil {
		c.logger.Error("request failed", "op", op, "err", err)
		return nil, err
	}
	c.logger.Debug("request ok", "op", op, "articles", len(resp.Articles))
	return resp, nil
}

func (c *Client) do(ctx context.Context, op, path string, params url.Values) (*Response, error) {
	target := c.endpoint(path, params)
	netErr := func(status int, code string, err error) *NetworkError {
		return &NetworkError{Op: op, URL: redact(target), StatusCode: status, Code: code, Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, netErr(0, "", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, netErr(0, "", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		// net/http puts the full request URL, key included, in the message
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(ue.URL)
		}
		return nil, netErr(0, "", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, netErr(res.StatusCode, "", fmt.Errorf("reading body: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		msg := eb.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, netErr(res.StatusCode, eb.Code, fmt.Errorf("%s", msg))
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, netErr(res.StatusCode, "", fmt.Errorf("decoding body: %w", err))
	}
	if out.Status == "error" {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, netErr(res.StatusCode, eb.Code, fmt.Errorf("%s", eb.Message))
	}
	if out.Articles == nil {
		out.Articles = []article.Article{}
	}
	return &out, nil
}

// redact masks the api key so URLs can be logged and shown.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("apiKey") {
		q.Set("apiKey", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
