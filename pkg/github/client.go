package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultURL is the public GitHub GraphQL endpoint.
const DefaultURL = "https://api.github.com/graphql"

type Client struct {
	url        string
	token      string
	httpClient *http.Client
	owner      string
	repo       string
	retries    int
	retryAfter time.Duration
	log        *zap.Logger

	// Services
	Tags         TagsService
	PullRequests PullRequestsService
}

// APIError is an HTTP error status or a GraphQL errors[] response.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

// Error returns a string representation of the APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error (%d): %s -- %s", e.StatusCode, e.Message, string(e.Body))
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides the GraphQL endpoint.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// WithRepository sets the repository the services query.
func WithRepository(owner, repo string) Option {
	return func(c *Client) { c.owner, c.repo = owner, repo }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger used for retries and request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRetry retries 5xx responses and transport errors count times.
func WithRetry(count int, after time.Duration) Option {
	return func(c *Client) { c.retries, c.retryAfter = count, after }
}

// NewClient creates a GraphQL client authenticating with token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("GitHub token is required")
	}
	c := &Client{
		url:        DefaultURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryAfter: time.Second,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if _, err := url.ParseRequestURI(c.url); err != nil {
		return nil, errors.Wrap(err, "invalid GraphQL URL")
	}

	c.Tags = &tagsService{client: c}
	c.PullRequests = &pullRequestsService{client: c}
	return c, nil
}

// NewClientFromEnv creates a client from the runner environment:
//   - GITHUB_TOKEN (required unless token is given)
//   - GITHUB_GRAPHQL_URL (optional, defaults to DefaultURL)
//   - GITHUB_REPOSITORY for the services
//   - GITHUB_CLIENT_TIMEOUT_SECONDS (optional)
func NewClientFromEnv(token string, opts ...Option) (*Client, error) {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	base := []Option{WithURL(os.Getenv("GITHUB_GRAPHQL_URL"))}
	if owner, repo, ok := strings.Cut(os.Getenv("GITHUB_REPOSITORY"), "/"); ok {
		base = append(base, WithRepository(owner, repo))
	}
	if s := os.Getenv("GITHUB_CLIENT_TIMEOUT_SECONDS"); s != "" {
		if seconds, err := strconv.Atoi(s); err == nil && seconds > 0 {
			base = append(base, WithHTTPClient(&http.Client{Timeout: time.Duration(seconds) * time.Second}))
		}
	}
	return NewClient(token, append(base, opts...)...)
}

// Request is a GraphQL request body.
type Request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// DoRequest posts req and returns the raw response body.
// HTTP statuses >= 400 come back as *APIError carrying the body.
func (c *Client) DoRequest(ctx context.Context, req Request) ([]byte, error) {
	if req.Variables == nil {
		req.Variables = map[string]interface{}{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request body")
	}

	var lastMessage string
	for attempt := 0; ; attempt++ {
		body, err := c.do(ctx, payload)
		if err == nil || attempt >= c.retries || !retryable(err) || ctx.Err() != nil {
			return body, err
		}
		if msg := err.Error(); msg != lastMessage {
			c.log.Info("Will retry", zap.Error(err), zap.Int("attempt", attempt+1))
			lastMessage = msg
		}
		select {
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		case <-time.After(c.retryAfter):
		}
	}
}

func (c *Client) do(ctx context.Context, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request [POST %s]", c.url)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError{errors.Wrapf(err, "HTTP request failed [POST %s]", c.url)}
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode >= 400 {
		return respData, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       respData,
		}
	}
	return respData, nil
}

// Query runs a GraphQL query and decodes its data into out.
// A non-empty errors[] array is returned as *APIError.
func (c *Client) Query(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := c.DoRequest(ctx, Request{Query: query, Variables: vars})
	if err != nil {
		return err
	}
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return errors.Wrap(err, "failed to parse GraphQL response")
	}
	if len(r.Errors) > 0 {
		msgs := make([]string, len(r.Errors))
		for i, e := range r.Errors {
			msgs[i] = e.Message
		}
		return &APIError{StatusCode: http.StatusOK, Message: strings.Join(msgs, "; "), Body: body}
	}
	if out == nil || len(r.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(r.Data, out), "failed to decode GraphQL data")
}

// repoVars returns the owner/repo variables, failing when the repository is unknown.
func (c *Client) repoVars() (map[string]interface{}, error) {
	if c.owner == "" || c.repo == "" {
		return nil, errors.New("repository owner and name must be set (GITHUB_REPOSITORY)")
	}
	return map[string]interface{}{"owner": c.owner, "repo": c.repo}, nil
}

type transportError struct{ error }

func (e transportError) Unwrap() error { return e.error }

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	var te transportError
	return errors.As(err, &te)
}
