package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type capturedRequest struct {
	Auth string
	Body Request
}

// newServer answers every request with status and body and records the last request.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		captured.Auth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &captured.Body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient("tkn", append([]Option{WithURL(url), WithRepository("mbround18", "gh-reusable")}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("expected error without token")
	}
	if _, err := NewClient("tkn", WithURL("not a url")); err == nil {
		t.Error("expected error for invalid URL")
	}
	c, err := NewClient("tkn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.url != DefaultURL {
		t.Errorf("expected default URL, got %s", c.url)
	}
}

func TestNewClientFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("GITHUB_GRAPHQL_URL", "https://ghe.example.com/api/graphql")
	t.Setenv("GITHUB_REPOSITORY", "octo/repo")
	t.Setenv("GITHUB_CLIENT_TIMEOUT_SECONDS", "5")

	c, err := NewClientFromEnv("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.token != "env-token" || c.url != "https://ghe.example.com/api/graphql" {
		t.Errorf("unexpected client config: token=%q url=%q", c.token, c.url)
	}
	if c.owner != "octo" || c.repo != "repo" {
		t.Errorf("unexpected repository %s/%s", c.owner, c.repo)
	}
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", c.httpClient.Timeout)
	}
}

func TestDoRequest(t *testing.T) {
	srv, captured := newServer(t, http.StatusOK, `{"data":{"viewer":{"login":"me"}}}`)
	c := newTestClient(t, srv.URL)

	body, err := c.DoRequest(context.Background(), Request{
		Query:     "query { viewer { login } }",
		Variables: map[string]interface{}{"owner": "octo"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"data":{"viewer":{"login":"me"}}}` {
		t.Errorf("unexpected body %s", body)
	}
	if captured.Auth != "Bearer tkn" {
		t.Errorf("expected bearer token, got %q", captured.Auth)
	}
	if captured.Body.Query != "query { viewer { login } }" || captured.Body.Variables["owner"] != "octo" {
		t.Errorf("unexpected request %+v", captured.Body)
	}
}

func TestDoRequestAPIError(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
	c := newTestClient(t, srv.URL)

	body, err := c.DoRequest(context.Background(), Request{Query: "{}"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || !strings.Contains(string(apiErr.Body), "Bad credentials") {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
	if string(body) != `{"message":"Bad credentials"}` {
		t.Errorf("expected body alongside the error, got %s", body)
	}
}

func TestDoRequestRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"data":{}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithRetry(3, time.Millisecond))
	if _, err := c.DoRequest(context.Background(), Request{Query: "{}"}); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}

	atomic.StoreInt32(&calls, 0)
	c = newTestClient(t, srv.URL)
	if _, err := c.DoRequest(context.Background(), Request{Query: "{}"}); err == nil {
		t.Error("expected failure without retries")
	}
}

func TestQueryGraphQLErrors(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"data":null,"errors":[{"message":"Field 'x' doesn't exist"},{"message":"second"}]}`)
	c := newTestClient(t, srv.URL)

	err := c.Query(context.Background(), "{ x }", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "Field 'x' doesn't exist; second" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestListTags(t *testing.T) {
	srv, captured := newServer(t, http.StatusOK,
		`{"data":{"repository":{"refs":{"nodes":[{"name":"v1.0.0"},{"name":"v1.1.0"}]}}}}`)
	c := newTestClient(t, srv.URL)

	got, err := c.Tags.ListTags(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"v1.0.0", "v1.1.0"}) {
		t.Errorf("unexpected tags %v", got)
	}
	if captured.Body.Variables["owner"] != "mbround18" || captured.Body.Variables["repo"] != "gh-reusable" {
		t.Errorf("unexpected variables %v", captured.Body.Variables)
	}
	if !strings.Contains(captured.Body.Query, "refs/tags/") {
		t.Error("expected the embedded tag query")
	}
}

func TestListTagsMissingRepository(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"data":{"repository":null}}`)
	c := newTestClient(t, srv.URL)

	if _, err := c.Tags.ListTags(context.Background()); !errors.Is(err, ErrNoTags) {
		t.Errorf("expected ErrNoTags, got %v", err)
	}

	noRepo, err := NewClient("tkn", WithURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := noRepo.Tags.ListTags(context.Background()); err == nil {
		t.Error("expected error without repository")
	}
}

func TestPullRequestLabels(t *testing.T) {
	srv, captured := newServer(t, http.StatusOK,
		`{"data":{"repository":{"pullRequest":{"labels":{"nodes":[{"name":"minor"},{"name":"canary"}]}}}}}`)
	c := newTestClient(t, srv.URL)

	got, err := c.PullRequests.Labels(context.Background(), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"minor", "canary"}) {
		t.Errorf("unexpected labels %v", got)
	}
	if n, ok := captured.Body.Variables["prNumber"].(float64); !ok || n != 12 {
		t.Errorf("expected numeric prNumber 12, got %v", captured.Body.Variables["prNumber"])
	}
}

func TestCommitLabels(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   []string
		wantOK bool
	}{
		{
			name:   "Associated PR",
			body:   `{"data":{"repository":{"object":{"associatedPullRequests":{"nodes":[{"number":3,"labels":{"nodes":[{"name":"major"}]}}]}}}}}`,
			want:   []string{"major"},
			wantOK: true,
		},
		{
			name: "No associated PR",
			body: `{"data":{"repository":{"object":{"associatedPullRequests":{"nodes":[]}}}}}`,
		},
		{
			name: "Unknown commit",
			body: `{"data":{"repository":{"object":null}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, captured := newServer(t, http.StatusOK, tt.body)
			c := newTestClient(t, srv.URL)

			got, ok, err := c.PullRequests.CommitLabels(context.Background(), "abc123")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.want, tt.wantOK, got, ok)
			}
			if captured.Body.Variables["commitSha"] != "abc123" {
				t.Errorf("unexpected variables %v", captured.Body.Variables)
			}
		})
	}
}
