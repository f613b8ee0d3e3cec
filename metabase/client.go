// Package metabase implements the completion collaborators against a
// Metabase server's REST API: schema autocomplete, saved questions and
// native query snippets.
package metabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/rlch/nqls"
)

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Defaults.
const (
	DefaultRetryMax          = 2
	DefaultTimeout           = 10 * time.Second
	DefaultQuestionCacheSize = nqls.DefaultQuestionCacheSize
)

// Client talks to one database of a Metabase server.
// It implements nqls.SchemaProvider and nqls.QuestionStore.
type Client struct {
	baseURL  string
	database int
	apiKey   string
	session  string

	http      *retryablehttp.Client
	questions *lru.Cache
	logger    *zap.Logger

	retryMax  int
	cacheSize int
	transport *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey authenticates with an API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithSession authenticates with a session token.
func WithSession(token string) Option {
	return func(c *Client) {
		c.session = token
	}
}

// WithLogger sets the logger. Retry attempts are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.transport = client
	}
}

// WithRetryMax sets how many times a failed request is retried.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		c.retryMax = n
	}
}

// WithQuestionCacheSize bounds the number of cached questions.
func WithQuestionCacheSize(n int) Option {
	return func(c *Client) {
		c.cacheSize = n
	}
}

// NewClient creates a client for database on the server at baseURL.
func NewClient(baseURL string, database int, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		database:  database,
		logger:    zap.NewNop(),
		retryMax:  DefaultRetryMax,
		cacheSize: DefaultQuestionCacheSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cacheSize <= 0 {
		c.cacheSize = DefaultQuestionCacheSize
	}

	questions, err := lru.New(c.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create question cache: %w", err)
	}

	c.questions = questions

	c.http = retryablehttp.NewClient()
	c.http.RetryMax = c.retryMax
	c.http.RetryWaitMin = 50 * time.Millisecond
	c.http.RetryWaitMax = time.Second
	c.http.Logger = leveledLogger{c.logger.Sugar()}

	if c.transport != nil {
		c.http.HTTPClient = c.transport
	} else {
		c.http.HTTPClient.Timeout = DefaultTimeout
	}

	return c, nil
}

// Lookup implements nqls.SchemaProvider using the autocomplete endpoint.
// The server returns [name, type] pairs.
func (c *Client) Lookup(ctx context.Context, prefix string) ([]nqls.SchemaEntry, error) {
	path := "/api/database/" + strconv.Itoa(c.database) + "/autocomplete_suggestions?prefix=" + url.QueryEscape(prefix)

	var pairs [][]string
	if err := c.get(ctx, path, &pairs); err != nil {
		return nil, err
	}

	entries := make([]nqls.SchemaEntry, 0, len(pairs))

	for _, pair := range pairs {
		if len(pair) == 0 {
			continue
		}

		entry := nqls.SchemaEntry{Name: pair[0]}
		if len(pair) > 1 {
			entry.Type = pair[1]
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

type cardResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	ResultMetadata []struct {
		Name     string `json:"name"`
		BaseType string `json:"base_type"`
	} `json:"result_metadata"`
}

// FetchQuestion implements nqls.QuestionStore. Fetched questions are cached
// for the life of the client; failures are logged and report false.
func (c *Client) FetchQuestion(ctx context.Context, id int) (*nqls.Question, bool) {
	if cached, ok := c.questions.Get(id); ok {
		q, ok := cached.(*nqls.Question)

		return q, ok
	}

	var card cardResponse
	if err := c.get(ctx, "/api/card/"+strconv.Itoa(id), &card); err != nil {
		c.logger.Debug("Failed to fetch question", zap.Int("id", id), zap.Error(err))

		return nil, false
	}

	q := &nqls.Question{ID: id, Name: card.Name}
	for _, col := range card.ResultMetadata {
		q.ResultColumns = append(q.ResultColumns, nqls.Column{Name: col.Name, BaseType: col.BaseType})
	}

	c.questions.Add(id, q)

	return q, true
}

// ForgetQuestion drops a cached question so the next fetch hits the server.
func (c *Client) ForgetQuestion(id int) {
	c.questions.Remove(id)
}

type snippetResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Archived    bool   `json:"archived"`
}

// LoadSnippets fetches the non-archived native query snippets.
func (c *Client) LoadSnippets(ctx context.Context) ([]nqls.Snippet, error) {
	var resp []snippetResponse
	if err := c.get(ctx, "/api/native-query-snippet", &resp); err != nil {
		return nil, err
	}

	snippets := make([]nqls.Snippet, 0, len(resp))

	for _, s := range resp {
		if s.Archived {
			continue
		}

		snippets = append(snippets, nqls.Snippet{Name: s.Name, Description: s.Description, Content: s.Content})
	}

	return snippets, nil
}

// QuestionURL returns the browser URL of a saved question.
func (c *Client) QuestionURL(id int) string {
	return c.baseURL + "/question/" + strconv.Itoa(id)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	if c.session != "" {
		req.Header.Set("X-Metabase-Session", c.session)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("GET %s: %w %d: %s", path, ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) { l.s.Errorw(msg, keysAndValues...) }
func (l leveledLogger) Info(msg string, keysAndValues ...any)  { l.s.Infow(msg, keysAndValues...) }
func (l leveledLogger) Debug(msg string, keysAndValues ...any) { l.s.Debugw(msg, keysAndValues...) }
func (l leveledLogger) Warn(msg string, keysAndValues ...any)  { l.s.Warnw(msg, keysAndValues...) }
