// Package completion implements the native query completion engine: snippet
// reference detection, source selection, a single-slot TTL cache over remote
// fetches, and debounce scheduling for retriggering completion.
package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rlch/nqls"
)

// Timing defaults. CacheTTL is 1.2 × DebounceInterval so successive
// keystrokes within one debounce cycle reuse one fetch.
const (
	DebounceInterval = nqls.DefaultDebounceInterval
	CacheTTL         = DebounceInterval * 12 / 10
	CursorDebounce   = 100 * time.Millisecond
)

// CacheTTLFor derives the cache lifetime for a debounce interval.
func CacheTTLFor(debounce time.Duration) time.Duration {
	return debounce * 12 / 10
}

// Engine produces completion candidates for one editing session.
// It owns its cache; create one engine per open document.
type Engine struct {
	schema    nqls.SchemaProvider
	questions nqls.QuestionStore
	snippets  nqls.SnippetLister

	cache    *Cache
	selector *Selector
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for completion diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSnippets sets the snippet list used inside {{snippet: ...}} references.
func WithSnippets(snippets nqls.SnippetLister) Option {
	return func(e *Engine) {
		e.snippets = snippets
	}
}

// WithDebounce derives the cache TTL from a non-default debounce interval.
func WithDebounce(debounce time.Duration) Option {
	return func(e *Engine) {
		e.cache = NewCache(CacheTTLFor(debounce))
	}
}

// New creates an engine. Either collaborator may be nil: without a schema
// provider the remote source offers nothing, without a question store
// referenced questions contribute no columns.
func New(schema nqls.SchemaProvider, questions nqls.QuestionStore, opts ...Option) *Engine {
	e := &Engine{
		schema:    schema,
		questions: questions,
		cache:     NewCache(CacheTTL),
		selector:  NewSelector(),
		now:       time.Now,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Selector returns the session's source selector.
func (e *Engine) Selector() *Selector {
	return e.selector
}

// Request is a completion request from a text-input surface.
type Request struct {
	// Text is the full query text.
	Text string

	// Line and Column locate the cursor, both 0-based; Column counts runes.
	Line   int
	Column int

	// Prefix is the identifier being typed.
	Prefix string

	// Query supplies referenced question ids. Parsed from Text when nil.
	Query nqls.QueryContext
}

// Complete answers a completion request. It never fails: errors are logged
// and produce an empty list.
func (e *Engine) Complete(ctx context.Context, req Request) []nqls.Candidate {
	state, filter := e.selector.Update(LineAt(req.Text, req.Line), req.Column)

	if state == StateSnippet {
		return CompleteSnippets(filter, e.snippetList())
	}

	query := req.Query
	if query == nil {
		query = e.parseQuery(req.Text)
	}

	return e.CompleteRemote(ctx, req.Prefix, query)
}

// Go is the asynchronous form of Complete. The returned channel receives
// exactly one value.
func (e *Engine) Go(ctx context.Context, req Request) <-chan []nqls.Candidate {
	ch := make(chan []nqls.Candidate, 1)

	go func() {
		ch <- e.Complete(ctx, req)
	}()

	return ch
}

// CompleteRemote returns schema and referenced-question candidates for
// prefix, serving from the cache when possible.
func (e *Engine) CompleteRemote(ctx context.Context, prefix string, query nqls.QueryContext) []nqls.Candidate {
	return e.complete(ctx, prefix, query).OrEmpty(e.logger)
}

func (e *Engine) complete(ctx context.Context, prefix string, query nqls.QueryContext) Result {
	if e.schema == nil {
		return Result{}
	}

	if results, ok := e.cache.Get(prefix, e.now()); ok {
		e.logger.Debug("Completion cache hit", zap.String("prefix", prefix))

		return Result{Candidates: results}
	}

	var (
		wg        sync.WaitGroup
		schema    []nqls.Candidate
		schemaErr *Error
		columns   []nqls.Candidate
		columnErr *Error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		schema, schemaErr = e.lookupSchema(ctx, prefix)
	}()

	go func() {
		defer wg.Done()

		columns, columnErr = e.questionColumns(ctx, prefix, query)
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{Err: &Error{Source: SourceEngine, Err: err}}
	}

	if schemaErr != nil && columnErr != nil {
		return Result{Err: schemaErr, Degraded: []*Error{schemaErr, columnErr}}
	}

	// Referenced questions first: the surface keeps the first candidate for
	// a name, so question columns win over schema fields.
	merged := make([]nqls.Candidate, 0, len(columns)+len(schema))
	merged = append(merged, columns...)
	merged = append(merged, schema...)

	var degraded []*Error

	for _, err := range []*Error{schemaErr, columnErr} {
		if err != nil {
			e.logger.Warn("Completion source degraded",
				zap.String("source", string(err.Source)),
				zap.Error(err.Err))

			degraded = append(degraded, err)
		}
	}

	if degraded == nil {
		e.cache.Put(prefix, merged, e.now())
	}

	return Result{Candidates: merged, Degraded: degraded}
}

// lookupSchema calls the schema provider and maps its entries to candidates.
func (e *Engine) lookupSchema(ctx context.Context, prefix string) (out []nqls.Candidate, fail *Error) {
	defer recoverInto(SourceSchema, &fail)

	entries, err := e.schema.Lookup(ctx, prefix)
	if err != nil {
		return nil, &Error{Source: SourceSchema, Err: err}
	}

	out = make([]nqls.Candidate, 0, len(entries))
	for _, entry := range entries {
		out = append(out, nqls.Candidate{
			Name:         entry.Name,
			DisplayValue: entry.Name,
			Meta:         entry.Type,
		})
	}

	return out, nil
}

// questionColumns fetches every referenced question concurrently and
// returns the columns matching prefix, in reference order.
func (e *Engine) questionColumns(ctx context.Context, prefix string, query nqls.QueryContext) (out []nqls.Candidate, fail *Error) {
	defer recoverInto(SourceQuestions, &fail)

	if e.questions == nil || query == nil {
		return nil, nil
	}

	ids := query.ReferencedQuestionIDs()
	fetched := make([]*nqls.Question, len(ids))

	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)

		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.logger.Warn("Question fetch panicked", zap.Int("id", id), zap.Any("panic", r))
				}
			}()

			q, ok := e.questions.FetchQuestion(ctx, id)
			if !ok {
				e.logger.Debug("Referenced question unavailable", zap.Int("id", id))

				return
			}

			fetched[i] = q
		}()
	}

	wg.Wait()

	lower := strings.ToLower(prefix)

	for _, q := range fetched {
		if q == nil {
			continue
		}

		for _, col := range q.ResultColumns {
			if !strings.Contains(strings.ToLower(col.Name), lower) {
				continue
			}

			out = append(out, nqls.Candidate{
				Name:         col.Name,
				DisplayValue: col.Name,
				Meta:         q.Name + " :" + col.BaseType,
			})
		}
	}

	return out, nil
}

func (e *Engine) snippetList() []nqls.Snippet {
	if e.snippets == nil {
		return nil
	}

	return e.snippets.Snippets()
}

func (e *Engine) parseQuery(text string) nqls.QueryContext {
	q, err := nqls.ParseQuery(text)
	if err != nil {
		e.logger.Debug("Failed to parse query for completion", zap.Error(err))

		return nqls.QuestionIDs(nil)
	}

	return q
}

// recoverInto converts a panic in a fetch branch into an *Error.
func recoverInto(source Source, fail **Error) {
	if r := recover(); r != nil {
		*fail = &Error{Source: source, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
	}
}

// LineAt returns the 0-based line of text, or "" if out of range.
func LineAt(text string, line int) string {
	if line < 0 {
		return ""
	}

	for i := 0; i < line; i++ {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			return ""
		}

		text = text[nl+1:]
	}

	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}

	return strings.TrimSuffix(text, "\r")
}
