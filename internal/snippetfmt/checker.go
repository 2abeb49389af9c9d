package snippetfmt

import (
	"context"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/silver2dream/build-utils/internal/logging"
)

// Formatter reformats source code.
type Formatter interface {
	Format(ctx context.Context, code string) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(ctx context.Context, code string) (string, error)

// Format calls fn(ctx, code).
func (fn FormatterFunc) Format(ctx context.Context, code string) (string, error) {
	return fn(ctx, code)
}

// DefaultCacheSize bounds the number of distinct snippets remembered.
const DefaultCacheSize = 256

// Checker classifies snippets by running them through a Formatter.
type Checker struct {
	formatter Formatter
	cacheSize int
	cache     *lru.Cache[string, Result]
	logger    *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithCacheSize sets how many distinct snippets are cached; 0 disables
// the cache.
func WithCacheSize(n int) Option {
	return func(c *Checker) {
		c.cacheSize = n
	}
}

// WithLogger sets the logger for per-snippet debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker around f.
func NewChecker(f Formatter, opts ...Option) *Checker {
	c := &Checker{
		formatter: f,
		cacheSize: DefaultCacheSize,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheSize > 0 {
		// only fails for a non-positive size
		c.cache, _ = lru.New[string, Result](c.cacheSize)
	}
	return c
}

// Check returns one Result per snippet, in input order. A formatter error
// is reported in that snippet's Result and never stops the run.
func (c *Checker) Check(ctx context.Context, snippets []Snippet) []Result {
	results := make([]Result, len(snippets))
	for i, s := range snippets {
		results[i] = c.checkOne(ctx, s.Code)
		c.logger.Debug("snippet checked", "index", i, "status", results[i].Status)
	}
	return results
}

func (c *Checker) checkOne(ctx context.Context, code string) Result {
	if c.cache != nil {
		if r, ok := c.cache.Get(code); ok {
			return r
		}
	}

	formatted, err := c.formatter.Format(ctx, code)
	r := classify(code, formatted, err)
	// a cancelled run says nothing about the snippet itself
	if c.cache != nil && ctx.Err() == nil {
		c.cache.Add(code, r)
	}
	return r
}

func classify(code, formatted string, err error) Result {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "formatter failed"
		}
		return Result{Status: StatusError, Error: msg}
	}
	if strings.TrimSpace(formatted) == strings.TrimSpace(code) {
		return Result{Status: StatusSuccess}
	}
	if formatted == "" {
		return Result{Status: StatusError, Error: "formatter produced no output"}
	}
	return Result{Status: StatusUpdated, NewCode: formatted}
}

// Summary counts results per status.
type Summary struct {
	Total   int
	Success int
	Updated int
	Errors  int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Success++
		case StatusUpdated:
			s.Updated++
		case StatusError:
			s.Errors++
		}
	}
	return s
}
