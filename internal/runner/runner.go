package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/westhuggin/prca-standings-scraper/pkg/extractor"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
	"github.com/westhuggin/prca-standings-scraper/pkg/models"
	"golang.org/x/time/rate"
)

const (
	defaultPageTimeout = 2 * time.Minute
	dumpTimeout        = 20 * time.Second
)

// Session is a rendered page owned by exactly one category.
type Session interface {
	extractor.Page
	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close()
}

type OpenFunc func(ctx context.Context) (Session, error)

type Dumper interface {
	Dump(code, html string, png []byte) error
}

// CategoryResult is the outcome of one event/season extraction.
type CategoryResult struct {
	Event    models.Event
	Season   int
	URL      string
	Strategy extractor.State
	Records  []models.Standing
	Attempts []extractor.Attempt
	// Err is ErrNoData on exhaustion, or the fault that ended the category.
	Err      error
	Duration time.Duration
	Dumped   bool
}

func (r CategoryResult) OK() bool {
	return r.Err == nil && len(r.Records) > 0
}

type Runner struct {
	open        OpenFunc
	chain       *extractor.Chain
	baseURL     string
	pageTimeout time.Duration
	limiter     *rate.Limiter
	dumper      Dumper
}

type Option func(*Runner)

func WithBaseURL(u string) Option {
	return func(r *Runner) { r.baseURL = u }
}

func WithPageTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.pageTimeout = d
		}
	}
}

// WithInterval spaces category starts at least d apart.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithDumper enables diagnostics for categories that end without records.
func WithDumper(d Dumper) Option {
	return func(r *Runner) { r.dumper = d }
}

func New(open OpenFunc, chain *extractor.Chain, opts ...Option) *Runner {
	r := &Runner{
		open:        open,
		chain:       chain,
		baseURL:     "https://www.prorodeo.com",
		pageTimeout: defaultPageTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes events one at a time in the given order. A failing category
// never stops the ones after it.
func (r *Runner) Run(ctx context.Context, events []models.Event, season int) []CategoryResult {
	log := logger.Log

	results := make([]CategoryResult, 0, len(events))
	for _, ev := range events {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				log.Warn().Err(err).Str("event", string(ev)).Msg("pacing wait aborted")
			}
		}

		res := r.runCategory(ctx, ev, season)
		results = append(results, res)

		entry := log.Info()
		if !res.OK() {
			entry = log.Warn().Err(res.Err)
		}
		entry.
			Str("event", string(res.Event)).
			Int("season", res.Season).
			Str("strategy", res.Strategy.String()).
			Int("rows", len(res.Records)).
			Int("attempts", len(res.Attempts)).
			Bool("dumped", res.Dumped).
			Dur("took", res.Duration).
			Msg("category finished")
	}
	return results
}

func (r *Runner) runCategory(ctx context.Context, ev models.Event, season int) (res CategoryResult) {
	start := time.Now()
	rc := extractor.RowContext{
		Event:     ev,
		Season:    season,
		SourceURL: models.StandingsURL(r.baseURL, ev, season),
	}
	res = CategoryResult{
		Event:    ev,
		Season:   season,
		URL:      rc.SourceURL,
		Strategy: extractor.StateExhausted,
	}
	defer func() { res.Duration = time.Since(start) }()

	// The session outlives the category deadline so that a timed-out page
	// can still be dumped; Close ends it.
	sess, err := r.openSession(ctx)
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrOpenSession, err)
		return res
	}
	defer sess.Close()

	catCtx, cancel := context.WithTimeout(ctx, r.pageTimeout)
	defer cancel()

	out, err := r.extract(catCtx, sess, rc)
	res.Strategy = out.State
	res.Records = out.Records
	res.Attempts = out.Attempts
	res.Err = err

	if len(res.Records) == 0 {
		if res.Err == nil {
			res.Err = ErrNoData
		}
		res.Dumped = r.dump(ctx, sess, ev)
	}
	return res
}

func (r *Runner) openSession(ctx context.Context) (sess Session, err error) {
	defer func() {
		if p := recover(); p != nil {
			sess, err = nil, fmt.Errorf("%w: %v", ErrCategoryPanic, p)
		}
	}()
	sess, err = r.open(ctx)
	if err == nil && sess == nil {
		err = errors.New("nil session")
	}
	return sess, err
}

func (r *Runner) extract(ctx context.Context, sess Session, rc extractor.RowContext) (out extractor.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = extractor.Result{State: extractor.StateExhausted}
			err = fmt.Errorf("%w: %v", ErrCategoryPanic, p)
			logger.Log.Error().Err(err).Str("event", string(rc.Event)).Msg("category recovered from panic")
		}
	}()

	if err := sess.Navigate(ctx, rc.SourceURL); err != nil {
		logger.Log.Warn().Err(err).Str("event", string(rc.Event)).Msg("navigation incomplete, extracting anyway")
	}
	return r.chain.Run(ctx, sess, rc), nil
}

// dump runs on its own deadline because the category context may already
// have expired.
func (r *Runner) dump(parent context.Context, sess Session, ev models.Event) (ok bool) {
	if r.dumper == nil {
		return false
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Log.Error().Interface("panic", p).Str("event", string(ev)).Msg("diagnostics dump panicked")
			ok = false
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), dumpTimeout)
	defer cancel()

	html, err := sess.HTML(ctx)
	if err != nil {
		logger.Log.Debug().Err(err).Str("event", string(ev)).Msg("no html for diagnostics")
	}
	png, err := sess.Screenshot(ctx)
	if err != nil {
		logger.Log.Debug().Err(err).Str("event", string(ev)).Msg("no screenshot for diagnostics")
	}
	if html == "" && len(png) == 0 {
		return false
	}

	if err := r.dumper.Dump(string(ev), html, png); err != nil {
		logger.Log.Warn().Err(err).Str("event", string(ev)).Msg("diagnostics dump failed")
		return false
	}
	return true
}

// Records concatenates per-category records in run order. It never
// returns nil.
func Records(results []CategoryResult) []models.Standing {
	out := make([]models.Standing, 0)
	for _, r := range results {
		out = append(out, r.Records...)
	}
	return out
}
