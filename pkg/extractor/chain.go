package extractor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
	"github.com/westhuggin/prca-standings-scraper/pkg/models"
)

// State is a step of the extraction chain. Strategies run in State order.
type State int

const (
	StateEmbeddedJSON State = iota
	StateXHRJSON
	StateMarkup
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateEmbeddedJSON:
		return "embedded_json"
	case StateXHRJSON:
		return "xhr_json"
	case StateMarkup:
		return "markup"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Strategy is one way of finding raw standings rows on a page. A strategy
// returns no rows, not an error, when the page simply lacks its data.
type Strategy interface {
	State() State
	Extract(ctx context.Context, page Page) ([]RawRow, error)
}

// Attempt records what one strategy produced.
type Attempt struct {
	State      State
	Raw        int
	Normalized int
	Err        error
	Duration   time.Duration
}

type Result struct {
	Records  []models.Standing
	State    State
	Attempts []Attempt
}

func (r Result) Exhausted() bool {
	return r.State == StateExhausted
}

type Chain struct {
	strategies []Strategy
	normalizer *Normalizer
}

func NewChain(normalizer *Normalizer, strategies ...Strategy) *Chain {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	c := &Chain{normalizer: normalizer}
	for _, s := range strategies {
		c.Register(s)
	}
	return c
}

// NewDefaultChain wires the embedded, network and markup strategies.
func NewDefaultChain(minRows int) *Chain {
	return NewChain(
		NewNormalizer(DefaultAliases),
		NewEmbeddedStrategy(),
		NewNetworkStrategy(DefaultPriorityKeyword),
		NewMarkupStrategy(NewMarkupExtractor(minRows, DefaultRowSelectors)),
	)
}

func (c *Chain) Register(s Strategy) {
	c.strategies = append(c.strategies, s)
	sort.SliceStable(c.strategies, func(i, j int) bool {
		return c.strategies[i].State() < c.strategies[j].State()
	})
}

// Run tries each strategy in order and returns the first non-empty
// normalized result. Strategy errors and panics count as zero rows.
func (c *Chain) Run(ctx context.Context, page Page, rc RowContext) Result {
	log := logger.Log.With().Str("event", string(rc.Event)).Int("season", rc.Season).Logger()

	res := Result{State: StateExhausted}
	for _, s := range c.strategies {
		start := time.Now()
		raw, err := c.attempt(ctx, s, page)
		records := c.normalizer.Normalize(raw, rc)

		att := Attempt{
			State:      s.State(),
			Raw:        len(raw),
			Normalized: len(records),
			Err:        err,
			Duration:   time.Since(start),
		}
		res.Attempts = append(res.Attempts, att)

		if err != nil {
			log.Warn().Err(err).Str("strategy", s.State().String()).Dur("took", att.Duration).Msg("strategy failed")
		} else {
			log.Debug().
				Str("strategy", s.State().String()).
				Int("raw", att.Raw).
				Int("rows", att.Normalized).
				Dur("took", att.Duration).
				Msg("strategy finished")
		}

		if len(records) > 0 {
			res.Records = records
			res.State = s.State()
			return res
		}
	}
	return res
}

func (c *Chain) attempt(ctx context.Context, s Strategy, page Page) (rows []RawRow, err error) {
	defer func() {
		if p := recover(); p != nil {
			rows = nil
			err = fmt.Errorf("%s strategy panic: %v", s.State(), p)
		}
	}()
	return s.Extract(ctx, page)
}
