package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
	"github.com/westhuggin/prca-standings-scraper/pkg/models"
)

// Snapshot is one run's records, stored or published as a unit.
type Snapshot struct {
	ID        string            `bson:"_id" json:"id"`
	Season    int               `bson:"season" json:"season"`
	Events    []string          `bson:"events" json:"events"`
	Records   []models.Standing `bson:"records" json:"records"`
	ScrapedAt time.Time         `bson:"scraped_at" json:"scraped_at"`
}

func NewSnapshot(season int, events []models.Event, records []models.Standing) *Snapshot {
	codes := make([]string, len(events))
	for i, ev := range events {
		codes[i] = string(ev)
	}
	if records == nil {
		records = []models.Standing{}
	}
	return &Snapshot{
		ID:        uuid.NewString(),
		Season:    season,
		Events:    codes,
		Records:   records,
		ScrapedAt: time.Now().UTC(),
	}
}

type Sink interface {
	Name() string
	Save(ctx context.Context, snap *Snapshot) error
	Close(ctx context.Context) error
}

// Multi fans a snapshot out to every configured sink. One sink failing
// does not stop the others.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Len() int {
	return len(m.sinks)
}

func (m *Multi) Save(ctx context.Context, snap *Snapshot) error {
	log := logger.Log

	if len(snap.Records) == 0 {
		log.Info().Str("snapshot", snap.ID).Msg("empty snapshot, sinks skipped")
		return nil
	}

	var errs []error
	for _, s := range m.sinks {
		start := time.Now()
		if err := s.Save(ctx, snap); err != nil {
			log.Error().Err(err).Str("sink", s.Name()).Str("snapshot", snap.ID).Msg("sink save failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		log.Info().
			Str("sink", s.Name()).
			Str("snapshot", snap.ID).
			Int("records", len(snap.Records)).
			Dur("took", time.Since(start)).
			Msg("snapshot saved")
	}
	return errors.Join(errs...)
}

func (m *Multi) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

type Options struct {
	MongoURI      string
	MongoDatabase string
	NatsURL       string
	NatsSubject   string
	MeiliURL      string
	MeiliKey      string
}

// Open connects every sink that has an address configured. Sinks that
// fail to connect are logged and left out.
func Open(ctx context.Context, opts Options) *Multi {
	log := logger.Log

	var sinks []Sink
	if opts.MongoURI != "" {
		s, err := NewMongo(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			log.Warn().Err(err).Msg("mongo sink disabled")
		} else {
			sinks = append(sinks, s)
		}
	}
	if opts.NatsURL != "" {
		s, err := NewNats(ctx, opts.NatsURL, opts.NatsSubject)
		if err != nil {
			log.Warn().Err(err).Msg("nats sink disabled")
		} else {
			sinks = append(sinks, s)
		}
	}
	if opts.MeiliURL != "" {
		s, err := NewMeili(opts.MeiliURL, opts.MeiliKey)
		if err != nil {
			log.Warn().Err(err).Msg("meilisearch sink disabled")
		} else {
			sinks = append(sinks, s)
		}
	}
	return NewMulti(sinks...)
}
