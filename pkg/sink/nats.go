package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

const (
	StreamStandings         = "STANDINGS"
	DefaultSubjectSnapshots = "standings.snapshots"
)

// Nats publishes each snapshot as one JetStream message, deduplicated by
// snapshot id.
type Nats struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
}

func NewNats(ctx context.Context, url, subject string) (*Nats, error) {
	log := logger.Log

	if subject == "" {
		subject = DefaultSubjectSnapshots
	}

	nc, err := nats.Connect(url,
		nats.Name("prca-standings-scraper"),
		nats.Timeout(10*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Error().Err(err).Msg("nats disconnected")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(streamCtx, jetstream.StreamConfig{
		Name:        StreamStandings,
		Subjects:    []string{subject},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Discard:     jetstream.DiscardOld,
		Duplicates:  time.Hour,
		Description: "World standings snapshots",
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", StreamStandings, err)
	}

	log.Info().Str("url", url).Str("subject", subject).Msg("nats sink connected")
	return &Nats{nc: nc, js: js, subject: subject}, nil
}

func (n *Nats) Name() string {
	return "nats"
}

func (n *Nats) Save(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := n.js.Publish(ctx, n.subject, payload, jetstream.WithMsgID(snap.ID)); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	return nil
}

func (n *Nats) Close(context.Context) error {
	return n.nc.Drain()
}
