package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
	"github.com/westhuggin/prca-standings-scraper/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	snapshotsCollection = "snapshots"
	standingsCollection = "standings"
)

// standingDoc is a record flattened into the standings collection.
type standingDoc struct {
	models.Standing `bson:",inline"`
	SnapshotID      string    `bson:"snapshot_id"`
	ScrapedAt       time.Time `bson:"scraped_at"`
}

// Mongo keeps every snapshot plus a flat, queryable copy of its records.
type Mongo struct {
	client    *mongo.Client
	snapshots *mongo.Collection
	standings *mongo.Collection
}

func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:    client,
		snapshots: db.Collection(snapshotsCollection),
		standings: db.Collection(standingsCollection),
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "season", Value: 1}, {Key: "event_code", Value: 1}, {Key: "placing", Value: 1}}},
		{Keys: bson.D{{Key: "snapshot_id", Value: 1}}},
		{Keys: bson.D{{Key: "contestant_name", Value: "text"}}},
		{Keys: bson.D{{Key: "scraped_at", Value: -1}}},
	}
	if _, err := m.standings.Indexes().CreateMany(connectCtx, indexes); err != nil {
		logger.Log.Warn().Err(err).Msg("mongo standings indexes not created")
	}

	logger.Log.Info().Str("database", database).Msg("mongo sink connected")
	return m, nil
}

func (m *Mongo) Name() string {
	return "mongo"
}

func (m *Mongo) Save(ctx context.Context, snap *Snapshot) error {
	if _, err := m.snapshots.InsertOne(ctx, snap); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	docs := make([]interface{}, len(snap.Records))
	for i, rec := range snap.Records {
		docs[i] = standingDoc{Standing: rec, SnapshotID: snap.ID, ScrapedAt: snap.ScrapedAt}
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := m.standings.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert standings: %w", err)
	}
	return nil
}

// Latest returns the newest records stored for an event and season, in
// their original order.
func (m *Mongo) Latest(ctx context.Context, event models.Event, season int) ([]models.Standing, error) {
	var snap Snapshot
	err := m.snapshots.FindOne(ctx,
		bson.M{"season": season, "events": string(event)},
		options.FindOne().SetSort(bson.D{{Key: "scraped_at", Value: -1}}),
	).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}

	cur, err := m.standings.Find(ctx,
		bson.M{"snapshot_id": snap.ID, "event_code": string(event)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find standings: %w", err)
	}
	defer cur.Close(ctx)

	var docs []standingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode standings: %w", err)
	}
	out := make([]models.Standing, len(docs))
	for i, d := range docs {
		out[i] = d.Standing
	}
	return out, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
