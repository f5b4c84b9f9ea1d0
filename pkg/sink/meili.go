package sink

import (
	"context"
	"fmt"

	"github.com/meilisearch/meilisearch-go"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

const StandingsIndex = "standings"

// StandingDocument is the search-index shape of one record. The id is
// stable per season, event and position so reruns replace older rows.
type StandingDocument struct {
	ID             string  `json:"id"`
	Season         int     `json:"season"`
	EventCode      string  `json:"event_code"`
	Placing        *int    `json:"placing"`
	ContestantName string  `json:"contestant_name"`
	Earnings       float64 `json:"earnings"`
	SourceURL      string  `json:"source_url"`
	SnapshotID     string  `json:"snapshot_id"`
	ScrapedAt      int64   `json:"scraped_at"`
}

// Documents flattens a snapshot for indexing.
func Documents(snap *Snapshot) []StandingDocument {
	docs := make([]StandingDocument, 0, len(snap.Records))
	position := map[string]int{}
	for _, rec := range snap.Records {
		position[rec.EventCode]++
		docs = append(docs, StandingDocument{
			ID:             fmt.Sprintf("%d_%s_%d", rec.Season, rec.EventCode, position[rec.EventCode]),
			Season:         rec.Season,
			EventCode:      rec.EventCode,
			Placing:        rec.Placing,
			ContestantName: rec.ContestantName,
			Earnings:       rec.Earnings,
			SourceURL:      rec.SourceURL,
			SnapshotID:     snap.ID,
			ScrapedAt:      snap.ScrapedAt.Unix(),
		})
	}
	return docs
}

// Meili indexes contestants for name search.
type Meili struct {
	client meilisearch.ServiceManager
}

func NewMeili(url, apiKey string) (*Meili, error) {
	client := meilisearch.New(url, meilisearch.WithAPIKey(apiKey))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch health: %w", err)
	}

	m := &Meili{client: client}
	m.setupIndex()
	return m, nil
}

func (m *Meili) setupIndex() {
	log := logger.Log

	if _, err := m.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        StandingsIndex,
		PrimaryKey: "id",
	}); err != nil {
		log.Debug().Str("index", StandingsIndex).Msg("index already exists")
	}

	index := m.client.Index(StandingsIndex)

	searchable := []string{"contestant_name"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Warn().Err(err).Msg("failed to update searchable attributes")
	}

	filterable := []string{"season", "event_code", "placing", "snapshot_id"}
	filterableIface := make([]interface{}, len(filterable))
	for i, v := range filterable {
		filterableIface[i] = v
	}
	if _, err := index.UpdateFilterableAttributes(&filterableIface); err != nil {
		log.Warn().Err(err).Msg("failed to update filterable attributes")
	}

	sortable := []string{"earnings", "placing"}
	if _, err := index.UpdateSortableAttributes(&sortable); err != nil {
		log.Warn().Err(err).Msg("failed to update sortable attributes")
	}
}

func (m *Meili) Name() string {
	return "meilisearch"
}

func (m *Meili) Save(_ context.Context, snap *Snapshot) error {
	docs := Documents(snap)
	if len(docs) == 0 {
		return nil
	}
	pk := "id"
	if _, err := m.client.Index(StandingsIndex).AddDocuments(docs, &pk); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

func (m *Meili) Close(context.Context) error {
	return nil
}
