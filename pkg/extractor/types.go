package extractor

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/westhuggin/prca-standings-scraper/pkg/models"
)

// RawRow is a candidate standings row of unknown shape.
type RawRow = Object

// CapturedResponse is a JSON-bearing network response buffered while the
// page loaded.
type CapturedResponse struct {
	URL      string
	Status   int
	MIMEType string
	Body     []byte
}

// Page is what the extraction chain needs from a rendered standings page.
// Every method that waits must be bounded by its own timeout.
type Page interface {
	// EmbeddedState returns serialized page-state globals, if any.
	EmbeddedState(ctx context.Context) ([]string, error)
	// HTML returns the current rendered markup without waiting.
	HTML(ctx context.Context) (string, error)
	// Responses returns the buffered background responses.
	Responses() []CapturedResponse
	// Document waits for row-like structure and snapshots the DOM.
	Document(ctx context.Context) (*goquery.Document, error)
}

// RowContext is the caller-supplied context stamped onto every record.
type RowContext struct {
	Event     models.Event
	Season    int
	SourceURL string
}

// Source is one parsed JSON document considered by SelectArray.
type Source struct {
	Name  string
	Value Value
}

// DiscoveredArray is an array found by Scan and the field path leading to it.
type DiscoveredArray struct {
	Array []Value
	Path  []string
}
