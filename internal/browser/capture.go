package browser

import (
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/westhuggin/prca-standings-scraper/pkg/extractor"
)

type pendingResponse struct {
	id       network.RequestID
	url      string
	status   int
	mimeType string
	finished bool
	fetched  bool
	body     []byte
}

// responseBuffer collects JSON responses for one page load. Target events
// arrive on chromedp's goroutine, hence the mutex.
type responseBuffer struct {
	mu       sync.Mutex
	keywords []string
	byID     map[network.RequestID]*pendingResponse
	order    []network.RequestID
}

func newResponseBuffer(keywords []string) *responseBuffer {
	lower := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lower = append(lower, k)
		}
	}
	return &responseBuffer{
		keywords: lower,
		byID:     make(map[network.RequestID]*pendingResponse),
	}
}

func (b *responseBuffer) onEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeXHR && e.Type != network.ResourceTypeFetch {
			return
		}
		if e.Response == nil || !b.matches(e.Response.URL) || !isJSON(e.Response.MimeType) {
			return
		}
		b.mu.Lock()
		if _, ok := b.byID[e.RequestID]; !ok {
			b.order = append(b.order, e.RequestID)
		}
		b.byID[e.RequestID] = &pendingResponse{
			id:       e.RequestID,
			url:      e.Response.URL,
			status:   int(e.Response.Status),
			mimeType: e.Response.MimeType,
		}
		b.mu.Unlock()
	case *network.EventLoadingFinished:
		b.mu.Lock()
		if p, ok := b.byID[e.RequestID]; ok {
			p.finished = true
		}
		b.mu.Unlock()
	case *network.EventLoadingFailed:
		b.mu.Lock()
		delete(b.byID, e.RequestID)
		b.mu.Unlock()
	}
}

func (b *responseBuffer) matches(url string) bool {
	if len(b.keywords) == 0 {
		return true
	}
	url = strings.ToLower(url)
	for _, k := range b.keywords {
		if strings.Contains(url, k) {
			return true
		}
	}
	return false
}

// unfetched lists finished responses whose body has not been read yet.
func (b *responseBuffer) unfetched() []network.RequestID {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []network.RequestID
	for _, id := range b.order {
		if p, ok := b.byID[id]; ok && p.finished && !p.fetched {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *responseBuffer) setBody(id network.RequestID, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.byID[id]; ok {
		p.fetched = true
		p.body = body
	}
}

// responses returns fetched bodies in the order their responses arrived.
func (b *responseBuffer) responses() []extractor.CapturedResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]extractor.CapturedResponse, 0, len(b.order))
	for _, id := range b.order {
		p, ok := b.byID[id]
		if !ok || !p.fetched || len(p.body) == 0 {
			continue
		}
		out = append(out, extractor.CapturedResponse{
			URL:      p.url,
			Status:   p.status,
			MIMEType: p.mimeType,
			Body:     p.body,
		})
	}
	return out
}

func isJSON(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "json")
}
