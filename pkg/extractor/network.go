package extractor

import (
	"context"
	"fmt"

	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

// DefaultPriorityKeyword marks responses consulted before all others.
const DefaultPriorityKeyword = "standing"

type NetworkStrategy struct {
	keyword string
}

func NewNetworkStrategy(keyword string) *NetworkStrategy {
	return &NetworkStrategy{keyword: keyword}
}

func (s *NetworkStrategy) State() State {
	return StateXHRJSON
}

func (s *NetworkStrategy) Extract(_ context.Context, page Page) ([]RawRow, error) {
	log := logger.Log

	responses := OrderResponses(page.Responses(), s.keyword)
	sources := make([]Source, 0, len(responses))
	for i, resp := range responses {
		v, err := ParseJSON(resp.Body)
		if err != nil {
			log.Debug().Err(err).Str("url", resp.URL).Msg("skip non-json response")
			continue
		}
		sources = append(sources, Source{Name: fmt.Sprintf("response[%d] %s", i, resp.URL), Value: v})
	}

	sel, ok := SelectArray(sources)
	if !ok {
		return nil, nil
	}
	log.Debug().
		Str("source", sel.Source).
		Strs("path", sel.Path).
		Int("size", sel.Size).
		Strs("fields", sel.Fields()).
		Msg("network standings array selected")
	return sel.Rows, nil
}
