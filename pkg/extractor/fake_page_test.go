package extractor

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type fakePage struct {
	state     []string
	stateErr  error
	html      string
	htmlErr   error
	responses []CapturedResponse
	docHTML   string
	docErr    error
}

func (p *fakePage) EmbeddedState(context.Context) ([]string, error) {
	return p.state, p.stateErr
}

func (p *fakePage) HTML(context.Context) (string, error) {
	return p.html, p.htmlErr
}

func (p *fakePage) Responses() []CapturedResponse {
	return p.responses
}

func (p *fakePage) Document(context.Context) (*goquery.Document, error) {
	if p.docErr != nil {
		return nil, p.docErr
	}
	return goquery.NewDocumentFromReader(strings.NewReader(p.docHTML))
}

func mustParse(s string) Value {
	v, err := ParseLenient(s)
	if err != nil {
		panic(err)
	}
	return v
}
