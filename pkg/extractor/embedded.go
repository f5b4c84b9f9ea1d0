package extractor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

// StateGlobals are the window properties frameworks commonly use to ship
// server state to the client.
var StateGlobals = []string{
	"__NEXT_DATA__",
	"__NUXT__",
	"__INITIAL_STATE__",
	"__APOLLO_STATE__",
	"__PRELOADED_STATE__",
}

var globalAssignPattern = regexp.MustCompile(`window(?:\.|\[["'])(__[A-Za-z0-9_]+__)(?:["']\])?\s*=\s*`)

type EmbeddedStrategy struct{}

func NewEmbeddedStrategy() *EmbeddedStrategy {
	return &EmbeddedStrategy{}
}

func (s *EmbeddedStrategy) State() State {
	return StateEmbeddedJSON
}

func (s *EmbeddedStrategy) Extract(ctx context.Context, page Page) ([]RawRow, error) {
	log := logger.Log

	var sources []Source
	var errs []error

	blobs, err := page.EmbeddedState(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("page state: %w", err))
	}
	for i, blob := range blobs {
		v, err := ParseLenient(blob)
		if err != nil {
			log.Debug().Err(err).Int("blob", i).Msg("skip unparseable page state")
			continue
		}
		sources = append(sources, Source{Name: fmt.Sprintf("state[%d]", i), Value: v})
	}

	html, err := page.HTML(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("page html: %w", err))
	} else {
		scripts, err := ScriptSources(html)
		if err != nil {
			errs = append(errs, err)
		}
		sources = append(sources, scripts...)
	}

	if len(sources) == 0 {
		return nil, errors.Join(errs...)
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
		Msg("embedded standings array selected")
	return sel.Rows, nil
}

// ScriptSources parses JSON carried by script tags in html: the Next.js data
// script, typed JSON blocks, then window.__X__ = {...} assignments.
func ScriptSources(html string) ([]Source, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var sources []Source
	add := func(name, text string) {
		v, err := ParseLenient(text)
		if err != nil {
			return
		}
		sources = append(sources, Source{Name: name, Value: v})
	}

	doc.Find("script#__NEXT_DATA__").Each(func(_ int, s *goquery.Selection) {
		add("script#__NEXT_DATA__", s.Text())
	})
	doc.Find(`script[type="application/json"], script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		if s.AttrOr("id", "") == "__NEXT_DATA__" {
			return
		}
		add(fmt.Sprintf("script[json][%d]", i), s.Text())
	})
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if t := s.AttrOr("type", ""); t != "" && !strings.Contains(t, "javascript") {
			return
		}
		text := s.Text()
		for _, loc := range globalAssignPattern.FindAllStringSubmatchIndex(text, -1) {
			literal := balancedLiteral(text[loc[1]:])
			if literal == "" {
				continue
			}
			add("window."+text[loc[2]:loc[3]], literal)
		}
	})

	return sources, nil
}

// balancedLiteral returns the object or array literal at the start of s,
// honouring quoted strings, or "" when s does not start with one.
func balancedLiteral(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}

	depth := 0
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
