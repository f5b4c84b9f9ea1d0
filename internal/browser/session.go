package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/westhuggin/prca-standings-scraper/pkg/extractor"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

// Session is one rendered page plus the responses captured while it loaded.
type Session struct {
	opts      Options
	tabCtx    context.Context
	cancel    context.CancelFunc
	buf       *responseBuffer
	closeOnce sync.Once
}

var _ extractor.Page = (*Session)(nil)

// run executes actions on the tab bounded by timeout and by ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url, dismisses a consent banner, waits for the page to
// settle and reads the bodies of captured responses. A navigation timeout
// is returned but leaves the session usable for extraction.
func (s *Session) Navigate(ctx context.Context, url string) error {
	log := logger.Log.With().Str("url", url).Logger()

	navErr := s.run(ctx, s.opts.NavTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if navErr != nil {
		navErr = fmt.Errorf("%w: %s: %v", ErrNavigation, url, navErr)
		log.Warn().Err(navErr).Msg("navigation did not complete")
	}

	s.dismissConsent(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.opts.SettleDelay):
	}

	s.collectBodies(ctx)
	log.Debug().Int("responses", len(s.buf.responses())).Msg("page settled")

	return navErr
}

func (s *Session) dismissConsent(ctx context.Context) {
	var clicked bool
	err := s.run(ctx, s.opts.ConsentTimeout, chromedp.Evaluate(consentScript, &clicked))
	if err != nil {
		logger.Log.Debug().Err(err).Msg("consent check failed")
		return
	}
	if clicked {
		logger.Log.Debug().Msg("consent dialog dismissed")
	}
}

func (s *Session) collectBodies(ctx context.Context) {
	for _, id := range s.buf.unfetched() {
		var body []byte
		err := s.run(ctx, s.opts.SelectorTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
			b, err := network.GetResponseBody(id).Do(ctx)
			body = b
			return err
		}))
		if err != nil {
			logger.Log.Debug().Err(err).Str("request_id", string(id)).Msg("response body unavailable")
			s.buf.setBody(id, nil)
			continue
		}
		s.buf.setBody(id, body)
	}
}

// EmbeddedState serializes the known page-state globals that exist.
func (s *Session) EmbeddedState(ctx context.Context) ([]string, error) {
	names, err := json.Marshal(extractor.StateGlobals)
	if err != nil {
		return nil, err
	}
	script := `(() => {
		const out = [];
		for (const name of ` + string(names) + `) {
			const v = window[name];
			if (v === undefined || v === null) continue;
			try { out.push(JSON.stringify(v)); } catch (e) {}
		}
		return out;
	})()`

	var blobs []string
	if err := s.run(ctx, s.opts.SelectorTimeout, chromedp.Evaluate(script, &blobs)); err != nil {
		return nil, fmt.Errorf("evaluate page state: %w", err)
	}
	return blobs, nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.opts.SelectorTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return html, nil
}

func (s *Session) Responses() []extractor.CapturedResponse {
	return s.buf.responses()
}

// Document waits for row-like markup and parses the DOM. If the wait times
// out the current DOM is still returned.
func (s *Session) Document(ctx context.Context) (*goquery.Document, error) {
	if s.opts.WaitSelector != "" {
		err := s.run(ctx, s.opts.SelectorTimeout, chromedp.WaitVisible(s.opts.WaitSelector, chromedp.ByQuery))
		if err != nil {
			logger.Log.Debug().Err(err).Str("selector", s.opts.WaitSelector).Msg("row selector did not appear")
		}
	}

	html, err := s.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, s.opts.SelectorTimeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

func (s *Session) Close() {
	s.closeOnce.Do(s.cancel)
}
