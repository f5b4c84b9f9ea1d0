package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	cdpopts "github.com/westhuggin/prca-standings-scraper/pkg/chromedp"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

var (
	ErrStart      = errors.New("start browser")
	ErrNavigation = errors.New("navigation")
)

// blockedURLs skips assets that never carry standings data.
var blockedURLs = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.ico",
	"*.mp4", "*.webm", "*.mov",
	"*.woff", "*.woff2", "*.ttf", "*.eot", "*.otf",
	"*google-analytics*", "*googletagmanager*", "*facebook*", "*doubleclick*",
}

type Options struct {
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
	SettleDelay     time.Duration
	ConsentTimeout  time.Duration
	WaitSelector    string
	// ResponseKeywords limits buffered responses to URLs containing one of
	// them. Empty buffers every JSON response.
	ResponseKeywords []string
}

// Browser opens one isolated Chrome process per session so that no state
// leaks between categories.
type Browser struct {
	opts      Options
	allocOpts []chromedp.ExecAllocatorOption
}

func New(opts Options) *Browser {
	return &Browser{
		opts:      opts,
		allocOpts: cdpopts.GetExecAllocatorOptions(),
	}
}

// Open starts a browser and a tab with response capture already attached.
// The returned session must be closed.
func (b *Browser) Open(ctx context.Context) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		opts:   b.opts,
		tabCtx: tabCtx,
		buf:    newResponseBuffer(b.opts.ResponseKeywords),
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}

	// The first Run owns the browser lifetime, so it gets no deadline.
	setup := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			chromedp.ListenTarget(ctx, s.buf.onEvent)
			return nil
		}),
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(cdpopts.UserAgent).
				WithAcceptLanguage("en-US,en;q=0.9").
				WithPlatform("macOS").
				Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetBlockedURLs(blockedURLs).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(cdpopts.GetStealthScripts()).Do(ctx)
			return err
		}),
	}
	if err := chromedp.Run(tabCtx, setup); err != nil {
		s.cancel()
		return nil, fmt.Errorf("%w: %v", ErrStart, err)
	}

	logger.Log.Debug().Strs("keywords", b.opts.ResponseKeywords).Msg("browser session opened")
	return s, nil
}
