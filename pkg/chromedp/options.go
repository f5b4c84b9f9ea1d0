package chromedp

import (
	"os"

	"github.com/chromedp/chromedp"
)

const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"

// chromePaths are probed in order when running inside a container.
var chromePaths = []string{
	"/headless-shell/headless-shell",
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
}

// GetExecAllocatorOptions returns headless flags that work both locally and
// in Docker. CHROME_PATH overrides executable discovery.
func GetExecAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-features", "site-per-process,TranslateUI"),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("window-size", "1440,2200"),
		chromedp.UserAgent(UserAgent),
	)

	if p := os.Getenv("CHROME_PATH"); p != "" {
		return append(opts, chromedp.ExecPath(p))
	}
	for _, p := range chromePaths {
		if _, err := os.Stat(p); err == nil {
			opts = append(opts, chromedp.ExecPath(p))
			break
		}
	}

	return opts
}

// GetStealthScripts hides the most common headless fingerprints.
func GetStealthScripts() string {
	return `
		Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
		Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
		Object.defineProperty(navigator, 'platform', { get: () => 'MacIntel' });
		if (!window.chrome) {
			window.chrome = {};
		}
		if (!window.chrome.runtime) {
			window.chrome.runtime = {};
		}
	`
}
