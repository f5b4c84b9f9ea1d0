package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

// Dumper writes the rendered markup and a screenshot of a failed category
// to <dir>/<CODE>.html and <dir>/<CODE>.png. Later dumps for the same code
// overwrite earlier ones.
type Dumper struct {
	dir string
}

func NewDumper(dir string) *Dumper {
	return &Dumper{dir: dir}
}

// Paths returns the artifact paths for a category code.
func (d *Dumper) Paths(code string) (html, png string) {
	base := filepath.Join(d.dir, sanitize(code))
	return base + ".html", base + ".png"
}

// Dump writes whichever artifacts are non-empty. Each write is attempted
// independently; the returned error joins all failures.
func (d *Dumper) Dump(code, html string, png []byte) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create debug dir: %w", err)
	}

	htmlPath, pngPath := d.Paths(code)
	var errs []error

	if html != "" {
		if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write html: %w", err))
		}
	}
	if len(png) > 0 {
		if err := os.WriteFile(pngPath, png, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write screenshot: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	logger.Log.Info().
		Str("event", code).
		Str("html", htmlPath).
		Str("screenshot", pngPath).
		Bool("has_html", html != "").
		Bool("has_screenshot", len(png) > 0).
		Msg("diagnostics written")
	return nil
}

func sanitize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, code)
	if code == "" {
		return "UNKNOWN"
	}
	return code
}
