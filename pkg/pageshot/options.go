package pageshot

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/root4loot/goutils/urlutil"
)

const (
	DefaultURL    = "http://localhost:8000/"
	DefaultOutput = "index.png"

	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// Options contains the options for a single capture run.
type Options struct {
	URL             string `yaml:"url"`                // Page to load
	Output          string `yaml:"output"`             // Image path, overwritten on every successful run
	CaptureWidth    int    `yaml:"capture_width"`      // Viewport width
	CaptureHeight   int    `yaml:"capture_height"`     // Viewport height
	Engine          string `yaml:"engine"`             // chromedp or rod
	Timeout         int    `yaml:"timeout"`            // Page load timeout (seconds), 0 waits forever
	ChromePath      string `yaml:"chrome_path"`        // Browser binary, empty to auto-detect
	NoSandbox       bool   `yaml:"no_sandbox"`         // Pass --no-sandbox to the browser
	UserAgent       string `yaml:"user_agent"`         // User agent override
	CaptureFull     bool   `yaml:"capture_full"`       // Capture the whole page instead of the viewport
	Imprint         bool   `yaml:"imprint"`            // Add the page origin below the image
	StrictRender    bool   `yaml:"strict_render"`      // Fail the run when the image cannot be written
	FailOnHTTPError bool   `yaml:"fail_on_http_error"` // Treat HTTP status >= 400 as a failed load
	Debug           bool   `yaml:"debug"`
	Silence         bool   `yaml:"silence"`
}

// Viewport is the size of the rendering surface.
type Viewport struct {
	Width  int
	Height int
}

// PageLoadRequest is the one navigation a runner performs.
type PageLoadRequest struct {
	URL      string
	Viewport Viewport
}

// NewOptions returns an Options struct initialized with default values.
func NewOptions() Options {
	return Options{
		URL:             DefaultURL,
		Output:          DefaultOutput,
		CaptureWidth:    1024,
		CaptureHeight:   768,
		Engine:          EngineChromedp,
		Timeout:         0,
		FailOnHTTPError: true,
	}
}

// Validate reports the first option that cannot be used for a capture.
func (o Options) Validate() error {
	if o.CaptureWidth <= 0 || o.CaptureHeight <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, o.CaptureWidth, o.CaptureHeight)
	}
	if o.Engine != EngineChromedp && o.Engine != EngineRod {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, o.Engine)
	}
	if o.Output == "" {
		return fmt.Errorf("output path is empty")
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", o.Timeout)
	}
	if _, err := NormalizeURL(o.URL); err != nil {
		return err
	}
	return nil
}

// Request builds the load request described by the options.
func (o Options) Request() PageLoadRequest {
	target, err := NormalizeURL(o.URL)
	if err != nil {
		target = o.URL
	}
	return PageLoadRequest{
		URL:      target,
		Viewport: Viewport{Width: o.CaptureWidth, Height: o.CaptureHeight},
	}
}

// NormalizeURL trims the target and adds http:// when no scheme is given.
func NormalizeURL(raw string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", fmt.Errorf("url is empty")
	}

	if !urlutil.HasScheme(target) && !strings.HasPrefix(target, "file://") {
		target = "http://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Host == "" && u.Scheme != "file" {
		return "", fmt.Errorf("invalid url %q: missing host", raw)
	}

	return u.String(), nil
}

