package pageshot

import (
	"context"
	"fmt"
)

// Engine starts pages in a headless browser.
type Engine interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single browser tab.
//
// Open blocks until the browser reports a terminal status for the
// navigation. It has no timeout of its own; bound it with ctx.
type Page interface {
	SetViewport(ctx context.Context, width, height int) error
	Open(ctx context.Context, url string) (LoadStatus, error)
	Render(ctx context.Context) (Image, error)
	Close() error
}

// NewEngine returns the engine named by options.Engine. The browser is not
// started until the first page is requested.
func NewEngine(options Options) (Engine, error) {
	switch options.Engine {
	case EngineChromedp, "":
		return newChromedpEngine(options), nil
	case EngineRod:
		return newRodEngine(options), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, options.Engine)
	}
}

// browserFlags returns the command line switches shared by both engines.
func browserFlags(options Options) map[string]string {
	flags := map[string]string{
		"headless":                  "true",
		"ignore-certificate-errors": "true",
		"disable-http2":             "true",
		"disable-gpu":               "true",
		"disable-dev-shm-usage":     "true",
		"hide-scrollbars":           "true",
	}

	if options.NoSandbox {
		flags["no-sandbox"] = "true"
	}

	if options.UserAgent != "" {
		flags["user-agent"] = options.UserAgent
	}

	return flags
}
