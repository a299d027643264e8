package pageshot

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/root4loot/goutils/log"
)

type chromedpEngine struct {
	options Options

	mutex       sync.Mutex
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

type chromedpPage struct {
	ctx             context.Context
	cancel          context.CancelFunc
	captureFull     bool
	failOnHTTPError bool
}

func newChromedpEngine(options Options) *chromedpEngine {
	return &chromedpEngine{options: options}
}

// allocatorOptions returns the exec allocator options built from the defaults
// plus the custom flags.
func (e *chromedpEngine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	flags := browserFlags(e.options)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := flags[name]
		switch {
		case name == "user-agent":
			opts = append(opts, chromedp.UserAgent(value))
		case value == "true":
			opts = append(opts, chromedp.Flag(name, true))
		default:
			opts = append(opts, chromedp.Flag(name, value))
		}
	}

	if path := chromePath(e.options); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	return opts
}

func (e *chromedpEngine) NewPage(ctx context.Context) (Page, error) {
	e.mutex.Lock()
	if e.allocCtx == nil {
		e.allocCtx, e.cancelAlloc = chromedp.NewExecAllocator(context.Background(), e.allocatorOptions()...)
	}
	allocCtx := e.allocCtx
	e.mutex.Unlock()

	tabCtx, cancel := chromedp.NewContext(allocCtx)

	p := &chromedpPage{
		ctx:             tabCtx,
		cancel:          cancel,
		captureFull:     e.options.CaptureFull,
		failOnHTTPError: e.options.FailOnHTTPError,
	}
	// The first Run starts the browser and binds it to tabCtx, so it must not
	// carry the caller's deadline.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		cancel()
		return nil, err
	}

	log.Debug("chromedp page created")
	return p, nil
}

func (e *chromedpEngine) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.cancelAlloc != nil {
		e.cancelAlloc()
		e.cancelAlloc = nil
		e.allocCtx = nil
	}
	return nil
}

// run executes actions in the tab and aborts them when ctx is done.
func (p *chromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromedpPage) SetViewport(ctx context.Context, width, height int) error {
	return p.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (p *chromedpPage) Open(ctx context.Context, url string) (LoadStatus, error) {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return StatusFail, &LoadError{URL: url, Err: err}
	}

	if resp == nil {
		return StatusSuccess, nil
	}
	return checkStatusCode(url, int(resp.Status), p.failOnHTTPError)
}

func (p *chromedpPage) Render(ctx context.Context) (Image, error) {
	var buf []byte

	action := chromedp.CaptureScreenshot(&buf)
	if p.captureFull {
		action = chromedp.FullScreenshot(&buf, 100)
	}

	if err := p.run(ctx, action); err != nil {
		return nil, err
	}
	return Image(buf), nil
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}

// chromePath returns the configured browser binary, falling back to CHROME_BIN.
func chromePath(options Options) string {
	if options.ChromePath != "" {
		return options.ChromePath
	}
	return os.Getenv("CHROME_BIN")
}
