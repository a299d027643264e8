package pageshot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/root4loot/goutils/log"
)

type rodEngine struct {
	options Options

	mutex    sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

type rodPage struct {
	page            *rod.Page
	captureFull     bool
	failOnHTTPError bool
}

func newRodEngine(options Options) *rodEngine {
	return &rodEngine{options: options}
}

// newLauncher configures the browser launcher from the engine options.
func (e *rodEngine) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(true).
		NoSandbox(e.options.NoSandbox)

	path := chromePath(e.options)
	if path == "" {
		path, _ = launcher.LookPath()
	}
	if path != "" {
		l = l.Bin(path)
	}

	for name, value := range browserFlags(e.options) {
		if name == "headless" || name == "no-sandbox" {
			continue
		}
		if value == "true" {
			l.Set(flags.Flag(name))
		} else {
			l.Set(flags.Flag(name), value)
		}
	}

	return l
}

func (e *rodEngine) connect() (*rod.Browser, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	l := e.newLauncher()
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("error launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("error connecting to browser: %w", err)
	}

	e.launcher = l
	e.browser = browser
	return browser, nil
}

func (e *rodEngine) NewPage(ctx context.Context) (Page, error) {
	browser, err := e.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("error creating page: %w", err)
	}

	log.Debug("rod page created")
	return &rodPage{
		page:            page.Context(context.Background()),
		captureFull:     e.options.CaptureFull,
		failOnHTTPError: e.options.FailOnHTTPError,
	}, nil
}

func (e *rodEngine) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	var err error
	if e.browser != nil {
		err = e.browser.Close()
		e.browser = nil
	}
	if e.launcher != nil {
		e.launcher.Kill()
		e.launcher = nil
	}
	return err
}

func (p *rodPage) SetViewport(ctx context.Context, width, height int) error {
	return p.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
}

func (p *rodPage) Open(ctx context.Context, url string) (LoadStatus, error) {
	// The response subscription lives on waitCtx so it ends with Open.
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	page := p.page.Context(waitCtx)

	var e proto.NetworkResponseReceived
	wait := page.WaitEvent(&e)

	if err := page.Navigate(url); err != nil {
		cancel()
		wait()
		return navigationFailed(url, err)
	}

	wait()

	if err := page.WaitLoad(); err != nil {
		return StatusFail, &LoadError{URL: url, Err: err}
	}

	if e.Response == nil {
		return StatusSuccess, nil
	}
	return checkStatusCode(url, e.Response.Status, p.failOnHTTPError)
}

// navigationFailed maps a Navigate error to a failed load.
func navigationFailed(url string, err error) (LoadStatus, error) {
	var navErr *rod.ErrNavigation
	if errors.As(err, &navErr) {
		log.Debugf("navigation to %s failed: %s", url, navErr.Reason)
	}
	return StatusFail, &LoadError{URL: url, Err: err}
}

func (p *rodPage) Render(ctx context.Context) (Image, error) {
	buf, err := p.page.Context(ctx).Screenshot(p.captureFull, nil)
	if err != nil {
		return nil, err
	}
	return Image(buf), nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}
