package pageshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/root4loot/goutils/log"
)

// State is the position of a Runner in its single load/render cycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendering
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendering:
		return "rendering"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Runner loads one page and saves one screenshot of it.
type Runner struct {
	Options Options
	Stdout  io.Writer // receives the load failure line

	engine   Engine
	mutex    sync.Mutex
	state    State
	exitCode int
	err      error
}

func init() {
	log.Init("pageshot")
}

// NewRunner returns a runner backed by the engine named in options.
func NewRunner(options Options) (*Runner, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	engine, err := NewEngine(options)
	if err != nil {
		return nil, err
	}

	return NewRunnerWithEngine(options, engine), nil
}

// NewRunnerWithEngine returns a runner that drives the given engine.
func NewRunnerWithEngine(options Options, engine Engine) *Runner {
	SetLogLevel(options)
	return &Runner{
		Options: options,
		Stdout:  os.Stdout,
		engine:  engine,
	}
}

// SetLogLevel sets the log level based on the options.
func SetLogLevel(options Options) {
	if options.Silence {
		log.SetLevel(log.FatalLevel)
	} else if options.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// State returns the current state of the runner.
func (r *Runner) State() State {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

// ExitCode returns the code of the finished run. It is only meaningful once
// State is StateTerminated.
func (r *Runner) ExitCode() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.exitCode
}

// Err returns the error that ended or degraded the run, if any.
func (r *Runner) Err() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.err
}

// Close shuts down the browser.
func (r *Runner) Close() error {
	return r.engine.Close()
}

// Run sets the viewport, loads the page and writes the screenshot. It returns
// the process exit code: ExitSuccess once a render was attempted after a
// successful load, ExitLoadFailed otherwise. A runner performs at most one
// load; further calls return the first exit code, or ExitLoadFailed while the
// first run is still in progress.
func (r *Runner) Run(ctx context.Context) int {
	r.mutex.Lock()
	if r.state != StateIdle {
		code := ExitLoadFailed
		if r.state == StateTerminated {
			code = r.exitCode
		}
		r.mutex.Unlock()
		log.Warnf("%v", ErrAlreadyRun)
		return code
	}
	r.state = StateLoading
	r.mutex.Unlock()

	req := r.Options.Request()
	log.Debugf("Loading %s at %dx%d", req.URL, req.Viewport.Width, req.Viewport.Height)

	page, err := r.engine.NewPage(ctx)
	if err != nil {
		return r.loadFailed(&LoadError{URL: req.URL, Err: fmt.Errorf("error creating page: %w", err)})
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Debugf("Error closing page: %v", err)
		}
	}()

	if err := page.SetViewport(ctx, req.Viewport.Width, req.Viewport.Height); err != nil {
		return r.loadFailed(&LoadError{URL: req.URL, Err: fmt.Errorf("error setting viewport: %w", err)})
	}

	loadCtx := ctx
	if r.Options.Timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, time.Duration(r.Options.Timeout)*time.Second)
		defer cancel()
	}

	status, err := page.Open(loadCtx, req.URL)
	if status != StatusSuccess {
		if err == nil {
			err = &LoadError{URL: req.URL}
		}
		return r.loadFailed(err)
	}

	r.setState(StateRendering)

	if err := r.render(ctx, page, req); err != nil {
		log.Warnf("Could not save screenshot of %s: %v", req.URL, err)
		r.setErr(err)
		if r.Options.StrictRender {
			return r.terminate(ExitRenderFailed)
		}
	} else {
		log.Debugf("Screenshot of %s saved to %s", req.URL, r.Options.Output)
	}

	return r.terminate(ExitSuccess)
}

func (r *Runner) render(ctx context.Context, page Page, req PageLoadRequest) error {
	img, err := page.Render(ctx)
	if err != nil {
		return fmt.Errorf("error capturing screenshot: %w", err)
	}

	if r.Options.Imprint {
		img, err = img.AddTextToImage(req.URL)
		if err != nil {
			return fmt.Errorf("error adding text to image: %w", err)
		}
	}

	return img.WriteFile(r.Options.Output)
}

func (r *Runner) loadFailed(err error) int {
	log.Debugf("%v", err)
	r.setErr(err)

	out := r.Stdout
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, LoadFailedMessage)

	return r.terminate(ExitLoadFailed)
}

func (r *Runner) setState(state State) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.state = state
}

func (r *Runner) setErr(err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.err = err
}

func (r *Runner) terminate(code int) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.state = StateTerminated
	r.exitCode = code
	return code
}
